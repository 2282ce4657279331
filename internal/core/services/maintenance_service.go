package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/adapters/persistence/repositories"
	"residency-api/internal/core/domain"
	"residency-api/internal/pkg/logger"
)

// Maintenance errors
var (
	ErrMaintenanceNotFound = domain.NewError(domain.KindNotFound, "maintenance record not found")
	ErrCycleLocked         = domain.NewError(domain.KindState, "cycle locked")
	ErrNoBuildings         = domain.NewError(domain.KindValidation, "no buildings found")
	ErrNotOwnFlat          = domain.NewError(domain.KindAuthorization, "you can only pay maintenance for your own flat")
	ErrInvalidAmount       = domain.NewError(domain.KindValidation, "amount must be greater than zero")
)

// MaintenanceService runs the maintenance ledger lifecycle
type MaintenanceService struct {
	repo         repositories.MaintenanceRepository
	buildingRepo repositories.BuildingRepository
	userRepo     repositories.UserRepository
	audit        *AuditService
	notifier     Notifier
	exporter     *ExportService
	penalty      domain.PenaltyPolicy
	loc          *time.Location
	log          *logger.Logger
	now          func() time.Time
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(
	repo repositories.MaintenanceRepository,
	buildingRepo repositories.BuildingRepository,
	userRepo repositories.UserRepository,
	audit *AuditService,
	notifier Notifier,
	exporter *ExportService,
	penalty domain.PenaltyPolicy,
	loc *time.Location,
	log *logger.Logger,
) *MaintenanceService {
	return &MaintenanceService{
		repo:         repo,
		buildingRepo: buildingRepo,
		userRepo:     userRepo,
		audit:        audit,
		notifier:     notifier,
		exporter:     exporter,
		penalty:      penalty,
		loc:          loc,
		log:          log.Component("maintenance"),
		now:          time.Now,
	}
}

func (s *MaintenanceService) clock() time.Time {
	return s.now().In(s.loc)
}

// GenerateInput represents a generate cycle request
type GenerateInput struct {
	Month  string          `json:"month"`
	Year   int             `json:"year"`
	Amount decimal.Decimal `json:"amount"`
}

// GenerateResult reports how a generation run went
type GenerateResult struct {
	Period  string `json:"period"`
	Units   int    `json:"units"`
	Created int64  `json:"created"`
	Skipped int64  `json:"skipped"`
}

// Generate creates a Pending record for every unit of every building for
// the period. Units that already have a record are skipped, so running it
// again is harmless.
func (s *MaintenanceService) Generate(ctx context.Context, actor domain.Actor, input *GenerateInput) (*GenerateResult, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	period, err := domain.NewPeriod(input.Month, input.Year)
	if err != nil {
		return nil, err
	}

	locked, err := s.repo.IsLocked(ctx, period.Label(), period.Year)
	if err != nil {
		return nil, domain.Internal("check lock", err)
	}
	if locked {
		return nil, ErrCycleLocked
	}

	buildings, err := s.buildingRepo.List(ctx)
	if err != nil {
		return nil, domain.Internal("list buildings", err)
	}
	if len(buildings) == 0 {
		return nil, ErrNoBuildings
	}

	occupancy, err := s.userRepo.OccupancyByFlat(ctx)
	if err != nil {
		return nil, domain.Internal("load occupancy", err)
	}

	layouts := make([]domain.BuildingLayout, len(buildings))
	for i, b := range buildings {
		layouts[i] = b.Layout()
	}

	amount := input.Amount.Round(2)
	var records []*models.MaintenanceRecord
	for unit := range domain.AllUnits(layouts) {
		occ := domain.OccupancyOwner
		if o, ok := occupancy[unit]; ok && domain.OccupancyType(o).Valid() {
			occ = domain.OccupancyType(o)
		}
		records = append(records, &models.MaintenanceRecord{
			FlatID:        unit,
			Month:         period.Label(),
			Year:          period.Year,
			Amount:        amount,
			Status:        string(domain.PaymentPending),
			OccupancyType: string(occ),
			PenaltyPaid:   decimal.Zero,
		})
	}

	created, err := s.repo.CreateBatch(ctx, records)
	if err != nil {
		return nil, domain.Internal("create maintenance records", err)
	}

	result := &GenerateResult{
		Period:  period.String(),
		Units:   len(records),
		Created: created,
		Skipped: int64(len(records)) - created,
	}

	s.audit.Record(ctx, actor, ActionGenerateMaintenance, EntityMaintenance, period.String(),
		fmt.Sprintf("amount %s: %d created, %d skipped", amount.StringFixed(2), result.Created, result.Skipped))
	s.log.Info().
		Str("period", result.Period).
		Int64("created", result.Created).
		Int64("skipped", result.Skipped).
		Msg("Maintenance cycle generated")

	return result, nil
}

// MaintenanceQuery filters a ledger listing. Status matches the derived status.
type MaintenanceQuery struct {
	FlatID string
	Month  string
	Year   int
	Status string
}

// List returns records with their derived status and dues. Callers that do
// not manage maintenance only ever see their own flat.
func (s *MaintenanceService) List(ctx context.Context, actor domain.Actor, q MaintenanceQuery) ([]*models.MaintenanceResponse, error) {
	filter := repositories.MaintenanceFilter{
		FlatID: strings.ToUpper(strings.TrimSpace(q.FlatID)),
		Year:   q.Year,
	}
	if !isManager(actor) {
		if actor.FlatID == "" {
			return []*models.MaintenanceResponse{}, nil
		}
		filter.FlatID = actor.FlatID
	}
	if q.Month != "" {
		m, ok := domain.ParseMonth(q.Month)
		if !ok {
			return nil, domain.Validation("invalid month: " + q.Month)
		}
		filter.Month = m.String()
	}

	var want domain.PaymentStatus
	if q.Status != "" {
		want = domain.PaymentStatus(q.Status)
		if !want.Valid() {
			return nil, domain.Validation("status must be Pending, Paid or Overdue")
		}
		if want == domain.PaymentPaid {
			filter.Status = string(domain.PaymentPaid)
		} else {
			filter.ExcludeStatus = string(domain.PaymentPaid)
		}
	}

	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, domain.Internal("list maintenance", err)
	}
	locks, err := s.lockedPeriods(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	out := make([]*models.MaintenanceResponse, 0, len(records))
	for _, rec := range records {
		view := s.view(rec, locks[rec.Period()], now)
		if want != "" && domain.PaymentStatus(view.Status) != want {
			continue
		}
		out = append(out, view)
	}
	return out, nil
}

// Get returns one record with its derived status
func (s *MaintenanceService) Get(ctx context.Context, actor domain.Actor, id uint) (*models.MaintenanceResponse, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrMaintenanceNotFound, "get maintenance")
	}
	if !isManager(actor) && rec.FlatID != actor.FlatID {
		return nil, ErrMaintenanceNotFound
	}
	locked, err := s.repo.IsLocked(ctx, rec.Month, rec.Year)
	if err != nil {
		return nil, domain.Internal("check lock", err)
	}
	return s.view(rec, locked, s.clock()), nil
}

// RecordPayment marks a record Paid at paidDate (now when nil), charging
// the penalty due at that instant. Paying a Paid record is a no-op.
func (s *MaintenanceService) RecordPayment(ctx context.Context, actor domain.Actor, id uint, paidDate *time.Time) (*models.MaintenanceResponse, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrMaintenanceNotFound, "get maintenance")
	}
	if !isManager(actor) && rec.FlatID != actor.FlatID {
		return nil, ErrNotOwnFlat
	}

	locked, err := s.repo.IsLocked(ctx, rec.Month, rec.Year)
	if err != nil {
		return nil, domain.Internal("check lock", err)
	}
	if locked {
		return nil, ErrCycleLocked
	}

	now := s.clock()
	if rec.Status == string(domain.PaymentPaid) {
		view := s.view(rec, false, now)
		view.AlreadyPaid = true
		return view, nil
	}

	paidAt := now
	if paidDate != nil {
		if paidDate.After(now) {
			return nil, domain.Validation("paid_date cannot be in the future")
		}
		paidAt = paidDate.In(s.loc)
	}
	period := rec.Period()
	penalty := s.penalty.Penalty(rec.Amount, domain.DaysLate(period.DueAt(s.loc), paidAt))

	changed, err := s.repo.MarkPaid(ctx, rec.ID, paidAt, penalty)
	if err != nil {
		return nil, domain.Internal("record payment", err)
	}
	if !changed {
		// lost a race with a lock or another payment
		return s.afterLostUpdate(ctx, rec.ID, now)
	}

	rec.Status = string(domain.PaymentPaid)
	rec.PaidDate = &paidAt
	rec.PenaltyPaid = penalty

	s.audit.Record(ctx, actor, ActionRecordPayment, EntityMaintenance, idString(rec.ID),
		fmt.Sprintf("%s %s paid %s penalty %s", rec.FlatID, period, rec.Amount.StringFixed(2), penalty.StringFixed(2)))

	return s.view(rec, false, now), nil
}

func (s *MaintenanceService) afterLostUpdate(ctx context.Context, id uint, now time.Time) (*models.MaintenanceResponse, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrMaintenanceNotFound, "get maintenance")
	}
	locked, err := s.repo.IsLocked(ctx, current.Month, current.Year)
	if err != nil {
		return nil, domain.Internal("check lock", err)
	}
	if locked {
		return nil, ErrCycleLocked
	}
	view := s.view(current, false, now)
	view.AlreadyPaid = current.Status == string(domain.PaymentPaid)
	return view, nil
}

// UpdateStatusInput represents an administrative status correction
type UpdateStatusInput struct {
	Status   string     `json:"status"`
	PaidDate *time.Time `json:"paid_date"`
}

// UpdateStatus sets a record's stored status. Paid goes through the normal
// payment path; Pending or Overdue reopens the record and clears payment.
func (s *MaintenanceService) UpdateStatus(ctx context.Context, actor domain.Actor, id uint, input *UpdateStatusInput) (*models.MaintenanceResponse, error) {
	status := domain.PaymentStatus(input.Status)
	if !status.Valid() {
		return nil, domain.Validation("status must be Pending, Paid or Overdue")
	}
	if status == domain.PaymentPaid {
		return s.RecordPayment(ctx, actor, id, input.PaidDate)
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrMaintenanceNotFound, "get maintenance")
	}

	changed, err := s.repo.Reopen(ctx, id, string(status))
	if err != nil {
		return nil, domain.Internal("update maintenance", err)
	}
	if !changed {
		return nil, ErrCycleLocked
	}

	s.audit.Record(ctx, actor, ActionUpdateMaintenance, EntityMaintenance, idString(id),
		fmt.Sprintf("%s %s %s -> %s", rec.FlatID, rec.Period(), rec.Status, status))

	rec.Status = string(status)
	rec.PaidDate = nil
	rec.PenaltyPaid = decimal.Zero
	return s.view(rec, false, s.clock()), nil
}

// LockInput represents a lock cycle request
type LockInput struct {
	Month string `json:"month"`
	Year  int    `json:"year"`
}

// LockResult reports the lock of a period
type LockResult struct {
	Period        string    `json:"period"`
	Month         string    `json:"month"`
	Year          int       `json:"year"`
	LockedAt      time.Time `json:"locked_at"`
	AlreadyLocked bool      `json:"already_locked"`
}

// Lock closes a period for payments. Locking twice is harmless.
func (s *MaintenanceService) Lock(ctx context.Context, actor domain.Actor, input *LockInput) (*LockResult, error) {
	period, err := domain.NewPeriod(input.Month, input.Year)
	if err != nil {
		return nil, err
	}

	lock := &models.MaintenanceLock{
		Month:    period.Label(),
		Year:     period.Year,
		LockedBy: actor.UserID,
		LockedAt: s.clock(),
	}
	created, err := s.repo.Lock(ctx, lock)
	if err != nil {
		return nil, domain.Internal("lock cycle", err)
	}

	if created {
		s.audit.Record(ctx, actor, ActionLockCycle, EntityMaintenance, period.String(), "cycle locked")
		s.log.Info().Str("period", period.String()).Uint("by", actor.UserID).Msg("Maintenance cycle locked")
	}

	return &LockResult{
		Period:        period.String(),
		Month:         period.Label(),
		Year:          period.Year,
		LockedAt:      lock.LockedAt,
		AlreadyLocked: !created,
	}, nil
}

// ListLocks returns every locked period
func (s *MaintenanceService) ListLocks(ctx context.Context) ([]*models.MaintenanceLock, error) {
	locks, err := s.repo.ListLocks(ctx)
	if err != nil {
		return nil, domain.Internal("list locks", err)
	}
	return locks, nil
}

// CycleSummary aggregates one period of the ledger
type CycleSummary struct {
	Period           string          `json:"period"`
	Records          int             `json:"records"`
	Paid             int             `json:"paid"`
	Pending          int             `json:"pending"`
	Overdue          int             `json:"overdue"`
	Billed           decimal.Decimal `json:"billed"`
	Collected        decimal.Decimal `json:"collected"`
	PenaltyCollected decimal.Decimal `json:"penalty_collected"`
	Outstanding      decimal.Decimal `json:"outstanding"`
	Locked           bool            `json:"locked"`
}

// Summary aggregates a period as seen by actor
func (s *MaintenanceService) Summary(ctx context.Context, actor domain.Actor, period domain.Period) (*CycleSummary, error) {
	views, err := s.List(ctx, actor, MaintenanceQuery{Month: period.Label(), Year: period.Year})
	if err != nil {
		return nil, err
	}

	sum := &CycleSummary{
		Period:           period.String(),
		Records:          len(views),
		Billed:           decimal.Zero,
		Collected:        decimal.Zero,
		PenaltyCollected: decimal.Zero,
		Outstanding:      decimal.Zero,
	}
	for _, v := range views {
		sum.Billed = sum.Billed.Add(v.Amount)
		sum.Locked = v.Locked
		switch domain.PaymentStatus(v.Status) {
		case domain.PaymentPaid:
			sum.Paid++
			sum.Collected = sum.Collected.Add(v.Amount)
			sum.PenaltyCollected = sum.PenaltyCollected.Add(v.PenaltyPaid)
		case domain.PaymentOverdue:
			sum.Overdue++
			sum.Outstanding = sum.Outstanding.Add(v.Total)
		default:
			sum.Pending++
			sum.Outstanding = sum.Outstanding.Add(v.Total)
		}
	}
	return sum, nil
}

// CurrentPeriod is the billing period containing now
func (s *MaintenanceService) CurrentPeriod() domain.Period {
	return domain.PeriodOf(s.clock())
}

// RemindOverdue notifies residents of overdue records not reminded within
// interval and stamps them. It returns how many records were reminded.
func (s *MaintenanceService) RemindOverdue(ctx context.Context, interval time.Duration) (int, error) {
	now := s.clock()
	candidates, err := s.repo.ReminderCandidates(ctx, now.Add(-interval))
	if err != nil {
		return 0, domain.Internal("find reminder candidates", err)
	}

	var (
		ids     []uint
		targets []string
		dues    = decimal.Zero
	)
	for _, rec := range candidates {
		a := domain.Assess(rec.Period(), domain.PaymentStatus(rec.Status), rec.Amount, rec.PaidDate, now, s.penalty)
		if !a.IsOverdue {
			continue
		}
		ids = append(ids, rec.ID)
		targets = append(targets, fmt.Sprintf("%s:%s:%s", rec.FlatID, rec.Period(), a.Total.StringFixed(2)))
		dues = dues.Add(a.Total)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	err = s.notifier.Send(ctx, Notification{
		Event:    EventMaintenanceOverdue,
		Title:    "Maintenance overdue",
		Message:  fmt.Sprintf("%d maintenance dues are overdue, %s outstanding including penalties", len(ids), dues.StringFixed(2)),
		Audience: AudienceResidents,
		Targets:  targets,
		SentBy:   domain.SystemActor.Name,
		SentAt:   now,
	})
	if err != nil {
		return 0, domain.Internal("send overdue reminders", err)
	}

	if err := s.repo.StampReminder(ctx, ids, now); err != nil {
		return 0, domain.Internal("stamp reminders", err)
	}

	s.log.Info().Int("records", len(ids)).Str("outstanding", dues.StringFixed(2)).Msg("Overdue reminders sent")
	return len(ids), nil
}

// Export renders a period's ledger as an XLSX workbook
func (s *MaintenanceService) Export(ctx context.Context, actor domain.Actor, month string, year int) ([]byte, string, error) {
	period, err := domain.NewPeriod(month, year)
	if err != nil {
		return nil, "", err
	}
	views, err := s.List(ctx, actor, MaintenanceQuery{Month: period.Label(), Year: period.Year})
	if err != nil {
		return nil, "", err
	}

	data, err := s.exporter.MaintenanceWorkbook(period, views)
	if err != nil {
		return nil, "", domain.Internal("render workbook", err)
	}

	s.audit.Record(ctx, actor, ActionExportMaintenance, EntityMaintenance, period.String(), fmt.Sprintf("%d records exported", len(views)))
	return data, fmt.Sprintf("maintenance-%s-%d.xlsx", strings.ToLower(period.Label()), period.Year), nil
}

func (s *MaintenanceService) lockedPeriods(ctx context.Context) (map[domain.Period]bool, error) {
	locks, err := s.repo.ListLocks(ctx)
	if err != nil {
		return nil, domain.Internal("list locks", err)
	}
	set := make(map[domain.Period]bool, len(locks))
	for _, l := range locks {
		if m, ok := domain.ParseMonth(l.Month); ok {
			set[domain.Period{Month: m, Year: l.Year}] = true
		}
	}
	return set, nil
}

func (s *MaintenanceService) view(rec *models.MaintenanceRecord, locked bool, now time.Time) *models.MaintenanceResponse {
	a := domain.Assess(rec.Period(), domain.PaymentStatus(rec.Status), rec.Amount, rec.PaidDate, now, s.penalty)
	return rec.ToResponse(a, locked)
}
