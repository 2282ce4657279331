package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/adapters/persistence/repositories"
	"residency-api/internal/core/domain"
	"residency-api/internal/pkg/pagination"
)

const (
	recentNotices    = 5
	upcomingMeetings = 5
)

// DashboardService assembles the landing page summaries
type DashboardService struct {
	userRepo    repositories.UserRepository
	fundRepo    repositories.FundRepository
	bookingRepo repositories.BookingRepository
	maintenance *MaintenanceService
	expenses    *ExpenseService
	notices     *NoticeService
	meetings    *MeetingService
	bookings    *BookingService
	loc         *time.Location
	now         func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	userRepo repositories.UserRepository,
	fundRepo repositories.FundRepository,
	bookingRepo repositories.BookingRepository,
	maintenance *MaintenanceService,
	expenses *ExpenseService,
	notices *NoticeService,
	meetings *MeetingService,
	bookings *BookingService,
	loc *time.Location,
) *DashboardService {
	return &DashboardService{
		userRepo:    userRepo,
		fundRepo:    fundRepo,
		bookingRepo: bookingRepo,
		maintenance: maintenance,
		expenses:    expenses,
		notices:     notices,
		meetings:    meetings,
		bookings:    bookings,
		loc:         loc,
		now:         time.Now,
	}
}

// ============================================================
// Admin Dashboard
// ============================================================

// AdminDashboardData represents admin dashboard data
type AdminDashboardData struct {
	// User Statistics
	UsersByStatus map[string]int64 `json:"users_by_status"`
	PendingUsers  int64            `json:"pending_users"`

	// Maintenance
	CurrentCycle  *CycleSummary `json:"current_cycle"`
	PreviousCycle *CycleSummary `json:"previous_cycle"`

	// Treasury
	ExpensesThisMonth decimal.Decimal `json:"expenses_this_month"`
	ActiveFunds       int64           `json:"active_funds"`
	CompletedFunds    int64           `json:"completed_funds"`

	// Engagement
	PendingBookings  int64            `json:"pending_bookings"`
	RecentNotices    []*models.Notice `json:"recent_notices"`
	UpcomingMeetings []*MeetingView   `json:"upcoming_meetings"`
}

// GetAdminDashboard returns admin dashboard data
func (s *DashboardService) GetAdminDashboard(ctx context.Context, actor domain.Actor) (*AdminDashboardData, error) {
	data := &AdminDashboardData{}

	byStatus, err := s.userRepo.CountByStatus(ctx)
	if err != nil {
		return nil, domain.Internal("count users", err)
	}
	data.UsersByStatus = byStatus
	data.PendingUsers = byStatus[string(domain.UserPending)]

	current := s.maintenance.CurrentPeriod()
	if data.CurrentCycle, err = s.maintenance.Summary(ctx, actor, current); err != nil {
		return nil, err
	}
	if data.PreviousCycle, err = s.maintenance.Summary(ctx, actor, current.Previous()); err != nil {
		return nil, err
	}

	data.ExpensesThisMonth, err = s.expenses.Total(ctx, ExpenseQuery{Month: current.Label(), Year: current.Year})
	if err != nil {
		return nil, err
	}

	if data.ActiveFunds, err = s.fundRepo.CountByStatus(ctx, string(domain.FundActive)); err != nil {
		return nil, domain.Internal("count funds", err)
	}
	if data.CompletedFunds, err = s.fundRepo.CountByStatus(ctx, string(domain.FundCompleted)); err != nil {
		return nil, domain.Internal("count funds", err)
	}
	if data.PendingBookings, err = s.bookingRepo.CountByStatus(ctx, string(domain.BookingPending)); err != nil {
		return nil, domain.Internal("count bookings", err)
	}

	if err := s.engagement(ctx, actor, &data.RecentNotices, &data.UpcomingMeetings); err != nil {
		return nil, err
	}
	return data, nil
}

// ============================================================
// Resident Dashboard
// ============================================================

// ResidentDashboardData represents a resident's own dashboard
type ResidentDashboardData struct {
	FlatID           string                        `json:"flat_id"`
	OpenDues         []*models.MaintenanceResponse `json:"open_dues"`
	TotalDue         decimal.Decimal               `json:"total_due"`
	OverdueCount     int                           `json:"overdue_count"`
	MyBookings       []*models.AmenityBooking      `json:"my_bookings"`
	RecentNotices    []*models.Notice              `json:"recent_notices"`
	UpcomingMeetings []*MeetingView                `json:"upcoming_meetings"`
}

// GetResidentDashboard returns the caller's dues, bookings and society news
func (s *DashboardService) GetResidentDashboard(ctx context.Context, actor domain.Actor) (*ResidentDashboardData, error) {
	data := &ResidentDashboardData{
		FlatID:   actor.FlatID,
		OpenDues: []*models.MaintenanceResponse{},
		TotalDue: decimal.Zero,
	}

	if actor.FlatID != "" {
		// a resident's own view, whatever their role
		self := actor
		self.Role = domain.RoleResident
		self.Overrides = nil
		records, err := s.maintenance.List(ctx, self, MaintenanceQuery{})
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			if domain.PaymentStatus(r.Status) == domain.PaymentPaid {
				continue
			}
			data.OpenDues = append(data.OpenDues, r)
			data.TotalDue = data.TotalDue.Add(r.Total)
			if r.IsOverdue {
				data.OverdueCount++
			}
		}
	}

	mine, err := s.bookingRepo.List(ctx, repositories.BookingFilter{VisibleTo: actor.UserID})
	if err != nil {
		return nil, domain.Internal("list bookings", err)
	}
	data.MyBookings = make([]*models.AmenityBooking, 0, len(mine))
	for _, b := range mine {
		if b.UserID == actor.UserID {
			data.MyBookings = append(data.MyBookings, b)
		}
	}

	if err := s.engagement(ctx, actor, &data.RecentNotices, &data.UpcomingMeetings); err != nil {
		return nil, err
	}
	return data, nil
}

// Get picks the dashboard matching the caller
func (s *DashboardService) Get(ctx context.Context, actor domain.Actor) (any, error) {
	if domain.Allow(actor, []domain.Role{domain.RoleAdmin, domain.RoleCommittee}, []domain.Permission{domain.PermViewDashboard}) {
		return s.GetAdminDashboard(ctx, actor)
	}
	return s.GetResidentDashboard(ctx, actor)
}

func (s *DashboardService) engagement(ctx context.Context, actor domain.Actor, notices *[]*models.Notice, meetings *[]*MeetingView) error {
	list, _, err := s.notices.List(ctx, "", pagination.New(1, recentNotices))
	if err != nil {
		return err
	}
	*notices = list

	upcoming, err := s.meetings.List(ctx, actor, s.now().In(s.loc).Format(dateLayout))
	if err != nil {
		return err
	}
	if len(upcoming) > upcomingMeetings {
		upcoming = upcoming[:upcomingMeetings]
	}
	*meetings = upcoming
	return nil
}
