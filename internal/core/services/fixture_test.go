package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/adapters/persistence/repositories"
	"residency-api/internal/adapters/persistence/testdb"
	"residency-api/internal/config"
	"residency-api/internal/core/domain"
	"residency-api/internal/pkg/logger"
	"residency-api/internal/pkg/password"
)

func init() {
	password.Cost = bcrypt.MinCost
}

// fakeNotifier records what would have been posted
type fakeNotifier struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, n Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fixture struct {
	db       *gorm.DB
	now      time.Time
	cfg      *config.Config
	notifier *fakeNotifier

	users       repositories.UserRepository
	buildings   repositories.BuildingRepository
	ledger      repositories.MaintenanceRepository
	audits      repositories.AuditRepository
	auditSvc    *AuditService
	auth        *AuthService
	userSvc     *UserService
	property    *PropertyService
	maintenance *MaintenanceService
	expenses    *ExpenseService
	funds       *FundService
	notices     *NoticeService
	meetings    *MeetingService
	bookings    *BookingService
	dashboard   *DashboardService
}

var (
	admin    = domain.Actor{UserID: 1, Name: "Admin", Role: domain.RoleAdmin}
	resident = domain.Actor{UserID: 2, Name: "Asha", Role: domain.RoleResident, FlatID: "A-1-101"}
)

// newFixture wires every service over a fresh store with the clock fixed
// at 10 June 2024 10:00 UTC.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testdb.New(t)
	now := time.Date(2024, time.June, 10, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	log := logger.Nop()

	cfg := &config.Config{
		AppMode:  "dev",
		Timezone: time.UTC,
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
		Society: config.SocietyConfig{
			ApprovalPolicy: config.ApprovalAdmin,
			Penalty: domain.PenaltyPolicy{
				LateFee:          decimal.NewFromInt(100),
				DailyRatePercent: decimal.RequireFromString("0.5"),
			},
		},
		Scheduler: config.SchedulerConfig{ReminderInterval: 7 * 24 * time.Hour},
	}

	f := &fixture{
		db:        db,
		now:       now,
		cfg:       cfg,
		notifier:  &fakeNotifier{},
		users:     repositories.NewUserRepository(db),
		buildings: repositories.NewBuildingRepository(db),
		ledger:    repositories.NewMaintenanceRepository(db),
		audits:    repositories.NewAuditRepository(db),
	}
	tokens := repositories.NewRefreshTokenRepository(db)
	bookingRepo := repositories.NewBookingRepository(db)
	fundRepo := repositories.NewFundRepository(db)

	f.auditSvc = NewAuditService(f.audits, log)
	f.auditSvc.now = clock
	f.auth = NewAuthService(f.users, tokens, f.auditSvc, cfg, log)
	f.auth.now = clock
	f.userSvc = NewUserService(f.users, tokens, f.auditSvc, cfg.Society, log)
	f.userSvc.now = clock
	f.property = NewPropertyService(f.buildings, f.users, f.auditSvc)

	exporter := NewExportService(time.UTC)
	f.maintenance = NewMaintenanceService(f.ledger, f.buildings, f.users, f.auditSvc, f.notifier, exporter, cfg.Society.Penalty, time.UTC, log)
	f.maintenance.now = clock
	f.expenses = NewExpenseService(repositories.NewExpenseRepository(db), f.auditSvc, exporter, time.UTC)
	f.funds = NewFundService(fundRepo, f.auditSvc, time.UTC)
	f.funds.now = clock
	f.notices = NewNoticeService(repositories.NewNoticeRepository(db), f.auditSvc)
	f.notices.now = clock
	f.meetings = NewMeetingService(repositories.NewMeetingRepository(db), f.notifier, f.auditSvc, time.UTC, log)
	f.bookings = NewBookingService(bookingRepo, f.auditSvc, time.UTC)
	f.bookings.now = clock
	f.dashboard = NewDashboardService(f.users, fundRepo, bookingRepo, f.maintenance, f.expenses, f.notices, f.meetings, f.bookings, time.UTC)
	f.dashboard.now = clock
	return f
}

// seedBuildings adds n wings of 5 floors x 4 flats named A-1..A-n
func (f *fixture) seedBuildings(t *testing.T, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		name := "A-" + idString(uint(i))
		b := &models.Building{Name: name, Type: "2BHK", TotalFloors: 5, FlatsPerFloor: 4, HasLift: true, ParkingSpots: 20}
		require.NoError(t, f.buildings.Create(context.Background(), b))
	}
}

// seedUser stores a user with the given status and returns its id
func (f *fixture) seedUser(t *testing.T, email, pass string, role domain.Role, flat string, status domain.UserStatus) *models.User {
	t.Helper()
	hash, err := password.Hash(pass)
	require.NoError(t, err)
	u := &models.User{
		Name:          "User " + email,
		Email:         email,
		Password:      hash,
		Role:          string(role),
		Permissions:   datatypes.NewJSONType([]string{}),
		FlatID:        flat,
		OccupancyType: string(domain.OccupancyOwner),
		Status:        string(status),
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

// auditCount counts entries for an action
func (f *fixture) auditCount(t *testing.T, action string) int64 {
	t.Helper()
	_, total, err := f.audits.List(context.Background(), repositories.AuditFilter{Action: action}, 0, 100)
	require.NoError(t, err)
	return total
}
