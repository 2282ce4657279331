package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"residency-api/internal/adapters/persistence/models"
)

// UserFilter narrows user listings
type UserFilter struct {
	Status string
	Role   string
	Search string
}

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, filter UserFilter, offset, limit int) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
	// Review moves a PENDING user to status. It reports false when the user
	// was no longer pending.
	Review(ctx context.Context, id uint, status string, reviewerID uint, at time.Time) (bool, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	// OccupancyByFlat maps each flat with an approved resident to its occupancy type
	OccupancyByFlat(ctx context.Context) (map[string]string, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
	CountActiveByUserID(ctx context.Context, userID uint) (int64, error)
}

// BuildingRepository defines building repository interface
type BuildingRepository interface {
	Create(ctx context.Context, building *models.Building) error
	CreateBatch(ctx context.Context, buildings []*models.Building) error
	GetByID(ctx context.Context, id uint) (*models.Building, error)
	Update(ctx context.Context, building *models.Building) error
	List(ctx context.Context) ([]*models.Building, error)
	Count(ctx context.Context) (int64, error)
}

// MaintenanceFilter narrows maintenance listings. Status is matched against
// the stored value; derived overdue filtering happens in the service.
type MaintenanceFilter struct {
	FlatID        string
	Month         string
	Year          int
	Status        string
	ExcludeStatus string
}

// MaintenanceRepository defines the maintenance ledger store
type MaintenanceRepository interface {
	// CreateBatch inserts records, skipping any (flat, month, year) that
	// already exists, and returns how many rows were created.
	CreateBatch(ctx context.Context, records []*models.MaintenanceRecord) (int64, error)
	GetByID(ctx context.Context, id uint) (*models.MaintenanceRecord, error)
	List(ctx context.Context, filter MaintenanceFilter) ([]*models.MaintenanceRecord, error)
	// MarkPaid sets the record Paid unless it is already Paid or its period
	// is locked. It reports whether the row changed.
	MarkPaid(ctx context.Context, id uint, paidAt time.Time, penalty decimal.Decimal) (bool, error)
	// Reopen moves a record back to status, clearing payment, unless its
	// period is locked.
	Reopen(ctx context.Context, id uint, status string) (bool, error)
	Lock(ctx context.Context, lock *models.MaintenanceLock) (bool, error)
	IsLocked(ctx context.Context, month string, year int) (bool, error)
	ListLocks(ctx context.Context) ([]*models.MaintenanceLock, error)
	// ReminderCandidates returns unpaid records not reminded since cutoff
	ReminderCandidates(ctx context.Context, cutoff time.Time) ([]*models.MaintenanceRecord, error)
	StampReminder(ctx context.Context, ids []uint, at time.Time) error
}

// ExpenseFilter narrows expense listings
type ExpenseFilter struct {
	Type   string
	Status string
	From   *time.Time
	To     *time.Time
}

// ExpenseRepository defines expense repository interface
type ExpenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) error
	GetByID(ctx context.Context, id uint) (*models.Expense, error)
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter ExpenseFilter, offset, limit int) ([]*models.Expense, int64, error)
	Sum(ctx context.Context, filter ExpenseFilter) (decimal.Decimal, error)
}

// FundRepository defines fund repository interface
type FundRepository interface {
	Create(ctx context.Context, fund *models.Fund) error
	GetByID(ctx context.Context, id uint) (*models.Fund, error)
	List(ctx context.Context) ([]*models.Fund, error)
	// Contribute records c and increments the fund in one transaction,
	// returning the updated fund.
	Contribute(ctx context.Context, c *models.FundContribution) (*models.Fund, error)
	ListContributions(ctx context.Context, fundID uint) ([]*models.FundContribution, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// NoticeRepository defines notice repository interface
type NoticeRepository interface {
	Create(ctx context.Context, notice *models.Notice) error
	GetByID(ctx context.Context, id uint) (*models.Notice, error)
	Update(ctx context.Context, notice *models.Notice) error
	List(ctx context.Context, category string, offset, limit int) ([]*models.Notice, int64, error)
}

// MeetingRepository defines meeting repository interface
type MeetingRepository interface {
	Create(ctx context.Context, meeting *models.Meeting) error
	GetByID(ctx context.Context, id uint) (*models.Meeting, error)
	List(ctx context.Context, fromDate string) ([]*models.Meeting, error)
	// ToggleRSVP removes the user's RSVP if present, otherwise adds it.
	// It reports whether the user is attending afterwards.
	ToggleRSVP(ctx context.Context, meetingID, userID uint) (bool, error)
}

// BookingFilter narrows booking listings
type BookingFilter struct {
	// VisibleTo limits results to the user's own bookings plus public confirmed ones
	VisibleTo uint
	Status    string
	Date      string
	Facility  string
}

// BookingRepository defines amenity booking repository interface
type BookingRepository interface {
	Create(ctx context.Context, booking *models.AmenityBooking) error
	GetByID(ctx context.Context, id uint) (*models.AmenityBooking, error)
	List(ctx context.Context, filter BookingFilter) ([]*models.AmenityBooking, error)
	// Transition moves a Pending booking to status. It reports false when
	// the booking was already finalized.
	Transition(ctx context.Context, id uint, status string, reviewerID uint, at time.Time) (bool, error)
	// Confirm checks clash against the confirmed bookings of the same
	// facility and date and confirms b in the same transaction.
	Confirm(ctx context.Context, b *models.AmenityBooking, reviewerID uint, at time.Time, clash func(a, b *models.AmenityBooking) bool) (bool, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// AuditFilter narrows audit log listings
type AuditFilter struct {
	Entity string
	Action string
	UserID uint
}

// AuditRepository is append-only
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter AuditFilter, offset, limit int) ([]*models.AuditLog, int64, error)
}
