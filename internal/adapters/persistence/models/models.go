package models

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"residency-api/internal/core/domain"
)

// ============================================================
// Identity
// ============================================================

// User represents users table. Accounts are never hard-deleted.
type User struct {
	ID            uint                         `gorm:"primaryKey" json:"id"`
	Name          string                       `gorm:"size:100;not null" json:"name"`
	Email         string                       `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password      string                       `gorm:"size:255;not null" json:"-"`
	Role          string                       `gorm:"size:20;not null;default:'RESIDENT';index" json:"role"`
	Permissions   datatypes.JSONType[[]string] `json:"permissions"`
	FlatID        string                       `gorm:"size:20;index" json:"flat_id"`
	OccupancyType string                       `gorm:"size:10;default:'Owner'" json:"occupancy_type"`
	Phone         string                       `gorm:"size:20" json:"phone"`
	Position      string                       `gorm:"size:50" json:"position"`
	Status        string                       `gorm:"size:10;not null;default:'PENDING';index" json:"status"`
	LastLogin     *time.Time                   `json:"last_login"`
	ReviewedBy    *uint                        `json:"reviewed_by"`
	ReviewedAt    *time.Time                   `json:"reviewed_at"`
	CreatedAt     time.Time                    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time                    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Overrides returns the per-user permission overrides as known permissions
func (u *User) Overrides() []domain.Permission {
	return domain.ParseOverrides(u.Permissions.Data())
}

// Actor resolves the user into a request identity
func (u *User) Actor() domain.Actor {
	return domain.Actor{
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      domain.Role(u.Role),
		FlatID:    u.FlatID,
		Overrides: u.Overrides(),
	}
}

// UserResponse DTO
type UserResponse struct {
	ID            uint       `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	Permissions   []string   `json:"permissions"`
	FlatID        string     `json:"flat_id"`
	OccupancyType string     `json:"occupancy_type"`
	Phone         string     `json:"phone,omitempty"`
	Position      string     `json:"position,omitempty"`
	Status        string     `json:"status"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	perms := u.Actor().Permissions()
	list := make([]string, 0, len(perms))
	for p := range perms {
		list = append(list, string(p))
	}
	slices.Sort(list)
	return &UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		Permissions:   list,
		FlatID:        u.FlatID,
		OccupancyType: u.OccupancyType,
		Phone:         u.Phone,
		Position:      u.Position,
		Status:        u.Status,
		LastLogin:     u.LastLogin,
		CreatedAt:     u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Property
// ============================================================

// Building represents a wing of the society
type Building struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"uniqueIndex;size:20;not null" json:"name"`
	Type          string    `gorm:"size:10;not null" json:"type"`
	TotalFloors   int       `gorm:"not null;default:5" json:"total_floors"`
	FlatsPerFloor int       `gorm:"not null;default:4" json:"flats_per_floor"`
	HasLift       bool      `gorm:"default:true" json:"has_lift"`
	ParkingSpots  int       `gorm:"default:20" json:"parking_spots"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Building) TableName() string {
	return "buildings"
}

// Layout returns the part of the building that determines its units
func (b *Building) Layout() domain.BuildingLayout {
	return domain.BuildingLayout{
		Name:          b.Name,
		TotalFloors:   b.TotalFloors,
		FlatsPerFloor: b.FlatsPerFloor,
	}
}

// ============================================================
// Maintenance Ledger
// ============================================================

// MaintenanceRecord is one unit's dues for one billing period
type MaintenanceRecord struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	FlatID           string          `gorm:"size:20;not null;uniqueIndex:idx_maintenance_period,priority:1" json:"flat_id"`
	Month            string          `gorm:"size:12;not null;uniqueIndex:idx_maintenance_period,priority:2" json:"month"`
	Year             int             `gorm:"not null;uniqueIndex:idx_maintenance_period,priority:3" json:"year"`
	Amount           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status           string          `gorm:"size:10;not null;default:'Pending';index" json:"status"`
	OccupancyType    string          `gorm:"size:10;not null;default:'Owner'" json:"occupancy_type"`
	PaidDate         *time.Time      `json:"paid_date"`
	PenaltyPaid      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"penalty_paid"`
	LastReminderSent *time.Time      `json:"last_reminder_sent"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MaintenanceRecord) TableName() string {
	return "maintenance_records"
}

// Period returns the billing period of the record
func (m *MaintenanceRecord) Period() domain.Period {
	month, _ := domain.ParseMonth(m.Month)
	return domain.Period{Month: month, Year: m.Year}
}

// MaintenanceLock marks a billing period as closed for payments
type MaintenanceLock struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Month    string    `gorm:"size:12;not null;uniqueIndex:idx_lock_period,priority:1" json:"month"`
	Year     int       `gorm:"not null;uniqueIndex:idx_lock_period,priority:2" json:"year"`
	LockedBy uint      `json:"locked_by"`
	LockedAt time.Time `gorm:"autoCreateTime" json:"locked_at"`
}

func (MaintenanceLock) TableName() string {
	return "maintenance_locks"
}

// MaintenanceResponse is a record with its derived status and dues
type MaintenanceResponse struct {
	ID            uint            `json:"id"`
	FlatID        string          `json:"flat_id"`
	Month         string          `json:"month"`
	Year          int             `json:"year"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	IsOverdue     bool            `json:"is_overdue"`
	DaysLate      int             `json:"days_late"`
	DueAt         time.Time       `json:"due_at"`
	Penalty       decimal.Decimal `json:"penalty"`
	Total         decimal.Decimal `json:"total"`
	PenaltyPaid   decimal.Decimal `json:"penalty_paid"`
	OccupancyType string          `json:"occupancy_type"`
	PaidDate      *time.Time      `json:"paid_date"`
	Locked        bool            `json:"locked"`
	AlreadyPaid   bool            `json:"already_paid,omitempty"`
}

// ToResponse combines the stored record with its read-time assessment
func (m *MaintenanceRecord) ToResponse(a domain.Assessment, locked bool) *MaintenanceResponse {
	return &MaintenanceResponse{
		ID:            m.ID,
		FlatID:        m.FlatID,
		Month:         m.Month,
		Year:          m.Year,
		Amount:        m.Amount,
		Status:        string(a.Status),
		IsOverdue:     a.IsOverdue,
		DaysLate:      a.DaysLate,
		DueAt:         a.DueAt,
		Penalty:       a.Penalty,
		Total:         a.Total,
		PenaltyPaid:   m.PenaltyPaid,
		OccupancyType: m.OccupancyType,
		PaidDate:      m.PaidDate,
		Locked:        locked,
	}
}

// ============================================================
// Ancillary Ledgers
// ============================================================

// ExpenseDetails holds type-specific expense fields
type ExpenseDetails struct {
	BuildingName string `json:"building_name,omitempty"`
	GateNumber   string `json:"gate_number,omitempty"`
	Shift        string `json:"shift,omitempty"`
	Remarks      string `json:"remarks,omitempty"`
}

// Expense represents expenses table
type Expense struct {
	ID        uint                               `gorm:"primaryKey" json:"id"`
	Type      string                             `gorm:"size:20;not null;index" json:"type"`
	PayeeName string                             `gorm:"size:100;not null" json:"payee_name"`
	Amount    decimal.Decimal                    `gorm:"type:decimal(12,2);not null" json:"amount"`
	Date      time.Time                          `gorm:"not null;index" json:"date"`
	Status    string                             `gorm:"size:10;not null;default:'Pending'" json:"status"`
	Details   datatypes.JSONType[ExpenseDetails] `json:"details"`
	CreatedBy uint                               `json:"created_by"`
	CreatedAt time.Time                          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time                          `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt                     `gorm:"index" json:"-"`
}

func (Expense) TableName() string {
	return "expenses"
}

// Fund is a targeted collection drive
type Fund struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Purpose        string          `gorm:"size:200;not null" json:"purpose"`
	Date           time.Time       `gorm:"not null" json:"date"`
	TargetAmount   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"target_amount"`
	TotalCollected decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total_collected"`
	Status         string          `gorm:"size:10;not null;default:'Active';index" json:"status"`
	CreatedBy      uint            `json:"created_by"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Fund) TableName() string {
	return "funds"
}

// FundContribution is one payment into a fund
type FundContribution struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	FundID    uint            `gorm:"not null;index" json:"fund_id"`
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	FlatID    string          `gorm:"size:20" json:"flat_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Note      string          `gorm:"size:255" json:"note"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (FundContribution) TableName() string {
	return "fund_contributions"
}

// ============================================================
// Scheduling & Engagement
// ============================================================

// Notice represents notices table
type Notice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Category  string    `gorm:"size:10;not null;default:'General'" json:"category"`
	AuthorID  uint      `gorm:"not null" json:"author_id"`
	Date      time.Time `gorm:"not null;index" json:"date"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (Notice) TableName() string {
	return "notices"
}

// Meeting represents meetings table
type Meeting struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Date        string    `gorm:"size:10;not null;index" json:"date"`
	Time        string    `gorm:"size:5;not null" json:"time"`
	Location    string    `gorm:"size:200" json:"location"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"size:12;not null;default:'General'" json:"category"`
	CreatedBy   uint      `json:"created_by"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	RSVPs []MeetingRSVP `gorm:"foreignKey:MeetingID" json:"rsvps,omitempty"`
}

func (Meeting) TableName() string {
	return "meetings"
}

// MeetingRSVP is one attendee of a meeting
type MeetingRSVP struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MeetingID uint      `gorm:"not null;uniqueIndex:idx_rsvp_member,priority:1" json:"meeting_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_rsvp_member,priority:2" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (MeetingRSVP) TableName() string {
	return "meeting_rsvps"
}

// AmenityBooking is a facility reservation awaiting or past review
type AmenityBooking struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	FacilityID string     `gorm:"size:50;not null;index" json:"facility_id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	UserName   string     `gorm:"size:100" json:"user_name"`
	UnitNumber string     `gorm:"size:20" json:"unit_number"`
	Date       string     `gorm:"size:10;not null;index" json:"date"`
	StartTime  string     `gorm:"size:5;not null" json:"start_time"`
	EndTime    string     `gorm:"size:5;not null" json:"end_time"`
	Purpose    string     `gorm:"size:255" json:"purpose"`
	Attendees  int        `json:"attendees"`
	IsPublic   bool       `gorm:"default:false" json:"is_public"`
	Status     string     `gorm:"size:10;not null;default:'Pending';index" json:"status"`
	ReviewedBy *uint      `json:"reviewed_by"`
	ReviewedAt *time.Time `json:"reviewed_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AmenityBooking) TableName() string {
	return "amenity_bookings"
}

// ============================================================
// Audit
// ============================================================

// AuditLog is an append-only trail entry
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   string    `gorm:"size:36;uniqueIndex;not null" json:"event_id"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	UserID    uint      `gorm:"index" json:"user_id"`
	UserName  string    `gorm:"size:100" json:"user_name"`
	Action    string    `gorm:"size:50;not null;index" json:"action"`
	Entity    string    `gorm:"size:50;not null;index" json:"entity"`
	EntityID  string    `gorm:"size:50" json:"entity_id"`
	Details   string    `gorm:"type:text" json:"details"`
	IPAddress string    `gorm:"size:45" json:"ip_address"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate creates or updates every table
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Building{},
		&MaintenanceRecord{},
		&MaintenanceLock{},
		&Expense{},
		&Fund{},
		&FundContribution{},
		&Notice{},
		&Meeting{},
		&MeetingRSVP{},
		&AmenityBooking{},
		&AuditLog{},
	)
}
