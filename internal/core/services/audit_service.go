package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/adapters/persistence/repositories"
	"residency-api/internal/core/domain"
	"residency-api/internal/pkg/logger"
	"residency-api/internal/pkg/pagination"
)

// Audit actions
const (
	ActionRegister            = "REGISTER"
	ActionApproveUser         = "APPROVE_USER"
	ActionRejectUser          = "REJECT_USER"
	ActionUpdateUser          = "UPDATE_USER"
	ActionChangePassword      = "CHANGE_PASSWORD"
	ActionCreateBuilding      = "CREATE_BUILDING"
	ActionUpdateBuilding      = "UPDATE_BUILDING"
	ActionGenerateMaintenance = "GENERATE_MAINTENANCE"
	ActionRecordPayment       = "RECORD_PAYMENT"
	ActionUpdateMaintenance   = "UPDATE_MAINTENANCE"
	ActionLockCycle           = "LOCK_CYCLE"
	ActionExportMaintenance   = "EXPORT_MAINTENANCE"
	ActionCreateExpense       = "CREATE_EXPENSE"
	ActionUpdateExpense       = "UPDATE_EXPENSE"
	ActionDeleteExpense       = "DELETE_EXPENSE"
	ActionCreateFund          = "CREATE_FUND"
	ActionContributeFund      = "CONTRIBUTE_FUND"
	ActionPostNotice          = "POST_NOTICE"
	ActionUpdateNotice        = "UPDATE_NOTICE"
	ActionScheduleMeeting     = "SCHEDULE_MEETING"
	ActionRSVPMeeting         = "RSVP_MEETING"
	ActionCreateBooking       = "CREATE_BOOKING"
	ActionConfirmBooking      = "CONFIRM_BOOKING"
	ActionRejectBooking       = "REJECT_BOOKING"
	ActionBroadcast           = "BROADCAST"
)

// Audited entities
const (
	EntityUser         = "User"
	EntityBuilding     = "Building"
	EntityMaintenance  = "Maintenance"
	EntityExpense      = "Expense"
	EntityFund         = "Fund"
	EntityNotice       = "Notice"
	EntityMeeting      = "Meeting"
	EntityBooking      = "Booking"
	EntityNotification = "Notification"
)

// AuditService appends to the audit trail
type AuditService struct {
	repo repositories.AuditRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewAuditService creates a new audit service
func NewAuditService(repo repositories.AuditRepository, log *logger.Logger) *AuditService {
	return &AuditService{
		repo: repo,
		log:  log.Component("audit"),
		now:  time.Now,
	}
}

// Record appends one entry. It is best effort: a failed write is logged and
// never fails the operation being audited.
func (s *AuditService) Record(ctx context.Context, actor domain.Actor, action, entity, entityID, details string) {
	entry := &models.AuditLog{
		EventID:   uuid.NewString(),
		Timestamp: s.now(),
		UserID:    actor.UserID,
		UserName:  actor.Name,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Details:   details,
		IPAddress: actor.IPAddress,
	}

	// the caller's request may already be finished
	if err := s.repo.Create(context.WithoutCancel(ctx), entry); err != nil {
		s.log.Error().
			Err(err).
			Str("action", action).
			Str("entity", entity).
			Str("entity_id", entityID).
			Uint("user_id", actor.UserID).
			Msg("Failed to write audit entry")
		return
	}

	s.log.Debug().
		Str("event_id", entry.EventID).
		Str("action", action).
		Str("entity", entity).
		Str("entity_id", entityID).
		Msg("Audit entry recorded")
}

// List returns audit entries newest first
func (s *AuditService) List(ctx context.Context, filter repositories.AuditFilter, params *pagination.Params) ([]*models.AuditLog, int64, error) {
	entries, total, err := s.repo.List(ctx, filter, params.Offset, params.Limit)
	if err != nil {
		return nil, 0, domain.Internal("list audit logs", err)
	}
	return entries, total, nil
}
