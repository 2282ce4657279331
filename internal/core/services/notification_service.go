package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"residency-api/internal/config"
	"residency-api/internal/core/domain"
	"residency-api/internal/pkg/logger"
)

// Notification is the payload posted to the broadcast webhook
type Notification struct {
	Event    string    `json:"event"`
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Audience string    `json:"audience"`
	Targets  []string  `json:"targets,omitempty"`
	SentBy   string    `json:"sent_by"`
	SentAt   time.Time `json:"sent_at"`
}

// Notifier delivers notifications to residents
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// Notification events
const (
	EventBroadcast          = "broadcast"
	EventMeetingScheduled   = "meeting.scheduled"
	EventMaintenanceOverdue = "maintenance.overdue"
)

// Broadcast audiences
const (
	AudienceAll       = "ALL"
	AudienceResidents = "RESIDENTS"
	AudienceCommittee = "COMMITTEE"
	AudienceStaff     = "STAFF"
)

var audiences = map[string]bool{
	AudienceAll:       true,
	AudienceResidents: true,
	AudienceCommittee: true,
	AudienceStaff:     true,
}

// NotificationService posts notifications to the configured webhook
type NotificationService struct {
	cfg   config.NotifyConfig
	audit *AuditService
	log   *logger.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(cfg config.NotifyConfig, audit *AuditService, log *logger.Logger) *NotificationService {
	return &NotificationService{
		cfg:   cfg,
		audit: audit,
		log:   log.Component("notify"),
	}
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.cfg.Enabled()
}

// Send posts n to the webhook. Without a webhook it only logs.
func (s *NotificationService) Send(ctx context.Context, n Notification) error {
	if n.SentAt.IsZero() {
		n.SentAt = time.Now()
	}
	if !s.IsEnabled() {
		s.log.Info().Str("event", n.Event).Str("title", n.Title).Msg("Webhook not configured, notification skipped")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	agent := fiber.Post(s.cfg.WebhookURL)
	agent.Timeout(s.cfg.Timeout)
	if s.cfg.Token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+s.cfg.Token)
	}
	agent.JSON(n)
	if err := agent.Parse(); err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("webhook request failed: %w", errs[0])
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("webhook returned %d: %s", code, truncate(string(body), 200))
	}

	s.log.Info().Str("event", n.Event).Int("status", code).Msg("Notification delivered")
	return nil
}

// BroadcastInput represents a broadcast request
type BroadcastInput struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Audience string `json:"audience"`
}

// BroadcastResult reports what happened to a broadcast
type BroadcastResult struct {
	Delivered bool      `json:"delivered"`
	Audience  string    `json:"audience"`
	SentAt    time.Time `json:"sent_at"`
}

// Broadcast sends an announcement on behalf of actor
func (s *NotificationService) Broadcast(ctx context.Context, actor domain.Actor, input *BroadcastInput) (*BroadcastResult, error) {
	title := strings.TrimSpace(input.Title)
	message := strings.TrimSpace(input.Message)
	if title == "" || message == "" {
		return nil, domain.Validation("title and message are required")
	}
	audience := strings.ToUpper(strings.TrimSpace(input.Audience))
	if audience == "" {
		audience = AudienceAll
	}
	if !audiences[audience] {
		return nil, domain.Validation("audience must be one of ALL, RESIDENTS, COMMITTEE, STAFF")
	}

	n := Notification{
		Event:    EventBroadcast,
		Title:    title,
		Message:  message,
		Audience: audience,
		SentBy:   actor.Name,
		SentAt:   time.Now(),
	}
	if err := s.Send(ctx, n); err != nil {
		s.log.Error().Err(err).Str("title", title).Msg("Broadcast failed")
		return nil, domain.Internal("broadcast", err)
	}

	s.audit.Record(ctx, actor, ActionBroadcast, EntityNotification, "", fmt.Sprintf("%s to %s", title, audience))

	return &BroadcastResult{
		Delivered: s.IsEnabled(),
		Audience:  audience,
		SentAt:    n.SentAt,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
