package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/adapters/persistence/repositories"
	"residency-api/internal/core/domain"
	"residency-api/internal/pkg/logger"
)

// ErrMeetingNotFound is returned for a missing meeting
var ErrMeetingNotFound = domain.NewError(domain.KindNotFound, "meeting not found")

// MeetingService schedules meetings and tracks attendance
type MeetingService struct {
	repo     repositories.MeetingRepository
	notifier Notifier
	audit    *AuditService
	loc      *time.Location
	log      *logger.Logger
}

// NewMeetingService creates a new meeting service
func NewMeetingService(repo repositories.MeetingRepository, notifier Notifier, audit *AuditService, loc *time.Location, log *logger.Logger) *MeetingService {
	return &MeetingService{
		repo:     repo,
		notifier: notifier,
		audit:    audit,
		loc:      loc,
		log:      log.Component("meetings"),
	}
}

// MeetingInput represents schedule meeting input
type MeetingInput struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// MeetingView is a meeting with its attendance for the caller
type MeetingView struct {
	*models.Meeting
	Attendees []uint `json:"attendees"`
	Count     int    `json:"rsvp_count"`
	Attending bool   `json:"attending"`
}

func meetingView(m *models.Meeting, userID uint) *MeetingView {
	v := &MeetingView{Meeting: m, Attendees: make([]uint, 0, len(m.RSVPs))}
	for _, r := range m.RSVPs {
		v.Attendees = append(v.Attendees, r.UserID)
		if r.UserID == userID {
			v.Attending = true
		}
	}
	v.Count = len(v.Attendees)
	return v
}

// List returns meetings on or after from (all when empty)
func (s *MeetingService) List(ctx context.Context, actor domain.Actor, from string) ([]*MeetingView, error) {
	if from != "" {
		if _, err := parseDate(from, s.loc); err != nil {
			return nil, err
		}
	}
	meetings, err := s.repo.List(ctx, from)
	if err != nil {
		return nil, domain.Internal("list meetings", err)
	}
	out := make([]*MeetingView, len(meetings))
	for i, m := range meetings {
		out[i] = meetingView(m, actor.UserID)
	}
	return out, nil
}

// Schedule creates a meeting and announces it
func (s *MeetingService) Schedule(ctx context.Context, actor domain.Actor, input *MeetingInput) (*MeetingView, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domain.Validation("title is required")
	}
	date, err := parseDate(input.Date, s.loc)
	if err != nil {
		return nil, err
	}
	at, err := parseClock(input.Time)
	if err != nil {
		return nil, err
	}
	category := domain.MeetingGeneral
	if input.Category != "" {
		category = domain.MeetingCategory(input.Category)
		if !category.Valid() {
			return nil, domain.Validation("category must be General, Urgent or Celebration")
		}
	}

	m := &models.Meeting{
		Title:       title,
		Date:        date.Format(dateLayout),
		Time:        formatClock(at),
		Location:    strings.TrimSpace(input.Location),
		Description: strings.TrimSpace(input.Description),
		Category:    string(category),
		CreatedBy:   actor.UserID,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, domain.Internal("create meeting", err)
	}

	s.audit.Record(ctx, actor, ActionScheduleMeeting, EntityMeeting, idString(m.ID),
		fmt.Sprintf("%s on %s %s", m.Title, m.Date, m.Time))

	err = s.notifier.Send(ctx, Notification{
		Event:    EventMeetingScheduled,
		Title:    m.Title,
		Message:  fmt.Sprintf("%s meeting on %s at %s, %s", m.Category, m.Date, m.Time, m.Location),
		Audience: AudienceAll,
		SentBy:   actor.Name,
	})
	if err != nil {
		// the meeting stands even if the announcement fails
		s.log.Warn().Err(err).Uint("meeting_id", m.ID).Msg("Meeting announcement failed")
	}

	return meetingView(m, actor.UserID), nil
}

// ToggleRSVP adds the caller to the meeting, or removes them if already attending
func (s *MeetingService) ToggleRSVP(ctx context.Context, actor domain.Actor, id uint) (*MeetingView, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, storeErr(err, ErrMeetingNotFound, "get meeting")
	}
	attending, err := s.repo.ToggleRSVP(ctx, id, actor.UserID)
	if err != nil {
		return nil, domain.Internal("toggle rsvp", err)
	}

	detail := "left"
	if attending {
		detail = "attending"
	}
	s.audit.Record(ctx, actor, ActionRSVPMeeting, EntityMeeting, idString(id), detail)

	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrMeetingNotFound, "get meeting")
	}
	return meetingView(m, actor.UserID), nil
}
