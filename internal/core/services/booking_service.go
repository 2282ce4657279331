package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/adapters/persistence/repositories"
	"residency-api/internal/core/domain"
)

// Booking errors
var (
	ErrBookingNotFound  = domain.NewError(domain.KindNotFound, "booking not found")
	ErrBookingFinalized = domain.NewError(domain.KindState, "booking already finalized")
	ErrSlotTaken        = domain.NewError(domain.KindState, "facility already booked for an overlapping slot")
)

// BookingService runs the amenity booking approval workflow
type BookingService struct {
	repo  repositories.BookingRepository
	audit *AuditService
	loc   *time.Location
	now   func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(repo repositories.BookingRepository, audit *AuditService, loc *time.Location) *BookingService {
	return &BookingService{repo: repo, audit: audit, loc: loc, now: time.Now}
}

// BookingInput represents a booking request
type BookingInput struct {
	FacilityID string `json:"facility_id"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Purpose    string `json:"purpose"`
	Attendees  int    `json:"attendees"`
	IsPublic   bool   `json:"is_public"`
}

// BookingQuery filters a booking listing
type BookingQuery struct {
	Status   string
	Date     string
	Facility string
}

// canReviewBookings reports whether the actor confirms or rejects bookings
func canReviewBookings(a domain.Actor) bool {
	return domain.Allow(a, []domain.Role{domain.RoleAdmin, domain.RoleCommittee}, nil)
}

// List returns every booking to reviewers, otherwise the caller's own
// bookings plus confirmed public ones.
func (s *BookingService) List(ctx context.Context, actor domain.Actor, q BookingQuery) ([]*models.AmenityBooking, error) {
	filter := repositories.BookingFilter{
		Status:   q.Status,
		Date:     q.Date,
		Facility: q.Facility,
	}
	if !canReviewBookings(actor) {
		filter.VisibleTo = actor.UserID
	}
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, domain.Internal("list bookings", err)
	}
	return list, nil
}

// Create files a Pending booking for the caller
func (s *BookingService) Create(ctx context.Context, actor domain.Actor, input *BookingInput) (*models.AmenityBooking, error) {
	facility := strings.TrimSpace(input.FacilityID)
	if facility == "" {
		return nil, domain.Validation("facility_id is required")
	}
	date, err := parseDate(input.Date, s.loc)
	if err != nil {
		return nil, err
	}
	start, err := parseClock(input.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := parseClock(input.EndTime)
	if err != nil {
		return nil, err
	}
	if start >= end {
		return nil, domain.Validation("start_time must be before end_time")
	}
	today := s.now().In(s.loc).Format(dateLayout)
	if date.Format(dateLayout) < today {
		return nil, domain.Validation("date cannot be in the past")
	}
	if input.Attendees < 0 {
		return nil, domain.Validation("attendees cannot be negative")
	}

	b := &models.AmenityBooking{
		FacilityID: facility,
		UserID:     actor.UserID,
		UserName:   actor.Name,
		UnitNumber: actor.FlatID,
		Date:       date.Format(dateLayout),
		StartTime:  formatClock(start),
		EndTime:    formatClock(end),
		Purpose:    strings.TrimSpace(input.Purpose),
		Attendees:  input.Attendees,
		IsPublic:   input.IsPublic,
		Status:     string(domain.BookingPending),
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, domain.Internal("create booking", err)
	}

	s.audit.Record(ctx, actor, ActionCreateBooking, EntityBooking, idString(b.ID),
		fmt.Sprintf("%s on %s %s-%s status %s", b.FacilityID, b.Date, b.StartTime, b.EndTime, b.Status))
	return b, nil
}

// Confirm approves a Pending booking. A slot overlapping an already
// confirmed booking of the same facility is refused.
func (s *BookingService) Confirm(ctx context.Context, actor domain.Actor, id uint) (*models.AmenityBooking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrBookingNotFound, "get booking")
	}
	if domain.BookingStatus(b.Status).IsTerminal() {
		return nil, ErrBookingFinalized
	}

	at := s.now()
	changed, err := s.repo.Confirm(ctx, b, actor.UserID, at, overlaps)
	if errors.Is(err, repositories.ErrSlotOverlap) {
		return nil, ErrSlotTaken
	}
	if err != nil {
		return nil, domain.Internal("confirm booking", err)
	}
	if !changed {
		return nil, ErrBookingFinalized
	}
	return s.reviewed(ctx, actor, b, domain.BookingConfirmed, at, ActionConfirmBooking), nil
}

// Reject declines a Pending booking
func (s *BookingService) Reject(ctx context.Context, actor domain.Actor, id uint) (*models.AmenityBooking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrBookingNotFound, "get booking")
	}
	return s.transition(ctx, actor, b, domain.BookingRejected, ActionRejectBooking)
}

func (s *BookingService) transition(ctx context.Context, actor domain.Actor, b *models.AmenityBooking, to domain.BookingStatus, action string) (*models.AmenityBooking, error) {
	at := s.now()
	changed, err := s.repo.Transition(ctx, b.ID, string(to), actor.UserID, at)
	if err != nil {
		return nil, domain.Internal("update booking", err)
	}
	if !changed {
		return nil, ErrBookingFinalized
	}
	return s.reviewed(ctx, actor, b, to, at, action), nil
}

func (s *BookingService) reviewed(ctx context.Context, actor domain.Actor, b *models.AmenityBooking, to domain.BookingStatus, at time.Time, action string) *models.AmenityBooking {
	b.Status = string(to)
	b.ReviewedBy = &actor.UserID
	b.ReviewedAt = &at

	s.audit.Record(ctx, actor, action, EntityBooking, idString(b.ID), "status "+string(to))
	return b
}

// overlaps compares slots on the same day by minutes since midnight.
// Unparseable slots count as clashing.
func overlaps(a, b *models.AmenityBooking) bool {
	if a.ID == b.ID {
		return false
	}
	aStart, err1 := parseClock(a.StartTime)
	aEnd, err2 := parseClock(a.EndTime)
	bStart, err3 := parseClock(b.StartTime)
	bEnd, err4 := parseClock(b.EndTime)
	if errors.Join(err1, err2, err3, err4) != nil {
		return true
	}
	return aStart < bEnd && bStart < aEnd
}
