package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/core/domain"
)

// ErrSlotOverlap is returned by Confirm when a confirmed booking of the same
// facility and date clashes with the slot.
var ErrSlotOverlap = errors.New("overlapping confirmed booking")

type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new amenity booking repository
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, booking *models.AmenityBooking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) GetByID(ctx context.Context, id uint) (*models.AmenityBooking, error) {
	var b models.AmenityBooking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) List(ctx context.Context, filter BookingFilter) ([]*models.AmenityBooking, error) {
	q := r.db.WithContext(ctx).Model(&models.AmenityBooking{})
	if filter.VisibleTo != 0 {
		q = q.Where("user_id = ? OR (is_public = ? AND status = ?)", filter.VisibleTo, true, string(domain.BookingConfirmed))
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Date != "" {
		q = q.Where("date = ?", filter.Date)
	}
	if filter.Facility != "" {
		q = q.Where("facility_id = ?", filter.Facility)
	}

	var bookings []*models.AmenityBooking
	err := q.Order("date DESC, start_time, id").Find(&bookings).Error
	return bookings, err
}

// Transition only matches Pending rows, so a finalized booking is never
// changed even under concurrent review.
func (r *bookingRepository) Transition(ctx context.Context, id uint, status string, reviewerID uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.AmenityBooking{}).
		Where("id = ? AND status = ?", id, string(domain.BookingPending)).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_by": reviewerID,
			"reviewed_at": at,
		})
	return res.RowsAffected > 0, res.Error
}

// Confirm locks every booking of the facility on that date before checking
// for a clash, so two reviewers confirming overlapping slots are serialized.
func (r *bookingRepository) Confirm(ctx context.Context, b *models.AmenityBooking, reviewerID uint, at time.Time, clash func(a, b *models.AmenityBooking) bool) (bool, error) {
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sameDay []*models.AmenityBooking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("facility_id = ? AND date = ?", b.FacilityID, b.Date).
			Order("id").
			Find(&sameDay).Error; err != nil {
			return err
		}
		for _, other := range sameDay {
			if other.Status == string(domain.BookingConfirmed) && clash(b, other) {
				return ErrSlotOverlap
			}
		}

		res := tx.Model(&models.AmenityBooking{}).
			Where("id = ? AND status = ?", b.ID, string(domain.BookingPending)).
			Updates(map[string]interface{}{
				"status":      string(domain.BookingConfirmed),
				"reviewed_by": reviewerID,
				"reviewed_at": at,
			})
		changed = res.RowsAffected > 0
		return res.Error
	})
	return changed, err
}

func (r *bookingRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AmenityBooking{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
