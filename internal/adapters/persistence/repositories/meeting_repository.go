package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"residency-api/internal/adapters/persistence/models"
)

type meetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) MeetingRepository {
	return &meetingRepository{db: db}
}

func (r *meetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	return r.db.WithContext(ctx).Omit("RSVPs").Create(meeting).Error
}

func (r *meetingRepository) GetByID(ctx context.Context, id uint) (*models.Meeting, error) {
	var m models.Meeting
	if err := r.db.WithContext(ctx).Preload("RSVPs").First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns meetings on or after fromDate (all when empty), soonest first
func (r *meetingRepository) List(ctx context.Context, fromDate string) ([]*models.Meeting, error) {
	q := r.db.WithContext(ctx).Preload("RSVPs")
	if fromDate != "" {
		q = q.Where("date >= ?", fromDate)
	}
	var meetings []*models.Meeting
	err := q.Order("date, time, id").Find(&meetings).Error
	return meetings, err
}

// ToggleRSVP relies on the (meeting_id, user_id) unique index so a double
// submit never adds the member twice.
func (r *meetingRepository) ToggleRSVP(ctx context.Context, meetingID, userID uint) (bool, error) {
	attending := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("meeting_id = ? AND user_id = ?", meetingID, userID).Delete(&models.MeetingRSVP{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		attending = true
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.MeetingRSVP{MeetingID: meetingID, UserID: userID}).Error
	})
	return attending, err
}
