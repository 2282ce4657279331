package repositories

import (
	"context"

	"gorm.io/gorm"

	"residency-api/internal/adapters/persistence/models"
)

type noticeRepository struct {
	db *gorm.DB
}

// NewNoticeRepository creates a new notice repository
func NewNoticeRepository(db *gorm.DB) NoticeRepository {
	return &noticeRepository{db: db}
}

func (r *noticeRepository) Create(ctx context.Context, notice *models.Notice) error {
	return r.db.WithContext(ctx).Create(notice).Error
}

func (r *noticeRepository) GetByID(ctx context.Context, id uint) (*models.Notice, error) {
	var n models.Notice
	if err := r.db.WithContext(ctx).Preload("Author").First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *noticeRepository) Update(ctx context.Context, notice *models.Notice) error {
	return r.db.WithContext(ctx).Omit("Author").Save(notice).Error
}

// List returns notices newest first
func (r *noticeRepository) List(ctx context.Context, category string, offset, limit int) ([]*models.Notice, int64, error) {
	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Notice{})
		if category != "" {
			q = q.Where("category = ?", category)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notices []*models.Notice
	err := query().Preload("Author").
		Order("date DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&notices).Error
	if err != nil {
		return nil, 0, err
	}
	return notices, total, nil
}
