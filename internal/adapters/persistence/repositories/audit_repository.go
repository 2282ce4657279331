package repositories

import (
	"context"

	"gorm.io/gorm"

	"residency-api/internal/adapters/persistence/models"
)

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit log repository. There is no update
// or delete path.
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepository) filtered(ctx context.Context, filter AuditFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if filter.Entity != "" {
		q = q.Where("entity = ?", filter.Entity)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	return q
}

func (r *auditRepository) List(ctx context.Context, filter AuditFilter, offset, limit int) ([]*models.AuditLog, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []*models.AuditLog
	err := r.filtered(ctx, filter).Order("timestamp DESC, id DESC").Offset(offset).Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
