package repositories

import (
	"context"

	"gorm.io/gorm"

	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/core/domain"
)

type fundRepository struct {
	db *gorm.DB
}

// NewFundRepository creates a new fund repository
func NewFundRepository(db *gorm.DB) FundRepository {
	return &fundRepository{db: db}
}

func (r *fundRepository) Create(ctx context.Context, fund *models.Fund) error {
	return r.db.WithContext(ctx).Create(fund).Error
}

func (r *fundRepository) GetByID(ctx context.Context, id uint) (*models.Fund, error) {
	var f models.Fund
	if err := r.db.WithContext(ctx).First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// List returns active funds first, then by date
func (r *fundRepository) List(ctx context.Context) ([]*models.Fund, error) {
	var funds []*models.Fund
	err := r.db.WithContext(ctx).Order("status, date DESC, id DESC").Find(&funds).Error
	return funds, err
}

// Contribute increments the collected total in the store so concurrent
// contributions never lose an update; the status flips once the target is met.
func (r *fundRepository) Contribute(ctx context.Context, c *models.FundContribution) (*models.Fund, error) {
	var fund models.Fund
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Fund{}).
			Where("id = ?", c.FundID).
			Update("total_collected", gorm.Expr("total_collected + ?", c.Amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Create(c).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Fund{}).
			Where("id = ? AND status <> ? AND total_collected >= target_amount", c.FundID, string(domain.FundCompleted)).
			Update("status", string(domain.FundCompleted)).Error; err != nil {
			return err
		}

		return tx.First(&fund, c.FundID).Error
	})
	if err != nil {
		return nil, err
	}
	return &fund, nil
}

func (r *fundRepository) ListContributions(ctx context.Context, fundID uint) ([]*models.FundContribution, error) {
	var list []*models.FundContribution
	err := r.db.WithContext(ctx).
		Where("fund_id = ?", fundID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

func (r *fundRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Fund{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
