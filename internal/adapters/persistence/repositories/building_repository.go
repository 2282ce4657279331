package repositories

import (
	"context"

	"gorm.io/gorm"

	"residency-api/internal/adapters/persistence/models"
)

type buildingRepository struct {
	db *gorm.DB
}

// NewBuildingRepository creates a new building repository
func NewBuildingRepository(db *gorm.DB) BuildingRepository {
	return &buildingRepository{db: db}
}

func (r *buildingRepository) Create(ctx context.Context, building *models.Building) error {
	return r.db.WithContext(ctx).Create(building).Error
}

func (r *buildingRepository) CreateBatch(ctx context.Context, buildings []*models.Building) error {
	return r.db.WithContext(ctx).CreateInBatches(buildings, 50).Error
}

func (r *buildingRepository) GetByID(ctx context.Context, id uint) (*models.Building, error) {
	var b models.Building
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *buildingRepository) Update(ctx context.Context, building *models.Building) error {
	return r.db.WithContext(ctx).Save(building).Error
}

// List returns every building ordered by id, which is the seeding order
func (r *buildingRepository) List(ctx context.Context) ([]*models.Building, error) {
	var buildings []*models.Building
	err := r.db.WithContext(ctx).Order("id").Find(&buildings).Error
	return buildings, err
}

func (r *buildingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Building{}).Count(&count).Error
	return count, err
}
