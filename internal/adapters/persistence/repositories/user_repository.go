package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/core/domain"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID gets a user by ID
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail gets a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates a user
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) filtered(ctx context.Context, filter UserFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name LIKE ? OR email LIKE ? OR flat_id LIKE ?", like, like, like)
	}
	return q
}

// List lists users with pagination, newest first
func (r *userRepository) List(ctx context.Context, filter UserFilter, offset, limit int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.filtered(ctx, filter).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ExistsByEmail checks if email exists
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// UpdateLastLogin stamps a successful login
func (r *userRepository) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login", at).Error
}

// Review finalizes a pending registration
func (r *userRepository) Review(ctx context.Context, id uint, status string, reviewerID uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND status = ?", id, string(domain.UserPending)).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_by": reviewerID,
			"reviewed_at": at,
		})
	return res.RowsAffected > 0, res.Error
}

// CountByStatus counts users per registration status
func (r *userRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// OccupancyByFlat maps flats with an approved resident to their occupancy type
func (r *userRepository) OccupancyByFlat(ctx context.Context) (map[string]string, error) {
	var rows []struct {
		FlatID        string
		OccupancyType string
	}
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("flat_id, occupancy_type").
		Where("status = ? AND flat_id <> ''", string(domain.UserApproved)).
		Order("id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byFlat := make(map[string]string, len(rows))
	for _, row := range rows {
		// first registered resident wins when a flat has several
		if _, ok := byFlat[row.FlatID]; !ok {
			byFlat[row.FlatID] = row.OccupancyType
		}
	}
	return byFlat, nil
}
