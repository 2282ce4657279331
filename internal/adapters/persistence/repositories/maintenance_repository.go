package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/core/domain"
)

const maintenanceBatchSize = 200

type maintenanceRepository struct {
	db *gorm.DB
}

// NewMaintenanceRepository creates a new maintenance ledger repository
func NewMaintenanceRepository(db *gorm.DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

// CreateBatch relies on the (flat_id, month, year) unique index; existing
// rows are skipped by the store, so concurrent generation cannot duplicate.
func (r *maintenanceRepository) CreateBatch(ctx context.Context, records []*models.MaintenanceRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(records, maintenanceBatchSize)
	return res.RowsAffected, res.Error
}

func (r *maintenanceRepository) GetByID(ctx context.Context, id uint) (*models.MaintenanceRecord, error) {
	var rec models.MaintenanceRecord
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *maintenanceRepository) List(ctx context.Context, filter MaintenanceFilter) ([]*models.MaintenanceRecord, error) {
	q := r.db.WithContext(ctx).Model(&models.MaintenanceRecord{})
	if filter.FlatID != "" {
		q = q.Where("flat_id = ?", filter.FlatID)
	}
	if filter.Month != "" {
		q = q.Where("month = ?", filter.Month)
	}
	if filter.Year != 0 {
		q = q.Where("year = ?", filter.Year)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ExcludeStatus != "" {
		q = q.Where("status <> ?", filter.ExcludeStatus)
	}

	var records []*models.MaintenanceRecord
	err := q.Order("year DESC, flat_id, id").Find(&records).Error
	return records, err
}

// lockOf is a correlated subquery matching the lock row of the outer record
func (r *maintenanceRepository) lockOf() *gorm.DB {
	return r.db.Model(&models.MaintenanceLock{}).
		Select("1").
		Where("maintenance_locks.month = maintenance_records.month").
		Where("maintenance_locks.year = maintenance_records.year")
}

// MarkPaid is a single conditional statement so a concurrent lock or
// payment is never overridden.
func (r *maintenanceRepository) MarkPaid(ctx context.Context, id uint, paidAt time.Time, penalty decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.MaintenanceRecord{}).
		Where("id = ? AND status <> ?", id, string(domain.PaymentPaid)).
		Where("NOT EXISTS (?)", r.lockOf()).
		Updates(map[string]interface{}{
			"status":       string(domain.PaymentPaid),
			"paid_date":    paidAt,
			"penalty_paid": penalty,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *maintenanceRepository) Reopen(ctx context.Context, id uint, status string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.MaintenanceRecord{}).
		Where("id = ?", id).
		Where("NOT EXISTS (?)", r.lockOf()).
		Updates(map[string]interface{}{
			"status":       status,
			"paid_date":    nil,
			"penalty_paid": decimal.Zero,
		})
	return res.RowsAffected > 0, res.Error
}

// Lock inserts the lock row if absent. It reports whether this call created it.
func (r *maintenanceRepository) Lock(ctx context.Context, lock *models.MaintenanceLock) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(lock)
	return res.RowsAffected > 0, res.Error
}

func (r *maintenanceRepository) IsLocked(ctx context.Context, month string, year int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MaintenanceLock{}).
		Where("month = ? AND year = ?", month, year).
		Count(&count).Error
	return count > 0, err
}

func (r *maintenanceRepository) ListLocks(ctx context.Context) ([]*models.MaintenanceLock, error) {
	var locks []*models.MaintenanceLock
	err := r.db.WithContext(ctx).Order("year DESC, locked_at DESC").Find(&locks).Error
	return locks, err
}

func (r *maintenanceRepository) ReminderCandidates(ctx context.Context, cutoff time.Time) ([]*models.MaintenanceRecord, error) {
	var records []*models.MaintenanceRecord
	err := r.db.WithContext(ctx).
		Where("status <> ?", string(domain.PaymentPaid)).
		Where("last_reminder_sent IS NULL OR last_reminder_sent < ?", cutoff).
		Order("flat_id, id").
		Find(&records).Error
	return records, err
}

func (r *maintenanceRepository) StampReminder(ctx context.Context, ids []uint, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.MaintenanceRecord{}).
		Where("id IN ?", ids).
		Update("last_reminder_sent", at).Error
}
