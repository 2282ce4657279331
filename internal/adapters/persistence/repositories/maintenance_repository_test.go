package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/adapters/persistence/testdb"
	"residency-api/internal/core/domain"
)

func pendingRecords(flats []string, month string, year int) []*models.MaintenanceRecord {
	out := make([]*models.MaintenanceRecord, 0, len(flats))
	for _, f := range flats {
		out = append(out, &models.MaintenanceRecord{
			FlatID:        f,
			Month:         month,
			Year:          year,
			Amount:        decimal.NewFromInt(1500),
			Status:        string(domain.PaymentPending),
			OccupancyType: string(domain.OccupancyOwner),
		})
	}
	return out
}

func TestMaintenanceCreateBatchSkipsExisting(t *testing.T) {
	ctx := context.Background()
	repo := NewMaintenanceRepository(testdb.New(t))

	created, err := repo.CreateBatch(ctx, pendingRecords([]string{"A-1-101", "A-1-102"}, "May", 2024))
	require.NoError(t, err)
	assert.Equal(t, int64(2), created)

	created, err = repo.CreateBatch(ctx, pendingRecords([]string{"A-1-101", "A-1-102", "A-1-103"}, "May", 2024))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created)

	all, err := repo.List(ctx, MaintenanceFilter{Month: "May", Year: 2024})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMaintenanceMarkPaidIsConditional(t *testing.T) {
	ctx := context.Background()
	repo := NewMaintenanceRepository(testdb.New(t))

	_, err := repo.CreateBatch(ctx, pendingRecords([]string{"A-1-101", "A-1-102"}, "May", 2024))
	require.NoError(t, err)
	all, err := repo.List(ctx, MaintenanceFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	paidAt := time.Date(2024, time.May, 15, 10, 0, 0, 0, time.UTC)
	changed, err := repo.MarkPaid(ctx, all[0].ID, paidAt, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkPaid(ctx, all[0].ID, paidAt.Add(time.Hour), decimal.Zero)
	require.NoError(t, err)
	assert.False(t, changed, "already paid")

	created, err := repo.Lock(ctx, &models.MaintenanceLock{Month: "May", Year: 2024, LockedBy: 1})
	require.NoError(t, err)
	assert.True(t, created)

	changed, err = repo.MarkPaid(ctx, all[1].ID, paidAt, decimal.Zero)
	require.NoError(t, err)
	assert.False(t, changed, "locked period")

	rec, err := repo.GetByID(ctx, all[1].ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.PaymentPending), rec.Status)
	assert.Nil(t, rec.PaidDate)

	changed, err = repo.Reopen(ctx, all[0].ID, string(domain.PaymentPending))
	require.NoError(t, err)
	assert.False(t, changed, "locked period cannot be reopened")
}

func TestMaintenanceLockIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMaintenanceRepository(testdb.New(t))

	created, err := repo.Lock(ctx, &models.MaintenanceLock{Month: "June", Year: 2024, LockedBy: 1})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Lock(ctx, &models.MaintenanceLock{Month: "June", Year: 2024, LockedBy: 2})
	require.NoError(t, err)
	assert.False(t, created)

	locked, err := repo.IsLocked(ctx, "June", 2024)
	require.NoError(t, err)
	assert.True(t, locked)

	locked, err = repo.IsLocked(ctx, "July", 2024)
	require.NoError(t, err)
	assert.False(t, locked)

	locks, err := repo.ListLocks(ctx)
	require.NoError(t, err)
	assert.Len(t, locks, 1)
}

func TestMaintenanceReminderCandidates(t *testing.T) {
	ctx := context.Background()
	repo := NewMaintenanceRepository(testdb.New(t))

	_, err := repo.CreateBatch(ctx, pendingRecords([]string{"A-1-101", "A-1-102", "A-1-103"}, "May", 2024))
	require.NoError(t, err)
	all, err := repo.List(ctx, MaintenanceFilter{})
	require.NoError(t, err)

	now := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	_, err = repo.MarkPaid(ctx, all[0].ID, now, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, repo.StampReminder(ctx, []uint{all[1].ID}, now.Add(-24*time.Hour)))

	cutoff := now.Add(-7 * 24 * time.Hour)
	candidates, err := repo.ReminderCandidates(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, all[2].ID, candidates[0].ID)
}
