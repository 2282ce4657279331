package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"residency-api/internal/core/domain"
)

func TestDashboards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedBuildings(t, 1)
	f.seedUser(t, "pending@example.com", "password123", domain.RoleResident, "A-1-104", domain.UserPending)

	generateMay(t, f)
	_, err := f.maintenance.Generate(ctx, admin, &GenerateInput{Month: "June", Year: 2024, Amount: decimal.NewFromInt(2000)})
	require.NoError(t, err)
	book(t, f, resident, "18:00", "19:00", false)
	_, err = f.expenses.Create(ctx, admin, &ExpenseInput{Type: "GARBAGE", PayeeName: "Municipal", Amount: decimal.NewFromInt(500), Date: "2024-06-02"})
	require.NoError(t, err)

	got, err := f.dashboard.Get(ctx, admin)
	require.NoError(t, err)
	data, ok := got.(*AdminDashboardData)
	require.True(t, ok)
	assert.EqualValues(t, 1, data.PendingUsers)
	assert.EqualValues(t, 1, data.PendingBookings)
	assert.Equal(t, "June 2024", data.CurrentCycle.Period)
	assert.Equal(t, 20, data.CurrentCycle.Pending)
	assert.Equal(t, 20, data.PreviousCycle.Overdue)
	assert.Equal(t, "500", data.ExpensesThisMonth.String())

	got, err = f.dashboard.Get(ctx, resident)
	require.NoError(t, err)
	mine, ok := got.(*ResidentDashboardData)
	require.True(t, ok)
	require.Len(t, mine.OpenDues, 2)
	assert.Equal(t, 1, mine.OverdueCount)
	assert.Equal(t, "4200", mine.TotalDue.String())
	assert.Len(t, mine.MyBookings, 1)
}
