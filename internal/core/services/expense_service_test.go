package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/core/domain"
	"residency-api/internal/pkg/pagination"
)

func TestExpenseDetailsValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name    string
		input   ExpenseInput
		wantErr bool
	}{
		{"garbage", ExpenseInput{Type: "GARBAGE", PayeeName: "Municipal", Amount: decimal.NewFromInt(500), Date: "2024-06-01"}, false},
		{"security ok", ExpenseInput{Type: "SECURITY", PayeeName: "Guard Co", Amount: decimal.NewFromInt(900), Date: "2024-06-01",
			Details: models.ExpenseDetails{GateNumber: "Gate 2", Shift: "Night"}}, false},
		{"security bad gate", ExpenseInput{Type: "SECURITY", PayeeName: "Guard Co", Amount: decimal.NewFromInt(900), Date: "2024-06-01",
			Details: models.ExpenseDetails{GateNumber: "Gate 3", Shift: "Night"}}, true},
		{"security no shift", ExpenseInput{Type: "SECURITY", PayeeName: "Guard Co", Amount: decimal.NewFromInt(900), Date: "2024-06-01",
			Details: models.ExpenseDetails{GateNumber: "Gate 1"}}, true},
		{"cleaning needs building", ExpenseInput{Type: "BUILDING_CLEANING", PayeeName: "Sparkle", Amount: decimal.NewFromInt(300), Date: "2024-06-01"}, true},
		{"unknown type", ExpenseInput{Type: "PARTY", PayeeName: "DJ", Amount: decimal.NewFromInt(300), Date: "2024-06-01"}, true},
		{"zero amount", ExpenseInput{Type: "GARBAGE", PayeeName: "Municipal", Amount: decimal.Zero, Date: "2024-06-01"}, true},
		{"bad status", ExpenseInput{Type: "GARBAGE", PayeeName: "Municipal", Amount: decimal.NewFromInt(1), Date: "2024-06-01", Status: "Maybe"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.expenses.Create(ctx, admin, &tt.input)
			if tt.wantErr {
				assert.Equal(t, domain.KindValidation, domain.KindOf(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestExpenseLedger(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cleaning, err := f.expenses.Create(ctx, admin, &ExpenseInput{
		Type: "BUILDING_CLEANING", PayeeName: "Sparkle", Amount: decimal.NewFromInt(300), Date: "2024-06-03", Status: "Paid",
		Details: models.ExpenseDetails{BuildingName: "a-3", GateNumber: "ignored"},
	})
	require.NoError(t, err)
	assert.Equal(t, "A-3", cleaning.Details.Data().BuildingName)
	assert.Empty(t, cleaning.Details.Data().GateNumber)

	_, err = f.expenses.Create(ctx, admin, &ExpenseInput{Type: "GARBAGE", PayeeName: "Municipal", Amount: decimal.NewFromInt(500), Date: "2024-05-20"})
	require.NoError(t, err)

	june, total, err := f.expenses.List(ctx, ExpenseQuery{Month: "June", Year: 2024}, pagination.New(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Sparkle", june[0].PayeeName)

	sum, err := f.expenses.Total(ctx, ExpenseQuery{Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, "800", sum.String())

	_, _, err = f.expenses.List(ctx, ExpenseQuery{Month: "June"}, pagination.New(1, 10))
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	updated, err := f.expenses.Update(ctx, admin, cleaning.ID, &ExpenseInput{
		Type: "BUILDING_CLEANING", PayeeName: "Sparkle Ltd", Amount: decimal.NewFromInt(350), Date: "2024-06-03", Status: "Paid",
		Details: models.ExpenseDetails{BuildingName: "A-3"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Sparkle Ltd", updated.PayeeName)

	require.NoError(t, f.expenses.Delete(ctx, admin, cleaning.ID))
	assert.ErrorIs(t, f.expenses.Delete(ctx, admin, cleaning.ID), ErrExpenseNotFound)

	_, total, err = f.expenses.List(ctx, ExpenseQuery{}, pagination.New(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	data, err := f.expenses.Export(ctx, ExpenseQuery{Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, "PK", string(data[:2]))

	assert.EqualValues(t, 1, f.auditCount(t, ActionDeleteExpense))
}
