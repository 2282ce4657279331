package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFundContributions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	fund, err := f.funds.Create(ctx, admin, &FundInput{Purpose: "Diwali decorations", TargetAmount: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	assert.Equal(t, "Active", fund.Status)
	assert.True(t, fund.Date.Equal(f.now))

	updated, err := f.funds.Contribute(ctx, resident, fund.ID, &ContributionInput{Amount: decimal.NewFromInt(600)})
	require.NoError(t, err)
	assert.Equal(t, "600", updated.TotalCollected.String())
	assert.Equal(t, "Active", updated.Status)

	updated, err = f.funds.Contribute(ctx, resident, fund.ID, &ContributionInput{Amount: decimal.NewFromInt(400), Note: "balance"})
	require.NoError(t, err)
	assert.Equal(t, "1000", updated.TotalCollected.String())
	assert.Equal(t, "Completed", updated.Status)

	_, err = f.funds.Contribute(ctx, resident, fund.ID, &ContributionInput{Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrFundCompleted)

	_, list, err := f.funds.Get(ctx, fund.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A-1-101", list[0].FlatID)
	assert.EqualValues(t, 2, f.auditCount(t, ActionContributeFund))
}

func TestFundValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.funds.Create(ctx, admin, &FundInput{Purpose: "", TargetAmount: decimal.NewFromInt(10)})
	assert.Error(t, err)
	_, err = f.funds.Create(ctx, admin, &FundInput{Purpose: "Paint", TargetAmount: decimal.NewFromInt(-10)})
	assert.Error(t, err)

	fund, err := f.funds.Create(ctx, admin, &FundInput{Purpose: "Paint", Date: "2024-06-01", TargetAmount: decimal.NewFromInt(10)})
	require.NoError(t, err)

	_, err = f.funds.Contribute(ctx, resident, fund.ID, &ContributionInput{Amount: decimal.Zero})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = f.funds.Contribute(ctx, resident, 9999, &ContributionInput{Amount: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, ErrFundNotFound)
}
