package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		in   string
		want time.Month
		ok   bool
	}{
		{"May", time.May, true},
		{"september", time.September, true},
		{"Sep", time.September, true},
		{"12", time.December, true},
		{"13", 0, false},
		{"Ma", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseMonth(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNewPeriod(t *testing.T) {
	p, err := NewPeriod("may", 2024)
	require.NoError(t, err)
	assert.Equal(t, "May", p.Label())
	assert.Equal(t, "May 2024", p.String())

	_, err = NewPeriod("May", 1999)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = NewPeriod("Smarch", 2024)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestPeriodPrevious(t *testing.T) {
	p := Period{Month: time.January, Year: 2024}
	assert.Equal(t, Period{Month: time.December, Year: 2023}, p.Previous())
}

func TestDaysLate(t *testing.T) {
	due := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	assert.Zero(t, DaysLate(due, due.Add(-time.Second)))
	assert.Equal(t, 1, DaysLate(due, due))
	assert.Equal(t, 1, DaysLate(due, due.Add(23*time.Hour)))
	assert.Equal(t, 2, DaysLate(due, due.Add(24*time.Hour)))
}

func TestPenalty(t *testing.T) {
	policy := PenaltyPolicy{LateFee: decimal.NewFromInt(100), DailyRatePercent: decimal.RequireFromString("0.5")}
	amount := decimal.NewFromInt(2000)

	assert.True(t, policy.Penalty(amount, 0).IsZero())
	assert.True(t, policy.Penalty(amount, -3).IsZero())
	// 100 + 2000 * 0.5% * 3
	assert.Equal(t, "130", policy.Penalty(amount, 3).String())

	prev := decimal.Zero
	for d := 0; d <= 60; d++ {
		p := policy.Penalty(amount, d)
		assert.True(t, p.GreaterThanOrEqual(prev), "penalty decreased at day %d", d)
		if d > 0 {
			assert.True(t, p.IsPositive())
		}
		prev = p
	}
}

func TestPenaltyPolicyValidate(t *testing.T) {
	assert.NoError(t, PenaltyPolicy{LateFee: decimal.NewFromInt(50)}.Validate())
	assert.NoError(t, PenaltyPolicy{DailyRatePercent: decimal.NewFromInt(1)}.Validate())
	assert.Error(t, PenaltyPolicy{}.Validate())
	assert.Error(t, PenaltyPolicy{LateFee: decimal.NewFromInt(-1), DailyRatePercent: decimal.NewFromInt(1)}.Validate())
}

func TestAssess(t *testing.T) {
	policy := PenaltyPolicy{LateFee: decimal.NewFromInt(100)}
	amount := decimal.NewFromInt(1500)
	may := Period{Month: time.May, Year: 2024}

	t.Run("pending within period", func(t *testing.T) {
		now := time.Date(2024, time.May, 20, 10, 0, 0, 0, time.UTC)
		a := Assess(may, PaymentPending, amount, nil, now, policy)
		assert.Equal(t, PaymentPending, a.Status)
		assert.False(t, a.IsOverdue)
		assert.True(t, a.Penalty.IsZero())
		assert.True(t, a.Total.Equal(amount))
	})

	t.Run("pending after period elapsed", func(t *testing.T) {
		now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
		a := Assess(may, PaymentPending, amount, nil, now, policy)
		assert.Equal(t, PaymentOverdue, a.Status)
		assert.True(t, a.IsOverdue)
		assert.Equal(t, 1, a.DaysLate)
		assert.Equal(t, "1600", a.Total.String())
	})

	t.Run("paid on time stays paid", func(t *testing.T) {
		paid := time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)
		now := time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC)
		a := Assess(may, PaymentPaid, amount, &paid, now, policy)
		assert.Equal(t, PaymentPaid, a.Status)
		assert.False(t, a.IsOverdue)
		assert.Zero(t, a.DaysLate)
	})

	t.Run("stored overdue is honoured", func(t *testing.T) {
		now := time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)
		a := Assess(may, PaymentOverdue, amount, nil, now, policy)
		assert.Equal(t, PaymentOverdue, a.Status)
		assert.True(t, a.IsOverdue)
	})
}
