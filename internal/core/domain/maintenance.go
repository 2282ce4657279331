package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the state of a maintenance record
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
	PaymentOverdue PaymentStatus = "Overdue"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentOverdue:
		return true
	}
	return false
}

// Period is one billing cycle
type Period struct {
	Month time.Month
	Year  int
}

const (
	minYear = 2000
	maxYear = 2100
)

// ParseMonth accepts a month name ("May", "may", "Sep") or number ("5")
func ParseMonth(s string) (time.Month, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return time.Month(n), true
		}
		return 0, false
	}
	lower := strings.ToLower(s)
	if len(lower) < 3 {
		return 0, false
	}
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if lower == name || lower == name[:3] {
			return m, true
		}
	}
	return 0, false
}

// NewPeriod validates and builds a billing period
func NewPeriod(month string, year int) (Period, error) {
	m, ok := ParseMonth(month)
	if !ok {
		return Period{}, Validation("invalid month: " + month)
	}
	if year < minYear || year > maxYear {
		return Period{}, Validation("year must be between 2000 and 2100")
	}
	return Period{Month: m, Year: year}, nil
}

// PeriodOf returns the period containing t
func PeriodOf(t time.Time) Period {
	return Period{Month: t.Month(), Year: t.Year()}
}

// Label is the stored month name, e.g. "May"
func (p Period) Label() string {
	return p.Month.String()
}

func (p Period) String() string {
	return p.Month.String() + " " + strconv.Itoa(p.Year)
}

// Start is the first instant of the period in loc
func (p Period) Start(loc *time.Location) time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, loc)
}

// DueAt is the first instant after the period has fully elapsed
func (p Period) DueAt(loc *time.Location) time.Time {
	return p.Start(loc).AddDate(0, 1, 0)
}

// Previous returns the period before p
func (p Period) Previous() Period {
	return PeriodOf(p.Start(time.UTC).AddDate(0, -1, 0))
}

// DaysLate counts started days past due. Zero before the due instant.
func DaysLate(dueAt, at time.Time) int {
	if at.Before(dueAt) {
		return 0
	}
	return int(at.Sub(dueAt)/(24*time.Hour)) + 1
}

// PenaltyPolicy is the late-payment schedule: a flat late fee plus a daily
// percentage of the base amount.
type PenaltyPolicy struct {
	LateFee          decimal.Decimal
	DailyRatePercent decimal.Decimal
}

// Validate makes sure any lateness produces a positive penalty
func (p PenaltyPolicy) Validate() error {
	if p.LateFee.IsNegative() || p.DailyRatePercent.IsNegative() {
		return Validation("penalty values must not be negative")
	}
	if !p.LateFee.IsPositive() && !p.DailyRatePercent.IsPositive() {
		return Validation("penalty policy needs a late fee or a daily rate")
	}
	return nil
}

var hundred = decimal.NewFromInt(100)

// Penalty returns the late charge for paying amount daysLate days late.
// It is zero when daysLate <= 0 and non-decreasing in daysLate.
func (p PenaltyPolicy) Penalty(amount decimal.Decimal, daysLate int) decimal.Decimal {
	if daysLate <= 0 {
		return decimal.Zero
	}
	daily := amount.Mul(p.DailyRatePercent).Div(hundred)
	return p.LateFee.Add(daily.Mul(decimal.NewFromInt(int64(daysLate)))).Round(2)
}

// Assessment is the read-time view of a maintenance record
type Assessment struct {
	Status    PaymentStatus   `json:"status"`
	IsOverdue bool            `json:"is_overdue"`
	DaysLate  int             `json:"days_late"`
	DueAt     time.Time       `json:"due_at"`
	Penalty   decimal.Decimal `json:"penalty"`
	Total     decimal.Decimal `json:"total"`
}

// Assess derives the displayed status and dues of a record at now. A record
// that is not paid becomes Overdue once its period has fully elapsed.
func Assess(period Period, stored PaymentStatus, amount decimal.Decimal, paidAt *time.Time, now time.Time, policy PenaltyPolicy) Assessment {
	dueAt := period.DueAt(now.Location())
	a := Assessment{Status: stored, DueAt: dueAt}

	switch {
	case stored != PaymentPaid:
		a.DaysLate = DaysLate(dueAt, now)
	case paidAt != nil:
		a.DaysLate = DaysLate(dueAt, *paidAt)
	}

	if stored != PaymentPaid && (a.DaysLate > 0 || stored == PaymentOverdue) {
		a.Status = PaymentOverdue
		a.IsOverdue = true
	}
	a.Penalty = policy.Penalty(amount, a.DaysLate)
	a.Total = amount.Add(a.Penalty)
	return a
}
