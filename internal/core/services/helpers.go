package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"residency-api/internal/core/domain"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// storeErr translates store failures: missing rows become notFound,
// duplicate keys a conflict, anything else an internal error.
func storeErr(err error, notFound error, op string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrDuplicateEntry
	}
	return domain.Internal(op, err)
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// parseDate accepts YYYY-MM-DD in loc
func parseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, domain.Validation("date must be YYYY-MM-DD")
	}
	return t, nil
}

// parseClock validates HH:MM and returns minutes since midnight
func parseClock(s string) (int, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, domain.Validation("time must be HH:MM")
	}
	return t.Hour()*60 + t.Minute(), nil
}

// formatClock renders minutes since midnight as zero-padded HH:MM
func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// isManager reports whether the actor manages society-wide records
func isManager(a domain.Actor) bool {
	return domain.Allow(a,
		[]domain.Role{domain.RoleAdmin, domain.RoleCommittee},
		[]domain.Permission{domain.PermManageMaintenance},
	)
}

// uniqueErr maps a unique index violation to conflict
func uniqueErr(err error, conflict error, op string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return conflict
	}
	return domain.Internal(op, err)
}
