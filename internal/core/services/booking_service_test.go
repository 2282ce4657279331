package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"residency-api/internal/core/domain"
)

func book(t *testing.T, f *fixture, actor domain.Actor, start, end string, public bool) uint {
	t.Helper()
	b, err := f.bookings.Create(context.Background(), actor, &BookingInput{
		FacilityID: "clubhouse",
		Date:       "2024-06-15",
		StartTime:  start,
		EndTime:    end,
		Purpose:    "Birthday",
		Attendees:  30,
		IsPublic:   public,
	})
	require.NoError(t, err)
	assert.Equal(t, "Pending", b.Status)
	return b.ID
}

func TestBookingValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input BookingInput
	}{
		{"end before start", BookingInput{FacilityID: "gym", Date: "2024-06-15", StartTime: "18:00", EndTime: "17:00"}},
		{"zero length", BookingInput{FacilityID: "gym", Date: "2024-06-15", StartTime: "18:00", EndTime: "18:00"}},
		{"bad clock", BookingInput{FacilityID: "gym", Date: "2024-06-15", StartTime: "6pm", EndTime: "19:00"}},
		{"bad date", BookingInput{FacilityID: "gym", Date: "15/06/2024", StartTime: "18:00", EndTime: "19:00"}},
		{"past date", BookingInput{FacilityID: "gym", Date: "2024-06-01", StartTime: "18:00", EndTime: "19:00"}},
		{"no facility", BookingInput{Date: "2024-06-15", StartTime: "18:00", EndTime: "19:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.bookings.Create(ctx, resident, &tt.input)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}
}

func TestBookingTerminalStates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := book(t, f, resident, "18:00", "21:00", false)

	confirmed, err := f.bookings.Confirm(ctx, admin, id)
	require.NoError(t, err)
	assert.Equal(t, "Confirmed", confirmed.Status)
	require.NotNil(t, confirmed.ReviewedBy)
	assert.Equal(t, admin.UserID, *confirmed.ReviewedBy)

	_, err = f.bookings.Reject(ctx, admin, id)
	require.ErrorIs(t, err, ErrBookingFinalized)
	assert.Equal(t, domain.KindState, domain.KindOf(err))

	_, err = f.bookings.Confirm(ctx, admin, id)
	assert.ErrorIs(t, err, ErrBookingFinalized)

	list, err := f.bookings.List(ctx, admin, BookingQuery{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Confirmed", list[0].Status)

	assert.EqualValues(t, 1, f.auditCount(t, ActionCreateBooking))
	assert.EqualValues(t, 1, f.auditCount(t, ActionConfirmBooking))
	assert.EqualValues(t, 0, f.auditCount(t, ActionRejectBooking))

	_, err = f.bookings.Reject(ctx, admin, 9999)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestBookingOverlap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := book(t, f, resident, "18:00", "21:00", false)
	clash := book(t, f, resident, "20:00", "22:00", false)
	after := book(t, f, resident, "21:00", "23:00", false)

	_, err := f.bookings.Confirm(ctx, admin, first)
	require.NoError(t, err)

	_, err = f.bookings.Confirm(ctx, admin, clash)
	assert.ErrorIs(t, err, ErrSlotTaken)

	_, err = f.bookings.Confirm(ctx, admin, after)
	assert.NoError(t, err)
}

func TestBookingOverlapSingleDigitHour(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	late := book(t, f, resident, "10:00", "12:00", false)
	early := book(t, f, resident, "9:00", "11:00", false)
	dawn := book(t, f, resident, "7:30", "9:00", false)

	_, err := f.bookings.Confirm(ctx, admin, late)
	require.NoError(t, err)

	_, err = f.bookings.Confirm(ctx, admin, early)
	assert.ErrorIs(t, err, ErrSlotTaken)

	confirmed, err := f.bookings.Confirm(ctx, admin, dawn)
	require.NoError(t, err)
	assert.Equal(t, "07:30", confirmed.StartTime)
	assert.Equal(t, "09:00", confirmed.EndTime)
}

func TestBookingOverlapIgnoresOtherFacilities(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hall := book(t, f, resident, "18:00", "21:00", false)
	pool, err := f.bookings.Create(ctx, resident, &BookingInput{
		FacilityID: "pool",
		Date:       "2024-06-15",
		StartTime:  "18:00",
		EndTime:    "21:00",
	})
	require.NoError(t, err)

	_, err = f.bookings.Confirm(ctx, admin, hall)
	require.NoError(t, err)
	_, err = f.bookings.Confirm(ctx, admin, pool.ID)
	assert.NoError(t, err)
}

func TestBookingVisibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	neighbour := domain.Actor{UserID: 3, Name: "Vikram", Role: domain.RoleResident, FlatID: "A-1-102"}

	private := book(t, f, resident, "08:00", "09:00", false)
	public := book(t, f, resident, "10:00", "11:00", true)
	book(t, f, neighbour, "12:00", "13:00", false)

	_, err := f.bookings.Confirm(ctx, admin, private)
	require.NoError(t, err)

	seen, err := f.bookings.List(ctx, neighbour, BookingQuery{})
	require.NoError(t, err)
	assert.Len(t, seen, 1, "pending public bookings stay hidden")

	_, err = f.bookings.Confirm(ctx, admin, public)
	require.NoError(t, err)

	seen, err = f.bookings.List(ctx, neighbour, BookingQuery{})
	require.NoError(t, err)
	require.Len(t, seen, 2)
	ids := []uint{seen[0].ID, seen[1].ID}
	assert.Contains(t, ids, public)
	assert.NotContains(t, ids, private)

	all, err := f.bookings.List(ctx, admin, BookingQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
