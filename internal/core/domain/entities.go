package domain

// UserStatus is the registration state of an account
type UserStatus string

const (
	UserPending  UserStatus = "PENDING"
	UserApproved UserStatus = "APPROVED"
	UserRejected UserStatus = "REJECTED"
)

// OccupancyType tells whether a flat is lived in by its owner or a tenant
type OccupancyType string

const (
	OccupancyOwner  OccupancyType = "Owner"
	OccupancyTenant OccupancyType = "Tenant"
)

// Valid reports whether o is a known occupancy type
func (o OccupancyType) Valid() bool {
	return o == OccupancyOwner || o == OccupancyTenant
}

// FlatType is the layout of every unit in a building
type FlatType string

const (
	FlatType1BHK FlatType = "1BHK"
	FlatType2BHK FlatType = "2BHK"
)

func (f FlatType) Valid() bool {
	return f == FlatType1BHK || f == FlatType2BHK
}

// ExpenseType categorises a society expense
type ExpenseType string

const (
	ExpenseGarbage          ExpenseType = "GARBAGE"
	ExpenseBuildingCleaning ExpenseType = "BUILDING_CLEANING"
	ExpenseSecurity         ExpenseType = "SECURITY"
)

func (t ExpenseType) Valid() bool {
	switch t {
	case ExpenseGarbage, ExpenseBuildingCleaning, ExpenseSecurity:
		return true
	}
	return false
}

// ExpenseStatus is the payment state of an expense
type ExpenseStatus string

const (
	ExpensePaid    ExpenseStatus = "Paid"
	ExpensePending ExpenseStatus = "Pending"
)

func (s ExpenseStatus) Valid() bool {
	return s == ExpensePaid || s == ExpensePending
}

// FundStatus is derived from collected against target
type FundStatus string

const (
	FundActive    FundStatus = "Active"
	FundCompleted FundStatus = "Completed"
)

// NoticeCategory categorises a notice
type NoticeCategory string

const (
	NoticeUrgent  NoticeCategory = "Urgent"
	NoticeGeneral NoticeCategory = "General"
	NoticeEvent   NoticeCategory = "Event"
)

func (c NoticeCategory) Valid() bool {
	switch c {
	case NoticeUrgent, NoticeGeneral, NoticeEvent:
		return true
	}
	return false
}

// MeetingCategory categorises a meeting
type MeetingCategory string

const (
	MeetingGeneral     MeetingCategory = "General"
	MeetingUrgent      MeetingCategory = "Urgent"
	MeetingCelebration MeetingCategory = "Celebration"
)

func (c MeetingCategory) Valid() bool {
	switch c {
	case MeetingGeneral, MeetingUrgent, MeetingCelebration:
		return true
	}
	return false
}

// BookingStatus is the approval state of an amenity booking.
// Confirmed and Rejected are terminal.
type BookingStatus string

const (
	BookingPending   BookingStatus = "Pending"
	BookingConfirmed BookingStatus = "Confirmed"
	BookingRejected  BookingStatus = "Rejected"
)

// IsTerminal reports whether no further transition is allowed
func (s BookingStatus) IsTerminal() bool {
	return s == BookingConfirmed || s == BookingRejected
}
