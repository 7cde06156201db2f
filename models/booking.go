package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking statuses. Cancellation is a status, never a deletion — historical
// occupancy data must survive for reporting.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusCheckedIn  = "checked-in"
	StatusCheckedOut = "checked-out"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no-show"
)

// Booking sources.
const (
	SourceOnline = "online"
	SourceWalkIn = "walk-in"
	SourcePhone  = "phone"
)

// Payment statuses.
const (
	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// PREFIX-YYYY-NNNNNN, allocated from the per-year sequence at creation.
	Reference string `gorm:"column:reference;uniqueIndex;size:64" json:"reference"`

	FirstName string `gorm:"size:150" json:"firstName"`
	LastName  string `gorm:"size:150" json:"lastName"`
	Email     string `gorm:"size:255" json:"email"`
	Phone     string `gorm:"size:50" json:"phone,omitempty"`

	RoomTypeID uint     `gorm:"index;column:room_type_id" json:"roomTypeId"`
	RoomType   RoomType `gorm:"foreignKey:RoomTypeID" json:"roomType,omitempty"`

	// Label of the physical unit, empty until an operator assigns one.
	AssignedUnit string `gorm:"column:assigned_unit;size:50;index" json:"assignedUnit,omitempty"`

	CheckIn  time.Time `gorm:"column:check_in;index" json:"checkIn"`
	CheckOut time.Time `gorm:"column:check_out;index" json:"checkOut"`
	Guests   int       `gorm:"default:1" json:"guests"`

	Nights int `gorm:"column:nights" json:"nights"`

	// Copied from the RoomType at creation, editable afterwards.
	PricePerNight int64 `gorm:"column:price_per_night" json:"pricePerNight"`
	Discount      int64 `gorm:"column:discount" json:"discount"`
	TotalPrice    int64 `gorm:"column:total_price" json:"totalPrice"`

	PaymentStatus string `gorm:"column:payment_status;size:32;default:unpaid" json:"paymentStatus"`
	PaymentMethod string `gorm:"column:payment_method;size:32" json:"paymentMethod,omitempty"`
	Source        string `gorm:"size:32;default:online" json:"source"`

	Status string `gorm:"size:32;index;default:pending" json:"status"`

	// Stamped exactly once, on the first transition into the status.
	ActualCheckIn  *time.Time `gorm:"column:actual_check_in" json:"actualCheckIn,omitempty"`
	ActualCheckOut *time.Time `gorm:"column:actual_check_out" json:"actualCheckOut,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// bookingTransitions is the allow-list of (from -> to) status moves. It is
// intentionally permissive — admins correct mistakes by moving bookings
// around — but it is written down here instead of living implicitly in
// scattered conditionals.
var bookingTransitions = map[string][]string{
	StatusPending:    {StatusConfirmed, StatusCheckedIn, StatusCancelled, StatusNoShow},
	StatusConfirmed:  {StatusPending, StatusCheckedIn, StatusCancelled, StatusNoShow},
	StatusCheckedIn:  {StatusCheckedOut},
	StatusCheckedOut: {},
	StatusCancelled:  {StatusPending, StatusConfirmed},
	StatusNoShow:     {StatusPending, StatusConfirmed},
}

// ValidStatus reports whether s is a known booking status.
func ValidStatus(s string) bool {
	_, ok := bookingTransitions[s]
	return ok
}

// CanTransition reports whether the status move from -> to is allowed.
// Re-saving the current status is always permitted (it is a no-op for
// timestamp stamping purposes).
func CanTransition(from, to string) bool {
	if from == to {
		return ValidStatus(to)
	}
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ActiveStatuses are the statuses that occupy inventory for overlap
// purposes. A checked-in guest holds a unit just as firmly as a confirmed
// reservation does, so both count — everywhere, including the public
// availability check.
func ActiveStatuses() []string {
	return []string{StatusConfirmed, StatusCheckedIn}
}
