package domain

import (
	"time"
)

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	StatusPending    BookingStatus = "PENDING"
	StatusConfirmed  BookingStatus = "CONFIRMED"
	StatusInProgress BookingStatus = "IN_PROGRESS"
	StatusCompleted  BookingStatus = "COMPLETED"
	StatusCancelled  BookingStatus = "CANCELLED"
	StatusNoShow     BookingStatus = "NO_SHOW"
	StatusExpired    BookingStatus = "EXPIRED"
)

// BookingType represents how a booking claims slot capacity
type BookingType string

const (
	// BookingPrivate claims the whole slot regardless of spots
	BookingPrivate BookingType = "PRIVATE"
	// BookingShared claims a number of spots within the slot
	BookingShared BookingType = "SHARED"
)

// Booking represents a customer's claim on a game slot
type Booking struct {
	ID         int64
	CustomerID int64
	GameID     int64
	SlotID     int64

	BookingType BookingType
	SpotsBooked int

	// Pricing snapshot taken at creation time
	PricePerSpot float64
	Subtotal     float64
	PlatformFee  float64
	TotalAmount  float64

	Status BookingStatus

	// ReservationExpiresAt is set while the booking is PENDING and cleared
	// once the booking leaves that status
	ReservationExpiresAt *time.Time

	PaymentReference *string

	// Check-in
	IsVerified bool
	VerifiedAt *time.Time

	Notes *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still claims (or may claim) capacity
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending ||
		b.Status == StatusConfirmed ||
		b.Status == StatusInProgress
}

// IsCounted returns true if the booking's spots are reflected in the slot's
// booked spots counter
func (b *Booking) IsCounted() bool {
	return b.Status == StatusConfirmed || b.Status == StatusInProgress
}

// IsTerminal returns true if the booking can never change status again
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCompleted ||
		b.Status == StatusCancelled ||
		b.Status == StatusNoShow ||
		b.Status == StatusExpired
}

// IsPendingExpired returns true if the booking is PENDING and its
// reservation window has passed
func (b *Booking) IsPendingExpired(now time.Time) bool {
	return b.Status == StatusPending &&
		b.ReservationExpiresAt != nil &&
		!b.ReservationExpiresAt.After(now)
}

// HoldsReservation returns true if the booking is PENDING with a live
// reservation window. Such bookings reduce purchasable capacity without
// being reflected in booked spots.
func (b *Booking) HoldsReservation(now time.Time) bool {
	return b.Status == StatusPending &&
		b.ReservationExpiresAt != nil &&
		b.ReservationExpiresAt.After(now)
}

// CanBeCancelled returns true if the booking can still be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// BookingHistory is an audit record of a single status change
type BookingHistory struct {
	ID        int64
	BookingID int64
	OldStatus *BookingStatus // nil for the creation record
	NewStatus BookingStatus
	ChangedBy *int64 // customer or staff user, nil for automatic transitions
	Reason    *string
	CreatedAt time.Time
}

// UserBookingsFilter selects a customer's bookings, all fields but
// CustomerID are optional
type UserBookingsFilter struct {
	CustomerID int64
	GameID     *int64
	StartDate  *time.Time
	EndDate    *time.Time
	Status     *BookingStatus
}
