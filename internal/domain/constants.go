package domain

import "time"

// Default configuration values
const (
	DefaultSlotDurationMinutes = 60
	DefaultHorizonDays         = 7
	DefaultGenerationDaysAhead = 30
)

// ReservationWindow is how long a PENDING booking holds its spots while the
// customer completes payment. After this window the reservation expires.
const ReservationWindow = 5 * time.Minute

// Business validation constants
const (
	MinSlotDurationMinutes = 5
	MaxSlotDurationMinutes = 480 // 8 hours
	MinCapacity            = 1
	MaxCapacity            = 100
	MaxNotesLength         = 500
	MaxGenerationRangeDays = 365 // 1 year
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses are the statuses that still claim (or may claim) slot
// capacity. Used for filtering bookings in availability decisions.
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
}

// CountedStatuses are the statuses whose spots are reflected in
// SlotAvailability.BookedSpots. PENDING is deliberately excluded: a pending
// booking holds capacity only through its reservation window.
var CountedStatuses = []BookingStatus{
	StatusConfirmed,
	StatusInProgress,
}

// TerminalStatuses are the statuses no booking ever leaves
var TerminalStatuses = []BookingStatus{
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
	StatusExpired,
}
