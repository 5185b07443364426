package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a status change is not allowed by
// the booking lifecycle
var ErrInvalidTransition = errors.New("domain: invalid booking status transition")

// AvailabilityDelta describes how a status transition changes the slot's
// capacity counters. A zero delta means the counters stay untouched.
type AvailabilityDelta struct {
	LockPrivate    bool // mark the slot private-booked, spots go to capacity
	ReleasePrivate bool // clear the private lock, spots go to zero
	AddSpots       int  // add shared spots to the booked counter
	RemoveSpots    int  // remove shared spots from the booked counter
}

// IsZero returns true if the delta changes nothing
func (d AvailabilityDelta) IsZero() bool {
	return !d.LockPrivate && !d.ReleasePrivate && d.AddSpots == 0 && d.RemoveSpots == 0
}

// allowedTransitions is the booking lifecycle. Terminal statuses have no
// outgoing edges.
var allowedTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled, StatusExpired},
	StatusConfirmed:  {StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow},
	StatusInProgress: {StatusCompleted, StatusNoShow},
}

// CanTransition reports whether the lifecycle allows moving from one status
// to another
func CanTransition(from, to BookingStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition validates a status change and returns the availability delta it
// implies. The delta depends only on whether the booking's spots were counted
// before and after the change, which makes repeated application of the same
// transition safe: CONFIRMED to IN_PROGRESS produces a zero delta, and a
// PENDING booking that expires never touches the counters at all.
func Transition(b *Booking, to BookingStatus) (AvailabilityDelta, error) {
	if !CanTransition(b.Status, to) {
		return AvailabilityDelta{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, to)
	}

	wasCounted := b.IsCounted()
	willBeCounted := to == StatusConfirmed || to == StatusInProgress

	switch {
	case !wasCounted && willBeCounted:
		if b.BookingType == BookingPrivate {
			return AvailabilityDelta{LockPrivate: true}, nil
		}
		return AvailabilityDelta{AddSpots: b.SpotsBooked}, nil
	case wasCounted && !willBeCounted:
		if b.BookingType == BookingPrivate {
			return AvailabilityDelta{ReleasePrivate: true}, nil
		}
		return AvailabilityDelta{RemoveSpots: b.SpotsBooked}, nil
	default:
		return AvailabilityDelta{}, nil
	}
}
