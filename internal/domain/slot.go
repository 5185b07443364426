package domain

import (
	"time"

	"github.com/tapnex/GC-SlotService/pkg/types"
)

// GameSlot is a concrete bookable window of a game on a specific date
type GameSlot struct {
	ID        int64
	GameID    int64
	Date      time.Time // date only, time part is zero
	StartTime types.TimeString
	EndTime   types.TimeString // "00:00" means the slot ends at midnight

	// IsAutoGenerated distinguishes schedule-derived slots from slots an
	// owner added by hand. Regeneration only ever touches auto slots.
	IsAutoGenerated bool

	IsBlocked bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StartDateTime returns the slot's opening moment in the given location
func (s *GameSlot) StartDateTime(loc *time.Location) time.Time {
	m, _ := s.StartTime.MinutesFromMidnight()
	return atMinutes(s.Date, m, loc)
}

// EndDateTime returns the slot's closing moment in the given location.
// An end time of "00:00" means midnight at the end of the slot's date.
func (s *GameSlot) EndDateTime(loc *time.Location) time.Time {
	return atMinutes(s.Date, endMinutes(s.EndTime), loc)
}

func atMinutes(date time.Time, minutes int, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, minutes, 0, 0, loc)
}

// IsPast returns true if the slot's start moment is already behind now
func (s *GameSlot) IsPast(now time.Time) bool {
	return s.StartDateTime(now.Location()).Before(now)
}

// HasEnded returns true if the slot's end moment is behind now
func (s *GameSlot) HasEnded(now time.Time) bool {
	return !s.EndDateTime(now.Location()).After(now)
}

// Overlaps reports whether two slots of the same game and date intersect in
// time. Touching boundaries (one ends exactly when the other starts) do not
// count as overlap.
func (s *GameSlot) Overlaps(other *GameSlot) bool {
	sStart, _ := s.StartTime.MinutesFromMidnight()
	sEnd := endMinutes(s.EndTime)
	oStart, _ := other.StartTime.MinutesFromMidnight()
	oEnd := endMinutes(other.EndTime)
	return sStart < oEnd && oStart < sEnd
}

func endMinutes(t types.TimeString) int {
	if t == Midnight {
		return types.MinutesPerDay
	}
	m, _ := t.MinutesFromMidnight()
	return m
}

// SlotAvailability is the capacity counter of a single slot. BookedSpots
// reflects CONFIRMED and IN_PROGRESS bookings only; pending reservations are
// counted separately from booking rows.
type SlotAvailability struct {
	ID            int64
	SlotID        int64
	TotalCapacity int
	BookedSpots   int

	// IsPrivateBooked means a private booking owns the whole slot
	IsPrivateBooked bool

	UpdatedAt time.Time
}

// AvailableSpots returns how many spots remain purchasable by confirmed
// bookings. A private booking zeroes availability regardless of counters.
func (a *SlotAvailability) AvailableSpots() int {
	if a.IsPrivateBooked {
		return 0
	}
	spots := a.TotalCapacity - a.BookedSpots
	if spots < 0 {
		return 0
	}
	return spots
}

// CanBookPrivate returns true if a private booking could take the slot.
// Private needs the slot completely empty.
func (a *SlotAvailability) CanBookPrivate() bool {
	return !a.IsPrivateBooked && a.BookedSpots == 0
}

// CanBookShared returns true if at least one shared spot could be booked
func (a *SlotAvailability) CanBookShared() bool {
	return !a.IsPrivateBooked && a.AvailableSpots() > 0
}

// IsEmpty returns true if nothing confirmed claims the slot
func (a *SlotAvailability) IsEmpty() bool {
	return !a.IsPrivateBooked && a.BookedSpots == 0
}

// Apply mutates the counters according to a transition delta. Spot counters
// are clamped so reversal of an already-reversed booking cannot go negative.
func (a *SlotAvailability) Apply(d AvailabilityDelta) {
	if d.LockPrivate {
		a.IsPrivateBooked = true
		a.BookedSpots = a.TotalCapacity
	}
	if d.ReleasePrivate {
		a.IsPrivateBooked = false
		a.BookedSpots = 0
	}
	if d.AddSpots > 0 {
		a.BookedSpots += d.AddSpots
		if a.BookedSpots > a.TotalCapacity {
			a.BookedSpots = a.TotalCapacity
		}
	}
	if d.RemoveSpots > 0 {
		a.BookedSpots -= d.RemoveSpots
		if a.BookedSpots < 0 {
			a.BookedSpots = 0
		}
	}
}
