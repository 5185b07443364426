package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/tapnex/GC-SlotService/pkg/types"
)

// GameBookingType defines which booking modes a game supports
type GameBookingType string

const (
	// BookingTypeSingle - private bookings only (whole game per customer)
	BookingTypeSingle GameBookingType = "SINGLE"
	// BookingTypeHybrid - private bookings plus per-spot shared bookings
	BookingTypeHybrid GameBookingType = "HYBRID"
)

// Weekday lowercase weekday name used in schedule configuration
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Midnight closing time meaning "end of day", not "00:00 same day"
const Midnight = types.TimeString("00:00")

// ErrInvalidSchedule is returned when a game's schedule settings cannot
// produce slots. This is an owner configuration bug, not a retryable failure.
var ErrInvalidSchedule = errors.New("domain: invalid game schedule")

// Game represents a bookable gaming resource (pool table, console, VR rig)
type Game struct {
	ID          int64
	Name        string
	Description string

	Capacity    int
	BookingType GameBookingType

	// Schedule settings
	OpeningTime         types.TimeString
	ClosingTime         types.TimeString // Midnight means "until end of day"
	SlotDurationMinutes int
	AvailableDays       []Weekday

	// Pricing
	PrivatePrice float64  // price for booking the whole game
	SharedPrice  *float64 // price per spot, required for HYBRID games

	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SupportsPrivate returns true if the game accepts private bookings
func (g *Game) SupportsPrivate() bool {
	return g.BookingType == BookingTypeSingle || g.BookingType == BookingTypeHybrid
}

// SupportsShared returns true if the game accepts per-spot shared bookings
func (g *Game) SupportsShared() bool {
	return g.BookingType == BookingTypeHybrid
}

// SharedPriceValue returns the shared price or 0 when unset
func (g *Game) SharedPriceValue() float64 {
	if g.SharedPrice == nil {
		return 0
	}
	return *g.SharedPrice
}

// IsAvailableOn returns true if the game's schedule includes the date's weekday
func (g *Game) IsAvailableOn(date time.Time) bool {
	day := WeekdayOf(date)
	for _, d := range g.AvailableDays {
		if d == day {
			return true
		}
	}
	return false
}

// ClosingMinutes returns the closing time as minutes from midnight,
// treating Midnight as end of day (1440)
func (g *Game) ClosingMinutes() (int, error) {
	if g.ClosingTime == Midnight {
		return types.MinutesPerDay, nil
	}
	return g.ClosingTime.MinutesFromMidnight()
}

// ValidateSchedule checks that the schedule settings can produce slots.
// Closing at exactly 00:00 is allowed and means "until end of day".
func (g *Game) ValidateSchedule() error {
	if err := g.OpeningTime.Validate(); err != nil {
		return fmt.Errorf("%w: game %q: %v", ErrInvalidSchedule, g.Name, err)
	}
	if err := g.ClosingTime.Validate(); err != nil {
		return fmt.Errorf("%w: game %q: %v", ErrInvalidSchedule, g.Name, err)
	}
	if g.ClosingTime != Midnight && !g.ClosingTime.IsAfter(g.OpeningTime) {
		return fmt.Errorf("%w: game %q: closing time must be after opening time (use 00:00 for midnight)", ErrInvalidSchedule, g.Name)
	}
	if g.SlotDurationMinutes <= 0 {
		return fmt.Errorf("%w: game %q: slot duration must be greater than 0", ErrInvalidSchedule, g.Name)
	}
	if g.Capacity < MinCapacity {
		return fmt.Errorf("%w: game %q: capacity must be at least %d", ErrInvalidSchedule, g.Name, MinCapacity)
	}
	if g.PrivatePrice <= 0 {
		return fmt.Errorf("%w: game %q: private price must be greater than 0", ErrInvalidSchedule, g.Name)
	}
	if g.BookingType == BookingTypeHybrid && g.SharedPriceValue() <= 0 {
		return fmt.Errorf("%w: game %q: hybrid games must have a shared price", ErrInvalidSchedule, g.Name)
	}
	return nil
}

// WeekdayOf converts a date to the schedule weekday name
func WeekdayOf(date time.Time) Weekday {
	switch date.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}
