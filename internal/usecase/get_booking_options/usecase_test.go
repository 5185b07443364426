package get_booking_options

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapnex/GC-SlotService/internal/domain"
	gameRepo "github.com/tapnex/GC-SlotService/internal/infra/storage/game"
	"github.com/tapnex/GC-SlotService/pkg/ptr"
	"github.com/tapnex/GC-SlotService/pkg/types"
)

type fakeGameRepo struct {
	games map[int64]*domain.Game
}

func (f *fakeGameRepo) GetByID(_ context.Context, id int64) (*domain.Game, error) {
	if g, ok := f.games[id]; ok {
		return g, nil
	}
	return nil, gameRepo.ErrGameNotFound
}

type fakeSlotRepo struct {
	slots        []*domain.GameSlot
	availability map[int64]*domain.SlotAvailability
}

func (f *fakeSlotRepo) GetByGameAndDate(_ context.Context, _ int64, _ time.Time) ([]*domain.GameSlot, error) {
	return f.slots, nil
}

func (f *fakeSlotRepo) GetAvailabilityBySlots(_ context.Context, _ []int64) (map[int64]*domain.SlotAvailability, error) {
	return f.availability, nil
}

type fakeBookingRepo struct {
	activeBySlot map[int64][]*domain.Booking
}

func (f *fakeBookingRepo) GetActiveBySlot(_ context.Context, slotID int64) ([]*domain.Booking, error) {
	return f.activeBySlot[slotID], nil
}

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var (
	testNow  = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	testDate = time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
)

func testGame() *domain.Game {
	return &domain.Game{
		ID:           1,
		Name:         "PS5 Station 1",
		Capacity:     4,
		BookingType:  domain.BookingTypeHybrid,
		PrivatePrice: 1500,
		SharedPrice:  ptr.Ptr(500.0),
		IsActive:     true,
	}
}

func testSlot(id int64, start, end types.TimeString) *domain.GameSlot {
	return &domain.GameSlot{
		ID:        id,
		GameID:    1,
		Date:      testDate,
		StartTime: start,
		EndTime:   end,
	}
}

func pendingBooking(bookingType domain.BookingType, spots int, expiresAt time.Time) *domain.Booking {
	return &domain.Booking{
		BookingType:          bookingType,
		SpotsBooked:          spots,
		Status:               domain.StatusPending,
		ReservationExpiresAt: &expiresAt,
	}
}

type fakeEnsurer struct {
	slots   *fakeSlotRepo
	fill    []*domain.GameSlot
	calls   int
	lastErr error
}

func (f *fakeEnsurer) EnsureDate(_ context.Context, _ int64, _ time.Time) (int, error) {
	f.calls++
	if f.lastErr != nil {
		return 0, f.lastErr
	}
	f.slots.slots = f.fill
	return len(f.fill), nil
}

func newTestUseCase(games *fakeGameRepo, slots *fakeSlotRepo, bookings *fakeBookingRepo) *UseCase {
	uc := NewUseCase(games, slots, bookings, nil, nopLogger{})
	uc.timeProvider = &fixedTime{now: testNow}
	return uc
}

func TestExecuteOpenSlot(t *testing.T) {
	slots := &fakeSlotRepo{
		slots: []*domain.GameSlot{testSlot(10, "10:00", "11:00")},
		availability: map[int64]*domain.SlotAvailability{
			10: {SlotID: 10, TotalCapacity: 4},
		},
	}
	uc := newTestUseCase(&fakeGameRepo{games: map[int64]*domain.Game{1: testGame()}}, slots, &fakeBookingRepo{})

	resp, err := uc.Execute(context.Background(), &Request{GameID: 1, Date: testDate})
	require.NoError(t, err)

	assert.Equal(t, "PS5 Station 1", resp.GameName)
	assert.Equal(t, string(domain.BookingTypeHybrid), resp.BookingType)
	require.Len(t, resp.Slots, 1)

	option := resp.Slots[0]
	assert.Equal(t, 4, option.AvailableSpots)
	assert.True(t, option.CanBookPrivate)
	assert.True(t, option.CanBookShared)
	assert.Empty(t, option.Restriction)
}

func TestExecuteRestrictions(t *testing.T) {
	game := testGame()
	blocked := testSlot(11, "11:00", "12:00")
	blocked.IsBlocked = true

	// слот 12 на сегодня и уже начался
	started := testSlot(12, "11:00", "13:00")
	started.Date = testNow.Truncate(24 * time.Hour)

	slots := &fakeSlotRepo{
		slots: []*domain.GameSlot{
			testSlot(10, "10:00", "11:00"), // приватно выкуплен
			blocked,
			started,
			testSlot(13, "13:00", "14:00"), // полностью занят долевыми
			testSlot(14, "14:00", "15:00"), // частично занят долевыми
		},
		availability: map[int64]*domain.SlotAvailability{
			10: {SlotID: 10, TotalCapacity: 4, BookedSpots: 4, IsPrivateBooked: true},
			11: {SlotID: 11, TotalCapacity: 4},
			12: {SlotID: 12, TotalCapacity: 4},
			13: {SlotID: 13, TotalCapacity: 4, BookedSpots: 4},
			14: {SlotID: 14, TotalCapacity: 4, BookedSpots: 2},
		},
	}
	uc := newTestUseCase(&fakeGameRepo{games: map[int64]*domain.Game{1: game}}, slots, &fakeBookingRepo{})

	resp, err := uc.Execute(context.Background(), &Request{GameID: 1, Date: testDate})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 5)

	assert.Equal(t, "Privately booked", resp.Slots[0].Restriction)
	assert.False(t, resp.Slots[0].CanBookShared)

	assert.Equal(t, "Slot is blocked", resp.Slots[1].Restriction)
	assert.Equal(t, "Slot has started", resp.Slots[2].Restriction)

	assert.Equal(t, "Fully booked", resp.Slots[3].Restriction)
	assert.Equal(t, 0, resp.Slots[3].AvailableSpots)

	partial := resp.Slots[4]
	assert.Equal(t, "Slot has shared bookings", partial.Restriction)
	assert.Equal(t, 2, partial.AvailableSpots)
	assert.True(t, partial.CanBookShared)
	assert.False(t, partial.CanBookPrivate)
}

func TestExecuteSingleGameNeverOffersShared(t *testing.T) {
	game := testGame()
	game.BookingType = domain.BookingTypeSingle
	game.SharedPrice = nil

	slots := &fakeSlotRepo{
		slots: []*domain.GameSlot{testSlot(10, "10:00", "11:00")},
		availability: map[int64]*domain.SlotAvailability{
			10: {SlotID: 10, TotalCapacity: 4},
		},
	}
	uc := newTestUseCase(&fakeGameRepo{games: map[int64]*domain.Game{1: game}}, slots, &fakeBookingRepo{})

	resp, err := uc.Execute(context.Background(), &Request{GameID: 1, Date: testDate})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 1)

	// игра без долевого режима предлагает только приватную бронь,
	// иначе создание брони отвергло бы предложенный вариант
	option := resp.Slots[0]
	assert.True(t, option.CanBookPrivate)
	assert.False(t, option.CanBookShared)
	assert.Empty(t, option.Restriction)
}

func TestExecutePendingReservationsReduceSpots(t *testing.T) {
	slots := &fakeSlotRepo{
		slots: []*domain.GameSlot{testSlot(10, "10:00", "11:00")},
		availability: map[int64]*domain.SlotAvailability{
			10: {SlotID: 10, TotalCapacity: 4},
		},
	}
	bookings := &fakeBookingRepo{activeBySlot: map[int64][]*domain.Booking{
		10: {pendingBooking(domain.BookingShared, 3, testNow.Add(3*time.Minute))},
	}}
	uc := newTestUseCase(&fakeGameRepo{games: map[int64]*domain.Game{1: testGame()}}, slots, bookings)

	resp, err := uc.Execute(context.Background(), &Request{GameID: 1, Date: testDate})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 1)

	// живой резерв вычитается из покупаемых мест и закрывает приватную бронь
	option := resp.Slots[0]
	assert.Equal(t, 1, option.AvailableSpots)
	assert.True(t, option.CanBookShared)
	assert.False(t, option.CanBookPrivate)
	assert.Equal(t, "Reservation in progress", option.Restriction)
}

func TestExecutePendingPrivateClosesSlot(t *testing.T) {
	slots := &fakeSlotRepo{
		slots: []*domain.GameSlot{testSlot(10, "10:00", "11:00")},
		availability: map[int64]*domain.SlotAvailability{
			10: {SlotID: 10, TotalCapacity: 4},
		},
	}
	bookings := &fakeBookingRepo{activeBySlot: map[int64][]*domain.Booking{
		10: {pendingBooking(domain.BookingPrivate, 4, testNow.Add(3*time.Minute))},
	}}
	uc := newTestUseCase(&fakeGameRepo{games: map[int64]*domain.Game{1: testGame()}}, slots, bookings)

	resp, err := uc.Execute(context.Background(), &Request{GameID: 1, Date: testDate})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 1)

	option := resp.Slots[0]
	assert.Equal(t, "Reservation in progress", option.Restriction)
	assert.False(t, option.CanBookShared)
	assert.False(t, option.CanBookPrivate)
}

func TestExecuteExpiredReservationIgnored(t *testing.T) {
	slots := &fakeSlotRepo{
		slots: []*domain.GameSlot{testSlot(10, "10:00", "11:00")},
		availability: map[int64]*domain.SlotAvailability{
			10: {SlotID: 10, TotalCapacity: 4},
		},
	}
	bookings := &fakeBookingRepo{activeBySlot: map[int64][]*domain.Booking{
		10: {pendingBooking(domain.BookingPrivate, 4, testNow.Add(-time.Minute))},
	}}
	uc := newTestUseCase(&fakeGameRepo{games: map[int64]*domain.Game{1: testGame()}}, slots, bookings)

	resp, err := uc.Execute(context.Background(), &Request{GameID: 1, Date: testDate})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 1)

	// истёкший резерв мест не удерживает
	option := resp.Slots[0]
	assert.Equal(t, 4, option.AvailableSpots)
	assert.True(t, option.CanBookPrivate)
	assert.Empty(t, option.Restriction)
}

func TestExecuteMissingAvailabilityRecord(t *testing.T) {
	slots := &fakeSlotRepo{
		slots:        []*domain.GameSlot{testSlot(10, "10:00", "11:00")},
		availability: map[int64]*domain.SlotAvailability{},
	}
	uc := newTestUseCase(&fakeGameRepo{games: map[int64]*domain.Game{1: testGame()}}, slots, &fakeBookingRepo{})

	resp, err := uc.Execute(context.Background(), &Request{GameID: 1, Date: testDate})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 1)

	assert.Equal(t, "Slot is blocked", resp.Slots[0].Restriction)
	assert.False(t, resp.Slots[0].CanBookShared)
}

func TestExecuteGeneratesEmptyDayOnDemand(t *testing.T) {
	// дата за горизонтом фоновой генерации - слотов ещё нет
	slots := &fakeSlotRepo{
		slots: nil,
		availability: map[int64]*domain.SlotAvailability{
			10: {SlotID: 10, TotalCapacity: 4},
		},
	}
	ensurer := &fakeEnsurer{
		slots: slots,
		fill:  []*domain.GameSlot{testSlot(10, "10:00", "11:00")},
	}
	uc := newTestUseCase(&fakeGameRepo{games: map[int64]*domain.Game{1: testGame()}}, slots, &fakeBookingRepo{})
	uc.slotEnsurer = ensurer

	resp, err := uc.Execute(context.Background(), &Request{GameID: 1, Date: testDate})
	require.NoError(t, err)

	assert.Equal(t, 1, ensurer.calls)
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, 4, resp.Slots[0].AvailableSpots)
}

func TestExecuteEnsureFailureYieldsEmptyDay(t *testing.T) {
	slots := &fakeSlotRepo{slots: nil, availability: map[int64]*domain.SlotAvailability{}}
	ensurer := &fakeEnsurer{slots: slots, lastErr: errors.New("schedule misconfigured")}
	uc := newTestUseCase(&fakeGameRepo{games: map[int64]*domain.Game{1: testGame()}}, slots, &fakeBookingRepo{})
	uc.slotEnsurer = ensurer

	// сбой дозаполнения не валит чтение, день просто пустой
	resp, err := uc.Execute(context.Background(), &Request{GameID: 1, Date: testDate})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecuteErrors(t *testing.T) {
	inactive := testGame()
	inactive.IsActive = false
	games := &fakeGameRepo{games: map[int64]*domain.Game{1: inactive}}
	uc := newTestUseCase(games, &fakeSlotRepo{}, &fakeBookingRepo{})

	_, err := uc.Execute(context.Background(), &Request{GameID: 1, Date: testDate})
	assert.ErrorIs(t, err, ErrGameNotActive)

	_, err = uc.Execute(context.Background(), &Request{GameID: 99, Date: testDate})
	assert.ErrorIs(t, err, ErrGameNotFound)

	_, err = uc.Execute(context.Background(), &Request{GameID: 0, Date: testDate})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{GameID: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
