package create_booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapnex/GC-SlotService/internal/domain"
	"github.com/tapnex/GC-SlotService/pkg/ptr"
)

type fakeGameRepo struct {
	game *domain.Game
}

func (f *fakeGameRepo) GetByID(_ context.Context, _ int64) (*domain.Game, error) {
	return f.game, nil
}

type fakeSlotRepo struct {
	slot         *domain.GameSlot
	availability *domain.SlotAvailability
}

func (f *fakeSlotRepo) GetByID(_ context.Context, _ int64) (*domain.GameSlot, error) {
	return f.slot, nil
}

func (f *fakeSlotRepo) GetAvailability(_ context.Context, _ int64) (*domain.SlotAvailability, error) {
	return f.availability, nil
}

type fakeBookingRepo struct {
	active  []*domain.Booking
	created []*domain.Booking
	nextID  int64
}

func (f *fakeBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	f.nextID++
	stored := *b
	stored.ID = f.nextID
	stored.CreatedAt = time.Now()
	f.created = append(f.created, &stored)
	f.active = append(f.active, &stored)
	return &stored, nil
}

func (f *fakeBookingRepo) GetActiveBySlot(_ context.Context, _ int64) ([]*domain.Booking, error) {
	return f.active, nil
}

func (f *fakeBookingRepo) CreateHistory(_ context.Context, _ *domain.BookingHistory) error {
	return nil
}

// serialTxManager выполняет транзакции под мьютексом, имитируя
// сериализуемую изоляцию для конкурентных тестов
type serialTxManager struct {
	mu sync.Mutex
}

func (m *serialTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type flatFee struct{ fee float64 }

func (f flatFee) Apply(float64) float64 { return f.fee }

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func testFixtures() (*fakeGameRepo, *fakeSlotRepo, *fakeBookingRepo) {
	game := &domain.Game{
		ID:           1,
		Name:         "PS5 Station",
		Capacity:     4,
		BookingType:  domain.BookingTypeHybrid,
		PrivatePrice: 1500,
		SharedPrice:  ptr.Ptr(500.0),
		IsActive:     true,
	}
	slot := &domain.GameSlot{
		ID:        10,
		GameID:    1,
		Date:      time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
		StartTime: "10:00",
		EndTime:   "11:00",
	}
	availability := &domain.SlotAvailability{SlotID: 10, TotalCapacity: 4}
	return &fakeGameRepo{game: game}, &fakeSlotRepo{slot: slot, availability: availability}, &fakeBookingRepo{}
}

func newTestUseCase(games *fakeGameRepo, slots *fakeSlotRepo, bookings *fakeBookingRepo) *UseCase {
	uc := NewUseCase(games, slots, bookings, &serialTxManager{}, flatFee{fee: 50}, nil, nopLogger{})
	uc.timeProvider = &fixedTime{now: testNow}
	return uc
}

func TestExecuteSharedBooking(t *testing.T) {
	games, slots, bookings := testFixtures()
	uc := newTestUseCase(games, slots, bookings)

	resp, err := uc.Execute(context.Background(), &Request{
		CustomerID:  7,
		SlotID:      10,
		BookingType: domain.BookingShared,
		Spots:       2,
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.BookingShared), resp.BookingType)
	assert.Equal(t, 2, resp.SpotsBooked)
	assert.Equal(t, 500.0, resp.PricePerSpot)
	assert.Equal(t, 1000.0, resp.Subtotal)
	assert.Equal(t, 50.0, resp.PlatformFee)
	assert.Equal(t, 1050.0, resp.TotalAmount)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	// резерв живёт ровно окно оплаты
	assert.Equal(t, testNow.Add(domain.ReservationWindow), resp.ReservationExpiresAt)
}

func TestExecutePrivateBooking(t *testing.T) {
	games, slots, bookings := testFixtures()
	uc := newTestUseCase(games, slots, bookings)

	resp, err := uc.Execute(context.Background(), &Request{
		CustomerID:  7,
		SlotID:      10,
		BookingType: domain.BookingPrivate,
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.BookingPrivate), resp.BookingType)
	// приватная бронь забирает всю вместимость по цене за слот
	assert.Equal(t, 4, resp.SpotsBooked)
	assert.Equal(t, 1500.0, resp.Subtotal)
	assert.Equal(t, 1550.0, resp.TotalAmount)
}

func TestExecuteSharedUpgradesToPrivate(t *testing.T) {
	games, slots, bookings := testFixtures()
	uc := newTestUseCase(games, slots, bookings)

	// долевая бронь на всю вместимость пустого слота повышается до приватной
	resp, err := uc.Execute(context.Background(), &Request{
		CustomerID:  7,
		SlotID:      10,
		BookingType: domain.BookingShared,
		Spots:       4,
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.BookingPrivate), resp.BookingType)
	assert.Equal(t, 1500.0, resp.Subtotal)
}

func TestExecuteSharedOverCapacityRejected(t *testing.T) {
	games, slots, bookings := testFixtures()
	uc := newTestUseCase(games, slots, bookings)

	// запрос больше вместимости до приватного не повышается, а отклоняется
	_, err := uc.Execute(context.Background(), &Request{
		CustomerID:  7,
		SlotID:      10,
		BookingType: domain.BookingShared,
		Spots:       5,
	})
	assert.ErrorIs(t, err, ErrNotEnoughSpots)
	assert.ErrorContains(t, err, "only 4 spot(s) available")
	assert.Empty(t, bookings.created)
}

func TestExecutePrivateOnPartiallyBookedSlot(t *testing.T) {
	games, slots, bookings := testFixtures()
	slots.availability.BookedSpots = 2
	uc := newTestUseCase(games, slots, bookings)

	// в отказе видно, сколько мест уже занято
	_, err := uc.Execute(context.Background(), &Request{
		CustomerID:  7,
		SlotID:      10,
		BookingType: domain.BookingPrivate,
	})
	assert.ErrorIs(t, err, ErrSlotNotEmpty)
	assert.ErrorContains(t, err, "2 spot(s) already booked")
}

func TestExecuteNoUpgradeWhenSlotNotEmpty(t *testing.T) {
	games, slots, bookings := testFixtures()
	slots.availability.BookedSpots = 1
	uc := newTestUseCase(games, slots, bookings)

	// на непустом слоте повышение не срабатывает, а мест не хватает
	_, err := uc.Execute(context.Background(), &Request{
		CustomerID:  7,
		SlotID:      10,
		BookingType: domain.BookingShared,
		Spots:       4,
	})
	assert.ErrorIs(t, err, ErrNotEnoughSpots)
	assert.ErrorContains(t, err, "only 3 spot(s) available")
}

func TestExecutePendingPrivateBlocksEveryone(t *testing.T) {
	games, slots, bookings := testFixtures()
	expiresAt := testNow.Add(3 * time.Minute)
	bookings.active = []*domain.Booking{{
		ID:                   99,
		BookingType:          domain.BookingPrivate,
		Status:               domain.StatusPending,
		ReservationExpiresAt: &expiresAt,
	}}
	uc := newTestUseCase(games, slots, bookings)

	_, err := uc.Execute(context.Background(), &Request{
		CustomerID:  7,
		SlotID:      10,
		BookingType: domain.BookingShared,
		Spots:       1,
	})
	assert.ErrorIs(t, err, ErrSlotReserved)

	_, err = uc.Execute(context.Background(), &Request{
		CustomerID:  7,
		SlotID:      10,
		BookingType: domain.BookingPrivate,
	})
	assert.ErrorIs(t, err, ErrSlotReserved)
}

func TestExecuteExpiredReservationIgnored(t *testing.T) {
	games, slots, bookings := testFixtures()
	expiresAt := testNow.Add(-time.Minute)
	bookings.active = []*domain.Booking{{
		ID:                   99,
		BookingType:          domain.BookingPrivate,
		Status:               domain.StatusPending,
		ReservationExpiresAt: &expiresAt,
	}}
	uc := newTestUseCase(games, slots, bookings)

	// истёкший резерв места не держит
	_, err := uc.Execute(context.Background(), &Request{
		CustomerID:  7,
		SlotID:      10,
		BookingType: domain.BookingPrivate,
	})
	assert.NoError(t, err)
}

func TestExecutePendingSharedReducesSpots(t *testing.T) {
	games, slots, bookings := testFixtures()
	expiresAt := testNow.Add(3 * time.Minute)
	bookings.active = []*domain.Booking{{
		ID:                   99,
		BookingType:          domain.BookingShared,
		SpotsBooked:          3,
		Status:               domain.StatusPending,
		ReservationExpiresAt: &expiresAt,
	}}
	uc := newTestUseCase(games, slots, bookings)

	_, err := uc.Execute(context.Background(), &Request{
		CustomerID:  7,
		SlotID:      10,
		BookingType: domain.BookingShared,
		Spots:       2,
	})
	assert.ErrorIs(t, err, ErrNotEnoughSpots)
	assert.ErrorContains(t, err, "only 1 spot(s) available")

	// и приватная бронь поверх чужого резерва невозможна
	_, err = uc.Execute(context.Background(), &Request{
		CustomerID:  7,
		SlotID:      10,
		BookingType: domain.BookingPrivate,
	})
	assert.ErrorIs(t, err, ErrSlotReserved)
}

func TestExecutePrivateBookedSlot(t *testing.T) {
	games, slots, bookings := testFixtures()
	slots.availability.IsPrivateBooked = true
	slots.availability.BookedSpots = 4
	uc := newTestUseCase(games, slots, bookings)

	_, err := uc.Execute(context.Background(), &Request{
		CustomerID:  7,
		SlotID:      10,
		BookingType: domain.BookingShared,
		Spots:       1,
	})
	assert.ErrorIs(t, err, ErrSlotPrivateBooked)
}

func TestExecuteBlockedAndPastSlot(t *testing.T) {
	games, slots, bookings := testFixtures()
	slots.slot.IsBlocked = true
	uc := newTestUseCase(games, slots, bookings)

	_, err := uc.Execute(context.Background(), &Request{
		CustomerID: 7, SlotID: 10, BookingType: domain.BookingPrivate,
	})
	assert.ErrorIs(t, err, ErrSlotBlocked)

	slots.slot.IsBlocked = false
	slots.slot.Date = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	_, err = uc.Execute(context.Background(), &Request{
		CustomerID: 7, SlotID: 10, BookingType: domain.BookingPrivate,
	})
	assert.ErrorIs(t, err, ErrSlotInPast)
}

func TestExecuteSharedNotSupported(t *testing.T) {
	games, slots, bookings := testFixtures()
	games.game.BookingType = domain.BookingTypeSingle
	uc := newTestUseCase(games, slots, bookings)

	_, err := uc.Execute(context.Background(), &Request{
		CustomerID: 7, SlotID: 10, BookingType: domain.BookingShared, Spots: 1,
	})
	assert.ErrorIs(t, err, ErrSharedNotSupported)
}

func TestExecuteValidation(t *testing.T) {
	games, slots, bookings := testFixtures()
	uc := newTestUseCase(games, slots, bookings)

	_, err := uc.Execute(context.Background(), &Request{CustomerID: 0, SlotID: 10, BookingType: domain.BookingPrivate})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{CustomerID: 7, SlotID: 10, BookingType: "WEEKLY"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{CustomerID: 7, SlotID: 10, BookingType: domain.BookingShared, Spots: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecuteConcurrentLastSpots(t *testing.T) {
	games, slots, bookings := testFixtures()
	slots.availability.BookedSpots = 2
	uc := newTestUseCase(games, slots, bookings)

	// два конкурирующих запроса на последние два места: пройти должен ровно один
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), &Request{
				CustomerID:  int64(100 + i),
				SlotID:      10,
				BookingType: domain.BookingShared,
				Spots:       2,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrNotEnoughSpots)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, bookings.created, 1)
}
