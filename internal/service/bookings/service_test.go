package bookings

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapnex/GC-SlotService/internal/domain"
	bookingRepo "github.com/tapnex/GC-SlotService/internal/infra/storage/booking"
	"github.com/tapnex/GC-SlotService/internal/service/bookings/models"
)

type fakeBookingRepo struct {
	bookings map[int64]*domain.Booking
	history  []*domain.BookingHistory

	expiredPending   []*domain.Booking
	confirmedStarted []*domain.Booking
	activeEnded      []*domain.Booking
}

func newFakeBookingRepo(bookings ...*domain.Booking) *fakeBookingRepo {
	repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{}}
	for _, b := range bookings {
		repo.bookings[b.ID] = b
	}
	return repo
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) GetByUserWithFilter(_ context.Context, filter domain.UserBookingsFilter) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range f.bookings {
		if b.CustomerID == filter.CustomerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, id int64, status domain.BookingStatus) error {
	b, ok := f.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.Status = status
	if status != domain.StatusPending {
		b.ReservationExpiresAt = nil
	}
	return nil
}

func (f *fakeBookingRepo) SetPaymentReference(_ context.Context, id int64, reference string) error {
	b, ok := f.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.PaymentReference = &reference
	return nil
}

func (f *fakeBookingRepo) SetVerified(_ context.Context, id int64, at time.Time) error {
	b, ok := f.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.IsVerified = true
	b.VerifiedAt = &at
	return nil
}

func (f *fakeBookingRepo) ListExpiredPending(_ context.Context, _ time.Time) ([]*domain.Booking, error) {
	return f.expiredPending, nil
}

func (f *fakeBookingRepo) ListConfirmedStarted(_ context.Context, _ time.Time) ([]*domain.Booking, error) {
	return f.confirmedStarted, nil
}

func (f *fakeBookingRepo) ListActiveEnded(_ context.Context, _ time.Time) ([]*domain.Booking, error) {
	return f.activeEnded, nil
}

func (f *fakeBookingRepo) CreateHistory(_ context.Context, h *domain.BookingHistory) error {
	h.ID = int64(len(f.history) + 1)
	f.history = append(f.history, h)
	return nil
}

func (f *fakeBookingRepo) GetHistory(_ context.Context, bookingID int64) ([]*domain.BookingHistory, error) {
	var out []*domain.BookingHistory
	for _, h := range f.history {
		if h.BookingID == bookingID {
			out = append(out, h)
		}
	}
	return out, nil
}

type fakeSlotRepo struct {
	availability map[int64]*domain.SlotAvailability
}

func (f *fakeSlotRepo) GetAvailability(_ context.Context, slotID int64) (*domain.SlotAvailability, error) {
	a, ok := f.availability[slotID]
	if !ok {
		return nil, errors.New("availability not found")
	}
	copied := *a
	return &copied, nil
}

func (f *fakeSlotRepo) UpdateAvailability(_ context.Context, availability *domain.SlotAvailability) error {
	f.availability[availability.SlotID] = availability
	return nil
}

type passTxManager struct {
	mu sync.Mutex
}

func (m *passTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type fakeNotifier struct {
	slotIDs []int64
}

func (f *fakeNotifier) NotifySlotUpdated(_ context.Context, _, slotID int64) {
	f.slotIDs = append(f.slotIDs, slotID)
}

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func pendingBooking(id int64, bookingType domain.BookingType, spots int) *domain.Booking {
	expiresAt := testNow.Add(3 * time.Minute)
	return &domain.Booking{
		ID:                   id,
		CustomerID:           100,
		GameID:               1,
		SlotID:               10,
		BookingType:          bookingType,
		SpotsBooked:          spots,
		Status:               domain.StatusPending,
		ReservationExpiresAt: &expiresAt,
		CreatedAt:            testNow,
		UpdatedAt:            testNow,
	}
}

func newTestService(bookings *fakeBookingRepo, slots *fakeSlotRepo, notifier *fakeNotifier) *Service {
	// nil *fakeNotifier должен попадать в сервис как nil-интерфейс
	var n AvailabilityNotifier
	if notifier != nil {
		n = notifier
	}
	svc := NewService(bookings, slots, &passTxManager{}, n, nopLogger{})
	svc.timeProvider = &fixedTime{now: testNow}
	return svc
}

func TestConfirmSharedBooking(t *testing.T) {
	bookings := newFakeBookingRepo(pendingBooking(1, domain.BookingShared, 2))
	slots := &fakeSlotRepo{availability: map[int64]*domain.SlotAvailability{
		10: {SlotID: 10, TotalCapacity: 4, BookedSpots: 1},
	}}
	notifier := &fakeNotifier{}
	svc := newTestService(bookings, slots, notifier)

	resp, err := svc.Confirm(context.Background(), 1, &models.ConfirmBookingRequest{PaymentReference: "pay_42"})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	require.NotNil(t, resp.PaymentReference)
	assert.Equal(t, "pay_42", *resp.PaymentReference)
	// подтверждение гасит окно резервирования
	assert.Nil(t, resp.ReservationExpiresAt)

	// места впервые попадают в счётчики именно на подтверждении
	assert.Equal(t, 3, slots.availability[10].BookedSpots)

	require.Len(t, bookings.history, 1)
	assert.Equal(t, domain.StatusConfirmed, bookings.history[0].NewStatus)
	require.NotNil(t, bookings.history[0].OldStatus)
	assert.Equal(t, domain.StatusPending, *bookings.history[0].OldStatus)

	assert.Equal(t, []int64{10}, notifier.slotIDs)
}

func TestConfirmPrivateBookingLocksSlot(t *testing.T) {
	bookings := newFakeBookingRepo(pendingBooking(1, domain.BookingPrivate, 4))
	slots := &fakeSlotRepo{availability: map[int64]*domain.SlotAvailability{
		10: {SlotID: 10, TotalCapacity: 4},
	}}
	svc := newTestService(bookings, slots, nil)

	_, err := svc.Confirm(context.Background(), 1, &models.ConfirmBookingRequest{})
	require.NoError(t, err)

	assert.True(t, slots.availability[10].IsPrivateBooked)
	assert.Equal(t, 4, slots.availability[10].BookedSpots)
}

func TestConfirmExpiredReservation(t *testing.T) {
	booking := pendingBooking(1, domain.BookingShared, 2)
	expired := testNow.Add(-time.Minute)
	booking.ReservationExpiresAt = &expired

	bookings := newFakeBookingRepo(booking)
	slots := &fakeSlotRepo{availability: map[int64]*domain.SlotAvailability{
		10: {SlotID: 10, TotalCapacity: 4},
	}}
	svc := newTestService(bookings, slots, nil)

	_, err := svc.Confirm(context.Background(), 1, &models.ConfirmBookingRequest{PaymentReference: "pay_late"})
	assert.ErrorIs(t, err, ErrReservationExpired)

	// бронь не трогаем - её доведёт до EXPIRED автоматический переход
	assert.Equal(t, domain.StatusPending, bookings.bookings[1].Status)
	assert.Equal(t, 0, slots.availability[10].BookedSpots)
}

func TestConfirmNonPending(t *testing.T) {
	booking := pendingBooking(1, domain.BookingShared, 2)
	booking.Status = domain.StatusConfirmed
	booking.ReservationExpiresAt = nil

	svc := newTestService(newFakeBookingRepo(booking), &fakeSlotRepo{}, nil)

	_, err := svc.Confirm(context.Background(), 1, &models.ConfirmBookingRequest{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConfirmNotFound(t *testing.T) {
	svc := newTestService(newFakeBookingRepo(), &fakeSlotRepo{}, nil)

	_, err := svc.Confirm(context.Background(), 99, &models.ConfirmBookingRequest{})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancelAccessDenied(t *testing.T) {
	bookings := newFakeBookingRepo(pendingBooking(1, domain.BookingShared, 2))
	svc := newTestService(bookings, &fakeSlotRepo{}, nil)

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: 999})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Equal(t, domain.StatusPending, bookings.bookings[1].Status)
}

func TestCancelPendingLeavesCountersAlone(t *testing.T) {
	bookings := newFakeBookingRepo(pendingBooking(1, domain.BookingShared, 2))
	slots := &fakeSlotRepo{availability: map[int64]*domain.SlotAvailability{
		10: {SlotID: 10, TotalCapacity: 4},
	}}
	svc := newTestService(bookings, slots, nil)

	reason := "changed my mind"
	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: 100, Reason: &reason})
	require.NoError(t, err)

	// PENDING счётчиков не касался, отмене нечего возвращать
	assert.Equal(t, domain.StatusCancelled, bookings.bookings[1].Status)
	assert.Equal(t, 0, slots.availability[10].BookedSpots)

	require.Len(t, bookings.history, 1)
	require.NotNil(t, bookings.history[0].ChangedBy)
	assert.Equal(t, int64(100), *bookings.history[0].ChangedBy)
	require.NotNil(t, bookings.history[0].Reason)
	assert.Equal(t, reason, *bookings.history[0].Reason)
}

func TestCancelConfirmedReleasesSpots(t *testing.T) {
	booking := pendingBooking(1, domain.BookingShared, 2)
	booking.Status = domain.StatusConfirmed
	booking.ReservationExpiresAt = nil

	bookings := newFakeBookingRepo(booking)
	slots := &fakeSlotRepo{availability: map[int64]*domain.SlotAvailability{
		10: {SlotID: 10, TotalCapacity: 4, BookedSpots: 3},
	}}
	svc := newTestService(bookings, slots, nil)

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: 100})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, bookings.bookings[1].Status)
	assert.Equal(t, 1, slots.availability[10].BookedSpots)
}

func TestCancelInProgress(t *testing.T) {
	booking := pendingBooking(1, domain.BookingShared, 2)
	booking.Status = domain.StatusInProgress
	booking.ReservationExpiresAt = nil

	svc := newTestService(newFakeBookingRepo(booking), &fakeSlotRepo{}, nil)

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: 100})
	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestCheckIn(t *testing.T) {
	booking := pendingBooking(1, domain.BookingShared, 2)
	booking.Status = domain.StatusConfirmed
	booking.ReservationExpiresAt = nil

	bookings := newFakeBookingRepo(booking)
	svc := newTestService(bookings, &fakeSlotRepo{}, nil)

	resp, err := svc.CheckIn(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, resp.IsVerified)
	require.NotNil(t, resp.VerifiedAt)
	assert.Equal(t, testNow.Format(time.RFC3339), *resp.VerifiedAt)
	// чек-ин не меняет статус, только отметку верификации
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
}

func TestCheckInPending(t *testing.T) {
	bookings := newFakeBookingRepo(pendingBooking(1, domain.BookingShared, 2))
	svc := newTestService(bookings, &fakeSlotRepo{}, nil)

	_, err := svc.CheckIn(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotCheckedInable)
	assert.False(t, bookings.bookings[1].IsVerified)
}

func TestApplyAutomaticTransitions(t *testing.T) {
	expiredPending := pendingBooking(1, domain.BookingShared, 2)
	past := testNow.Add(-time.Minute)
	expiredPending.ReservationExpiresAt = &past

	started := pendingBooking(2, domain.BookingShared, 1)
	started.Status = domain.StatusConfirmed
	started.ReservationExpiresAt = nil
	started.SlotID = 11

	endedVerified := pendingBooking(3, domain.BookingPrivate, 4)
	endedVerified.Status = domain.StatusInProgress
	endedVerified.ReservationExpiresAt = nil
	endedVerified.IsVerified = true
	endedVerified.SlotID = 12

	endedNoShow := pendingBooking(4, domain.BookingShared, 3)
	endedNoShow.Status = domain.StatusConfirmed
	endedNoShow.ReservationExpiresAt = nil
	endedNoShow.SlotID = 13

	bookings := newFakeBookingRepo(expiredPending, started, endedVerified, endedNoShow)
	bookings.expiredPending = []*domain.Booking{expiredPending}
	bookings.confirmedStarted = []*domain.Booking{started}
	bookings.activeEnded = []*domain.Booking{endedVerified, endedNoShow}

	slots := &fakeSlotRepo{availability: map[int64]*domain.SlotAvailability{
		10: {SlotID: 10, TotalCapacity: 4},
		11: {SlotID: 11, TotalCapacity: 4, BookedSpots: 1},
		12: {SlotID: 12, TotalCapacity: 4, BookedSpots: 4, IsPrivateBooked: true},
		13: {SlotID: 13, TotalCapacity: 4, BookedSpots: 3},
	}}
	notifier := &fakeNotifier{}
	svc := newTestService(bookings, slots, notifier)

	summary, err := svc.ApplyAutomaticTransitions(context.Background(), testNow)
	require.NoError(t, err)

	assert.Equal(t, &models.TransitionSummary{Expired: 1, Started: 1, Completed: 1, NoShows: 1}, summary)

	assert.Equal(t, domain.StatusExpired, bookings.bookings[1].Status)
	assert.Equal(t, domain.StatusInProgress, bookings.bookings[2].Status)
	assert.Equal(t, domain.StatusCompleted, bookings.bookings[3].Status)
	assert.Equal(t, domain.StatusNoShow, bookings.bookings[4].Status)

	// EXPIRED не трогает счётчики, IN_PROGRESS тоже, завершение возвращает места
	assert.Equal(t, 0, slots.availability[10].BookedSpots)
	assert.Equal(t, 1, slots.availability[11].BookedSpots)
	assert.False(t, slots.availability[12].IsPrivateBooked)
	assert.Equal(t, 0, slots.availability[12].BookedSpots)
	assert.Equal(t, 0, slots.availability[13].BookedSpots)

	assert.Len(t, notifier.slotIDs, 4)
}

func TestApplyAutomaticTransitionsSkipsAlreadyMoved(t *testing.T) {
	// между выборкой и обработкой бронь успели отменить
	stale := pendingBooking(1, domain.BookingShared, 2)
	past := testNow.Add(-time.Minute)
	stale.ReservationExpiresAt = &past

	current := *stale
	current.Status = domain.StatusCancelled
	current.ReservationExpiresAt = nil

	bookings := newFakeBookingRepo(&current)
	bookings.expiredPending = []*domain.Booking{stale}

	slots := &fakeSlotRepo{availability: map[int64]*domain.SlotAvailability{
		10: {SlotID: 10, TotalCapacity: 4},
	}}
	svc := newTestService(bookings, slots, nil)

	_, err := svc.ApplyAutomaticTransitions(context.Background(), testNow)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, bookings.bookings[1].Status)
	assert.Empty(t, bookings.history)
}

func TestGetByIDAccessDenied(t *testing.T) {
	svc := newTestService(newFakeBookingRepo(pendingBooking(1, domain.BookingShared, 2)), &fakeSlotRepo{}, nil)

	_, err := svc.GetByID(context.Background(), 1, 999)
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err := svc.GetByID(context.Background(), 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
}

func TestGetByIDExpiresStalePending(t *testing.T) {
	booking := pendingBooking(1, domain.BookingShared, 2)
	past := testNow.Add(-time.Minute)
	booking.ReservationExpiresAt = &past

	bookings := newFakeBookingRepo(booking)
	slots := &fakeSlotRepo{availability: map[int64]*domain.SlotAvailability{
		10: {SlotID: 10, TotalCapacity: 4},
	}}
	svc := newTestService(bookings, slots, nil)

	// просроченный резерв гасится прямо на чтении, не дожидаясь воркера
	resp, err := svc.GetByID(context.Background(), 1, 100)
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusExpired), resp.Status)
	assert.Equal(t, domain.StatusExpired, bookings.bookings[1].Status)
	assert.Equal(t, 0, slots.availability[10].BookedSpots)

	require.Len(t, bookings.history, 1)
	assert.Equal(t, domain.StatusExpired, bookings.history[0].NewStatus)
}

func TestGetUserBookingsExpiresStalePending(t *testing.T) {
	stale := pendingBooking(1, domain.BookingShared, 2)
	past := testNow.Add(-time.Minute)
	stale.ReservationExpiresAt = &past

	live := pendingBooking(2, domain.BookingShared, 1)
	live.SlotID = 11

	bookings := newFakeBookingRepo(stale, live)
	slots := &fakeSlotRepo{availability: map[int64]*domain.SlotAvailability{
		10: {SlotID: 10, TotalCapacity: 4},
		11: {SlotID: 11, TotalCapacity: 4},
	}}
	svc := newTestService(bookings, slots, nil)

	resp, err := svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{UserID: 100})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 2)

	statuses := map[int64]string{}
	for _, b := range resp.Bookings {
		statuses[b.ID] = b.Status
	}
	assert.Equal(t, string(domain.StatusExpired), statuses[1])
	// живой резерв остаётся PENDING
	assert.Equal(t, string(domain.StatusPending), statuses[2])
}

func TestGetHistoryOwnerOnly(t *testing.T) {
	bookings := newFakeBookingRepo(pendingBooking(1, domain.BookingShared, 2))
	old := domain.StatusPending
	bookings.history = []*domain.BookingHistory{
		{ID: 1, BookingID: 1, OldStatus: &old, NewStatus: domain.StatusConfirmed},
	}
	svc := newTestService(bookings, &fakeSlotRepo{}, nil)

	_, err := svc.GetHistory(context.Background(), 1, 999)
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err := svc.GetHistory(context.Background(), 1, 100)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Entries[0].NewStatus)
}

func TestGetUserBookingsInvalidStatus(t *testing.T) {
	svc := newTestService(newFakeBookingRepo(), &fakeSlotRepo{}, nil)

	bad := "UNKNOWN"
	_, err := svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{UserID: 100, Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
