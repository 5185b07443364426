package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tapnex/GC-SlotService/internal/domain"
	bookingRepo "github.com/tapnex/GC-SlotService/internal/infra/storage/booking"
	"github.com/tapnex/GC-SlotService/internal/service/bookings/models"
)

// Service сервис жизненного цикла бронирований
// Каждая смена статуса проходит через доменную машину переходов: она же
// говорит, как поправить счётчики доступности слота. Смена статуса и
// обновление счётчиков всегда идут в одной сериализуемой транзакции.
type Service struct {
	bookingRepo  BookingRepository
	slotRepo     SlotRepository
	txManager    TransactionManager
	notifier     AvailabilityNotifier
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
// notifier может быть nil, если уведомления о доступности отключены
func NewService(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	txManager TransactionManager,
	notifier AvailabilityNotifier,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		slotRepo:     slotRepo,
		txManager:    txManager,
		notifier:     notifier,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// GetByID получает бронирование по ID
// Пользователь может видеть только своё бронирование. Просроченная PENDING
// переводится в EXPIRED прямо на чтении, не дожидаясь фонового прохода
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.CustomerID != userID {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, ErrAccessDenied
	}

	if s.expireStale(ctx, []*domain.Booking{booking}, s.timeProvider.Now()) {
		booking, err = s.getBooking(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает историю бронирований пользователя
// Опционально фильтрует по игре, периоду и статусу
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d", req.UserID)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetUserBookings: invalid filter for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByUserWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	// Просроченные PENDING гасятся на чтении, список перечитывается,
	// чтобы фильтр по статусу остался честным
	if s.expireStale(ctx, bookings, s.timeProvider.Now()) {
		bookings, err = s.bookingRepo.GetByUserWithFilter(ctx, filter)
		if err != nil {
			s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
			return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
		}
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// GetHistory получает историю статусов бронирования
// Доступна только владельцу бронирования
func (s *Service) GetHistory(ctx context.Context, bookingID int64, userID int64) (*models.HistoryResponse, error) {
	s.logger.Info("GetHistory: fetching history for booking id=%d, user=%d", bookingID, userID)

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.CustomerID != userID {
		s.logger.Warn("GetHistory: access denied for user=%d to booking id=%d", userID, bookingID)
		return nil, ErrAccessDenied
	}

	entries, err := s.bookingRepo.GetHistory(ctx, bookingID)
	if err != nil {
		s.logger.Error("GetHistory: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: GetHistory - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainHistory(bookingID, entries), nil
}

// Confirm подтверждает бронирование после успешной оплаты
// PENDING -> CONFIRMED: места брони впервые попадают в счётчики доступности.
// Подтверждение с истёкшим окном резервирования отклоняется - такая бронь
// уйдёт в EXPIRED автоматическим переходом, оплату нужно возвращать.
func (s *Service) Confirm(ctx context.Context, bookingID int64, req *models.ConfirmBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Confirm: confirming booking id=%d", bookingID)

	now := s.timeProvider.Now()
	var confirmed *domain.Booking

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := s.getBooking(txCtx, bookingID)
		if err != nil {
			return err
		}

		if booking.Status != domain.StatusPending {
			s.logger.Warn("Confirm: booking id=%d is not pending, status=%s", bookingID, booking.Status)
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, domain.StatusConfirmed)
		}

		if booking.IsPendingExpired(now) {
			s.logger.Warn("Confirm: reservation expired for booking id=%d", bookingID)
			return ErrReservationExpired
		}

		if err := s.applyTransition(txCtx, booking, domain.StatusConfirmed, nil, nil); err != nil {
			return err
		}

		if req.PaymentReference != "" {
			if err := s.bookingRepo.SetPaymentReference(txCtx, bookingID, req.PaymentReference); err != nil {
				s.logger.Error("Confirm: failed to set payment reference for booking id=%d: %v", bookingID, err)
				return fmt.Errorf("%w: Confirm - failed to set payment reference: %v", ErrInternal, err)
			}
		}

		confirmed = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Confirm: successfully confirmed booking id=%d", bookingID)
	s.notifySlot(ctx, confirmed)

	return s.GetByID(ctx, bookingID, confirmed.CustomerID)
}

// Cancel отменяет бронирование
// Владелец может отменить PENDING или CONFIRMED бронь. Отмена подтверждённой
// брони возвращает места в слот, отмена PENDING просто гасит резерв.
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.UserID)

	var cancelled *domain.Booking

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := s.getBooking(txCtx, bookingID)
		if err != nil {
			return err
		}

		if booking.CustomerID != req.UserID {
			s.logger.Warn("Cancel: access denied for user=%d to booking id=%d", req.UserID, bookingID)
			return ErrAccessDenied
		}

		if !booking.CanBeCancelled() {
			s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
			return ErrCannotCancel
		}

		if err := s.applyTransition(txCtx, booking, domain.StatusCancelled, &req.UserID, req.Reason); err != nil {
			return err
		}

		cancelled = booking
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d", bookingID)
	s.notifySlot(ctx, cancelled)

	return nil
}

// CheckIn отмечает прибытие клиента по бронированию
// Верификация разрешена для CONFIRMED и IN_PROGRESS броней. Неверифицированные
// брони по окончании слота уходят в NO_SHOW.
func (s *Service) CheckIn(ctx context.Context, bookingID int64) (*models.BookingResponse, error) {
	s.logger.Info("CheckIn: verifying booking id=%d", bookingID)

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status != domain.StatusConfirmed && booking.Status != domain.StatusInProgress {
		s.logger.Warn("CheckIn: booking id=%d cannot be checked in, status=%s", bookingID, booking.Status)
		return nil, ErrNotCheckedInable
	}

	now := s.timeProvider.Now()
	if err := s.bookingRepo.SetVerified(ctx, bookingID, now); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("CheckIn: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: CheckIn - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CheckIn: successfully verified booking id=%d", bookingID)
	return s.GetByID(ctx, bookingID, booking.CustomerID)
}

// ApplyAutomaticTransitions выполняет один проход автоматических переходов:
//   - PENDING с истёкшим окном резервирования -> EXPIRED
//   - CONFIRMED, чей слот начался -> IN_PROGRESS
//   - CONFIRMED / IN_PROGRESS, чей слот закончился -> COMPLETED при чек-ине,
//     иначе NO_SHOW
//
// Вызывается фоновым воркером. Каждая бронь обрабатывается в своей
// транзакции: сбой на одной не откатывает остальные.
func (s *Service) ApplyAutomaticTransitions(ctx context.Context, now time.Time) (*models.TransitionSummary, error) {
	summary := &models.TransitionSummary{}

	// 1. Истёкшие резервы
	expired, err := s.bookingRepo.ListExpiredPending(ctx, now)
	if err != nil {
		s.logger.Error("ApplyAutomaticTransitions: failed to list expired pending: %v", err)
		return nil, fmt.Errorf("%w: failed to list expired pending: %v", ErrInternal, err)
	}
	for _, b := range expired {
		if err := s.transitionOne(ctx, b, domain.StatusExpired); err != nil {
			s.logger.Error("ApplyAutomaticTransitions: failed to expire booking id=%d: %v", b.ID, err)
			continue
		}
		summary.Expired++
	}

	// 2. Начавшиеся слоты
	started, err := s.bookingRepo.ListConfirmedStarted(ctx, now)
	if err != nil {
		s.logger.Error("ApplyAutomaticTransitions: failed to list started bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to list started bookings: %v", ErrInternal, err)
	}
	for _, b := range started {
		if err := s.transitionOne(ctx, b, domain.StatusInProgress); err != nil {
			s.logger.Error("ApplyAutomaticTransitions: failed to start booking id=%d: %v", b.ID, err)
			continue
		}
		summary.Started++
	}

	// 3. Закончившиеся слоты
	ended, err := s.bookingRepo.ListActiveEnded(ctx, now)
	if err != nil {
		s.logger.Error("ApplyAutomaticTransitions: failed to list ended bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to list ended bookings: %v", ErrInternal, err)
	}
	for _, b := range ended {
		target := domain.StatusNoShow
		if b.IsVerified {
			target = domain.StatusCompleted
		}
		if err := s.transitionOne(ctx, b, target); err != nil {
			s.logger.Error("ApplyAutomaticTransitions: failed to finish booking id=%d: %v", b.ID, err)
			continue
		}
		if target == domain.StatusCompleted {
			summary.Completed++
		} else {
			summary.NoShows++
		}
	}

	if summary.Expired+summary.Started+summary.Completed+summary.NoShows > 0 {
		s.logger.Info("ApplyAutomaticTransitions: expired=%d started=%d completed=%d noShows=%d",
			summary.Expired, summary.Started, summary.Completed, summary.NoShows)
	}

	return summary, nil
}

// expireStale переводит просроченные PENDING-брони из выборки в EXPIRED
// Сбой перехода не валит чтение: бронь доберёт фоновый проход. Возвращает
// true, если хотя бы одна бронь сменила статус и выборка устарела
func (s *Service) expireStale(ctx context.Context, bookings []*domain.Booking, now time.Time) bool {
	var expired bool
	for _, b := range bookings {
		if !b.IsPendingExpired(now) {
			continue
		}
		if err := s.transitionOne(ctx, b, domain.StatusExpired); err != nil {
			s.logger.Error("expireStale: failed to expire booking id=%d: %v", b.ID, err)
			continue
		}
		expired = true
	}
	return expired
}

// transitionOne выполняет один автоматический переход в своей транзакции
// Статус перечитывается внутри транзакции: бронь могли отменить или
// подтвердить между выборкой и обработкой
func (s *Service) transitionOne(ctx context.Context, stale *domain.Booking, to domain.BookingStatus) error {
	var changed *domain.Booking

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := s.getBooking(txCtx, stale.ID)
		if err != nil {
			return err
		}

		if !domain.CanTransition(booking.Status, to) {
			// Бронь уже ушла в другой статус - не ошибка
			return nil
		}

		if err := s.applyTransition(txCtx, booking, to, nil, nil); err != nil {
			return err
		}

		changed = booking
		return nil
	})
	if err != nil {
		return err
	}

	if changed != nil {
		s.notifySlot(ctx, changed)
	}

	return nil
}

// applyTransition проводит бронь через доменную машину переходов
// и применяет её вердикт к счётчикам доступности. Вызывается только внутри
// сериализуемой транзакции.
func (s *Service) applyTransition(ctx context.Context, booking *domain.Booking, to domain.BookingStatus, changedBy *int64, reason *string) error {
	delta, err := domain.Transition(booking, to)
	if err != nil {
		s.logger.Warn("applyTransition: booking id=%d: %v", booking.ID, err)
		return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	if !delta.IsZero() {
		availability, err := s.slotRepo.GetAvailability(ctx, booking.SlotID)
		if err != nil {
			s.logger.Error("applyTransition: failed to get availability for slot id=%d: %v", booking.SlotID, err)
			return fmt.Errorf("%w: failed to get availability: %v", ErrInternal, err)
		}

		availability.Apply(delta)

		if err := s.slotRepo.UpdateAvailability(ctx, availability); err != nil {
			s.logger.Error("applyTransition: failed to update availability for slot id=%d: %v", booking.SlotID, err)
			return fmt.Errorf("%w: failed to update availability: %v", ErrInternal, err)
		}
	}

	if err := s.bookingRepo.UpdateStatus(ctx, booking.ID, to); err != nil {
		s.logger.Error("applyTransition: failed to update status for booking id=%d: %v", booking.ID, err)
		return fmt.Errorf("%w: failed to update status: %v", ErrInternal, err)
	}

	oldStatus := booking.Status
	history := &domain.BookingHistory{
		BookingID: booking.ID,
		OldStatus: &oldStatus,
		NewStatus: to,
		ChangedBy: changedBy,
		Reason:    reason,
	}
	if err := s.bookingRepo.CreateHistory(ctx, history); err != nil {
		s.logger.Error("applyTransition: failed to create history for booking id=%d: %v", booking.ID, err)
		return fmt.Errorf("%w: failed to create history: %v", ErrInternal, err)
	}

	booking.Status = to
	if to != domain.StatusPending {
		booking.ReservationExpiresAt = nil
	}

	return nil
}

func (s *Service) getBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("getBooking: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("getBooking: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: repository error: %v", ErrInternal, err)
	}
	return booking, nil
}

func (s *Service) notifySlot(ctx context.Context, booking *domain.Booking) {
	if s.notifier == nil || booking == nil {
		return
	}
	s.notifier.NotifySlotUpdated(ctx, booking.GameID, booking.SlotID)
}
