package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/tapnex/GC-SlotService/internal/domain"
	gameRepo "github.com/tapnex/GC-SlotService/internal/infra/storage/game"
	slotRepo "github.com/tapnex/GC-SlotService/internal/infra/storage/slot"
)

// UseCase use case для создания бронирования
type UseCase struct {
	gameRepo     GameRepository
	slotRepo     SlotRepository
	bookingRepo  BookingRepository
	txManager    TransactionManager
	feePolicy    FeePolicy
	notifier     AvailabilityNotifier
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
// notifier может быть nil, если уведомления о доступности отключены
func NewUseCase(
	gameRepo GameRepository,
	slotRepo SlotRepository,
	bookingRepo BookingRepository,
	txManager TransactionManager,
	feePolicy FeePolicy,
	notifier AvailabilityNotifier,
	logger Logger,
) *UseCase {
	return &UseCase{
		gameRepo:     gameRepo,
		slotRepo:     slotRepo,
		bookingRepo:  bookingRepo,
		txManager:    txManager,
		feePolicy:    feePolicy,
		notifier:     notifier,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования
// Проверка доступности и вставка брони идут в одной сериализуемой транзакции,
// строка доступности слота блокируется через FOR UPDATE - из двух конкурирующих
// запросов на последние места выигрывает ровно один
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: customer=%d, slot=%d, type=%s, spots=%d",
		req.CustomerID, req.SlotID, req.BookingType, req.Spots)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Получаем слот
	slot, err := uc.slotRepo.GetByID(ctx, req.SlotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			uc.logger.Warn("CreateBooking: slot id=%d not found", req.SlotID)
			return nil, ErrSlotNotFound
		}
		uc.logger.Error("CreateBooking: failed to get slot id=%d: %v", req.SlotID, err)
		return nil, fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
	}

	if slot.IsBlocked {
		uc.logger.Warn("CreateBooking: slot id=%d is blocked", req.SlotID)
		return nil, ErrSlotBlocked
	}

	if slot.IsPast(now) {
		uc.logger.Warn("CreateBooking: slot id=%d has already started", req.SlotID)
		return nil, ErrSlotInPast
	}

	// 3. Получаем игру
	game, err := uc.gameRepo.GetByID(ctx, slot.GameID)
	if err != nil {
		if errors.Is(err, gameRepo.ErrGameNotFound) {
			uc.logger.Warn("CreateBooking: game id=%d not found", slot.GameID)
			return nil, ErrGameNotFound
		}
		uc.logger.Error("CreateBooking: failed to get game id=%d: %v", slot.GameID, err)
		return nil, fmt.Errorf("%w: failed to get game: %v", ErrInternal, err)
	}

	if !game.IsActive {
		uc.logger.Warn("CreateBooking: game id=%d is not active", game.ID)
		return nil, ErrGameNotActive
	}

	if req.BookingType == domain.BookingShared && !game.SupportsShared() {
		uc.logger.Warn("CreateBooking: game id=%d does not support shared bookings", game.ID)
		return nil, ErrSharedNotSupported
	}

	var result *domain.Booking

	// 4. Проверяем доступность и создаем бронь в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Счётчик доступности с блокировкой строки (FOR UPDATE)
		availability, err := uc.slotRepo.GetAvailability(txCtx, req.SlotID)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get availability for slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to get availability: %v", ErrInternal, err)
		}

		// 4.2. Живые резервы незавершённых оплат
		active, err := uc.bookingRepo.GetActiveBySlot(txCtx, req.SlotID)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get active bookings for slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to get active bookings: %v", ErrInternal, err)
		}
		reservations := collectReservations(active, now)

		// 4.3. Определяем фактический тип брони
		// SHARED ровно на всю вместимость пустого слота повышается до PRIVATE:
		// клиент забирает слот целиком и получает приватный прайс. Запрос
		// больше вместимости повышением не спасается и падает на проверке мест
		bookingType := req.BookingType
		if bookingType == domain.BookingShared &&
			req.Spots == availability.TotalCapacity &&
			availability.IsEmpty() &&
			!reservations.HasPendingPrivate && reservations.ReservedSpots == 0 {
			uc.logger.Info("CreateBooking: upgrading shared booking to private (spots=%d, capacity=%d)",
				req.Spots, availability.TotalCapacity)
			bookingType = domain.BookingPrivate
		}

		// 4.4. Проверяем доступность под фактический тип
		if bookingType == domain.BookingPrivate {
			if err := checkPrivateAvailability(availability, reservations); err != nil {
				uc.logger.Warn("CreateBooking: private booking rejected for slot id=%d: %v", req.SlotID, err)
				return err
			}
		} else {
			if err := checkSharedAvailability(availability, reservations, req.Spots); err != nil {
				uc.logger.Warn("CreateBooking: shared booking rejected for slot id=%d: %v", req.SlotID, err)
				return err
			}
		}

		// 4.5. Считаем стоимость
		var pricePerSpot, subtotal float64
		var spots int
		if bookingType == domain.BookingPrivate {
			pricePerSpot = game.PrivatePrice
			subtotal = game.PrivatePrice
			spots = availability.TotalCapacity
		} else {
			pricePerSpot = game.SharedPriceValue()
			spots = req.Spots
			subtotal = pricePerSpot * float64(spots)
		}
		fee := uc.feePolicy.Apply(subtotal)

		// 4.6. Создаем PENDING-бронь с окном резервирования
		// Счётчики доступности не трогаем: места удерживает сама PENDING-строка
		// до подтверждения оплаты или истечения окна
		expiresAt := now.Add(domain.ReservationWindow)
		booking := &domain.Booking{
			CustomerID:           req.CustomerID,
			GameID:               game.ID,
			SlotID:               slot.ID,
			BookingType:          bookingType,
			SpotsBooked:          spots,
			PricePerSpot:         pricePerSpot,
			Subtotal:             subtotal,
			PlatformFee:          fee,
			TotalAmount:          subtotal + fee,
			Status:               domain.StatusPending,
			ReservationExpiresAt: &expiresAt,
			Notes:                req.Notes,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		// 4.7. Запись в историю статусов
		history := &domain.BookingHistory{
			BookingID: created.ID,
			NewStatus: domain.StatusPending,
			ChangedBy: &req.CustomerID,
		}
		if err := uc.bookingRepo.CreateHistory(txCtx, history); err != nil {
			uc.logger.Error("CreateBooking: failed to create history record: %v", err)
			return fmt.Errorf("%w: failed to create history record: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d, type=%s, total=%.2f, expires=%s",
		result.ID, result.BookingType, result.TotalAmount, result.ReservationExpiresAt.Format("15:04:05"))

	// 5. Уведомляем об изменении доступности (best-effort)
	if uc.notifier != nil {
		uc.notifier.NotifySlotUpdated(ctx, result.GameID, result.SlotID)
	}

	return &Response{
		ID:                   result.ID,
		CustomerID:           result.CustomerID,
		GameID:               result.GameID,
		SlotID:               result.SlotID,
		Date:                 slot.Date,
		StartTime:            slot.StartTime,
		EndTime:              slot.EndTime,
		BookingType:          string(result.BookingType),
		SpotsBooked:          result.SpotsBooked,
		PricePerSpot:         result.PricePerSpot,
		Subtotal:             result.Subtotal,
		PlatformFee:          result.PlatformFee,
		TotalAmount:          result.TotalAmount,
		Status:               string(result.Status),
		ReservationExpiresAt: *result.ReservationExpiresAt,
		Notes:                result.Notes,
		CreatedAt:            result.CreatedAt,
	}, nil
}
