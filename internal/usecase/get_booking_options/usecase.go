package get_booking_options

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tapnex/GC-SlotService/internal/domain"
	gameRepo "github.com/tapnex/GC-SlotService/internal/infra/storage/game"
)

// Причины ограничений, отдаваемые клиенту
const (
	restrictionPrivatelyBooked = "Privately booked"
	restrictionReservation     = "Reservation in progress"
	restrictionSharedBookings  = "Slot has shared bookings"
	restrictionStarted         = "Slot has started"
	restrictionBlocked         = "Slot is blocked"
	restrictionFull            = "Fully booked"
)

// UseCase use case получения вариантов бронирования игры на дату
type UseCase struct {
	gameRepo     GameRepository
	slotRepo     SlotRepository
	bookingRepo  BookingRepository
	slotEnsurer  SlotEnsurer
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
// slotEnsurer может быть nil, тогда пустые дни отдаются как есть
func NewUseCase(gameRepo GameRepository, slotRepo SlotRepository, bookingRepo BookingRepository, slotEnsurer SlotEnsurer, logger Logger) *UseCase {
	return &UseCase{
		gameRepo:     gameRepo,
		slotRepo:     slotRepo,
		bookingRepo:  bookingRepo,
		slotEnsurer:  slotEnsurer,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute возвращает слоты игры на дату с доступностью по каждому
// Чтение идёт без блокировок: результат - моментальный снимок, финальную
// проверку делает создание брони внутри транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetBookingOptions: game=%d, date=%s", req.GameID, req.Date.Format(domain.DateFormat))

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetBookingOptions: validation failed: %v", err)
		return nil, err
	}

	game, err := uc.gameRepo.GetByID(ctx, req.GameID)
	if err != nil {
		if errors.Is(err, gameRepo.ErrGameNotFound) {
			uc.logger.Warn("GetBookingOptions: game id=%d not found", req.GameID)
			return nil, ErrGameNotFound
		}
		uc.logger.Error("GetBookingOptions: failed to get game id=%d: %v", req.GameID, err)
		return nil, fmt.Errorf("%w: failed to get game: %v", ErrInternal, err)
	}

	if !game.IsActive {
		uc.logger.Warn("GetBookingOptions: game id=%d is not active", game.ID)
		return nil, ErrGameNotActive
	}

	slots, err := uc.slotRepo.GetByGameAndDate(ctx, req.GameID, req.Date)
	if err != nil {
		uc.logger.Error("GetBookingOptions: failed to get slots: %v", err)
		return nil, fmt.Errorf("%w: failed to get slots: %v", ErrInternal, err)
	}

	// Пустой день дозаполняем на лету: запрошенная дата могла уйти за
	// горизонт фонового обслуживания. Ошибка генерации не валит чтение
	if len(slots) == 0 && uc.slotEnsurer != nil {
		created, err := uc.slotEnsurer.EnsureDate(ctx, req.GameID, req.Date)
		if err != nil {
			uc.logger.Warn("GetBookingOptions: on-demand generation failed for game=%d date=%s: %v",
				req.GameID, req.Date.Format(domain.DateFormat), err)
		} else if created > 0 {
			uc.logger.Info("GetBookingOptions: generated %d slots on demand for game=%d date=%s",
				created, req.GameID, req.Date.Format(domain.DateFormat))
			slots, err = uc.slotRepo.GetByGameAndDate(ctx, req.GameID, req.Date)
			if err != nil {
				uc.logger.Error("GetBookingOptions: failed to get slots: %v", err)
				return nil, fmt.Errorf("%w: failed to get slots: %v", ErrInternal, err)
			}
		}
	}

	slotIDs := make([]int64, len(slots))
	for i, s := range slots {
		slotIDs[i] = s.ID
	}

	availabilityBySlot, err := uc.slotRepo.GetAvailabilityBySlots(ctx, slotIDs)
	if err != nil {
		uc.logger.Error("GetBookingOptions: failed to get availability: %v", err)
		return nil, fmt.Errorf("%w: failed to get availability: %v", ErrInternal, err)
	}

	now := uc.timeProvider.Now()

	options := make([]SlotOption, 0, len(slots))
	for _, slot := range slots {
		availability, ok := availabilityBySlot[slot.ID]
		if !ok {
			// Слот без счётчика - аномалия данных, отдаём его недоступным
			uc.logger.Error("GetBookingOptions: slot id=%d has no availability record", slot.ID)
			options = append(options, SlotOption{
				SlotID:      slot.ID,
				StartTime:   slot.StartTime,
				EndTime:     slot.EndTime,
				Restriction: restrictionBlocked,
			})
			continue
		}

		active, err := uc.bookingRepo.GetActiveBySlot(ctx, slot.ID)
		if err != nil {
			uc.logger.Error("GetBookingOptions: failed to get active bookings for slot id=%d: %v", slot.ID, err)
			return nil, fmt.Errorf("%w: failed to get active bookings: %v", ErrInternal, err)
		}

		options = append(options, buildSlotOption(game, slot, availability, active, now))
	}

	uc.logger.Info("GetBookingOptions: game=%d date=%s returning %d slots",
		game.ID, req.Date.Format(domain.DateFormat), len(options))

	return &Response{
		GameID:       game.ID,
		GameName:     game.Name,
		Date:         req.Date,
		BookingType:  string(game.BookingType),
		Capacity:     game.Capacity,
		PrivatePrice: game.PrivatePrice,
		SharedPrice:  game.SharedPrice,
		Slots:        options,
	}, nil
}

// buildSlotOption вычисляет доступность одного слота
// Правила удержания: чужая PENDING-приватная бронь закрывает слот целиком,
// PENDING-долевые закрывают приватную бронь и вычитаются из покупаемых мест.
// Долевая покупка предлагается только для игр с долевым режимом
func buildSlotOption(game *domain.Game, slot *domain.GameSlot, availability *domain.SlotAvailability, active []*domain.Booking, now time.Time) SlotOption {
	option := SlotOption{
		SlotID:        slot.ID,
		StartTime:     slot.StartTime,
		EndTime:       slot.EndTime,
		TotalCapacity: availability.TotalCapacity,
	}

	if slot.IsBlocked {
		option.Restriction = restrictionBlocked
		return option
	}
	if slot.IsPast(now) {
		option.Restriction = restrictionStarted
		return option
	}
	if availability.IsPrivateBooked {
		option.Restriction = restrictionPrivatelyBooked
		return option
	}

	var pendingPrivate bool
	var reservedSpots int
	for _, b := range active {
		if !b.HoldsReservation(now) {
			continue
		}
		if b.BookingType == domain.BookingPrivate {
			pendingPrivate = true
		} else {
			reservedSpots += b.SpotsBooked
		}
	}

	if pendingPrivate {
		option.Restriction = restrictionReservation
		return option
	}

	trulyAvailable := availability.AvailableSpots() - reservedSpots
	if trulyAvailable < 0 {
		trulyAvailable = 0
	}
	option.AvailableSpots = trulyAvailable

	option.CanBookPrivate = availability.CanBookPrivate() && reservedSpots == 0
	option.CanBookShared = game.SupportsShared() && trulyAvailable > 0

	switch {
	case trulyAvailable == 0:
		option.Restriction = restrictionFull
	case !option.CanBookPrivate && reservedSpots > 0:
		option.Restriction = restrictionReservation
	case !option.CanBookPrivate:
		option.Restriction = restrictionSharedBookings
	}

	return option
}

func validateRequest(req *Request) error {
	if req.GameID <= 0 {
		return fmt.Errorf("%w: gameID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	return nil
}
