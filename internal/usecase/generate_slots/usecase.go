package generate_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tapnex/GC-SlotService/internal/domain"
	gameRepo "github.com/tapnex/GC-SlotService/internal/infra/storage/game"
)

// UseCase use case генерации слотов по расписанию игры
type UseCase struct {
	gameRepo     GameRepository
	slotRepo     SlotRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(gameRepo GameRepository, slotRepo SlotRepository, logger Logger) *UseCase {
	return &UseCase{
		gameRepo:     gameRepo,
		slotRepo:     slotRepo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute генерирует слоты игры на диапазон дат
// Дни обрабатываются независимо и идемпотентно: день с уже существующими
// слотами пропускается целиком, конфликтные вставки внутри дня молча
// игнорируются. Прошедшие даты и дни вне расписания игры пропускаются.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GenerateSlots: game=%d, range=%s..%s",
		req.GameID, req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GenerateSlots: validation failed: %v", err)
		return nil, err
	}

	game, err := uc.getGame(ctx, req.GameID)
	if err != nil {
		return nil, err
	}

	// Выключенная игра не ошибка, просто нечего генерировать
	if !game.IsActive {
		uc.logger.Warn("GenerateSlots: game id=%d is not active, nothing to generate", game.ID)
		return &Response{GameID: game.ID}, nil
	}

	if err := game.ValidateSchedule(); err != nil {
		uc.logger.Warn("GenerateSlots: schedule validation failed for game id=%d: %v", game.ID, err)
		return nil, err
	}

	if len(game.AvailableDays) == 0 {
		uc.logger.Warn("GenerateSlots: game id=%d has no available days, nothing to generate", game.ID)
		return &Response{GameID: game.ID}, nil
	}

	created, covered, skipped, err := uc.generateRange(ctx, game, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("GenerateSlots: game=%d created %d slots over %d days (%d days skipped)",
		game.ID, created, covered, skipped)

	return &Response{
		GameID:       game.ID,
		SlotsCreated: created,
		DaysCovered:  covered,
		DaysSkipped:  skipped,
	}, nil
}

// EnsureDate гарантирует наличие слотов игры на дату
// Используется фоновым обслуживанием горизонта. Возвращает число созданных
// слотов: 0 означает, что день уже покрыт или вне расписания.
func (uc *UseCase) EnsureDate(ctx context.Context, gameID int64, date time.Time) (int, error) {
	game, err := uc.getGame(ctx, gameID)
	if err != nil {
		return 0, err
	}

	if !game.IsActive {
		return 0, nil
	}

	if err := game.ValidateSchedule(); err != nil {
		return 0, err
	}

	created, _, _, err := uc.generateRange(ctx, game, date, date)
	return created, err
}

// Regenerate перестраивает будущие слоты игры после смены расписания
// Удаляются только будущие автосгенерированные слоты без активных
// бронирований: ручные слоты и слоты с бронями переживают перегенерацию.
// Затем сетка строится заново на стандартный диапазон вперёд.
func (uc *UseCase) Regenerate(ctx context.Context, gameID int64, daysAhead int) (*RegenerateResponse, error) {
	uc.logger.Info("RegenerateSlots: game=%d, daysAhead=%d", gameID, daysAhead)

	if daysAhead <= 0 {
		daysAhead = domain.DefaultGenerationDaysAhead
	}

	game, err := uc.getGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if !game.IsActive {
		uc.logger.Warn("RegenerateSlots: game id=%d is not active, nothing to regenerate", game.ID)
		return &RegenerateResponse{GameID: game.ID}, nil
	}

	if err := game.ValidateSchedule(); err != nil {
		uc.logger.Warn("RegenerateSlots: schedule validation failed for game id=%d: %v", game.ID, err)
		return nil, err
	}

	today := dateOnly(uc.timeProvider.Now())

	deleted, err := uc.slotRepo.DeleteUnbookedFutureAuto(ctx, game.ID, today)
	if err != nil {
		uc.logger.Error("RegenerateSlots: failed to delete future auto slots for game id=%d: %v", game.ID, err)
		return nil, fmt.Errorf("%w: failed to delete future auto slots: %v", ErrInternal, err)
	}
	uc.logger.Info("RegenerateSlots: game=%d deleted %d unbooked future auto slots", game.ID, deleted)

	created, covered, skipped, err := uc.generateRange(ctx, game, today, today.AddDate(0, 0, daysAhead-1))
	if err != nil {
		return nil, err
	}

	uc.logger.Info("RegenerateSlots: game=%d created %d slots over %d days", game.ID, created, covered)

	return &RegenerateResponse{
		GameID:       game.ID,
		SlotsDeleted: deleted,
		SlotsCreated: created,
		DaysCovered:  covered,
		DaysSkipped:  skipped,
	}, nil
}

// generateRange генерирует слоты по дням диапазона [startDate, endDate]
func (uc *UseCase) generateRange(ctx context.Context, game *domain.Game, startDate, endDate time.Time) (created, covered, skipped int, err error) {
	today := dateOnly(uc.timeProvider.Now())

	for date := dateOnly(startDate); !date.After(dateOnly(endDate)); date = date.AddDate(0, 0, 1) {
		if date.Before(today) {
			skipped++
			continue
		}
		if !game.IsAvailableOn(date) {
			skipped++
			continue
		}

		// Идемпотентность по дням: день с существующими слотами не трогаем,
		// чтобы не плодить дубли при повторной генерации
		exists, err := uc.slotRepo.ExistsForDate(ctx, game.ID, date)
		if err != nil {
			uc.logger.Error("GenerateSlots: failed to check existing slots for game id=%d date=%s: %v",
				game.ID, date.Format(domain.DateFormat), err)
			return 0, 0, 0, fmt.Errorf("%w: failed to check existing slots: %v", ErrInternal, err)
		}
		if exists {
			skipped++
			continue
		}

		slots, err := buildDayGrid(game, date)
		if err != nil {
			uc.logger.Error("GenerateSlots: failed to build day grid for game id=%d date=%s: %v",
				game.ID, date.Format(domain.DateFormat), err)
			return 0, 0, 0, fmt.Errorf("%w: failed to build day grid: %v", ErrInternal, err)
		}
		if len(slots) == 0 {
			skipped++
			continue
		}

		inserted, err := uc.slotRepo.BulkCreateForDate(ctx, slots, game.Capacity)
		if err != nil {
			uc.logger.Error("GenerateSlots: failed to insert slots for game id=%d date=%s: %v",
				game.ID, date.Format(domain.DateFormat), err)
			return 0, 0, 0, fmt.Errorf("%w: failed to insert slots: %v", ErrInternal, err)
		}

		created += inserted
		covered++
	}

	return created, covered, skipped, nil
}

func (uc *UseCase) getGame(ctx context.Context, gameID int64) (*domain.Game, error) {
	game, err := uc.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, gameRepo.ErrGameNotFound) {
			uc.logger.Warn("GenerateSlots: game id=%d not found", gameID)
			return nil, ErrGameNotFound
		}
		uc.logger.Error("GenerateSlots: failed to get game id=%d: %v", gameID, err)
		return nil, fmt.Errorf("%w: failed to get game: %v", ErrInternal, err)
	}

	return game, nil
}

func validateRequest(req *Request) error {
	if req.GameID <= 0 {
		return fmt.Errorf("%w: gameID must be positive", ErrInvalidInput)
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return fmt.Errorf("%w: startDate and endDate are required", ErrInvalidInput)
	}
	if dateOnly(req.EndDate).Before(dateOnly(req.StartDate)) {
		return fmt.Errorf("%w: endDate must not be before startDate", ErrInvalidRange)
	}
	if dateOnly(req.EndDate).Sub(dateOnly(req.StartDate)) > time.Duration(domain.MaxGenerationRangeDays)*24*time.Hour {
		return fmt.Errorf("%w: range must not exceed %d days", ErrInvalidRange, domain.MaxGenerationRangeDays)
	}
	return nil
}
