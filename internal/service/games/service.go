package games

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tapnex/GC-SlotService/internal/domain"
	gameRepo "github.com/tapnex/GC-SlotService/internal/infra/storage/game"
	slotRepo "github.com/tapnex/GC-SlotService/internal/infra/storage/slot"
	"github.com/tapnex/GC-SlotService/internal/service/games/models"
	"github.com/tapnex/GC-SlotService/pkg/types"
)

// Service сервис управления играми и их расписаниями
type Service struct {
	gameRepo     GameRepository
	slotRepo     SlotRepository
	generator    SlotGenerator
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса игр
func NewService(
	gameRepo GameRepository,
	slotRepo SlotRepository,
	generator SlotGenerator,
	logger Logger,
) *Service {
	return &Service{
		gameRepo:     gameRepo,
		slotRepo:     slotRepo,
		generator:    generator,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Create создает игру и генерирует начальную сетку слотов
func (s *Service) Create(ctx context.Context, req *models.CreateGameRequest) (*models.GameResponse, error) {
	s.logger.Info("CreateGame: name=%q, capacity=%d, type=%s", req.Name, req.Capacity, req.BookingType)

	game, err := req.ToDomainGame()
	if err != nil {
		s.logger.Warn("CreateGame: invalid request: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := game.ValidateSchedule(); err != nil {
		s.logger.Warn("CreateGame: schedule validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.gameRepo.Create(ctx, game)
	if err != nil {
		s.logger.Error("CreateGame: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	// Сетка на стандартный горизонт, чтобы игра сразу была бронируема
	if _, err := s.generator.Regenerate(ctx, created.ID, domain.DefaultGenerationDaysAhead); err != nil {
		s.logger.Error("CreateGame: initial slot generation failed for game id=%d: %v", created.ID, err)
		return nil, fmt.Errorf("%w: initial slot generation failed: %v", ErrInternal, err)
	}

	s.logger.Info("CreateGame: successfully created game id=%d", created.ID)
	return models.FromDomainGame(created), nil
}

// GetByID получает игру по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.GameResponse, error) {
	game, err := s.getGame(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.FromDomainGame(game), nil
}

// List получает список игр
func (s *Service) List(ctx context.Context, onlyActive bool) (*models.GameListResponse, error) {
	games, err := s.gameRepo.List(ctx, onlyActive)
	if err != nil {
		s.logger.Error("ListGames: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainGameList(games), nil
}

// UpdateSchedule меняет расписание игры и перестраивает будущие слоты
// Будущие автослоты без бронирований удаляются и создаются заново по новой
// сетке. Слоты с активными бронями и ручные слоты не трогаются.
func (s *Service) UpdateSchedule(ctx context.Context, gameID int64, req *models.UpdateScheduleRequest) (*models.RegenerationResponse, error) {
	s.logger.Info("UpdateSchedule: game=%d", gameID)

	game, err := s.getGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if err := req.ApplyToDomainGame(game); err != nil {
		s.logger.Warn("UpdateSchedule: invalid request for game id=%d: %v", gameID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := game.ValidateSchedule(); err != nil {
		s.logger.Warn("UpdateSchedule: schedule validation failed for game id=%d: %v", gameID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.gameRepo.Update(ctx, game); err != nil {
		if errors.Is(err, gameRepo.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		s.logger.Error("UpdateSchedule: repository error for game id=%d: %v", gameID, err)
		return nil, fmt.Errorf("%w: UpdateSchedule - repository error: %v", ErrInternal, err)
	}

	regen, err := s.generator.Regenerate(ctx, gameID, domain.DefaultGenerationDaysAhead)
	if err != nil {
		s.logger.Error("UpdateSchedule: regeneration failed for game id=%d: %v", gameID, err)
		return nil, fmt.Errorf("%w: regeneration failed: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateSchedule: game=%d regenerated, deleted=%d created=%d",
		gameID, regen.SlotsDeleted, regen.SlotsCreated)

	return &models.RegenerationResponse{
		SlotsDeleted: regen.SlotsDeleted,
		SlotsCreated: regen.SlotsCreated,
	}, nil
}

// SetActive включает или выключает игру
// Выключенная игра не отдаёт варианты бронирования и не принимает брони,
// существующие брони продолжают жить своим жизненным циклом
func (s *Service) SetActive(ctx context.Context, gameID int64, active bool) error {
	s.logger.Info("SetActive: game=%d, active=%v", gameID, active)

	if err := s.gameRepo.SetActive(ctx, gameID, active); err != nil {
		if errors.Is(err, gameRepo.ErrGameNotFound) {
			return ErrGameNotFound
		}
		s.logger.Error("SetActive: repository error for game id=%d: %v", gameID, err)
		return fmt.Errorf("%w: SetActive - repository error: %v", ErrInternal, err)
	}

	return nil
}

// CreateCustomSlot создает ручной слот вне автоматической сетки
// Ручные слоты не удаляются перегенерацией. Пересечение по времени с любым
// существующим слотом той же даты запрещено.
func (s *Service) CreateCustomSlot(ctx context.Context, gameID int64, req *models.CreateCustomSlotRequest) (*models.SlotResponse, error) {
	s.logger.Info("CreateCustomSlot: game=%d, date=%s, time=%s-%s",
		gameID, req.Date.Format(domain.DateFormat), req.StartTime, req.EndTime)

	game, err := s.getGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	slot, err := s.buildCustomSlot(game, req)
	if err != nil {
		s.logger.Warn("CreateCustomSlot: invalid request for game id=%d: %v", gameID, err)
		return nil, err
	}

	existing, err := s.slotRepo.GetByGameAndDate(ctx, gameID, slot.Date)
	if err != nil {
		s.logger.Error("CreateCustomSlot: failed to get existing slots for game id=%d: %v", gameID, err)
		return nil, fmt.Errorf("%w: failed to get existing slots: %v", ErrInternal, err)
	}
	for _, other := range existing {
		if slot.Overlaps(other) {
			s.logger.Warn("CreateCustomSlot: slot %s-%s overlaps existing slot id=%d",
				req.StartTime, req.EndTime, other.ID)
			return nil, ErrSlotOverlap
		}
	}

	created, err := s.slotRepo.Create(ctx, slot, game.Capacity)
	if err != nil {
		s.logger.Error("CreateCustomSlot: repository error for game id=%d: %v", gameID, err)
		return nil, fmt.Errorf("%w: CreateCustomSlot - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateCustomSlot: successfully created slot id=%d", created.ID)
	return models.FromDomainSlot(created), nil
}

// DeleteSlot удаляет слот без активных бронирований
// Слот с PENDING, CONFIRMED или IN_PROGRESS бронями удалить нельзя
func (s *Service) DeleteSlot(ctx context.Context, slotID int64) error {
	s.logger.Info("DeleteSlot: slot=%d", slotID)

	if err := s.slotRepo.DeleteIfUnbooked(ctx, slotID); err != nil {
		switch {
		case errors.Is(err, slotRepo.ErrSlotNotFound):
			return ErrSlotNotFound
		case errors.Is(err, slotRepo.ErrSlotHasBookings):
			s.logger.Warn("DeleteSlot: slot id=%d has active bookings", slotID)
			return ErrSlotHasBookings
		}
		s.logger.Error("DeleteSlot: repository error for slot id=%d: %v", slotID, err)
		return fmt.Errorf("%w: DeleteSlot - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeleteSlot: successfully deleted slot id=%d", slotID)
	return nil
}

// SetSlotBlocked блокирует или разблокирует слот для новых бронирований
func (s *Service) SetSlotBlocked(ctx context.Context, slotID int64, blocked bool) error {
	s.logger.Info("SetSlotBlocked: slot=%d, blocked=%v", slotID, blocked)

	if err := s.slotRepo.SetBlocked(ctx, slotID, blocked); err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			return ErrSlotNotFound
		}
		s.logger.Error("SetSlotBlocked: repository error for slot id=%d: %v", slotID, err)
		return fmt.Errorf("%w: SetSlotBlocked - repository error: %v", ErrInternal, err)
	}

	return nil
}

func (s *Service) buildCustomSlot(game *domain.Game, req *models.CreateCustomSlotRequest) (*domain.GameSlot, error) {
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	startTime, err := toValidatedTime(req.StartTime)
	if err != nil {
		return nil, err
	}
	endTime, err := toValidatedTime(req.EndTime)
	if err != nil {
		return nil, err
	}

	if endTime != domain.Midnight && !endTime.IsAfter(startTime) {
		return nil, fmt.Errorf("%w: endTime must be after startTime (use 00:00 for midnight)", ErrInvalidInput)
	}

	if dateOnly(req.Date).Before(dateOnly(s.timeProvider.Now())) {
		return nil, fmt.Errorf("%w: date must not be in the past", ErrInvalidInput)
	}

	return &domain.GameSlot{
		GameID:          game.ID,
		Date:            dateOnly(req.Date),
		StartTime:       startTime,
		EndTime:         endTime,
		IsAutoGenerated: false,
	}, nil
}

func toValidatedTime(s string) (types.TimeString, error) {
	ts, err := types.NewTimeStringFromString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return ts, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (s *Service) getGame(ctx context.Context, id int64) (*domain.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gameRepo.ErrGameNotFound) {
			s.logger.Warn("getGame: game id=%d not found", id)
			return nil, ErrGameNotFound
		}
		s.logger.Error("getGame: repository error for game id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: repository error: %v", ErrInternal, err)
	}
	return game, nil
}
