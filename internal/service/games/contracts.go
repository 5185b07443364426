package games

import (
	"context"
	"time"

	"github.com/tapnex/GC-SlotService/internal/domain"
	"github.com/tapnex/GC-SlotService/internal/usecase/generate_slots"
)

// GameRepository интерфейс репозитория игр
type GameRepository interface {
	Create(ctx context.Context, game *domain.Game) (*domain.Game, error)
	GetByID(ctx context.Context, id int64) (*domain.Game, error)
	List(ctx context.Context, onlyActive bool) ([]*domain.Game, error)
	Update(ctx context.Context, game *domain.Game) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	Create(ctx context.Context, slot *domain.GameSlot, capacity int) (*domain.GameSlot, error)
	GetByID(ctx context.Context, id int64) (*domain.GameSlot, error)
	GetByGameAndDate(ctx context.Context, gameID int64, date time.Time) ([]*domain.GameSlot, error)
	SetBlocked(ctx context.Context, id int64, blocked bool) error
	DeleteIfUnbooked(ctx context.Context, id int64) error
}

// SlotGenerator интерфейс генератора слотов
// Сервис дергает его после создания игры и смены расписания
type SlotGenerator interface {
	Regenerate(ctx context.Context, gameID int64, daysAhead int) (*generate_slots.RegenerateResponse, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
