package generate_slots

import (
	"context"
	"time"

	"github.com/tapnex/GC-SlotService/internal/domain"
)

// GameRepository интерфейс репозитория игр
type GameRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Game, error)
	List(ctx context.Context, onlyActive bool) ([]*domain.Game, error)
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	ExistsForDate(ctx context.Context, gameID int64, date time.Time) (bool, error)
	BulkCreateForDate(ctx context.Context, slots []*domain.GameSlot, capacity int) (int, error)
	DeleteUnbookedFutureAuto(ctx context.Context, gameID int64, fromDate time.Time) (int64, error)
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
