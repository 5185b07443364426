package get_booking_options

import (
	"context"
	"time"

	"github.com/tapnex/GC-SlotService/internal/domain"
)

// GameRepository интерфейс репозитория игр
type GameRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Game, error)
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	GetByGameAndDate(ctx context.Context, gameID int64, date time.Time) ([]*domain.GameSlot, error)
	GetAvailabilityBySlots(ctx context.Context, slotIDs []int64) (map[int64]*domain.SlotAvailability, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetActiveBySlot(ctx context.Context, slotID int64) ([]*domain.Booking, error)
}

// SlotEnsurer интерфейс дозаполнения сетки слотов на дату
// Позволяет клиенту смотреть даты за пределами горизонта фонового обслуживания
type SlotEnsurer interface {
	EnsureDate(ctx context.Context, gameID int64, date time.Time) (int, error)
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
