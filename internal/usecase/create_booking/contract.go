package create_booking

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
	GetByID(ctx context.Context, id int64) (*domain.GameSlot, error)
	GetAvailability(ctx context.Context, slotID int64) (*domain.SlotAvailability, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetActiveBySlot(ctx context.Context, slotID int64) ([]*domain.Booking, error)
	CreateHistory(ctx context.Context, h *domain.BookingHistory) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// FeePolicy интерфейс расчёта платформенного сбора
type FeePolicy interface {
	Apply(subtotal float64) float64
}

// AvailabilityNotifier интерфейс для уведомления об изменении доступности слота
// Уведомление отправляется после успешного создания брони, best-effort
type AvailabilityNotifier interface {
	NotifySlotUpdated(ctx context.Context, gameID, slotID int64)
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
