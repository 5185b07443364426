package bookings

import (
	"context"
	"time"

	"github.com/tapnex/GC-SlotService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByUserWithFilter(ctx context.Context, filter domain.UserBookingsFilter) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	SetPaymentReference(ctx context.Context, id int64, reference string) error
	SetVerified(ctx context.Context, id int64, at time.Time) error
	ListExpiredPending(ctx context.Context, now time.Time) ([]*domain.Booking, error)
	ListConfirmedStarted(ctx context.Context, now time.Time) ([]*domain.Booking, error)
	ListActiveEnded(ctx context.Context, now time.Time) ([]*domain.Booking, error)
	CreateHistory(ctx context.Context, h *domain.BookingHistory) error
	GetHistory(ctx context.Context, bookingID int64) ([]*domain.BookingHistory, error)
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	GetAvailability(ctx context.Context, slotID int64) (*domain.SlotAvailability, error)
	UpdateAvailability(ctx context.Context, availability *domain.SlotAvailability) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// AvailabilityNotifier интерфейс для уведомления об изменении доступности слота
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
