package create_booking

import (
	"time"

	"github.com/tapnex/GC-SlotService/internal/domain"
	"github.com/tapnex/GC-SlotService/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	CustomerID  int64              // ID клиента
	SlotID      int64              // ID слота
	BookingType domain.BookingType // PRIVATE или SHARED
	Spots       int                // Число мест, учитывается только для SHARED
	Notes       *string            // Дополнительные заметки (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID          int64
	CustomerID  int64
	GameID      int64
	SlotID      int64
	Date        time.Time
	StartTime   types.TimeString
	EndTime     types.TimeString
	BookingType string // Фактический тип: SHARED на всю вместимость повышается до PRIVATE
	SpotsBooked int

	PricePerSpot float64
	Subtotal     float64
	PlatformFee  float64
	TotalAmount  float64

	Status               string
	ReservationExpiresAt time.Time // До этого момента нужно завершить оплату

	Notes *string

	CreatedAt time.Time
}
