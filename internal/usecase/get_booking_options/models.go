package get_booking_options

import (
	"time"

	"github.com/tapnex/GC-SlotService/pkg/types"
)

// Request модель запроса вариантов бронирования
type Request struct {
	GameID int64
	Date   time.Time
}

// Response варианты бронирования игры на дату
type Response struct {
	GameID      int64
	GameName    string
	Date        time.Time
	BookingType string // SINGLE или HYBRID

	Capacity     int
	PrivatePrice float64
	SharedPrice  *float64

	Slots []SlotOption
}

// SlotOption доступность одного слота с причинами ограничений
// AvailableSpots учитывает и подтверждённые брони, и живые резервы
// незавершённых оплат - это число мест, которые реально можно купить сейчас
type SlotOption struct {
	SlotID    int64
	StartTime types.TimeString
	EndTime   types.TimeString

	TotalCapacity  int
	AvailableSpots int

	CanBookPrivate bool
	CanBookShared  bool

	// Restriction поясняет, почему слот ограничен ("Privately booked",
	// "Reservation in progress"). Пустая строка - ограничений нет.
	Restriction string
}
