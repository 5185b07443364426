package create_booking

import (
	"fmt"
	"time"

	"github.com/tapnex/GC-SlotService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.CustomerID <= 0 {
		return fmt.Errorf("%w: customerID must be positive", ErrInvalidInput)
	}

	if req.SlotID <= 0 {
		return fmt.Errorf("%w: slotID must be positive", ErrInvalidInput)
	}

	switch req.BookingType {
	case domain.BookingPrivate, domain.BookingShared:
	default:
		return fmt.Errorf("%w: bookingType must be PRIVATE or SHARED", ErrInvalidInput)
	}

	if req.BookingType == domain.BookingShared && req.Spots < 1 {
		return fmt.Errorf("%w: spots must be at least 1 for shared bookings", ErrInvalidInput)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// reservationState живые PENDING-резервы слота на момент проверки
type reservationState struct {
	HasPendingPrivate bool // чья-то приватная оплата в процессе
	ReservedSpots     int  // места, удерживаемые долевыми PENDING-бронями
}

// collectReservations собирает живые резервы из активных бронирований слота
// Счётчики доступности PENDING-брони не отражают, поэтому резервы считаются
// отдельно по строкам бронирований
func collectReservations(bookings []*domain.Booking, now time.Time) reservationState {
	var state reservationState
	for _, b := range bookings {
		if !b.HoldsReservation(now) {
			continue
		}
		if b.BookingType == domain.BookingPrivate {
			state.HasPendingPrivate = true
		} else {
			state.ReservedSpots += b.SpotsBooked
		}
	}
	return state
}

// checkPrivateAvailability проверяет, что слот можно забрать целиком
// Приватной брони нужен полностью пустой слот: без подтверждённых мест
// и без чужих живых резервов любого типа
func checkPrivateAvailability(availability *domain.SlotAvailability, reservations reservationState) error {
	if availability.IsPrivateBooked {
		return ErrSlotPrivateBooked
	}
	if availability.BookedSpots > 0 {
		return fmt.Errorf("%w: %d spot(s) already booked", ErrSlotNotEmpty, availability.BookedSpots)
	}
	if reservations.HasPendingPrivate || reservations.ReservedSpots > 0 {
		return ErrSlotReserved
	}
	return nil
}

// checkSharedAvailability проверяет, что в слоте хватает мест на долевую бронь
func checkSharedAvailability(availability *domain.SlotAvailability, reservations reservationState, spots int) error {
	if availability.IsPrivateBooked {
		return ErrSlotPrivateBooked
	}
	if reservations.HasPendingPrivate {
		return ErrSlotReserved
	}

	trulyAvailable := availability.AvailableSpots() - reservations.ReservedSpots
	if trulyAvailable < 0 {
		trulyAvailable = 0
	}
	// Клиенту важно, чем заняты места: подтверждённые брони - выбирать другой
	// слот, живые резервы - можно подождать окончания чужой оплаты
	if spots > trulyAvailable {
		if reservations.ReservedSpots > 0 {
			return fmt.Errorf("%w: only %d spot(s) available, %d spot(s) held by reservations awaiting payment",
				ErrNotEnoughSpots, trulyAvailable, reservations.ReservedSpots)
		}
		return fmt.Errorf("%w: only %d spot(s) available, %d spot(s) already booked",
			ErrNotEnoughSpots, trulyAvailable, availability.BookedSpots)
	}

	return nil
}
