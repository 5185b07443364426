package create_booking

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("create_booking: slot not found")

	// ErrGameNotFound возвращается, когда игра не найдена
	ErrGameNotFound = errors.New("create_booking: game not found")

	// ErrGameNotActive возвращается, когда игра выключена владельцем
	ErrGameNotActive = errors.New("create_booking: game is not active")

	// ErrSlotInPast возвращается при попытке забронировать уже начавшийся слот
	ErrSlotInPast = errors.New("create_booking: slot has already started")

	// ErrSlotBlocked возвращается, когда слот заблокирован владельцем
	ErrSlotBlocked = errors.New("create_booking: slot is blocked")

	// ErrSharedNotSupported возвращается при SHARED-запросе к игре без долевых броней
	ErrSharedNotSupported = errors.New("create_booking: game does not support shared bookings")

	// ErrSlotPrivateBooked возвращается, когда слот целиком занят приватной бронью
	ErrSlotPrivateBooked = errors.New("create_booking: slot is privately booked")

	// ErrSlotNotEmpty возвращается при приватном запросе на частично занятый слот
	ErrSlotNotEmpty = errors.New("create_booking: slot already has bookings")

	// ErrSlotReserved возвращается, когда слот удерживается чужой незавершённой оплатой
	ErrSlotReserved = errors.New("create_booking: slot is temporarily reserved")

	// ErrNotEnoughSpots возвращается, когда запрошено больше мест, чем доступно
	ErrNotEnoughSpots = errors.New("create_booking: not enough spots available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
