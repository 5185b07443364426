package games

import "errors"

var (
	// ErrGameNotFound возвращается, когда игра не найдена
	ErrGameNotFound = errors.New("game not found")

	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("slot not found")

	// ErrSlotOverlap возвращается, когда ручной слот пересекается с существующим
	ErrSlotOverlap = errors.New("slot overlaps an existing slot")

	// ErrSlotHasBookings возвращается при удалении слота с активными бронированиями
	ErrSlotHasBookings = errors.New("slot has active bookings")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
