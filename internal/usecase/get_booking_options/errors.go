package get_booking_options

import "errors"

var (
	// ErrGameNotFound возвращается, когда игра не найдена
	ErrGameNotFound = errors.New("get_booking_options: game not found")

	// ErrGameNotActive возвращается, когда игра выключена владельцем
	ErrGameNotActive = errors.New("get_booking_options: game is not active")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_booking_options: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_booking_options: internal error")
)
