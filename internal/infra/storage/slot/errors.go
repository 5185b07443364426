package slot

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("slot.repository: slot not found")

	// ErrAvailabilityNotFound возвращается, когда счётчик доступности слота не найден
	ErrAvailabilityNotFound = errors.New("slot.repository: slot availability not found")

	// ErrSlotHasBookings возвращается при удалении слота с активными бронированиями
	ErrSlotHasBookings = errors.New("slot.repository: slot has active bookings")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("slot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("slot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("slot.repository: failed to scan row")
)
