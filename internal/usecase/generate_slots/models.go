package generate_slots

import "time"

// Request модель запроса на генерацию слотов
type Request struct {
	GameID    int64
	StartDate time.Time // Дата начала диапазона (включительно)
	EndDate   time.Time // Дата конца диапазона (включительно)
}

// Response результат генерации слотов
type Response struct {
	GameID       int64
	SlotsCreated int // Число созданных слотов
	DaysCovered  int // Дни, на которые создавались слоты
	DaysSkipped  int // Дни, пропущенные по расписанию, прошедшей дате или идемпотентности
}

// RegenerateResponse результат перегенерации слотов
type RegenerateResponse struct {
	GameID       int64
	SlotsDeleted int64 // Удалённые будущие автослоты без бронирований
	SlotsCreated int
	DaysCovered  int
	DaysSkipped  int
}
