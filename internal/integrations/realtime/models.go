package realtime

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// SlotUpdatedEvent событие изменения доступности слота
type SlotUpdatedEvent struct {
	GameID int64 `json:"gameId"`
	SlotID int64 `json:"slotId"`
}
