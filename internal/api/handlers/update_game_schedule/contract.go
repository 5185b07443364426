package update_game_schedule

import (
	"context"

	"github.com/tapnex/GC-SlotService/internal/service/games/models"
)

type GameService interface {
	UpdateSchedule(ctx context.Context, gameID int64, req *models.UpdateScheduleRequest) (*models.RegenerationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
