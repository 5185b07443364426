package get_game

import (
	"context"

	"github.com/tapnex/GC-SlotService/internal/service/games/models"
)

type GameService interface {
	GetByID(ctx context.Context, id int64) (*models.GameResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
