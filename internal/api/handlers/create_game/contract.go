package create_game

import (
	"context"

	"github.com/tapnex/GC-SlotService/internal/service/games/models"
)

type GameService interface {
	Create(ctx context.Context, req *models.CreateGameRequest) (*models.GameResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
