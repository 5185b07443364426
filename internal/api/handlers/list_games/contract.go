package list_games

import (
	"context"

	"github.com/tapnex/GC-SlotService/internal/service/games/models"
)

type GameService interface {
	List(ctx context.Context, onlyActive bool) (*models.GameListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
