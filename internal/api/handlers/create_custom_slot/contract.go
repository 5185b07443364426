package create_custom_slot

import (
	"context"

	"github.com/tapnex/GC-SlotService/internal/service/games/models"
)

type GameService interface {
	CreateCustomSlot(ctx context.Context, gameID int64, req *models.CreateCustomSlotRequest) (*models.SlotResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
