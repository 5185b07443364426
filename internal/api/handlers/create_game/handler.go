package create_game

import (
	"errors"
	"net/http"

	"github.com/tapnex/GC-SlotService/internal/api/handlers"
	"github.com/tapnex/GC-SlotService/internal/service/games"
	"github.com/tapnex/GC-SlotService/internal/service/games/models"
)

const (
	msgInvalidRequestBody = "invalid request body"
	msgInvalidGame        = "invalid game parameters"
)

type Handler struct {
	service GameService
	logger  Logger
}

func NewHandler(service GameService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/games
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateGameRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /games - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	game, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, games.ErrInvalidInput) {
			h.logger.Warn("POST /games - Invalid game parameters: name=%q, error=%v", req.Name, err)
			handlers.RespondBadRequest(w, msgInvalidGame)
			return
		}
		h.logger.Error("POST /games - Failed to create game: name=%q, error=%v", req.Name, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /games - Game created: game_id=%d, name=%q", game.ID, game.Name)
	handlers.RespondJSON(w, http.StatusCreated, game)
}
