package get_game

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tapnex/GC-SlotService/internal/api/handlers"
	"github.com/tapnex/GC-SlotService/internal/service/games"
)

const (
	msgInvalidGameID = "invalid game ID"
	msgNotFound      = "game not found"
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

// Handle GET /api/v1/games/{gameId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID, err := strconv.ParseInt(vars["gameId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /games/{id} - Invalid game ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidGameID)
		return
	}

	game, err := h.service.GetByID(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, games.ErrGameNotFound) {
			h.logger.Warn("GET /games/{id} - Game not found: game_id=%d", gameID)
			handlers.RespondNotFound(w, msgNotFound)
			return
		}
		h.logger.Error("GET /games/{id} - Failed to get game: game_id=%d, error=%v", gameID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /games/{id} - Game retrieved: game_id=%d", gameID)
	handlers.RespondJSON(w, http.StatusOK, game)
}
