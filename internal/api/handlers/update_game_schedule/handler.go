package update_game_schedule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tapnex/GC-SlotService/internal/api/handlers"
	"github.com/tapnex/GC-SlotService/internal/service/games"
	"github.com/tapnex/GC-SlotService/internal/service/games/models"
)

const (
	msgInvalidGameID      = "invalid game ID"
	msgInvalidRequestBody = "invalid request body"
	msgNotFound           = "game not found"
	msgInvalidSchedule    = "invalid schedule parameters"
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

// Handle PUT /api/v1/games/{gameId}/schedule
// Будущие незабронированные автослоты пересоздаются по новому расписанию
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID, err := strconv.ParseInt(vars["gameId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /games/{id}/schedule - Invalid game ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidGameID)
		return
	}

	var req models.UpdateScheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /games/{id}/schedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpdateSchedule(r.Context(), gameID, &req)
	if err != nil {
		switch {
		case errors.Is(err, games.ErrGameNotFound):
			h.logger.Warn("PUT /games/{id}/schedule - Game not found: game_id=%d", gameID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, games.ErrInvalidInput):
			h.logger.Warn("PUT /games/{id}/schedule - Invalid schedule: game_id=%d, error=%v", gameID, err)
			handlers.RespondBadRequest(w, msgInvalidSchedule)

		default:
			h.logger.Error("PUT /games/{id}/schedule - Failed to update schedule: game_id=%d, error=%v", gameID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /games/{id}/schedule - Schedule updated: game_id=%d, deleted=%d, created=%d",
		gameID, result.SlotsDeleted, result.SlotsCreated)
	handlers.RespondJSON(w, http.StatusOK, result)
}
