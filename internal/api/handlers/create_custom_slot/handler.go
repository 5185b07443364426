package create_custom_slot

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
	msgGameNotFound       = "game not found"
	msgInvalidSlot        = "invalid slot parameters"
	msgSlotOverlap        = "slot overlaps an existing slot"
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

// Handle POST /api/v1/games/{gameId}/slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID, err := strconv.ParseInt(vars["gameId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /games/{id}/slots - Invalid game ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidGameID)
		return
	}

	var req models.CreateCustomSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /games/{id}/slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	slot, err := h.service.CreateCustomSlot(r.Context(), gameID, &req)
	if err != nil {
		switch {
		case errors.Is(err, games.ErrGameNotFound):
			h.logger.Warn("POST /games/{id}/slots - Game not found: game_id=%d", gameID)
			handlers.RespondNotFound(w, msgGameNotFound)

		case errors.Is(err, games.ErrSlotOverlap):
			h.logger.Warn("POST /games/{id}/slots - Slot overlap: game_id=%d, start=%s", gameID, req.StartTime)
			handlers.RespondConflict(w, msgSlotOverlap)

		case errors.Is(err, games.ErrInvalidInput):
			h.logger.Warn("POST /games/{id}/slots - Invalid slot: game_id=%d, error=%v", gameID, err)
			handlers.RespondBadRequest(w, msgInvalidSlot)

		default:
			h.logger.Error("POST /games/{id}/slots - Failed to create slot: game_id=%d, error=%v", gameID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /games/{id}/slots - Custom slot created: game_id=%d, slot_id=%d", gameID, slot.ID)
	handlers.RespondJSON(w, http.StatusCreated, slot)
}
