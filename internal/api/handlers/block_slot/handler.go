package block_slot

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tapnex/GC-SlotService/internal/api/handlers"
	"github.com/tapnex/GC-SlotService/internal/service/games"
)

const (
	msgInvalidSlotID      = "invalid slot ID"
	msgInvalidRequestBody = "invalid request body"
	msgNotFound           = "slot not found"
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

// Handle PATCH /api/v1/slots/{slotId}/block
// Блокировка скрывает слот из вариантов бронирования, существующие
// бронирования не трогает
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	slotID, err := strconv.ParseInt(vars["slotId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /slots/{id}/block - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	var req BlockSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /slots/{id}/block - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := h.service.SetSlotBlocked(r.Context(), slotID, req.Blocked); err != nil {
		if errors.Is(err, games.ErrSlotNotFound) {
			h.logger.Warn("PATCH /slots/{id}/block - Slot not found: slot_id=%d", slotID)
			handlers.RespondNotFound(w, msgNotFound)
			return
		}
		h.logger.Error("PATCH /slots/{id}/block - Failed to update slot: slot_id=%d, error=%v", slotID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("PATCH /slots/{id}/block - Slot block updated: slot_id=%d, blocked=%t", slotID, req.Blocked)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
