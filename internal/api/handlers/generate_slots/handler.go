package generate_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tapnex/GC-SlotService/internal/api/handlers"
	generateSlots "github.com/tapnex/GC-SlotService/internal/usecase/generate_slots"
)

const (
	msgInvalidGameID      = "invalid game ID"
	msgInvalidRequestBody = "invalid request body"
	msgInvalidDate        = "invalid date format, expected YYYY-MM-DD"
	msgGameNotFound       = "game not found"
	msgInvalidRange       = "invalid date range"
)

type Handler struct {
	useCase GenerateSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GenerateSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/games/{gameId}/slots/generate
// Генерация идемпотентна: дни, на которые слоты уже есть, пропускаются
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID, err := strconv.ParseInt(vars["gameId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /games/{id}/slots/generate - Invalid game ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidGameID)
		return
	}

	var req GenerateSlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /games/{id}/slots/generate - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(gameID)
	if err != nil {
		h.logger.Warn("POST /games/{id}/slots/generate - Failed to parse dates: game_id=%d, error=%v", gameID, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, generateSlots.ErrGameNotFound):
			h.logger.Warn("POST /games/{id}/slots/generate - Game not found: game_id=%d", gameID)
			handlers.RespondNotFound(w, msgGameNotFound)

		case errors.Is(err, generateSlots.ErrInvalidRange):
			h.logger.Warn("POST /games/{id}/slots/generate - Invalid range: game_id=%d, start=%s, end=%s",
				gameID, req.StartDate, req.EndDate)
			handlers.RespondBadRequest(w, msgInvalidRange)

		case errors.Is(err, generateSlots.ErrInvalidInput):
			h.logger.Warn("POST /games/{id}/slots/generate - Invalid input: game_id=%d, error=%v", gameID, err)
			handlers.RespondBadRequest(w, msgInvalidRange)

		default:
			h.logger.Error("POST /games/{id}/slots/generate - Failed to generate slots: game_id=%d, error=%v", gameID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /games/{id}/slots/generate - Slots generated: game_id=%d, created=%d, skipped_days=%d",
		gameID, result.SlotsCreated, result.DaysSkipped)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
