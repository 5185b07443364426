package get_booking_options

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/tapnex/GC-SlotService/internal/api/handlers"
	"github.com/tapnex/GC-SlotService/internal/domain"
	getBookingOptions "github.com/tapnex/GC-SlotService/internal/usecase/get_booking_options"
)

const (
	msgInvalidGameID = "invalid game ID"
	msgMissingDate   = "missing date query parameter"
	msgInvalidDate   = "invalid date format, expected YYYY-MM-DD"
	msgGameNotFound  = "game not found"
	msgGameNotActive = "game is not active"
)

type Handler struct {
	useCase GetBookingOptionsUseCase
	logger  Logger
}

func NewHandler(useCase GetBookingOptionsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/games/{gameId}/booking-options?date=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID, err := strconv.ParseInt(vars["gameId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /games/{id}/booking-options - Invalid game ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidGameID)
		return
	}

	rawDate := r.URL.Query().Get("date")
	if rawDate == "" {
		h.logger.Warn("GET /games/{id}/booking-options - Missing date: game_id=%d", gameID)
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := time.Parse(domain.DateFormat, rawDate)
	if err != nil {
		h.logger.Warn("GET /games/{id}/booking-options - Invalid date: game_id=%d, date=%q", gameID, rawDate)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getBookingOptions.Request{
		GameID: gameID,
		Date:   date,
	})
	if err != nil {
		switch {
		case errors.Is(err, getBookingOptions.ErrGameNotFound):
			h.logger.Warn("GET /games/{id}/booking-options - Game not found: game_id=%d", gameID)
			handlers.RespondNotFound(w, msgGameNotFound)

		case errors.Is(err, getBookingOptions.ErrGameNotActive):
			h.logger.Warn("GET /games/{id}/booking-options - Game not active: game_id=%d", gameID)
			handlers.RespondBadRequest(w, msgGameNotActive)

		default:
			h.logger.Error("GET /games/{id}/booking-options - Failed to get options: game_id=%d, error=%v", gameID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /games/{id}/booking-options - Options retrieved: game_id=%d, date=%s, slots=%d",
		gameID, rawDate, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
