package list_games

import (
	"net/http"

	"github.com/tapnex/GC-SlotService/internal/api/handlers"
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

// Handle GET /api/v1/games
// По умолчанию возвращаются только активные игры, ?includeInactive=true
// добавляет деактивированные
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("includeInactive") != "true"

	result, err := h.service.List(r.Context(), onlyActive)
	if err != nil {
		h.logger.Error("GET /games - Failed to list games: error=%v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /games - Games listed: count=%d", len(result.Games))
	handlers.RespondJSON(w, http.StatusOK, result)
}
