package create_booking

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tapnex/GC-SlotService/internal/api/handlers"
	"github.com/tapnex/GC-SlotService/internal/api/middleware"
	createBooking "github.com/tapnex/GC-SlotService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "invalid request body"
	msgMissingUserID      = "missing user ID"
	msgSlotNotFound       = "slot not found"
	msgGameNotFound       = "game not found"
	msgGameNotActive      = "game is not active"
	msgSlotInPast         = "slot has already started"
	msgSlotBlocked        = "slot is blocked"
	msgSharedNotSupported = "game does not support shared bookings"
	msgSlotPrivateBooked  = "slot is privately booked"
	msgSlotReserved       = "slot is temporarily reserved, try again in a few minutes"
	msgInvalidInput       = "invalid booking parameters"
)

// capacityDetail отдаёт клиенту текст отказа по местам как есть, без
// внутреннего префикса пакета. Детали различают подтверждённые брони
// и чужие резервы: в первом случае нужен другой слот, во втором можно
// дождаться окончания чужой оплаты
func capacityDetail(err error) string {
	return strings.TrimPrefix(err.Error(), "create_booking: ")
}

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Клиент берется из контекста (через middleware Auth)
	customerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(customerID))
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotNotFound):
			h.logger.Warn("POST /bookings - Slot not found: slot_id=%d", req.SlotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, createBooking.ErrGameNotFound):
			h.logger.Warn("POST /bookings - Game not found: slot_id=%d", req.SlotID)
			handlers.RespondNotFound(w, msgGameNotFound)

		case errors.Is(err, createBooking.ErrGameNotActive):
			h.logger.Warn("POST /bookings - Game not active: slot_id=%d", req.SlotID)
			handlers.RespondBadRequest(w, msgGameNotActive)

		case errors.Is(err, createBooking.ErrSlotInPast):
			h.logger.Warn("POST /bookings - Slot in past: slot_id=%d, user_id=%d", req.SlotID, customerID)
			handlers.RespondBadRequest(w, msgSlotInPast)

		case errors.Is(err, createBooking.ErrSlotBlocked):
			h.logger.Warn("POST /bookings - Slot blocked: slot_id=%d", req.SlotID)
			handlers.RespondBadRequest(w, msgSlotBlocked)

		case errors.Is(err, createBooking.ErrSharedNotSupported):
			h.logger.Warn("POST /bookings - Shared not supported: slot_id=%d", req.SlotID)
			handlers.RespondBadRequest(w, msgSharedNotSupported)

		case errors.Is(err, createBooking.ErrSlotPrivateBooked):
			h.logger.Warn("POST /bookings - Slot privately booked: slot_id=%d, user_id=%d", req.SlotID, customerID)
			handlers.RespondConflict(w, msgSlotPrivateBooked)

		case errors.Is(err, createBooking.ErrSlotNotEmpty):
			h.logger.Warn("POST /bookings - Slot not empty: slot_id=%d, user_id=%d", req.SlotID, customerID)
			handlers.RespondConflict(w, capacityDetail(err))

		case errors.Is(err, createBooking.ErrSlotReserved):
			h.logger.Warn("POST /bookings - Slot reserved: slot_id=%d, user_id=%d", req.SlotID, customerID)
			handlers.RespondConflict(w, msgSlotReserved)

		case errors.Is(err, createBooking.ErrNotEnoughSpots):
			h.logger.Warn("POST /bookings - Not enough spots: slot_id=%d, user_id=%d, error=%v", req.SlotID, customerID, err)
			handlers.RespondConflict(w, capacityDetail(err))

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: slot_id=%d, error=%v", req.SlotID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: slot_id=%d, user_id=%d, error=%v",
				req.SlotID, customerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created: booking_id=%d, slot_id=%d, user_id=%d, type=%s",
		result.ID, req.SlotID, customerID, result.BookingType)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
