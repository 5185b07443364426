package create_booking

import (
	"time"

	"github.com/tapnex/GC-SlotService/internal/domain"
	createBooking "github.com/tapnex/GC-SlotService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	SlotID      int64   `json:"slotId"`
	BookingType string  `json:"bookingType"` // PRIVATE или SHARED
	Spots       int     `json:"spots,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID          int64  `json:"id"`
	CustomerID  int64  `json:"customerId"`
	GameID      int64  `json:"gameId"`
	SlotID      int64  `json:"slotId"`
	Date        string `json:"date"`      // "2026-03-15"
	StartTime   string `json:"startTime"` // "10:00"
	EndTime     string `json:"endTime"`   // "11:00"
	BookingType string `json:"bookingType"`
	SpotsBooked int    `json:"spotsBooked"`

	PricePerSpot float64 `json:"pricePerSpot"`
	Subtotal     float64 `json:"subtotal"`
	PlatformFee  float64 `json:"platformFee"`
	TotalAmount  float64 `json:"totalAmount"`

	Status               string `json:"status"`
	ReservationExpiresAt string `json:"reservationExpiresAt"` // ISO 8601

	Notes *string `json:"notes,omitempty"`

	CreatedAt string `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(customerID int64) *createBooking.Request {
	return &createBooking.Request{
		CustomerID:  customerID,
		SlotID:      r.SlotID,
		BookingType: domain.BookingType(r.BookingType),
		Spots:       r.Spots,
		Notes:       r.Notes,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:                   resp.ID,
		CustomerID:           resp.CustomerID,
		GameID:               resp.GameID,
		SlotID:               resp.SlotID,
		Date:                 resp.Date.Format(domain.DateFormat),
		StartTime:            resp.StartTime.String(),
		EndTime:              resp.EndTime.String(),
		BookingType:          resp.BookingType,
		SpotsBooked:          resp.SpotsBooked,
		PricePerSpot:         resp.PricePerSpot,
		Subtotal:             resp.Subtotal,
		PlatformFee:          resp.PlatformFee,
		TotalAmount:          resp.TotalAmount,
		Status:               resp.Status,
		ReservationExpiresAt: resp.ReservationExpiresAt.Format(time.RFC3339),
		Notes:                resp.Notes,
		CreatedAt:            resp.CreatedAt.Format(time.RFC3339),
	}
}
