package models

import (
	"errors"
	"time"

	"github.com/tapnex/GC-SlotService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// ConfirmBookingRequest запрос на подтверждение бронирования после оплаты
type ConfirmBookingRequest struct {
	PaymentReference string `json:"paymentReference"`
}

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	UserID int64   `json:"userId"`
	Reason *string `json:"reason,omitempty"`
}

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	UserID    int64      `json:"userId"`
	GameID    *int64     `json:"gameId,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Status    *string    `json:"status,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetUserBookingsRequest) ToDomainFilter() (domain.UserBookingsFilter, error) {
	filter := domain.UserBookingsFilter{
		CustomerID: r.UserID,
		GameID:     r.GameID,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID          int64  `json:"id"`
	CustomerID  int64  `json:"customerId"`
	GameID      int64  `json:"gameId"`
	SlotID      int64  `json:"slotId"`
	BookingType string `json:"bookingType"`
	SpotsBooked int    `json:"spotsBooked"`

	PricePerSpot float64 `json:"pricePerSpot"`
	Subtotal     float64 `json:"subtotal"`
	PlatformFee  float64 `json:"platformFee"`
	TotalAmount  float64 `json:"totalAmount"`

	Status               string  `json:"status"`
	ReservationExpiresAt *string `json:"reservationExpiresAt,omitempty"` // ISO 8601
	PaymentReference     *string `json:"paymentReference,omitempty"`

	IsVerified bool    `json:"isVerified"`
	VerifiedAt *string `json:"verifiedAt,omitempty"` // ISO 8601

	Notes *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// HistoryEntryResponse одна запись истории статусов
type HistoryEntryResponse struct {
	ID        int64     `json:"id"`
	OldStatus *string   `json:"oldStatus,omitempty"`
	NewStatus string    `json:"newStatus"`
	ChangedBy *int64    `json:"changedBy,omitempty"`
	Reason    *string   `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// HistoryResponse история статусов бронирования
type HistoryResponse struct {
	BookingID int64                  `json:"bookingId"`
	Entries   []HistoryEntryResponse `json:"entries"`
}

// TransitionSummary итог прохода автоматических переходов статусов
type TransitionSummary struct {
	Expired   int `json:"expired"`   // PENDING -> EXPIRED
	Started   int `json:"started"`   // CONFIRMED -> IN_PROGRESS
	Completed int `json:"completed"` // -> COMPLETED
	NoShows   int `json:"noShows"`   // -> NO_SHOW
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:               b.ID,
		CustomerID:       b.CustomerID,
		GameID:           b.GameID,
		SlotID:           b.SlotID,
		BookingType:      string(b.BookingType),
		SpotsBooked:      b.SpotsBooked,
		PricePerSpot:     b.PricePerSpot,
		Subtotal:         b.Subtotal,
		PlatformFee:      b.PlatformFee,
		TotalAmount:      b.TotalAmount,
		Status:           string(b.Status),
		PaymentReference: b.PaymentReference,
		IsVerified:       b.IsVerified,
		Notes:            b.Notes,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}

	if b.ReservationExpiresAt != nil {
		s := b.ReservationExpiresAt.Format(time.RFC3339)
		resp.ReservationExpiresAt = &s
	}
	if b.VerifiedAt != nil {
		s := b.VerifiedAt.Format(time.RFC3339)
		resp.VerifiedAt = &s
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}
	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}
	return resp
}

// FromDomainHistory конвертирует историю статусов в DTO
func FromDomainHistory(bookingID int64, entries []*domain.BookingHistory) *HistoryResponse {
	resp := &HistoryResponse{
		BookingID: bookingID,
		Entries:   make([]HistoryEntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		entry := HistoryEntryResponse{
			ID:        e.ID,
			NewStatus: string(e.NewStatus),
			ChangedBy: e.ChangedBy,
			Reason:    e.Reason,
			CreatedAt: e.CreatedAt,
		}
		if e.OldStatus != nil {
			s := string(*e.OldStatus)
			entry.OldStatus = &s
		}
		resp.Entries = append(resp.Entries, entry)
	}
	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)

	validStatuses := []domain.BookingStatus{
		domain.StatusPending,
		domain.StatusConfirmed,
		domain.StatusInProgress,
		domain.StatusCompleted,
		domain.StatusCancelled,
		domain.StatusNoShow,
		domain.StatusExpired,
	}

	for _, valid := range validStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}
