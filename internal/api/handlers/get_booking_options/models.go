package get_booking_options

import (
	"github.com/tapnex/GC-SlotService/internal/domain"
	getBookingOptions "github.com/tapnex/GC-SlotService/internal/usecase/get_booking_options"
)

// BookingOptionsResponse HTTP response model
type BookingOptionsResponse struct {
	GameID      int64  `json:"gameId"`
	GameName    string `json:"gameName"`
	Date        string `json:"date"` // "2026-03-15"
	BookingType string `json:"bookingType"`

	Capacity     int      `json:"capacity"`
	PrivatePrice float64  `json:"privatePrice"`
	SharedPrice  *float64 `json:"sharedPrice,omitempty"`

	Slots []SlotOptionResponse `json:"slots"`
}

// SlotOptionResponse доступность одного слота
type SlotOptionResponse struct {
	SlotID    int64  `json:"slotId"`
	StartTime string `json:"startTime"` // "10:00"
	EndTime   string `json:"endTime"`   // "11:00"

	TotalCapacity  int `json:"totalCapacity"`
	AvailableSpots int `json:"availableSpots"`

	CanBookPrivate bool `json:"canBookPrivate"`
	CanBookShared  bool `json:"canBookShared"`

	Restriction string `json:"restriction,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getBookingOptions.Response) *BookingOptionsResponse {
	out := &BookingOptionsResponse{
		GameID:       resp.GameID,
		GameName:     resp.GameName,
		Date:         resp.Date.Format(domain.DateFormat),
		BookingType:  resp.BookingType,
		Capacity:     resp.Capacity,
		PrivatePrice: resp.PrivatePrice,
		SharedPrice:  resp.SharedPrice,
		Slots:        make([]SlotOptionResponse, 0, len(resp.Slots)),
	}

	for _, slot := range resp.Slots {
		out.Slots = append(out.Slots, SlotOptionResponse{
			SlotID:         slot.SlotID,
			StartTime:      slot.StartTime.String(),
			EndTime:        slot.EndTime.String(),
			TotalCapacity:  slot.TotalCapacity,
			AvailableSpots: slot.AvailableSpots,
			CanBookPrivate: slot.CanBookPrivate,
			CanBookShared:  slot.CanBookShared,
			Restriction:    slot.Restriction,
		})
	}

	return out
}
