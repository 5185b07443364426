package generate_slots

import (
	"time"

	"github.com/tapnex/GC-SlotService/internal/domain"
	generateSlots "github.com/tapnex/GC-SlotService/internal/usecase/generate_slots"
)

// GenerateSlotsRequest HTTP request model
type GenerateSlotsRequest struct {
	StartDate string `json:"startDate"` // "2026-03-15"
	EndDate   string `json:"endDate"`   // "2026-03-21", включительно
}

// GenerateSlotsResponse HTTP response model
type GenerateSlotsResponse struct {
	GameID       int64 `json:"gameId"`
	SlotsCreated int   `json:"slotsCreated"`
	DaysCovered  int   `json:"daysCovered"`
	DaysSkipped  int   `json:"daysSkipped"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *GenerateSlotsRequest) ToUseCaseRequest(gameID int64) (*generateSlots.Request, error) {
	startDate, err := time.Parse(domain.DateFormat, r.StartDate)
	if err != nil {
		return nil, err
	}

	endDate, err := time.Parse(domain.DateFormat, r.EndDate)
	if err != nil {
		return nil, err
	}

	return &generateSlots.Request{
		GameID:    gameID,
		StartDate: startDate,
		EndDate:   endDate,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *generateSlots.Response) *GenerateSlotsResponse {
	return &GenerateSlotsResponse{
		GameID:       resp.GameID,
		SlotsCreated: resp.SlotsCreated,
		DaysCovered:  resp.DaysCovered,
		DaysSkipped:  resp.DaysSkipped,
	}
}
