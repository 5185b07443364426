package models

import (
	"errors"
	"time"

	"github.com/tapnex/GC-SlotService/internal/domain"
	"github.com/tapnex/GC-SlotService/pkg/types"
)

var (
	// ErrInvalidBookingType возвращается при некорректном типе бронирования игры
	ErrInvalidBookingType = errors.New("invalid game booking type")

	// ErrInvalidWeekday возвращается при некорректном дне недели
	ErrInvalidWeekday = errors.New("invalid weekday")

	// ErrInvalidTime возвращается при некорректном формате времени
	ErrInvalidTime = errors.New("invalid time format")
)

// Request модели

// CreateGameRequest запрос на создание игры
type CreateGameRequest struct {
	Name                string   `json:"name"`
	Description         string   `json:"description,omitempty"`
	Capacity            int      `json:"capacity"`
	BookingType         string   `json:"bookingType"` // SINGLE или HYBRID
	OpeningTime         string   `json:"openingTime"` // "HH:MM"
	ClosingTime         string   `json:"closingTime"` // "HH:MM", "00:00" - до полуночи
	SlotDurationMinutes int      `json:"slotDurationMinutes"`
	AvailableDays       []string `json:"availableDays"`
	PrivatePrice        float64  `json:"privatePrice"`
	SharedPrice         *float64 `json:"sharedPrice,omitempty"`
}

// UpdateScheduleRequest запрос на обновление расписания игры
type UpdateScheduleRequest struct {
	OpeningTime         string   `json:"openingTime"`
	ClosingTime         string   `json:"closingTime"`
	SlotDurationMinutes int      `json:"slotDurationMinutes"`
	AvailableDays       []string `json:"availableDays"`
}

// CreateCustomSlotRequest запрос на создание ручного слота
type CreateCustomSlotRequest struct {
	Date      time.Time `json:"date"`
	StartTime string    `json:"startTime"` // "HH:MM"
	EndTime   string    `json:"endTime"`   // "HH:MM", "00:00" - до полуночи
}

// ToDomainGame конвертирует запрос в domain модель
func (r *CreateGameRequest) ToDomainGame() (*domain.Game, error) {
	bookingType, err := toDomainGameBookingType(r.BookingType)
	if err != nil {
		return nil, err
	}

	opening, err := toTimeString(r.OpeningTime)
	if err != nil {
		return nil, err
	}
	closing, err := toTimeString(r.ClosingTime)
	if err != nil {
		return nil, err
	}

	days, err := toDomainWeekdays(r.AvailableDays)
	if err != nil {
		return nil, err
	}

	return &domain.Game{
		Name:                r.Name,
		Description:         r.Description,
		Capacity:            r.Capacity,
		BookingType:         bookingType,
		OpeningTime:         opening,
		ClosingTime:         closing,
		SlotDurationMinutes: r.SlotDurationMinutes,
		AvailableDays:       days,
		PrivatePrice:        r.PrivatePrice,
		SharedPrice:         r.SharedPrice,
		IsActive:            true,
	}, nil
}

// ApplyToDomainGame накладывает новое расписание на существующую игру
func (r *UpdateScheduleRequest) ApplyToDomainGame(game *domain.Game) error {
	opening, err := toTimeString(r.OpeningTime)
	if err != nil {
		return err
	}
	closing, err := toTimeString(r.ClosingTime)
	if err != nil {
		return err
	}
	days, err := toDomainWeekdays(r.AvailableDays)
	if err != nil {
		return err
	}

	game.OpeningTime = opening
	game.ClosingTime = closing
	game.SlotDurationMinutes = r.SlotDurationMinutes
	game.AvailableDays = days
	return nil
}

// Response модели

// GameResponse ответ с данными игры
type GameResponse struct {
	ID                  int64    `json:"id"`
	Name                string   `json:"name"`
	Description         string   `json:"description,omitempty"`
	Capacity            int      `json:"capacity"`
	BookingType         string   `json:"bookingType"`
	OpeningTime         string   `json:"openingTime"`
	ClosingTime         string   `json:"closingTime"`
	SlotDurationMinutes int      `json:"slotDurationMinutes"`
	AvailableDays       []string `json:"availableDays"`
	PrivatePrice        float64  `json:"privatePrice"`
	SharedPrice         *float64 `json:"sharedPrice,omitempty"`
	IsActive            bool     `json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GameListResponse ответ со списком игр
type GameListResponse struct {
	Games []GameResponse `json:"games"`
}

// SlotResponse ответ с данными слота
type SlotResponse struct {
	ID              int64  `json:"id"`
	GameID          int64  `json:"gameId"`
	Date            string `json:"date"`      // "2026-03-15"
	StartTime       string `json:"startTime"` // "10:00"
	EndTime         string `json:"endTime"`   // "11:00"
	IsAutoGenerated bool   `json:"isAutoGenerated"`
	IsBlocked       bool   `json:"isBlocked"`
}

// RegenerationResponse итог перегенерации слотов после смены расписания
type RegenerationResponse struct {
	SlotsDeleted int64 `json:"slotsDeleted"`
	SlotsCreated int   `json:"slotsCreated"`
}

// Методы конвертации

// FromDomainGame конвертирует domain модель в DTO
func FromDomainGame(g *domain.Game) *GameResponse {
	if g == nil {
		return nil
	}

	days := make([]string, len(g.AvailableDays))
	for i, d := range g.AvailableDays {
		days[i] = string(d)
	}

	return &GameResponse{
		ID:                  g.ID,
		Name:                g.Name,
		Description:         g.Description,
		Capacity:            g.Capacity,
		BookingType:         string(g.BookingType),
		OpeningTime:         g.OpeningTime.String(),
		ClosingTime:         g.ClosingTime.String(),
		SlotDurationMinutes: g.SlotDurationMinutes,
		AvailableDays:       days,
		PrivatePrice:        g.PrivatePrice,
		SharedPrice:         g.SharedPrice,
		IsActive:            g.IsActive,
		CreatedAt:           g.CreatedAt,
		UpdatedAt:           g.UpdatedAt,
	}
}

// FromDomainGameList конвертирует список domain моделей в DTO
func FromDomainGameList(games []*domain.Game) *GameListResponse {
	resp := &GameListResponse{Games: make([]GameResponse, 0, len(games))}
	for _, g := range games {
		if gameResp := FromDomainGame(g); gameResp != nil {
			resp.Games = append(resp.Games, *gameResp)
		}
	}
	return resp
}

// FromDomainSlot конвертирует domain модель слота в DTO
func FromDomainSlot(s *domain.GameSlot) *SlotResponse {
	if s == nil {
		return nil
	}
	return &SlotResponse{
		ID:              s.ID,
		GameID:          s.GameID,
		Date:            s.Date.Format(domain.DateFormat),
		StartTime:       s.StartTime.String(),
		EndTime:         s.EndTime.String(),
		IsAutoGenerated: s.IsAutoGenerated,
		IsBlocked:       s.IsBlocked,
	}
}

func toDomainGameBookingType(s string) (domain.GameBookingType, error) {
	t := domain.GameBookingType(s)
	if t != domain.BookingTypeSingle && t != domain.BookingTypeHybrid {
		return "", ErrInvalidBookingType
	}
	return t, nil
}

func toDomainWeekdays(days []string) ([]domain.Weekday, error) {
	valid := map[domain.Weekday]bool{
		domain.Monday: true, domain.Tuesday: true, domain.Wednesday: true,
		domain.Thursday: true, domain.Friday: true, domain.Saturday: true,
		domain.Sunday: true,
	}

	out := make([]domain.Weekday, 0, len(days))
	for _, d := range days {
		day := domain.Weekday(d)
		if !valid[day] {
			return nil, ErrInvalidWeekday
		}
		out = append(out, day)
	}
	return out, nil
}

func toTimeString(s string) (types.TimeString, error) {
	ts, err := types.NewTimeStringFromString(s)
	if err != nil {
		return "", ErrInvalidTime
	}
	return ts, nil
}
