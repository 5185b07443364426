package generate_slots

import (
	"time"

	"github.com/tapnex/GC-SlotService/internal/domain"
	"github.com/tapnex/GC-SlotService/pkg/types"
)

// buildDayGrid строит сетку слотов игры на одну дату
// Слоты идут подряд от открытия до закрытия с шагом slot_duration_minutes.
// Неполный хвост в конце дня не становится слотом: если от 10:00 до 14:30
// при часовых слотах, последний слот будет 13:00-14:00.
// Закрытие "00:00" означает полночь, слот до полуночи получает end_time "00:00".
func buildDayGrid(game *domain.Game, date time.Time) ([]*domain.GameSlot, error) {
	openMinutes, err := game.OpeningTime.MinutesFromMidnight()
	if err != nil {
		return nil, err
	}
	closeMinutes, err := game.ClosingMinutes()
	if err != nil {
		return nil, err
	}

	slots := make([]*domain.GameSlot, 0, (closeMinutes-openMinutes)/game.SlotDurationMinutes)
	for start := openMinutes; start+game.SlotDurationMinutes <= closeMinutes; start += game.SlotDurationMinutes {
		slots = append(slots, &domain.GameSlot{
			GameID:          game.ID,
			Date:            date,
			StartTime:       types.NewTimeStringFromMinutes(start),
			EndTime:         types.NewTimeStringFromMinutes(start + game.SlotDurationMinutes),
			IsAutoGenerated: true,
		})
	}

	return slots, nil
}

// dateOnly обнуляет время, оставляя только дату
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
