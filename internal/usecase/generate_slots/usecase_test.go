package generate_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapnex/GC-SlotService/internal/domain"
	gameRepo "github.com/tapnex/GC-SlotService/internal/infra/storage/game"
	"github.com/tapnex/GC-SlotService/pkg/ptr"
	"github.com/tapnex/GC-SlotService/pkg/types"
)

type fakeGameRepo struct {
	games map[int64]*domain.Game
	err   error
}

func (f *fakeGameRepo) GetByID(_ context.Context, id int64) (*domain.Game, error) {
	if f.err != nil {
		return nil, f.err
	}
	if g, ok := f.games[id]; ok {
		return g, nil
	}
	return nil, gameRepo.ErrGameNotFound
}

func (f *fakeGameRepo) List(_ context.Context, onlyActive bool) ([]*domain.Game, error) {
	var out []*domain.Game
	for _, g := range f.games {
		if !onlyActive || g.IsActive {
			out = append(out, g)
		}
	}
	return out, nil
}

type fakeSlotRepo struct {
	existingDates map[string]bool
	created       []*domain.GameSlot
	deleted       int64
}

func (f *fakeSlotRepo) ExistsForDate(_ context.Context, _ int64, date time.Time) (bool, error) {
	return f.existingDates[date.Format(domain.DateFormat)], nil
}

func (f *fakeSlotRepo) BulkCreateForDate(_ context.Context, slots []*domain.GameSlot, _ int) (int, error) {
	f.created = append(f.created, slots...)
	return len(slots), nil
}

func (f *fakeSlotRepo) DeleteUnbookedFutureAuto(_ context.Context, _ int64, _ time.Time) (int64, error) {
	return f.deleted, nil
}

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testGame() *domain.Game {
	return &domain.Game{
		ID:                  1,
		Name:                "Snooker Table 1",
		Capacity:            4,
		BookingType:         domain.BookingTypeHybrid,
		OpeningTime:         "10:00",
		ClosingTime:         "14:00",
		SlotDurationMinutes: 60,
		AvailableDays: []domain.Weekday{
			domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday,
			domain.Friday, domain.Saturday, domain.Sunday,
		},
		PrivatePrice: 2000,
		SharedPrice:  ptr.Ptr(500.0),
		IsActive:     true,
	}
}

func newTestUseCase(gameRepo *fakeGameRepo, slotRepo *fakeSlotRepo, now time.Time) *UseCase {
	uc := NewUseCase(gameRepo, slotRepo, nopLogger{})
	uc.timeProvider = &fixedTime{now: now}
	return uc
}

func TestExecuteGeneratesDayGrid(t *testing.T) {
	game := testGame()
	slotRepo := &fakeSlotRepo{existingDates: map[string]bool{}}
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	uc := newTestUseCase(&fakeGameRepo{games: map[int64]*domain.Game{1: game}}, slotRepo, now)

	date := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	resp, err := uc.Execute(context.Background(), &Request{GameID: 1, StartDate: date, EndDate: date})
	require.NoError(t, err)

	// 10:00-14:00 с часовыми слотами - ровно четыре слота
	assert.Equal(t, 4, resp.SlotsCreated)
	assert.Equal(t, 1, resp.DaysCovered)
	require.Len(t, slotRepo.created, 4)
	assert.Equal(t, types.TimeString("10:00"), slotRepo.created[0].StartTime)
	assert.Equal(t, types.TimeString("11:00"), slotRepo.created[0].EndTime)
	assert.Equal(t, types.TimeString("13:00"), slotRepo.created[3].StartTime)
	assert.Equal(t, types.TimeString("14:00"), slotRepo.created[3].EndTime)
	assert.True(t, slotRepo.created[0].IsAutoGenerated)
}

func TestExecuteDropsPartialTail(t *testing.T) {
	game := testGame()
	game.ClosingTime = "14:30"
	slotRepo := &fakeSlotRepo{existingDates: map[string]bool{}}
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	uc := newTestUseCase(&fakeGameRepo{games: map[int64]*domain.Game{1: game}}, slotRepo, now)

	date := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	resp, err := uc.Execute(context.Background(), &Request{GameID: 1, StartDate: date, EndDate: date})
	require.NoError(t, err)

	// неполные полчаса 14:00-14:30 слотом не становятся
	assert.Equal(t, 4, resp.SlotsCreated)
	assert.Equal(t, types.TimeString("14:00"), slotRepo.created[3].EndTime)
}

func TestExecuteMidnightClosing(t *testing.T) {
	game := testGame()
	game.OpeningTime = "22:00"
	game.ClosingTime = domain.Midnight
	slotRepo := &fakeSlotRepo{existingDates: map[string]bool{}}
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	uc := newTestUseCase(&fakeGameRepo{games: map[int64]*domain.Game{1: game}}, slotRepo, now)

	date := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	resp, err := uc.Execute(context.Background(), &Request{GameID: 1, StartDate: date, EndDate: date})
	require.NoError(t, err)

	require.Equal(t, 2, resp.SlotsCreated)
	// последний слот до полуночи хранится с end_time "00:00"
	assert.Equal(t, types.TimeString("23:00"), slotRepo.created[1].StartTime)
	assert.Equal(t, domain.Midnight, slotRepo.created[1].EndTime)
}

func TestExecuteSkipsCoveredAndOffScheduleDays(t *testing.T) {
	game := testGame()
	// только понедельники
	game.AvailableDays = []domain.Weekday{domain.Monday}
	slotRepo := &fakeSlotRepo{existingDates: map[string]bool{
		"2026-03-16": true, // Monday already covered
	}}
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	uc := newTestUseCase(&fakeGameRepo{games: map[int64]*domain.Game{1: game}}, slotRepo, now)

	start := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC) // Monday
	end := time.Date(2026, 3, 23, 0, 0, 0, 0, time.UTC)   // next Monday
	resp, err := uc.Execute(context.Background(), &Request{GameID: 1, StartDate: start, EndDate: end})
	require.NoError(t, err)

	// слоты даёт только второй понедельник, первый уже покрыт, остальные дни вне расписания
	assert.Equal(t, 4, resp.SlotsCreated)
	assert.Equal(t, 1, resp.DaysCovered)
	assert.Equal(t, 7, resp.DaysSkipped)
}

func TestExecuteSkipsPastDates(t *testing.T) {
	game := testGame()
	slotRepo := &fakeSlotRepo{existingDates: map[string]bool{}}
	now := time.Date(2026, 3, 18, 9, 0, 0, 0, time.UTC)
	uc := newTestUseCase(&fakeGameRepo{games: map[int64]*domain.Game{1: game}}, slotRepo, now)

	start := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)
	resp, err := uc.Execute(context.Background(), &Request{GameID: 1, StartDate: start, EndDate: end})
	require.NoError(t, err)

	// 16-е и 17-е уже позади, генерируется только 18-е
	assert.Equal(t, 4, resp.SlotsCreated)
	assert.Equal(t, 1, resp.DaysCovered)
	assert.Equal(t, 2, resp.DaysSkipped)
}

func TestExecuteValidation(t *testing.T) {
	game := testGame()
	slotRepo := &fakeSlotRepo{existingDates: map[string]bool{}}
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	uc := newTestUseCase(&fakeGameRepo{games: map[int64]*domain.Game{1: game}}, slotRepo, now)

	date := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

	_, err := uc.Execute(context.Background(), &Request{GameID: 1, StartDate: date.AddDate(0, 0, 1), EndDate: date})
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = uc.Execute(context.Background(), &Request{GameID: 1, StartDate: date, EndDate: date.AddDate(0, 0, 400)})
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = uc.Execute(context.Background(), &Request{GameID: 0, StartDate: date, EndDate: date})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestInactiveGameIsNoOp(t *testing.T) {
	game := testGame()
	game.IsActive = false
	slotRepo := &fakeSlotRepo{existingDates: map[string]bool{}}
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	uc := newTestUseCase(&fakeGameRepo{games: map[int64]*domain.Game{1: game}}, slotRepo, now)

	// выключенная игра молча пропускается на всех путях генерации
	date := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	resp, err := uc.Execute(context.Background(), &Request{GameID: 1, StartDate: date, EndDate: date})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.SlotsCreated)

	created, err := uc.EnsureDate(context.Background(), 1, date)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	regen, err := uc.Regenerate(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, regen.SlotsCreated)
	assert.Equal(t, int64(0), regen.SlotsDeleted)

	assert.Empty(t, slotRepo.created)
}

func TestRegenerateRebuildsRange(t *testing.T) {
	game := testGame()
	slotRepo := &fakeSlotRepo{existingDates: map[string]bool{}, deleted: 12}
	now := time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)
	uc := newTestUseCase(&fakeGameRepo{games: map[int64]*domain.Game{1: game}}, slotRepo, now)

	resp, err := uc.Regenerate(context.Background(), 1, 3)
	require.NoError(t, err)

	assert.Equal(t, int64(12), resp.SlotsDeleted)
	// три дня по четыре слота
	assert.Equal(t, 12, resp.SlotsCreated)
	assert.Equal(t, 3, resp.DaysCovered)
}

func TestEnsureDate(t *testing.T) {
	game := testGame()
	slotRepo := &fakeSlotRepo{existingDates: map[string]bool{"2026-03-17": true}}
	now := time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)
	uc := newTestUseCase(&fakeGameRepo{games: map[int64]*domain.Game{1: game}}, slotRepo, now)

	created, err := uc.EnsureDate(context.Background(), 1, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 4, created)

	// покрытый день - no-op
	created, err = uc.EnsureDate(context.Background(), 1, time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}
