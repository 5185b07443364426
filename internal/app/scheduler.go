// Package app фоновые задачи сервиса
package app

import (
	"context"
	"time"

	"github.com/tapnex/GC-SlotService/internal/domain"
	"github.com/tapnex/GC-SlotService/internal/service/bookings/models"
	"github.com/tapnex/GC-SlotService/pkg/metrics"
)

// GameLister список активных игр для обслуживания горизонта
type GameLister interface {
	List(ctx context.Context, onlyActive bool) ([]*domain.Game, error)
}

// SlotMaintainer докатывает сетку слотов игры до нужной даты
type SlotMaintainer interface {
	EnsureDate(ctx context.Context, gameID int64, date time.Time) (int, error)
}

// BookingTransitioner выполняет автоматические переходы статусов бронирований
type BookingTransitioner interface {
	ApplyAutomaticTransitions(ctx context.Context, now time.Time) (*models.TransitionSummary, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Scheduler управляет фоновыми задачами: поддержанием горизонта слотов
// и автоматическими переходами статусов бронирований
type Scheduler struct {
	games       GameLister
	slots       SlotMaintainer
	bookings    BookingTransitioner
	logger      Logger
	metrics     *metrics.Metrics // может быть nil
	location    *time.Location
	horizonDays int

	horizonInterval    time.Duration
	transitionInterval time.Duration

	stopChan chan struct{}
}

// NewScheduler создает новый планировщик фоновых задач
func NewScheduler(
	games GameLister,
	slots SlotMaintainer,
	bookings BookingTransitioner,
	logger Logger,
	m *metrics.Metrics,
	location *time.Location,
	horizonDays int,
	horizonInterval time.Duration,
	transitionInterval time.Duration,
) *Scheduler {
	return &Scheduler{
		games:              games,
		slots:              slots,
		bookings:           bookings,
		logger:             logger,
		metrics:            m,
		location:           location,
		horizonDays:        horizonDays,
		horizonInterval:    horizonInterval,
		transitionInterval: transitionInterval,
		stopChan:           make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler: horizon_days=%d, horizon_interval=%s, transition_interval=%s",
		s.horizonDays, s.horizonInterval, s.transitionInterval)

	go s.runHorizonTask(ctx)
	go s.runTransitionTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runHorizonTask периодически докатывает сетку слотов активных игр
// до горизонта бронирования
func (s *Scheduler) runHorizonTask(ctx context.Context) {
	// Первый запуск сразу при старте
	s.maintainHorizon(ctx)

	ticker := time.NewTicker(s.horizonInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.maintainHorizon(ctx)
		case <-s.stopChan:
			s.logger.Info("Horizon maintenance task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Horizon maintenance task cancelled")
			return
		}
	}
}

// runTransitionTask периодически выполняет автоматические переходы
// статусов: истечение неоплаченных резервов, старт и завершение игр
func (s *Scheduler) runTransitionTask(ctx context.Context) {
	ticker := time.NewTicker(s.transitionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.applyTransitions(ctx)
		case <-s.stopChan:
			s.logger.Info("Booking transition task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Booking transition task cancelled")
			return
		}
	}
}

func (s *Scheduler) maintainHorizon(ctx context.Context) {
	s.logger.Info("Starting slot horizon maintenance")

	games, err := s.games.List(ctx, true)
	if err != nil {
		s.logger.Error("Horizon maintenance: failed to list games: %v", err)
		return
	}

	today := time.Now().In(s.location)
	totalCreated := 0

	for _, game := range games {
		for day := 0; day < s.horizonDays; day++ {
			date := today.AddDate(0, 0, day)

			created, err := s.slots.EnsureDate(ctx, game.ID, date)
			if err != nil {
				s.logger.Error("Horizon maintenance: failed for game=%d date=%s: %v",
					game.ID, date.Format(domain.DateFormat), err)
				continue
			}
			totalCreated += created
		}
	}

	if s.metrics != nil && totalCreated > 0 {
		s.metrics.SlotsGenerated.WithLabelValues("horizon").Add(float64(totalCreated))
	}

	s.logger.Info("Slot horizon maintenance completed: games=%d, slots_created=%d", len(games), totalCreated)
}

func (s *Scheduler) applyTransitions(ctx context.Context) {
	now := time.Now().In(s.location)

	summary, err := s.bookings.ApplyAutomaticTransitions(ctx, now)
	if err != nil {
		s.logger.Error("Automatic transitions failed: %v", err)
		return
	}

	if s.metrics != nil {
		s.metrics.AutoTransitions.WithLabelValues("expired").Add(float64(summary.Expired))
		s.metrics.AutoTransitions.WithLabelValues("started").Add(float64(summary.Started))
		s.metrics.AutoTransitions.WithLabelValues("completed").Add(float64(summary.Completed))
		s.metrics.AutoTransitions.WithLabelValues("no_show").Add(float64(summary.NoShows))
	}

	if summary.Expired > 0 || summary.Started > 0 || summary.Completed > 0 || summary.NoShows > 0 {
		s.logger.Info("Automatic transitions applied: expired=%d, started=%d, completed=%d, no_shows=%d",
			summary.Expired, summary.Started, summary.Completed, summary.NoShows)
	}
}
