package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	blockSlotHandler "github.com/tapnex/GC-SlotService/internal/api/handlers/block_slot"
	cancelBookingHandler "github.com/tapnex/GC-SlotService/internal/api/handlers/cancel_booking"
	checkinBookingHandler "github.com/tapnex/GC-SlotService/internal/api/handlers/checkin_booking"
	confirmBookingHandler "github.com/tapnex/GC-SlotService/internal/api/handlers/confirm_booking"
	createBookingHandler "github.com/tapnex/GC-SlotService/internal/api/handlers/create_booking"
	createCustomSlotHandler "github.com/tapnex/GC-SlotService/internal/api/handlers/create_custom_slot"
	createGameHandler "github.com/tapnex/GC-SlotService/internal/api/handlers/create_game"
	deleteSlotHandler "github.com/tapnex/GC-SlotService/internal/api/handlers/delete_slot"
	generateSlotsHandler "github.com/tapnex/GC-SlotService/internal/api/handlers/generate_slots"
	getBookingHandler "github.com/tapnex/GC-SlotService/internal/api/handlers/get_booking"
	getBookingHistoryHandler "github.com/tapnex/GC-SlotService/internal/api/handlers/get_booking_history"
	getBookingOptionsHandler "github.com/tapnex/GC-SlotService/internal/api/handlers/get_booking_options"
	getGameHandler "github.com/tapnex/GC-SlotService/internal/api/handlers/get_game"
	getUserBookingsHandler "github.com/tapnex/GC-SlotService/internal/api/handlers/get_user_bookings"
	listGamesHandler "github.com/tapnex/GC-SlotService/internal/api/handlers/list_games"
	updateGameScheduleHandler "github.com/tapnex/GC-SlotService/internal/api/handlers/update_game_schedule"
	"github.com/tapnex/GC-SlotService/internal/api/middleware"
	"github.com/tapnex/GC-SlotService/internal/app"
	"github.com/tapnex/GC-SlotService/internal/config"
	bookingRepo "github.com/tapnex/GC-SlotService/internal/infra/storage/booking"
	gameRepo "github.com/tapnex/GC-SlotService/internal/infra/storage/game"
	slotRepo "github.com/tapnex/GC-SlotService/internal/infra/storage/slot"
	realtimeClient "github.com/tapnex/GC-SlotService/internal/integrations/realtime"
	bookingsService "github.com/tapnex/GC-SlotService/internal/service/bookings"
	gamesService "github.com/tapnex/GC-SlotService/internal/service/games"
	createBookingUC "github.com/tapnex/GC-SlotService/internal/usecase/create_booking"
	generateSlotsUC "github.com/tapnex/GC-SlotService/internal/usecase/generate_slots"
	getBookingOptionsUC "github.com/tapnex/GC-SlotService/internal/usecase/get_booking_options"
	"github.com/tapnex/GC-SlotService/pkg/dbmetrics"
	"github.com/tapnex/GC-SlotService/pkg/logger"
	"github.com/tapnex/GC-SlotService/pkg/metrics"
	"github.com/tapnex/GC-SlotService/pkg/simpletxmanager"
	"github.com/tapnex/GC-SlotService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting GC-SlotService...")
	log.Info("Configuration loaded from config.toml")

	// Часовой пояс площадки: расписания и горизонты считаются в нём
	location, err := time.LoadLocation(cfg.Slots.Timezone)
	if err != nil {
		log.Fatal("Failed to load timezone %q: %v", cfg.Slots.Timezone, err)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Проверяем конфигурацию комиссии платформы
	if err := cfg.Pricing.Validate(); err != nil {
		log.Fatal("Invalid pricing config: %v", err)
	}
	log.Info("Platform fee: %s %.2f (%s)", cfg.Pricing.FeeType, cfg.Pricing.FeeValue, cfg.Pricing.Currency)

	// Клиент realtime-уведомлений (опционален)
	// Интерфейсы уведомлений заполняются только при включённом realtime,
	// иначе typed-nil в интерфейсе обошёл бы nil-проверки сервисов
	var bookingNotifier createBookingUC.AvailabilityNotifier
	var serviceNotifier bookingsService.AvailabilityNotifier
	if cfg.Realtime.Enabled {
		rt := realtimeClient.NewClient(
			cfg.Realtime.URL,
			time.Duration(cfg.Realtime.Timeout)*time.Second,
			metricsCollector,
			log,
		)
		bookingNotifier = rt
		serviceNotifier = rt
		log.Info("Realtime notifications enabled (url=%s, timeout=%ds)", cfg.Realtime.URL, cfg.Realtime.Timeout)
	}

	// Инициализируем репозитории (с метриками или без)
	var (
		gameRepository    *gameRepo.Repository
		slotRepository    *slotRepo.Repository
		bookingRepository *bookingRepo.Repository
	)

	// Интерфейс transaction manager (используется в usecases и сервисах)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		gameRepository = gameRepo.NewRepository(wrappedDB)
		slotRepository = slotRepo.NewRepository(wrappedDB)
		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		gameRepository = gameRepo.NewRepository(db)
		slotRepository = slotRepo.NewRepository(db)
		bookingRepository = bookingRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		gameRepository,
		slotRepository,
		bookingRepository,
		txMgr,
		&cfg.Pricing,
		bookingNotifier,
		log,
	)

	generateSlotsUseCase := generateSlotsUC.NewUseCase(
		gameRepository,
		slotRepository,
		log,
	)

	// Генератор слотов дозаполняет пустые дни прямо на пути чтения
	getBookingOptionsUseCase := getBookingOptionsUC.NewUseCase(
		gameRepository,
		slotRepository,
		bookingRepository,
		generateSlotsUseCase,
		log,
	)

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		slotRepository,
		txMgr,
		serviceNotifier,
		log,
	)
	gameSvc := gamesService.NewService(
		gameRepository,
		slotRepository,
		generateSlotsUseCase,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	confirmBooking := confirmBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	checkinBooking := checkinBookingHandler.NewHandler(bookingSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getBookingHistory := getBookingHistoryHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getBookingOptions := getBookingOptionsHandler.NewHandler(getBookingOptionsUseCase, log)
	createGame := createGameHandler.NewHandler(gameSvc, log)
	getGame := getGameHandler.NewHandler(gameSvc, log)
	listGames := listGamesHandler.NewHandler(gameSvc, log)
	updateGameSchedule := updateGameScheduleHandler.NewHandler(gameSvc, log)
	generateSlots := generateSlotsHandler.NewHandler(generateSlotsUseCase, log)
	createCustomSlot := createCustomSlotHandler.NewHandler(gameSvc, log)
	blockSlot := blockSlotHandler.NewHandler(gameSvc, log)
	deleteSlot := deleteSlotHandler.NewHandler(gameSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Каталог игр
	api.HandleFunc("/games", listGames.Handle).Methods(http.MethodGet)
	api.HandleFunc("/games/{gameId}", getGame.Handle).Methods(http.MethodGet)

	// Слоты игры на дату с доступностью
	api.HandleFunc("/games/{gameId}/booking-options", getBookingOptions.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание бронирования (резерв на окно оплаты)
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Подтверждение бронирования после оплаты
	protected.HandleFunc("/bookings/{bookingId}/confirm", confirmBooking.Handle).Methods(http.MethodPost)

	// Отмена бронирования
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Отметка о прибытии клиента
	protected.HandleFunc("/bookings/{bookingId}/check-in", checkinBooking.Handle).Methods(http.MethodPost)

	// История статусов бронирования
	protected.HandleFunc("/bookings/{bookingId}/history", getBookingHistory.Handle).Methods(http.MethodGet)

	// Бронирования пользователя
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Управление играми и слотами (для администраторов площадки) ---
	protected.HandleFunc("/games", createGame.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/games/{gameId}/schedule", updateGameSchedule.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/games/{gameId}/slots/generate", generateSlots.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/games/{gameId}/slots", createCustomSlot.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/slots/{slotId}/block", blockSlot.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/slots/{slotId}", deleteSlot.Handle).Methods(http.MethodDelete)

	// Фоновые задачи: поддержание горизонта слотов и автопереходы статусов
	scheduler := app.NewScheduler(
		gameRepository,
		generateSlotsUseCase,
		bookingSvc,
		log,
		metricsCollector,
		location,
		cfg.Slots.HorizonDays,
		time.Duration(cfg.Slots.HorizonCheckInterval)*time.Second,
		time.Duration(cfg.Slots.TransitionInterval)*time.Second,
	)
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	scheduler.Start(schedulerCtx)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем фоновые задачи
	scheduler.Stop()
	schedulerCancel()

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
