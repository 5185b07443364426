package game

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/tapnex/GC-SlotService/internal/domain"
	"github.com/tapnex/GC-SlotService/pkg/dbmetrics"
	"github.com/tapnex/GC-SlotService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с играми
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория игр
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var gameColumns = []string{
	"id",
	"name",
	"description",
	"capacity",
	"booking_type",
	"opening_time",
	"closing_time",
	"slot_duration_minutes",
	"available_days",
	"private_price",
	"shared_price",
	"is_active",
	"created_at",
	"updated_at",
}

// Create создает новую игру
func (r *Repository) Create(ctx context.Context, game *domain.Game) (*domain.Game, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("games").
		Columns(
			"name",
			"description",
			"capacity",
			"booking_type",
			"opening_time",
			"closing_time",
			"slot_duration_minutes",
			"available_days",
			"private_price",
			"shared_price",
			"is_active",
		).
		Values(
			game.Name,
			game.Description,
			game.Capacity,
			game.BookingType,
			game.OpeningTime,
			game.ClosingTime,
			game.SlotDurationMinutes,
			pq.Array(weekdayStrings(game.AvailableDays)),
			game.PrivatePrice,
			game.SharedPrice,
			game.IsActive,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&game.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	game.CreatedAt = createdAt.Time
	game.UpdatedAt = updatedAt.Time

	return game, nil
}

// GetByID получает игру по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Game, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(gameColumns...).
		From("games").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	game, err := r.scanGame(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan game: %v", ErrScanRow, err)
	}

	return game, nil
}

// List получает список игр
// onlyActive=true возвращает только активные игры
func (r *Repository) List(ctx context.Context, onlyActive bool) ([]*domain.Game, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(gameColumns...).
		From("games").
		OrderBy("name ASC")

	if onlyActive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"is_active": true})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	games := make([]*domain.Game, 0)
	for rows.Next() {
		game, err := r.scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		games = append(games, game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return games, nil
}

// Update обновляет игру целиком
func (r *Repository) Update(ctx context.Context, game *domain.Game) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("games").
		Set("name", game.Name).
		Set("description", game.Description).
		Set("capacity", game.Capacity).
		Set("booking_type", game.BookingType).
		Set("opening_time", game.OpeningTime).
		Set("closing_time", game.ClosingTime).
		Set("slot_duration_minutes", game.SlotDurationMinutes).
		Set("available_days", pq.Array(weekdayStrings(game.AvailableDays))).
		Set("private_price", game.PrivatePrice).
		Set("shared_price", game.SharedPrice).
		Set("is_active", game.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": game.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrGameNotFound
	}

	return nil
}

// SetActive включает или выключает игру
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("games").
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetActive - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetActive - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetActive - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrGameNotFound
	}

	return nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanGame сканирует одну строку в domain.Game
func (r *Repository) scanGame(row rowScanner) (*domain.Game, error) {
	var game domain.Game
	var days pq.StringArray
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&game.ID,
		&game.Name,
		&game.Description,
		&game.Capacity,
		&game.BookingType,
		&game.OpeningTime,
		&game.ClosingTime,
		&game.SlotDurationMinutes,
		&days,
		&game.PrivatePrice,
		&game.SharedPrice,
		&game.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	game.AvailableDays = make([]domain.Weekday, len(days))
	for i, d := range days {
		game.AvailableDays[i] = domain.Weekday(d)
	}
	game.CreatedAt = createdAt.Time
	game.UpdatedAt = updatedAt.Time

	return &game, nil
}

func weekdayStrings(days []domain.Weekday) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = string(d)
	}
	return out
}
