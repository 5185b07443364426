package slot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/tapnex/GC-SlotService/internal/domain"
	"github.com/tapnex/GC-SlotService/pkg/dbmetrics"
	"github.com/tapnex/GC-SlotService/pkg/psqlbuilder"
)

// Repository репозиторий для работы со слотами и счётчиками их доступности
// Владеет таблицами game_slots и slot_availability
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var slotColumns = []string{
	"id",
	"game_id",
	"date",
	"start_time",
	"end_time",
	"is_auto_generated",
	"is_blocked",
	"created_at",
	"updated_at",
}

// Create создает один слот вместе со счётчиком доступности
// Используется для ручных (кастомных) слотов владельца
func (r *Repository) Create(ctx context.Context, slot *domain.GameSlot, capacity int) (*domain.GameSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("game_slots").
		Columns("game_id", "date", "start_time", "end_time", "is_auto_generated", "is_blocked").
		Values(slot.GameID, slot.Date, slot.StartTime, slot.EndTime, slot.IsAutoGenerated, slot.IsBlocked).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&slot.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}
	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time

	if err := r.createAvailability(ctx, executor, slot.ID, capacity); err != nil {
		return nil, err
	}

	return slot, nil
}

// BulkCreateForDate создает пачку слотов на одну дату
// Конфликты по (game_id, date, start_time) молча пропускаются, поэтому
// повторная генерация того же дня безопасна. Для каждого реально вставленного
// слота создаётся счётчик доступности. Возвращает число вставленных слотов.
func (r *Repository) BulkCreateForDate(ctx context.Context, slots []*domain.GameSlot, capacity int) (int, error) {
	if len(slots) == 0 {
		return 0, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("game_slots").
		Columns("game_id", "date", "start_time", "end_time", "is_auto_generated", "is_blocked")
	for _, s := range slots {
		insertBuilder = insertBuilder.Values(s.GameID, s.Date, s.StartTime, s.EndTime, s.IsAutoGenerated, s.IsBlocked)
	}

	query, args, err := insertBuilder.
		Suffix("ON CONFLICT (game_id, date, start_time) DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: BulkCreateForDate - build insert query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: BulkCreateForDate - execute insert: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	insertedIDs := make([]int64, 0, len(slots))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("%w: BulkCreateForDate - scan id: %v", ErrScanRow, err)
		}
		insertedIDs = append(insertedIDs, id)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("%w: BulkCreateForDate - rows error: %v", ErrScanRow, err)
	}

	for _, id := range insertedIDs {
		if err := r.createAvailability(ctx, executor, id, capacity); err != nil {
			return 0, err
		}
	}

	return len(insertedIDs), nil
}

// ExistsForDate проверяет, есть ли у игры хоть один слот на дату
// Используется генератором для идемпотентности по дням
func (r *Repository) ExistsForDate(ctx context.Context, gameID int64, date time.Time) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From("game_slots").
		Where(squirrel.Eq{"game_id": gameID, "date": date}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: ExistsForDate - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: ExistsForDate - scan: %v", ErrScanRow, err)
	}

	return true, nil
}

// GetByID получает слот по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.GameSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("game_slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan slot: %v", ErrScanRow, err)
	}

	return slot, nil
}

// GetByGameAndDate получает слоты игры на дату, отсортированные по времени начала
func (r *Repository) GetByGameAndDate(ctx context.Context, gameID int64, date time.Time) ([]*domain.GameSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("game_slots").
		Where(squirrel.Eq{"game_id": gameID, "date": date}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByGameAndDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByGameAndDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanSlots(rows)
}

// DeleteUnbookedFutureAuto удаляет будущие автосгенерированные слоты игры,
// на которые нет активных бронирований. Ручные слоты и слоты с бронированиями
// не затрагиваются. Возвращает число удалённых слотов.
func (r *Repository) DeleteUnbookedFutureAuto(ctx context.Context, gameID int64, fromDate time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	activeStatuses := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		activeStatuses[i] = string(s)
	}

	query, args, err := psqlbuilder.Delete("game_slots").
		Where(squirrel.Eq{"game_id": gameID, "is_auto_generated": true}).
		Where(squirrel.GtOrEq{"date": fromDate}).
		Where(squirrel.Expr(
			"NOT EXISTS (SELECT 1 FROM bookings b WHERE b.slot_id = game_slots.id AND b.status = ANY(?))",
			pq.Array(activeStatuses),
		)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteUnbookedFutureAuto - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteUnbookedFutureAuto - execute delete: %v", ErrExecQuery, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteUnbookedFutureAuto - get rows affected: %v", ErrExecQuery, err)
	}

	return deleted, nil
}

// SetBlocked блокирует или разблокирует слот для новых бронирований
func (r *Repository) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("game_slots").
		Set("is_blocked", blocked).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetBlocked - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetBlocked - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetBlocked - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrSlotNotFound
	}

	return nil
}

// DeleteIfUnbooked удаляет слот, если на него нет активных бронирований
// Счётчик доступности уходит каскадом. Слот с активными бронями не
// удаляется - возвращается ErrSlotHasBookings
func (r *Repository) DeleteIfUnbooked(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	activeStatuses := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		activeStatuses[i] = string(s)
	}

	query, args, err := psqlbuilder.Delete("game_slots").
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Expr(
			"NOT EXISTS (SELECT 1 FROM bookings b WHERE b.slot_id = game_slots.id AND b.status = ANY(?))",
			pq.Array(activeStatuses),
		)).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteIfUnbooked - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteIfUnbooked - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteIfUnbooked - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		// Либо слота нет, либо его держат активные брони
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrSlotHasBookings
	}

	return nil
}

// GetAvailability получает счётчик доступности слота
// Внутри транзакции строка блокируется через FOR UPDATE - конкурирующие
// бронирования того же слота выполняются последовательно
func (r *Repository) GetAvailability(ctx context.Context, slotID int64) (*domain.SlotAvailability, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"slot_id",
		"total_capacity",
		"booked_spots",
		"is_private_booked",
		"updated_at",
	).
		From("slot_availability").
		Where(squirrel.Eq{"slot_id": slotID})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetAvailability - build select query: %v", ErrBuildQuery, err)
	}

	var availability domain.SlotAvailability
	var updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&availability.ID,
		&availability.SlotID,
		&availability.TotalCapacity,
		&availability.BookedSpots,
		&availability.IsPrivateBooked,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrAvailabilityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetAvailability - scan availability: %v", ErrScanRow, err)
	}

	availability.UpdatedAt = updatedAt.Time

	return &availability, nil
}

// GetAvailabilityBySlots получает счётчики доступности для набора слотов
// Возвращает map slot_id -> availability
func (r *Repository) GetAvailabilityBySlots(ctx context.Context, slotIDs []int64) (map[int64]*domain.SlotAvailability, error) {
	result := make(map[int64]*domain.SlotAvailability, len(slotIDs))
	if len(slotIDs) == 0 {
		return result, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"slot_id",
		"total_capacity",
		"booked_spots",
		"is_private_booked",
		"updated_at",
	).
		From("slot_availability").
		Where(squirrel.Eq{"slot_id": slotIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetAvailabilityBySlots - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetAvailabilityBySlots - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var availability domain.SlotAvailability
		var updatedAt sql.NullTime

		err := rows.Scan(
			&availability.ID,
			&availability.SlotID,
			&availability.TotalCapacity,
			&availability.BookedSpots,
			&availability.IsPrivateBooked,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetAvailabilityBySlots - scan row: %v", ErrScanRow, err)
		}

		availability.UpdatedAt = updatedAt.Time
		result[availability.SlotID] = &availability
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetAvailabilityBySlots - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// UpdateAvailability сохраняет счётчики доступности слота
func (r *Repository) UpdateAvailability(ctx context.Context, availability *domain.SlotAvailability) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slot_availability").
		Set("booked_spots", availability.BookedSpots).
		Set("is_private_booked", availability.IsPrivateBooked).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"slot_id": availability.SlotID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateAvailability - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateAvailability - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateAvailability - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrAvailabilityNotFound
	}

	return nil
}

func (r *Repository) createAvailability(ctx context.Context, executor DBExecutor, slotID int64, capacity int) error {
	query, args, err := psqlbuilder.Insert("slot_availability").
		Columns("slot_id", "total_capacity", "booked_spots", "is_private_booked").
		Values(slotID, capacity, 0, false).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: createAvailability - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: createAvailability - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// scanSlot сканирует одну строку в domain.GameSlot
func scanSlot(row interface{ Scan(dest ...interface{}) error }) (*domain.GameSlot, error) {
	var slot domain.GameSlot
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&slot.ID,
		&slot.GameID,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.IsAutoGenerated,
		&slot.IsBlocked,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time

	return &slot, nil
}

func scanSlots(rows *sql.Rows) ([]*domain.GameSlot, error) {
	slots := make([]*domain.GameSlot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanSlots - scan row: %v", ErrScanRow, err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanSlots - rows error: %v", ErrScanRow, err)
	}
	return slots, nil
}
