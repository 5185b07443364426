package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/tapnex/GC-SlotService/internal/domain"
	"github.com/tapnex/GC-SlotService/pkg/dbmetrics"
	"github.com/tapnex/GC-SlotService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с бронированиями и их историей статусов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var bookingColumns = []string{
	"id",
	"customer_id",
	"game_id",
	"slot_id",
	"booking_type",
	"spots_booked",
	"price_per_spot",
	"subtotal",
	"platform_fee",
	"total_amount",
	"status",
	"reservation_expires_at",
	"payment_reference",
	"is_verified",
	"verified_at",
	"notes",
	"created_at",
	"updated_at",
}

// Create создает новое бронирование
// Если в контексте есть активная транзакция, запрос выполняется внутри неё -
// создание брони всегда идёт в одной транзакции с проверкой доступности слота
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"customer_id",
			"game_id",
			"slot_id",
			"booking_type",
			"spots_booked",
			"price_per_spot",
			"subtotal",
			"platform_fee",
			"total_amount",
			"status",
			"reservation_expires_at",
			"payment_reference",
			"notes",
		).
		Values(
			booking.CustomerID,
			booking.GameID,
			booking.SlotID,
			booking.BookingType,
			booking.SpotsBooked,
			booking.PricePerSpot,
			booking.Subtotal,
			booking.PlatformFee,
			booking.TotalAmount,
			booking.Status,
			booking.ReservationExpiresAt,
			booking.PaymentReference,
			booking.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetActiveBySlot получает активные бронирования слота (PENDING, CONFIRMED,
// IN_PROGRESS). Используется при проверке доступности: PENDING с живым окном
// резервирования удерживают места, хотя счётчики их не отражают.
func (r *Repository) GetActiveBySlot(ctx context.Context, slotID int64) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"slot_id": slotID, "status": statusStrings(domain.ActiveStatuses)}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveBySlot - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveBySlot - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetByUserWithFilter получает бронирования пользователя с фильтрацией
// по игре, периоду и статусу
func (r *Repository) GetByUserWithFilter(ctx context.Context, filter domain.UserBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(prefixColumns("b", bookingColumns)...).
		From("bookings b").
		Join("game_slots gs ON gs.id = b.slot_id").
		Where(squirrel.Eq{"b.customer_id": filter.CustomerID}).
		OrderBy("gs.date DESC, gs.start_time DESC")

	if filter.GameID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"b.game_id": *filter.GameID})
	}
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"gs.date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"gs.date": *filter.EndDate})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"b.status": *filter.Status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// UpdateStatus обновляет статус бронирования
// При выходе из PENDING окно резервирования сбрасывается
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	if status != domain.StatusPending {
		updateBuilder = updateBuilder.Set("reservation_expires_at", nil)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// SetPaymentReference сохраняет платёжную ссылку бронирования
func (r *Repository) SetPaymentReference(ctx context.Context, id int64, reference string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("payment_reference", reference).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetPaymentReference - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetPaymentReference - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetPaymentReference - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// SetVerified отмечает бронирование как прошедшее чек-ин
func (r *Repository) SetVerified(ctx context.Context, id int64, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("is_verified", true).
		Set("verified_at", at).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetVerified - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetVerified - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetVerified - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// ListExpiredPending получает PENDING бронирования с истёкшим окном
// резервирования. Используется автопереходом PENDING -> EXPIRED.
func (r *Repository) ListExpiredPending(ctx context.Context, now time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"status": domain.StatusPending}).
		Where(squirrel.LtOrEq{"reservation_expires_at": now}).
		OrderBy("reservation_expires_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListExpiredPending - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListExpiredPending - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListConfirmedStarted получает CONFIRMED бронирования, слот которых уже
// начался. Используется автопереходом CONFIRMED -> IN_PROGRESS.
func (r *Repository) ListConfirmedStarted(ctx context.Context, now time.Time) ([]*domain.Booking, error) {
	return r.listBySlotBoundary(
		ctx,
		[]domain.BookingStatus{domain.StatusConfirmed},
		"(gs.date + gs.start_time) <= ?::timestamp",
		now,
		"ListConfirmedStarted",
	)
}

// ListActiveEnded получает CONFIRMED и IN_PROGRESS бронирования, слот которых
// уже закончился. Используется автопереходами в COMPLETED / NO_SHOW.
// Окончание "00:00" означает полночь в конце даты слота.
func (r *Repository) ListActiveEnded(ctx context.Context, now time.Time) ([]*domain.Booking, error) {
	return r.listBySlotBoundary(
		ctx,
		[]domain.BookingStatus{domain.StatusConfirmed, domain.StatusInProgress},
		"(CASE WHEN gs.end_time = '00:00' THEN gs.date + INTERVAL '1 day' ELSE gs.date + gs.end_time END) <= ?::timestamp",
		now,
		"ListActiveEnded",
	)
}

func (r *Repository) listBySlotBoundary(
	ctx context.Context,
	statuses []domain.BookingStatus,
	boundaryExpr string,
	now time.Time,
	op string,
) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(prefixColumns("b", bookingColumns)...).
		From("bookings b").
		Join("game_slots gs ON gs.id = b.slot_id").
		Where(squirrel.Eq{"b.status": statusStrings(statuses)}).
		Where(squirrel.Expr(boundaryExpr, now.Format("2006-01-02 15:04:05"))).
		OrderBy("gs.date ASC, gs.start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// CreateHistory добавляет запись в историю статусов бронирования
func (r *Repository) CreateHistory(ctx context.Context, h *domain.BookingHistory) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_history").
		Columns("booking_id", "old_status", "new_status", "changed_by", "reason").
		Values(h.BookingID, h.OldStatus, h.NewStatus, h.ChangedBy, h.Reason).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: CreateHistory - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&h.ID, &createdAt)
	if err != nil {
		return fmt.Errorf("%w: CreateHistory - execute insert: %v", ErrExecQuery, err)
	}
	h.CreatedAt = createdAt.Time

	return nil
}

// GetHistory получает историю статусов бронирования в хронологическом порядке
func (r *Repository) GetHistory(ctx context.Context, bookingID int64) ([]*domain.BookingHistory, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"booking_id",
		"old_status",
		"new_status",
		"changed_by",
		"reason",
		"created_at",
	).
		From("booking_history").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("created_at ASC, id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetHistory - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetHistory - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	history := make([]*domain.BookingHistory, 0)
	for rows.Next() {
		var h domain.BookingHistory
		var createdAt sql.NullTime

		err := rows.Scan(
			&h.ID,
			&h.BookingID,
			&h.OldStatus,
			&h.NewStatus,
			&h.ChangedBy,
			&h.Reason,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetHistory - scan row: %v", ErrScanRow, err)
		}

		h.CreatedAt = createdAt.Time
		history = append(history, &h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetHistory - rows error: %v", ErrScanRow, err)
	}

	return history, nil
}

// scanBooking сканирует одну строку в domain.Booking
func scanBooking(row interface{ Scan(dest ...interface{}) error }) (*domain.Booking, error) {
	var booking domain.Booking
	var reservationExpiresAt, verifiedAt sql.NullTime
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.CustomerID,
		&booking.GameID,
		&booking.SlotID,
		&booking.BookingType,
		&booking.SpotsBooked,
		&booking.PricePerSpot,
		&booking.Subtotal,
		&booking.PlatformFee,
		&booking.TotalAmount,
		&booking.Status,
		&reservationExpiresAt,
		&booking.PaymentReference,
		&booking.IsVerified,
		&verifiedAt,
		&booking.Notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if reservationExpiresAt.Valid {
		booking.ReservationExpiresAt = &reservationExpiresAt.Time
	}
	if verifiedAt.Valid {
		booking.VerifiedAt = &verifiedAt.Time
	}
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}
	return bookings, nil
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func prefixColumns(alias string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}
	return out
}
