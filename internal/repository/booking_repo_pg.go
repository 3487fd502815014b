package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/slotbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingViewSelect = `SELECT b.id, b.time_slot_id, b.guest_id, b.booking_date, b.topic, b.description,
	b.attendance_status, b.cancelled_reason, b.google_event_id, b.created_at, b.updated_at,
	ts.host_id, ts.start_time, ts.end_time, COALESCE(m.username, ''), COALESCE(m.display_name, '')
FROM booking b
JOIN time_slot ts ON ts.id = b.time_slot_id
LEFT JOIN member m ON m.id = ts.host_id`

type PGBookingRepository struct {
	db          *pgxpool.Pool
	lockTimeout time.Duration
}

func NewBookingRepository(db *pgxpool.Pool, lockTimeout time.Duration) BookingRepository {
	return &PGBookingRepository{db: db, lockTimeout: lockTimeout}
}

func (r *PGBookingRepository) InTx(ctx context.Context, fn func(ctx context.Context, tx BookingTx) error) error {
	return runInTx(ctx, r.db, r.lockTimeout, func(tx pgx.Tx) error {
		return fn(ctx, &pgBookingTx{tx: tx})
	})
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.BookingView, error) {
	v, err := scanBookingView(r.db.QueryRow(ctx, bookingViewSelect+` WHERE b.id=$1`, id))
	if err != nil {
		return nil, notFound(err, domain.ErrBookingNotFound)
	}
	return v, nil
}

func (r *PGBookingRepository) ListByGuest(ctx context.Context, guestID uuid.UUID) ([]domain.BookingView, error) {
	rows, err := r.db.Query(ctx, bookingViewSelect+`
		WHERE b.guest_id=$1
		ORDER BY b.booking_date DESC, ts.start_time DESC, b.id DESC`, guestID)
	if err != nil {
		return nil, fmt.Errorf("list guest bookings: %w", err)
	}
	return collectBookingViews(rows)
}

func (r *PGBookingRepository) ListByHost(ctx context.Context, hostID uuid.UUID) ([]domain.BookingView, error) {
	rows, err := r.db.Query(ctx, bookingViewSelect+`
		WHERE ts.host_id=$1
		ORDER BY b.booking_date DESC, ts.start_time DESC, b.id DESC`, hostID)
	if err != nil {
		return nil, fmt.Errorf("list host bookings: %w", err)
	}
	return collectBookingViews(rows)
}

func (r *PGBookingRepository) ListByHostBetween(ctx context.Context, hostID uuid.UUID, from, to time.Time) ([]domain.BookingView, error) {
	rows, err := r.db.Query(ctx, bookingViewSelect+`
		WHERE ts.host_id=$1 AND b.booking_date >= $2 AND b.booking_date < $3
		ORDER BY b.booking_date, ts.start_time, b.id`, hostID, pgDate(from), pgDate(to))
	if err != nil {
		return nil, fmt.Errorf("list host bookings by range: %w", err)
	}
	return collectBookingViews(rows)
}

func (r *PGBookingRepository) SetGoogleEventID(ctx context.Context, id int64, eventID string) error {
	var value *string
	if eventID != "" {
		value = &eventID
	}
	cmd, err := r.db.Exec(ctx, `UPDATE booking SET google_event_id=$2, updated_at=now() WHERE id=$1`, id, value)
	if err != nil {
		return fmt.Errorf("set google event id: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

type pgBookingTx struct {
	tx pgx.Tx
}

func (t *pgBookingTx) LockTimeSlot(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	slot, err := scanTimeSlot(t.tx.QueryRow(ctx, `SELECT `+timeSlotColumns+` FROM time_slot WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, domain.ErrTimeSlotNotFound)
	}
	return slot, nil
}

func (t *pgBookingTx) ExistsActiveBooking(ctx context.Context, timeSlotID int64, date time.Time, excludeID int64) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM booking
		WHERE time_slot_id=$1 AND booking_date=$2 AND attendance_status <> ALL($3) AND id <> $4
	)`, timeSlotID, pgDate(date), cancelledStatuses(), excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active booking: %w", err)
	}
	return exists, nil
}

func (t *pgBookingTx) Insert(ctx context.Context, b *domain.Booking) error {
	err := t.tx.QueryRow(ctx, `INSERT INTO booking
		(time_slot_id, guest_id, booking_date, topic, description, attendance_status, cancelled_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		b.TimeSlotID, b.GuestID, pgDate(b.BookingDate), b.Topic, b.Description, string(b.AttendanceStatus), b.CancelledReason).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (t *pgBookingTx) GetForUpdate(ctx context.Context, id int64) (*domain.BookingView, error) {
	v, err := scanBookingView(t.tx.QueryRow(ctx, bookingViewSelect+` WHERE b.id=$1 FOR UPDATE OF b`, id))
	if err != nil {
		return nil, notFound(err, domain.ErrBookingNotFound)
	}
	return v, nil
}

func (t *pgBookingTx) UpdateStatus(ctx context.Context, b *domain.Booking) error {
	err := t.tx.QueryRow(ctx, `UPDATE booking
		SET attendance_status=$2, cancelled_reason=$3, updated_at=now()
		WHERE id=$1
		RETURNING updated_at`, b.ID, string(b.AttendanceStatus), b.CancelledReason).
		Scan(&b.UpdatedAt)
	if err != nil {
		return notFound(err, domain.ErrBookingNotFound)
	}
	return nil
}

func (t *pgBookingTx) Update(ctx context.Context, b *domain.Booking) error {
	err := t.tx.QueryRow(ctx, `UPDATE booking
		SET time_slot_id=$2, booking_date=$3, topic=$4, description=$5,
			attendance_status=$6, cancelled_reason=$7, updated_at=now()
		WHERE id=$1
		RETURNING updated_at`,
		b.ID, b.TimeSlotID, pgDate(b.BookingDate), b.Topic, b.Description, string(b.AttendanceStatus), b.CancelledReason).
		Scan(&b.UpdatedAt)
	if err != nil {
		return notFound(err, domain.ErrBookingNotFound)
	}
	return nil
}

func pgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: domain.DateOf(t), Valid: true}
}

func cancelledStatuses() []string {
	statuses := domain.CancelledStatuses()
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func scanBookingView(row pgx.Row) (*domain.BookingView, error) {
	var (
		v          domain.BookingView
		date       pgtype.Date
		status     string
		start, end pgtype.Time
	)
	err := row.Scan(&v.ID, &v.TimeSlotID, &v.GuestID, &date, &v.Topic, &v.Description,
		&status, &v.CancelledReason, &v.GoogleEventID, &v.CreatedAt, &v.UpdatedAt,
		&v.HostID, &start, &end, &v.HostUsername, &v.HostDisplayName)
	if err != nil {
		return nil, err
	}
	v.BookingDate = domain.DateOf(date.Time)
	v.AttendanceStatus = domain.AttendanceStatus(status)
	v.StartTime, v.EndTime = timeOfDay(start), timeOfDay(end)
	return &v, nil
}

func collectBookingViews(rows pgx.Rows) ([]domain.BookingView, error) {
	defer rows.Close()

	views := make([]domain.BookingView, 0)
	for rows.Next() {
		v, err := scanBookingView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
