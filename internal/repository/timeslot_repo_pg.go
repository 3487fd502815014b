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

const timeSlotColumns = `id, host_id, start_time, end_time, weekdays, created_at, updated_at`

type PGTimeSlotRepository struct {
	db          *pgxpool.Pool
	lockTimeout time.Duration
}

func NewTimeSlotRepository(db *pgxpool.Pool, lockTimeout time.Duration) TimeSlotRepository {
	return &PGTimeSlotRepository{db: db, lockTimeout: lockTimeout}
}

func (r *PGTimeSlotRepository) WithinHostTx(ctx context.Context, hostID uuid.UUID, fn func(ctx context.Context, tx TimeSlotTx) error) error {
	return runInTx(ctx, r.db, r.lockTimeout, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, hostID.String()); err != nil {
			return fmt.Errorf("lock host %s: %w", hostID, err)
		}
		return fn(ctx, &pgTimeSlotTx{tx: tx})
	})
}

func (r *PGTimeSlotRepository) ListByHost(ctx context.Context, hostID uuid.UUID) ([]domain.TimeSlot, error) {
	rows, err := r.db.Query(ctx, `SELECT `+timeSlotColumns+` FROM time_slot WHERE host_id=$1 ORDER BY start_time, id`, hostID)
	if err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return collectTimeSlots(rows)
}

func (r *PGTimeSlotRepository) GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	slot, err := scanTimeSlot(r.db.QueryRow(ctx, `SELECT `+timeSlotColumns+` FROM time_slot WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err, domain.ErrTimeSlotNotFound)
	}
	return slot, nil
}

type pgTimeSlotTx struct {
	tx pgx.Tx
}

func (t *pgTimeSlotTx) ListOverlapCandidates(ctx context.Context, hostID uuid.UUID, start, end domain.TimeOfDay) ([]domain.TimeSlot, error) {
	rows, err := t.tx.Query(ctx, `SELECT `+timeSlotColumns+` FROM time_slot
		WHERE host_id=$1 AND start_time < $3 AND end_time > $2
		ORDER BY start_time, id`, hostID, pgTime(start), pgTime(end))
	if err != nil {
		return nil, fmt.Errorf("list overlap candidates: %w", err)
	}
	return collectTimeSlots(rows)
}

func (t *pgTimeSlotTx) Insert(ctx context.Context, slot *domain.TimeSlot) error {
	err := t.tx.QueryRow(ctx, `INSERT INTO time_slot (host_id, start_time, end_time, weekdays)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		slot.HostID, pgTime(slot.StartTime), pgTime(slot.EndTime), weekdaysParam(slot.Weekdays)).
		Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert time slot: %w", err)
	}
	return nil
}

func pgTime(t domain.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: t.Duration().Microseconds(), Valid: true}
}

func timeOfDay(t pgtype.Time) domain.TimeOfDay {
	return domain.TimeOfDay(t.Microseconds / int64(time.Minute/time.Microsecond))
}

func weekdaysParam(s domain.WeekdaySet) []int16 {
	days := s.Days()
	out := make([]int16, len(days))
	for i, d := range days {
		out[i] = int16(d)
	}
	return out
}

func weekdaysFrom(days []int16) (domain.WeekdaySet, error) {
	ints := make([]int, len(days))
	for i, d := range days {
		ints[i] = int(d)
	}
	return domain.NewWeekdaySet(ints...)
}

func scanTimeSlot(row pgx.Row) (*domain.TimeSlot, error) {
	var (
		s          domain.TimeSlot
		start, end pgtype.Time
		days       []int16
	)
	if err := row.Scan(&s.ID, &s.HostID, &start, &end, &days, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	weekdays, err := weekdaysFrom(days)
	if err != nil {
		return nil, fmt.Errorf("time slot %d: %w", s.ID, err)
	}
	s.StartTime, s.EndTime, s.Weekdays = timeOfDay(start), timeOfDay(end), weekdays
	return &s, nil
}

func collectTimeSlots(rows pgx.Rows) ([]domain.TimeSlot, error) {
	defer rows.Close()

	slots := make([]domain.TimeSlot, 0)
	for rows.Next() {
		s, err := scanTimeSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, *s)
	}
	return slots, rows.Err()
}

var _ TimeSlotRepository = (*PGTimeSlotRepository)(nil)
