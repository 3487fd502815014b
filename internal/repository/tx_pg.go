package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/slotbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const activeBookingIndex = "booking_active_slot_date_uq"

const (
	pgUniqueViolation  = "23505"
	pgLockNotAvailable = "55P03"
	pgQueryCanceled    = "57014"
)

// runInTx wraps fn in a read committed transaction. A positive lockTimeout
// bounds every lock wait inside it.
func runInTx(ctx context.Context, db *pgxpool.Pool, lockTimeout time.Duration, fn func(tx pgx.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if lockTimeout > 0 {
		if _, err = tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, fmt.Sprintf("%dms", lockTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}

	if err = fn(tx); err != nil {
		return translateError(err)
	}
	if err = tx.Commit(ctx); err != nil {
		return translateError(fmt.Errorf("commit: %w", err))
	}
	return nil
}

// translateError turns the PostgreSQL errors the booking protocol relies on
// into domain errors. Anything else is returned unchanged.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		if pgErr.ConstraintName == activeBookingIndex {
			return domain.ErrBookingAlreadyExists
		}
	case pgLockNotAvailable, pgQueryCanceled:
		return domain.ErrLockTimeout
	}
	return err
}

func notFound(err error, target error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return target
	}
	return err
}
