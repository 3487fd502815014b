package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/slotbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGMemberDirectory reads members owned by the identity service.
type PGMemberDirectory struct {
	db *pgxpool.Pool
}

func NewMemberDirectory(db *pgxpool.Pool) MemberDirectory {
	return &PGMemberDirectory{db: db}
}

func (d *PGMemberDirectory) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	var (
		m    domain.Member
		role string
	)
	err := d.db.QueryRow(ctx, `SELECT id, username, display_name, role FROM member WHERE id=$1`, id).
		Scan(&m.ID, &m.Username, &m.DisplayName, &role)
	if err != nil {
		return nil, notFound(err, domain.ErrMemberNotFound)
	}
	m.Role = domain.Role(role)
	return &m, nil
}

type PGCalendarDirectory struct {
	db *pgxpool.Pool
}

func NewCalendarDirectory(db *pgxpool.Pool) CalendarDirectory {
	return &PGCalendarDirectory{db: db}
}

func (d *PGCalendarDirectory) ExistsForHost(ctx context.Context, hostID uuid.UUID) (bool, error) {
	var exists bool
	if err := d.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM calendar WHERE host_id=$1)`, hostID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check calendar: %w", err)
	}
	return exists, nil
}

func (d *PGCalendarDirectory) GetByHost(ctx context.Context, hostID uuid.UUID) (*domain.Calendar, error) {
	var c domain.Calendar
	err := d.db.QueryRow(ctx, `SELECT host_id, COALESCE(google_calendar_id, '') FROM calendar WHERE host_id=$1`, hostID).
		Scan(&c.HostID, &c.GoogleCalendarID)
	if err != nil {
		return nil, notFound(err, domain.ErrCalendarNotFound)
	}
	return &c, nil
}

var (
	_ MemberDirectory   = (*PGMemberDirectory)(nil)
	_ CalendarDirectory = (*PGCalendarDirectory)(nil)
)
