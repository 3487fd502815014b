package memory

import (
	"context"

	"github.com/Domenick1991/slotbooking/internal/domain"
	"github.com/Domenick1991/slotbooking/internal/repository"
	"github.com/google/uuid"
)

type memberDirectory struct {
	s *Store
}

func (d *memberDirectory) GetByID(_ context.Context, id uuid.UUID) (*domain.Member, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	m, ok := d.s.members[id]
	if !ok {
		return nil, domain.ErrMemberNotFound
	}
	return &m, nil
}

type calendarDirectory struct {
	s *Store
}

func (d *calendarDirectory) ExistsForHost(_ context.Context, hostID uuid.UUID) (bool, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	_, ok := d.s.calendars[hostID]
	return ok, nil
}

func (d *calendarDirectory) GetByHost(_ context.Context, hostID uuid.UUID) (*domain.Calendar, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	c, ok := d.s.calendars[hostID]
	if !ok {
		return nil, domain.ErrCalendarNotFound
	}
	return &c, nil
}

var (
	_ repository.MemberDirectory   = (*memberDirectory)(nil)
	_ repository.CalendarDirectory = (*calendarDirectory)(nil)
)
