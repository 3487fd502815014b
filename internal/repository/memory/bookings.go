package memory

import (
	"context"
	"time"

	"github.com/Domenick1991/slotbooking/internal/domain"
	"github.com/Domenick1991/slotbooking/internal/repository"
	"github.com/google/uuid"
)

type bookingRepo struct {
	s *Store
}

func (r *bookingRepo) InTx(ctx context.Context, fn func(ctx context.Context, tx repository.BookingTx) error) error {
	tx := &bookingTx{s: r.s}
	defer tx.release()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit()
}

func (r *bookingRepo) GetByID(_ context.Context, id int64) (*domain.BookingView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	v := r.s.view(b)
	return &v, nil
}

func (r *bookingRepo) ListByGuest(_ context.Context, guestID uuid.UUID) ([]domain.BookingView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.listViews(func(v domain.BookingView) bool { return v.GuestID == guestID }, true), nil
}

func (r *bookingRepo) ListByHost(_ context.Context, hostID uuid.UUID) ([]domain.BookingView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.listViews(func(v domain.BookingView) bool { return v.HostID == hostID }, true), nil
}

func (r *bookingRepo) ListByHostBetween(_ context.Context, hostID uuid.UUID, from, to time.Time) ([]domain.BookingView, error) {
	from, to = domain.DateOf(from), domain.DateOf(to)

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.listViews(func(v domain.BookingView) bool {
		return v.HostID == hostID && !v.BookingDate.Before(from) && v.BookingDate.Before(to)
	}, false), nil
}

func (r *bookingRepo) SetGoogleEventID(_ context.Context, id int64, eventID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	if eventID == "" {
		b.GoogleEventID = nil
	} else {
		b.GoogleEventID = &eventID
	}
	b.UpdatedAt = r.s.now()
	r.s.bookings[id] = b
	return nil
}

// bookingTx buffers writes until commit. Locks taken through it are held
// until the transaction ends.
type bookingTx struct {
	s        *Store
	unlocks  []func()
	inserts  []domain.Booking
	updates  []domain.Booking
	released bool
}

func (t *bookingTx) release() {
	if t.released {
		return
	}
	t.released = true
	for i := len(t.unlocks) - 1; i >= 0; i-- {
		t.unlocks[i]()
	}
}

func (t *bookingTx) LockTimeSlot(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	t.s.mu.RLock()
	_, ok := t.s.slots[id]
	t.s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrTimeSlotNotFound
	}

	unlock, err := t.s.slotLocks.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	t.unlocks = append(t.unlocks, unlock)

	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	slot := t.s.slots[id]
	return &slot, nil
}

func (t *bookingTx) ExistsActiveBooking(_ context.Context, timeSlotID int64, date time.Time, excludeID int64) (bool, error) {
	key := slotDate{slotID: timeSlotID, date: domain.DateOf(date)}
	for _, pending := range [][]domain.Booking{t.inserts, t.updates} {
		for _, b := range pending {
			if b.ID != excludeID && keyOf(b) == key && b.IsActive() {
				return true, nil
			}
		}
	}

	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	id, ok := t.s.active[key]
	if !ok || id == excludeID {
		return false, nil
	}
	for _, u := range t.updates {
		if u.ID == id {
			// still on key and active would have matched above
			return false, nil
		}
	}
	return true, nil
}

func (t *bookingTx) Insert(_ context.Context, b *domain.Booking) error {
	t.s.mu.Lock()
	t.s.nextBookingID++
	b.ID = t.s.nextBookingID
	t.s.mu.Unlock()

	now := t.s.now()
	b.BookingDate = domain.DateOf(b.BookingDate)
	b.CreatedAt, b.UpdatedAt = now, now
	t.inserts = append(t.inserts, *b)
	return nil
}

func (t *bookingTx) GetForUpdate(ctx context.Context, id int64) (*domain.BookingView, error) {
	t.s.mu.RLock()
	_, ok := t.s.bookings[id]
	t.s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrBookingNotFound
	}

	unlock, err := t.s.bookingLocks.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	t.unlocks = append(t.unlocks, unlock)

	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	v := t.s.view(t.s.bookings[id])
	return &v, nil
}

func (t *bookingTx) UpdateStatus(_ context.Context, b *domain.Booking) error {
	return t.update(b)
}

func (t *bookingTx) Update(_ context.Context, b *domain.Booking) error {
	b.BookingDate = domain.DateOf(b.BookingDate)
	return t.update(b)
}

func (t *bookingTx) update(b *domain.Booking) error {
	t.s.mu.RLock()
	_, ok := t.s.bookings[b.ID]
	t.s.mu.RUnlock()
	if !ok {
		return domain.ErrBookingNotFound
	}

	b.UpdatedAt = t.s.now()
	t.updates = append(t.updates, *b)
	return nil
}

// commit applies buffered writes atomically. The active index rejects a
// second active booking for the same slot and date even when the caller
// skipped the slot lock.
func (t *bookingTx) commit() error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	active := make(map[slotDate]int64, len(t.s.active))
	for k, v := range t.s.active {
		active[k] = v
	}

	for _, u := range t.updates {
		if prev, ok := t.s.bookings[u.ID]; ok && active[keyOf(prev)] == u.ID {
			delete(active, keyOf(prev))
		}
	}
	for _, u := range t.updates {
		if !u.IsActive() {
			continue
		}
		key := keyOf(u)
		if other, taken := active[key]; taken && other != u.ID {
			return domain.ErrBookingAlreadyExists
		}
		active[key] = u.ID
	}
	for _, b := range t.inserts {
		if !b.IsActive() {
			continue
		}
		key := keyOf(b)
		if _, taken := active[key]; taken {
			return domain.ErrBookingAlreadyExists
		}
		active[key] = b.ID
	}

	for _, u := range t.updates {
		t.s.bookings[u.ID] = u
	}
	for _, b := range t.inserts {
		t.s.bookings[b.ID] = b
	}
	t.s.active = active
	return nil
}

func keyOf(b domain.Booking) slotDate {
	return slotDate{slotID: b.TimeSlotID, date: b.BookingDate}
}

var _ repository.BookingRepository = (*bookingRepo)(nil)
