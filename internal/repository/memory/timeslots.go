package memory

import (
	"context"
	"sort"

	"github.com/Domenick1991/slotbooking/internal/domain"
	"github.com/Domenick1991/slotbooking/internal/repository"
	"github.com/google/uuid"
)

type timeSlotRepo struct {
	s *Store
}

func (r *timeSlotRepo) WithinHostTx(ctx context.Context, hostID uuid.UUID, fn func(ctx context.Context, tx repository.TimeSlotTx) error) error {
	unlock, err := r.s.hostLocks.Lock(ctx, hostID)
	if err != nil {
		return err
	}
	defer unlock()

	tx := &timeSlotTx{s: r.s}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, slot := range tx.pending {
		r.s.slots[slot.ID] = slot
	}
	return nil
}

func (r *timeSlotRepo) ListByHost(_ context.Context, hostID uuid.UUID) ([]domain.TimeSlot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.hostSlots(hostID, func(domain.TimeSlot) bool { return true }), nil
}

func (r *timeSlotRepo) GetByID(_ context.Context, id int64) (*domain.TimeSlot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	slot, ok := r.s.slots[id]
	if !ok {
		return nil, domain.ErrTimeSlotNotFound
	}
	return &slot, nil
}

type timeSlotTx struct {
	s       *Store
	pending []domain.TimeSlot
}

func (t *timeSlotTx) ListOverlapCandidates(_ context.Context, hostID uuid.UUID, start, end domain.TimeOfDay) ([]domain.TimeSlot, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	inRange := func(slot domain.TimeSlot) bool {
		return slot.StartTime < end && slot.EndTime > start
	}
	slots := t.s.hostSlots(hostID, inRange)
	for _, slot := range t.pending {
		if slot.HostID == hostID && inRange(slot) {
			slots = append(slots, slot)
		}
	}
	return slots, nil
}

func (t *timeSlotTx) Insert(_ context.Context, slot *domain.TimeSlot) error {
	t.s.mu.Lock()
	t.s.nextSlotID++
	slot.ID = t.s.nextSlotID
	t.s.mu.Unlock()

	now := t.s.now()
	slot.CreatedAt, slot.UpdatedAt = now, now
	t.pending = append(t.pending, *slot)
	return nil
}

// hostSlots must be called with mu held.
func (s *Store) hostSlots(hostID uuid.UUID, keep func(domain.TimeSlot) bool) []domain.TimeSlot {
	slots := make([]domain.TimeSlot, 0)
	for _, slot := range s.slots {
		if slot.HostID == hostID && keep(slot) {
			slots = append(slots, slot)
		}
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].StartTime != slots[j].StartTime {
			return slots[i].StartTime < slots[j].StartTime
		}
		return slots[i].ID < slots[j].ID
	})
	return slots
}

var _ repository.TimeSlotRepository = (*timeSlotRepo)(nil)
