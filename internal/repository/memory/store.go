// Package memory keeps slots and bookings in process. It honours the same
// locking contract as the PostgreSQL repositories on a single node.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/slotbooking/internal/domain"
	"github.com/Domenick1991/slotbooking/internal/repository"
	"github.com/google/uuid"
)

type slotDate struct {
	slotID int64
	date   time.Time
}

type Store struct {
	mu        sync.RWMutex
	slots     map[int64]domain.TimeSlot
	bookings  map[int64]domain.Booking
	members   map[uuid.UUID]domain.Member
	calendars map[uuid.UUID]domain.Calendar
	// active indexes non-cancelled bookings, like booking_active_slot_date_uq.
	active map[slotDate]int64

	nextSlotID    int64
	nextBookingID int64

	slotLocks    *keyedMutex[int64]
	bookingLocks *keyedMutex[int64]
	hostLocks    *keyedMutex[uuid.UUID]

	now func() time.Time
}

func NewStore(lockTimeout time.Duration) *Store {
	return &Store{
		slots:        make(map[int64]domain.TimeSlot),
		bookings:     make(map[int64]domain.Booking),
		members:      make(map[uuid.UUID]domain.Member),
		calendars:    make(map[uuid.UUID]domain.Calendar),
		active:       make(map[slotDate]int64),
		slotLocks:    newKeyedMutex[int64](lockTimeout),
		bookingLocks: newKeyedMutex[int64](lockTimeout),
		hostLocks:    newKeyedMutex[uuid.UUID](lockTimeout),
		now:          time.Now,
	}
}

func (s *Store) PutMember(m domain.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[m.ID] = m
}

func (s *Store) PutCalendar(c domain.Calendar) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendars[c.HostID] = c
}

func (s *Store) TimeSlots() repository.TimeSlotRepository { return &timeSlotRepo{s: s} }
func (s *Store) Bookings() repository.BookingRepository   { return &bookingRepo{s: s} }
func (s *Store) Members() repository.MemberDirectory      { return &memberDirectory{s: s} }
func (s *Store) Calendars() repository.CalendarDirectory  { return &calendarDirectory{s: s} }

// view must be called with mu held.
func (s *Store) view(b domain.Booking) domain.BookingView {
	v := domain.BookingView{Booking: b}
	if slot, ok := s.slots[b.TimeSlotID]; ok {
		v.HostID, v.StartTime, v.EndTime = slot.HostID, slot.StartTime, slot.EndTime
	}
	if m, ok := s.members[v.HostID]; ok {
		v.HostUsername, v.HostDisplayName = m.Username, m.DisplayName
	}
	if b.GoogleEventID != nil {
		id := *b.GoogleEventID
		v.GoogleEventID = &id
	}
	return v
}

// listViews must be called with mu held.
func (s *Store) listViews(keep func(domain.BookingView) bool, newestFirst bool) []domain.BookingView {
	views := make([]domain.BookingView, 0)
	for _, b := range s.bookings {
		if v := s.view(b); keep(v) {
			views = append(views, v)
		}
	}
	sort.Slice(views, func(i, j int) bool {
		a, b := views[i], views[j]
		less := a.BookingDate.Before(b.BookingDate) ||
			a.BookingDate.Equal(b.BookingDate) && (a.StartTime < b.StartTime ||
				a.StartTime == b.StartTime && a.ID < b.ID)
		if newestFirst {
			return !less && a.ID != b.ID
		}
		return less
	})
	return views
}
