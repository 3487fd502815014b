package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/slotbooking/internal/domain"
	"github.com/google/uuid"
)

type TimeSlotRepository interface {
	// WithinHostTx runs fn in one transaction that is serialized with every
	// other slot write for hostID.
	WithinHostTx(ctx context.Context, hostID uuid.UUID, fn func(ctx context.Context, tx TimeSlotTx) error) error
	// ListByHost returns the host's slots ordered by start time.
	ListByHost(ctx context.Context, hostID uuid.UUID) ([]domain.TimeSlot, error)
	GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error)
}

type TimeSlotTx interface {
	// ListOverlapCandidates is a coarse time-range filter over the host's
	// slots. Weekdays are not considered.
	ListOverlapCandidates(ctx context.Context, hostID uuid.UUID, start, end domain.TimeOfDay) ([]domain.TimeSlot, error)
	Insert(ctx context.Context, slot *domain.TimeSlot) error
}

type BookingRepository interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx BookingTx) error) error
	GetByID(ctx context.Context, id int64) (*domain.BookingView, error)
	// ListByGuest and ListByHost return newest booking dates first.
	ListByGuest(ctx context.Context, guestID uuid.UUID) ([]domain.BookingView, error)
	ListByHost(ctx context.Context, hostID uuid.UUID) ([]domain.BookingView, error)
	// ListByHostBetween returns bookings dated in [from, to), oldest first.
	ListByHostBetween(ctx context.Context, hostID uuid.UUID, from, to time.Time) ([]domain.BookingView, error)
	SetGoogleEventID(ctx context.Context, id int64, eventID string) error
}

type BookingTx interface {
	// LockTimeSlot holds the slot exclusively until the transaction ends.
	LockTimeSlot(ctx context.Context, id int64) (*domain.TimeSlot, error)
	// ExistsActiveBooking ignores the booking with id excludeID; 0 excludes
	// nothing.
	ExistsActiveBooking(ctx context.Context, timeSlotID int64, date time.Time, excludeID int64) (bool, error)
	Insert(ctx context.Context, booking *domain.Booking) error
	GetForUpdate(ctx context.Context, id int64) (*domain.BookingView, error)
	UpdateStatus(ctx context.Context, booking *domain.Booking) error
	// Update rewrites slot, date, topic and description as well as status.
	Update(ctx context.Context, booking *domain.Booking) error
}

type MemberDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error)
}

type CalendarDirectory interface {
	ExistsForHost(ctx context.Context, hostID uuid.UUID) (bool, error)
	GetByHost(ctx context.Context, hostID uuid.UUID) (*domain.Calendar, error)
}
