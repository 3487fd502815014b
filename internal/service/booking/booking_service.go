package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/slotbooking/internal/domain"
	"github.com/Domenick1991/slotbooking/internal/kafka"
	"github.com/Domenick1991/slotbooking/internal/logger"
	"github.com/Domenick1991/slotbooking/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.BookingView, error)
	GetBooking(ctx context.Context, bookingID int64, requesterID uuid.UUID) (*domain.BookingView, error)
	ListBookingsForGuest(ctx context.Context, guestID uuid.UUID) ([]domain.BookingView, error)
	ListBookingsForHost(ctx context.Context, hostID uuid.UUID) ([]domain.BookingView, error)
	ListBookingsForHostInMonth(ctx context.Context, hostID uuid.UUID, year, month int) ([]domain.BookingView, error)
	ListPublicBookingsForHostInMonth(ctx context.Context, hostID uuid.UUID, year, month int) ([]domain.BookingView, error)
	UpdateBooking(ctx context.Context, input UpdateBookingInput) (*domain.BookingView, error)
	RescheduleBooking(ctx context.Context, input RescheduleBookingInput) (*domain.BookingView, error)
	CancelBooking(ctx context.Context, bookingID int64, guestID uuid.UUID, reason string) (*domain.BookingView, error)
	UpdateBookingStatus(ctx context.Context, bookingID int64, hostID uuid.UUID, status domain.AttendanceStatus) (*domain.BookingView, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateBookingInput struct {
	GuestID     uuid.UUID
	TimeSlotID  int64
	BookingDate time.Time
	Topic       string
	Description string
}

// UpdateBookingInput is the guest's edit of their own booking.
type UpdateBookingInput struct {
	BookingID   int64
	GuestID     uuid.UUID
	TimeSlotID  int64
	BookingDate time.Time
	Topic       string
	Description string
}

// RescheduleBookingInput moves a booking to another slot of the same host.
type RescheduleBookingInput struct {
	BookingID   int64
	HostID      uuid.UUID
	TimeSlotID  int64
	BookingDate time.Time
}

type BookingService struct {
	bookings    repository.BookingRepository
	members     repository.MemberDirectory
	calendars   repository.CalendarDirectory
	producer    Producer
	eventsTopic string
	loc         *time.Location
	now         func() time.Time
	log         *zap.Logger
}

type BookingServiceOption func(*BookingService)

// WithProducer publishes booking events to topic after every commit.
func WithProducer(p Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = p
		s.eventsTopic = topic
	}
}

// WithLocation sets the zone that decides which date is today.
func WithLocation(loc *time.Location) BookingServiceOption {
	return func(s *BookingService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithCalendars enables the public month view for hosts with a calendar.
func WithCalendars(c repository.CalendarDirectory) BookingServiceOption {
	return func(s *BookingService) {
		s.calendars = c
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithLogger(l *zap.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = logger.OrNop(l).Named("booking")
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	members repository.MemberDirectory,
	opts ...BookingServiceOption,
) *BookingService {
	s := &BookingService{
		bookings: bookings,
		members:  members,
		loc:      time.UTC,
		now:      time.Now,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBooking reserves input.BookingDate on the slot. The slot stays
// locked from the first read to the insert, so competing requests for the
// same slot run one after another and all but the first see the booking.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.BookingView, error) {
	date := domain.DateOf(input.BookingDate)
	if date.Before(s.today()) {
		return nil, domain.ErrPastBooking
	}

	booking, err := domain.NewBooking(&domain.TimeSlot{ID: input.TimeSlotID}, input.GuestID, date, input.Topic, input.Description)
	if err != nil {
		return nil, err
	}

	var view *domain.BookingView
	err = s.bookings.InTx(ctx, func(ctx context.Context, tx repository.BookingTx) error {
		slot, err := tx.LockTimeSlot(ctx, input.TimeSlotID)
		if err != nil {
			return err
		}
		if slot.HostID == input.GuestID {
			return domain.ErrSelfBooking
		}
		if !domain.WeekdayAllowed(*slot, date) {
			return domain.ErrWeekdayNotAvailable
		}

		exists, err := tx.ExistsActiveBooking(ctx, slot.ID, date, 0)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrBookingAlreadyExists
		}

		if err := tx.Insert(ctx, booking); err != nil {
			return err
		}
		view = &domain.BookingView{
			Booking:   *booking,
			HostID:    slot.HostID,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		}
		return nil
	})
	if err != nil {
		s.logFailure("create booking", err,
			zap.Int64("time_slot_id", input.TimeSlotID),
			zap.String("booking_date", date.Format(domain.DateLayout)),
			zap.Stringer("guest_id", input.GuestID))
		return nil, err
	}

	s.withHostNames(ctx, view)
	s.log.Info("booking created",
		zap.Int64("booking_id", view.ID),
		zap.Int64("time_slot_id", view.TimeSlotID),
		zap.String("booking_date", date.Format(domain.DateLayout)))
	s.afterCommit(ctx, kafka.EventBookingCreated, view)
	return view, nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID int64, requesterID uuid.UUID) (*domain.BookingView, error) {
	view, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !view.CanBeReadBy(requesterID) {
		return nil, domain.ErrAccessDenied
	}
	return view, nil
}

func (s *BookingService) ListBookingsForGuest(ctx context.Context, guestID uuid.UUID) ([]domain.BookingView, error) {
	return s.bookings.ListByGuest(ctx, guestID)
}

func (s *BookingService) ListBookingsForHost(ctx context.Context, hostID uuid.UUID) ([]domain.BookingView, error) {
	return s.bookings.ListByHost(ctx, hostID)
}

func (s *BookingService) ListBookingsForHostInMonth(ctx context.Context, hostID uuid.UUID, year, month int) ([]domain.BookingView, error) {
	from, err := monthStart(year, month)
	if err != nil {
		return nil, err
	}
	return s.bookings.ListByHostBetween(ctx, hostID, from, from.AddDate(0, 1, 0))
}

// ListPublicBookingsForHostInMonth lists the dates and slots taken in a
// month, for anyone to see. Cancelled bookings no longer occupy anything
// and are left out. An unknown host and a host without a calendar both
// report ErrCalendarNotFound.
func (s *BookingService) ListPublicBookingsForHostInMonth(ctx context.Context, hostID uuid.UUID, year, month int) ([]domain.BookingView, error) {
	from, err := monthStart(year, month)
	if err != nil {
		return nil, err
	}
	if s.calendars == nil {
		return nil, domain.ErrCalendarNotFound
	}
	ok, err := s.calendars.ExistsForHost(ctx, hostID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrCalendarNotFound
	}

	views, err := s.bookings.ListByHostBetween(ctx, hostID, from, from.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	taken := views[:0]
	for _, v := range views {
		if v.IsActive() {
			taken = append(taken, v)
		}
	}
	return taken, nil
}

func monthStart(year, month int) (time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, domain.NewValidationError(fmt.Sprintf("month must be between 1 and 12, got %d", month))
	}
	if year < 1900 || year > 2100 {
		return time.Time{}, domain.NewValidationError(fmt.Sprintf("year must be between 1900 and 2100, got %d", year))
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// UpdateBooking lets the guest change topic, description, slot and date
// in one step. The new slot must belong to the same host.
func (s *BookingService) UpdateBooking(ctx context.Context, input UpdateBookingInput) (*domain.BookingView, error) {
	view, err := s.move(ctx, input.BookingID, input.TimeSlotID, input.BookingDate, func(v *domain.BookingView) error {
		if v.GuestID != input.GuestID {
			return domain.ErrAccessDenied
		}
		return nil
	}, func(b *domain.Booking) error {
		return b.Edit(input.Topic, input.Description)
	})
	if err != nil {
		s.logFailure("update booking", err, zap.Int64("booking_id", input.BookingID))
		return nil, err
	}

	s.afterCommit(ctx, kafka.EventBookingUpdated, view)
	return view, nil
}

// RescheduleBooking lets the host move a booking to another of their
// slots or dates.
func (s *BookingService) RescheduleBooking(ctx context.Context, input RescheduleBookingInput) (*domain.BookingView, error) {
	view, err := s.move(ctx, input.BookingID, input.TimeSlotID, input.BookingDate, func(v *domain.BookingView) error {
		if v.HostID != input.HostID {
			return domain.ErrAccessDenied
		}
		return nil
	}, nil)
	if err != nil {
		s.logFailure("reschedule booking", err, zap.Int64("booking_id", input.BookingID))
		return nil, err
	}

	s.afterCommit(ctx, kafka.EventBookingUpdated, view)
	return view, nil
}

// move relocates a booking under the same locks as CreateBooking: the
// booking row first, then the target slot until commit. The booking itself
// never counts as occupying its target.
func (s *BookingService) move(
	ctx context.Context,
	bookingID, slotID int64,
	bookingDate time.Time,
	authorize func(v *domain.BookingView) error,
	edit func(b *domain.Booking) error,
) (*domain.BookingView, error) {
	date := domain.DateOf(bookingDate)
	if bookingDate.IsZero() {
		return nil, domain.NewValidationError("booking_date is required")
	}
	if date.Before(s.today()) {
		return nil, domain.ErrPastBooking
	}

	var view *domain.BookingView
	err := s.bookings.InTx(ctx, func(ctx context.Context, tx repository.BookingTx) error {
		v, err := tx.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := authorize(v); err != nil {
			return err
		}
		if !v.AttendanceStatus.IsModifiable() {
			return domain.ErrBookingNotModifiable
		}

		slot, err := tx.LockTimeSlot(ctx, slotID)
		if err != nil {
			return err
		}
		if slot.HostID != v.HostID {
			return domain.ErrAccessDenied
		}
		if !domain.WeekdayAllowed(*slot, date) {
			return domain.ErrWeekdayNotAvailable
		}

		exists, err := tx.ExistsActiveBooking(ctx, slot.ID, date, v.ID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrBookingAlreadyExists
		}

		if err := v.Booking.Reschedule(slot, date); err != nil {
			return err
		}
		if edit != nil {
			if err := edit(&v.Booking); err != nil {
				return err
			}
		}
		if err := tx.Update(ctx, &v.Booking); err != nil {
			return err
		}
		v.StartTime, v.EndTime = slot.StartTime, slot.EndTime
		view = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// CancelBooking frees the booking's slot and date. Cancelling on the
// booking date itself is recorded as SAME_DAY_CANCEL.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID int64, guestID uuid.UUID, reason string) (*domain.BookingView, error) {
	view, err := s.transition(ctx, bookingID, func(v *domain.BookingView) error {
		if v.GuestID != guestID {
			return domain.ErrAccessDenied
		}
		return v.Booking.Cancel(s.today(), reason)
	})
	if err != nil {
		s.logFailure("cancel booking", err, zap.Int64("booking_id", bookingID))
		return nil, err
	}

	s.afterCommit(ctx, kafka.EventBookingCancelled, view)
	return view, nil
}

// UpdateBookingStatus records attendance. Only the slot's host may call it.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, bookingID int64, hostID uuid.UUID, status domain.AttendanceStatus) (*domain.BookingView, error) {
	if !status.IsHostSettable() {
		return nil, domain.ErrInvalidStatus
	}

	view, err := s.transition(ctx, bookingID, func(v *domain.BookingView) error {
		if v.HostID != hostID {
			return domain.ErrAccessDenied
		}
		return v.Booking.UpdateStatus(status)
	})
	if err != nil {
		s.logFailure("update booking status", err, zap.Int64("booking_id", bookingID))
		return nil, err
	}

	s.afterCommit(ctx, kafka.EventBookingStatusChanged, view)
	return view, nil
}

func (s *BookingService) transition(ctx context.Context, bookingID int64, apply func(v *domain.BookingView) error) (*domain.BookingView, error) {
	var view *domain.BookingView
	err := s.bookings.InTx(ctx, func(ctx context.Context, tx repository.BookingTx) error {
		v, err := tx.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := apply(v); err != nil {
			return err
		}
		if err := tx.UpdateStatus(ctx, &v.Booking); err != nil {
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *BookingService) today() time.Time {
	return domain.Today(s.now(), s.loc)
}

func (s *BookingService) withHostNames(ctx context.Context, view *domain.BookingView) {
	if s.members == nil {
		return
	}
	host, err := s.members.GetByID(ctx, view.HostID)
	if err != nil {
		s.log.Warn("load host", zap.Stringer("host_id", view.HostID), zap.Error(err))
		return
	}
	view.HostUsername, view.HostDisplayName = host.Username, host.DisplayName
}

// afterCommit runs the post-commit hook. Its failure never undoes the
// committed change.
func (s *BookingService) afterCommit(ctx context.Context, eventType string, view *domain.BookingView) {
	if err := s.publish(ctx, eventType, view); err != nil {
		s.log.Warn("publish booking event",
			zap.String("type", eventType),
			zap.Int64("booking_id", view.ID),
			zap.Error(err))
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, view *domain.BookingView) error {
	if s.producer == nil || s.eventsTopic == "" {
		return nil
	}
	event := kafka.NewBookingEvent(eventType, view, s.now())
	return s.producer.Publish(ctx, s.eventsTopic, event.Key(), event)
}

func (s *BookingService) logFailure(op string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	switch domain.KindOf(err) {
	case domain.KindInternal:
		s.log.Error(op, fields...)
	case domain.KindTransient:
		s.log.Warn(op, fields...)
	case domain.KindConflict:
		s.log.Info(op, fields...)
	default:
		s.log.Debug(op, fields...)
	}
}

var _ BookingUseCase = (*BookingService)(nil)
