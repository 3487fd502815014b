// Package calendarsync mirrors committed bookings into the host's Google
// Calendar. It runs in the worker, after the booking transaction.
package calendarsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/slotbooking/internal/domain"
	"github.com/Domenick1991/slotbooking/internal/kafka"
	"github.com/Domenick1991/slotbooking/internal/logger"
	"github.com/Domenick1991/slotbooking/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Event struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

type Calendar interface {
	InsertEvent(ctx context.Context, calendarID string, e Event) (string, error)
	PatchEvent(ctx context.Context, calendarID, eventID string, e Event) error
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// BookingStore is the booking state the mirror reconciles against.
type BookingStore interface {
	GetByID(ctx context.Context, id int64) (*domain.BookingView, error)
	SetGoogleEventID(ctx context.Context, bookingID int64, eventID string) error
}

type Mirror struct {
	calendar  Calendar
	calendars repository.CalendarDirectory
	bookings  BookingStore
	loc       *time.Location
	log       *zap.Logger
}

func NewMirror(cal Calendar, calendars repository.CalendarDirectory, bookings BookingStore, loc *time.Location, log *zap.Logger) *Mirror {
	if loc == nil {
		loc = time.UTC
	}
	return &Mirror{
		calendar:  cal,
		calendars: calendars,
		bookings:  bookings,
		loc:       loc,
		log:       logger.OrNop(log).Named("calendarsync"),
	}
}

// Handle reconciles the host calendar with the current state of the
// booking an event refers to. The payload only selects the booking, so
// events arriving late or out of order cannot resurrect a cancelled
// booking. Calendar failures are logged and swallowed since the booking
// itself is already committed. Only a cancelled ctx is returned.
func (m *Mirror) Handle(ctx context.Context, e kafka.BookingEvent) error {
	switch e.Type {
	case kafka.EventBookingCreated, kafka.EventBookingUpdated, kafka.EventBookingCancelled:
	default:
		return nil
	}

	if err := m.sync(ctx, e.BookingID, e.Type == kafka.EventBookingUpdated); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		m.log.Warn("mirror booking",
			zap.String("type", e.Type),
			zap.Int64("booking_id", e.BookingID),
			zap.Error(err))
	}
	return nil
}

func (m *Mirror) sync(ctx context.Context, bookingID int64, changed bool) error {
	v, err := m.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("load booking: %w", err)
	}
	calendarID, err := m.calendarID(ctx, v.HostID)
	if err != nil || calendarID == "" {
		return err
	}

	switch {
	case !v.IsActive():
		return m.remove(ctx, calendarID, v)
	case v.GoogleEventID == nil:
		return m.insert(ctx, calendarID, v)
	case changed:
		if err := m.calendar.PatchEvent(ctx, calendarID, *v.GoogleEventID, m.event(v)); err != nil {
			return err
		}
		m.log.Info("booking event updated", zap.Int64("booking_id", v.ID), zap.String("event_id", *v.GoogleEventID))
	}
	return nil
}

func (m *Mirror) insert(ctx context.Context, calendarID string, v *domain.BookingView) error {
	eventID, err := m.calendar.InsertEvent(ctx, calendarID, m.event(v))
	if err != nil {
		return err
	}
	if err := m.bookings.SetGoogleEventID(ctx, v.ID, eventID); err != nil {
		return fmt.Errorf("store event id %s: %w", eventID, err)
	}
	m.log.Info("booking mirrored", zap.Int64("booking_id", v.ID), zap.String("event_id", eventID))

	// a cancel committed while the event was being created must not
	// leave it behind
	current, err := m.bookings.GetByID(ctx, v.ID)
	if err != nil {
		return fmt.Errorf("reload booking: %w", err)
	}
	if !current.IsActive() {
		return m.remove(ctx, calendarID, current)
	}
	return nil
}

func (m *Mirror) remove(ctx context.Context, calendarID string, v *domain.BookingView) error {
	if v.GoogleEventID == nil {
		return nil
	}
	if err := m.calendar.DeleteEvent(ctx, calendarID, *v.GoogleEventID); err != nil {
		return err
	}
	if err := m.bookings.SetGoogleEventID(ctx, v.ID, ""); err != nil {
		return fmt.Errorf("clear event id: %w", err)
	}
	m.log.Info("booking event removed", zap.Int64("booking_id", v.ID), zap.String("event_id", *v.GoogleEventID))
	return nil
}

// calendarID returns "" when the host has no linked Google calendar.
func (m *Mirror) calendarID(ctx context.Context, hostID uuid.UUID) (string, error) {
	cal, err := m.calendars.GetByHost(ctx, hostID)
	if errors.Is(err, domain.ErrCalendarNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return cal.GoogleCalendarID, nil
}

func (m *Mirror) event(v *domain.BookingView) Event {
	return Event{
		Summary:     v.Topic,
		Description: v.Description,
		Start:       v.StartTime.On(v.BookingDate, m.loc),
		End:         v.EndTime.On(v.BookingDate, m.loc),
	}
}
