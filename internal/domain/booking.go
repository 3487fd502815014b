package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	maxTopicLength       = 255
	maxDescriptionLength = 2000
)

type Booking struct {
	ID               int64
	TimeSlotID       int64
	GuestID          uuid.UUID
	BookingDate      time.Time
	Topic            string
	Description      string
	AttendanceStatus AttendanceStatus
	CancelledReason  string
	GoogleEventID    *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewBooking builds a SCHEDULED booking of slot on the calendar date of
// bookingDate.
func NewBooking(slot *TimeSlot, guestID uuid.UUID, bookingDate time.Time, topic, description string) (*Booking, error) {
	if slot == nil || slot.ID == 0 {
		return nil, validationError("time_slot_id is required")
	}
	if guestID == uuid.Nil {
		return nil, validationError("guest_id is required")
	}
	if bookingDate.IsZero() {
		return nil, validationError("booking_date is required")
	}
	topic, description, err := cleanDetails(topic, description)
	if err != nil {
		return nil, err
	}
	return &Booking{
		TimeSlotID:       slot.ID,
		GuestID:          guestID,
		BookingDate:      DateOf(bookingDate),
		Topic:            topic,
		Description:      description,
		AttendanceStatus: AttendanceScheduled,
	}, nil
}

func cleanDetails(topic, description string) (string, string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", "", validationError("topic is required")
	}
	if len(topic) > maxTopicLength {
		return "", "", validationError("topic is too long")
	}
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return "", "", validationError("description is too long")
	}
	return topic, description, nil
}

func (b *Booking) IsActive() bool {
	return b.AttendanceStatus.BlocksRebooking()
}

// Cancel moves a SCHEDULED booking to SAME_DAY_CANCEL when today is the
// booking date and to CANCELLED otherwise.
func (b *Booking) Cancel(today time.Time, reason string) error {
	if !b.AttendanceStatus.IsCancellable() {
		return ErrBookingNotCancellable
	}
	if DateOf(today).Equal(b.BookingDate) {
		b.AttendanceStatus = AttendanceSameDayCancel
	} else {
		b.AttendanceStatus = AttendanceCancelled
	}
	b.CancelledReason = strings.TrimSpace(reason)
	return nil
}

// UpdateStatus records the host's attendance verdict.
func (b *Booking) UpdateStatus(status AttendanceStatus) error {
	if !b.AttendanceStatus.IsModifiable() {
		return ErrBookingNotModifiable
	}
	if !status.IsHostSettable() {
		return ErrInvalidStatus
	}
	b.AttendanceStatus = status
	return nil
}

// Reschedule moves a SCHEDULED booking to the calendar date of date on
// slot. Occupancy of the new slot and date is the caller's concern.
func (b *Booking) Reschedule(slot *TimeSlot, date time.Time) error {
	if !b.AttendanceStatus.IsModifiable() {
		return ErrBookingNotModifiable
	}
	if slot == nil || slot.ID == 0 {
		return validationError("time_slot_id is required")
	}
	if date.IsZero() {
		return validationError("booking_date is required")
	}
	b.TimeSlotID = slot.ID
	b.BookingDate = DateOf(date)
	return nil
}

// Edit replaces the topic and description of a SCHEDULED booking.
func (b *Booking) Edit(topic, description string) error {
	if !b.AttendanceStatus.IsModifiable() {
		return ErrBookingNotModifiable
	}
	topic, description, err := cleanDetails(topic, description)
	if err != nil {
		return err
	}
	b.Topic, b.Description = topic, description
	return nil
}

// BookingView is a booking joined with the slot it references and the
// slot's host.
type BookingView struct {
	Booking
	HostID          uuid.UUID
	HostUsername    string
	HostDisplayName string
	StartTime       TimeOfDay
	EndTime         TimeOfDay
}

// CanBeReadBy reports whether requester is the guest or the slot's host.
func (v BookingView) CanBeReadBy(requester uuid.UUID) bool {
	return requester != uuid.Nil && (v.GuestID == requester || v.HostID == requester)
}
