package domain

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduled(t *testing.T, date time.Time) *Booking {
	t.Helper()
	slot := &TimeSlot{ID: 7, HostID: uuid.New()}
	b, err := NewBooking(slot, uuid.New(), date, " intro call ", "")
	require.NoError(t, err)
	return b
}

func TestNewBooking(t *testing.T) {
	date := time.Date(2025, time.June, 2, 15, 4, 5, 0, time.UTC)
	b := newScheduled(t, date)

	assert.Equal(t, int64(7), b.TimeSlotID)
	assert.Equal(t, "intro call", b.Topic)
	assert.Equal(t, AttendanceScheduled, b.AttendanceStatus)
	assert.Equal(t, time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC), b.BookingDate)
	assert.True(t, b.IsActive())

	_, err := NewBooking(&TimeSlot{ID: 7}, uuid.New(), date, "  ", "")
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = NewBooking(nil, uuid.New(), date, "x", "")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestNewBooking_DescriptionLength(t *testing.T) {
	date := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	slot := &TimeSlot{ID: 7}

	// multi-byte runes count once
	_, err := NewBooking(slot, uuid.New(), date, "x", strings.Repeat("é", 2000))
	assert.NoError(t, err)

	_, err = NewBooking(slot, uuid.New(), date, "x", strings.Repeat("a", 2001))
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestBooking_Reschedule(t *testing.T) {
	date := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

	b := newScheduled(t, date)
	require.NoError(t, b.Reschedule(&TimeSlot{ID: 9}, date.Add(49*time.Hour)))
	assert.Equal(t, int64(9), b.TimeSlotID)
	assert.Equal(t, time.Date(2025, time.June, 4, 0, 0, 0, 0, time.UTC), b.BookingDate)

	assert.Equal(t, KindValidation, KindOf(b.Reschedule(nil, date)))
	assert.Equal(t, KindValidation, KindOf(b.Reschedule(&TimeSlot{ID: 9}, time.Time{})))

	require.NoError(t, b.Cancel(date, ""))
	assert.ErrorIs(t, b.Reschedule(&TimeSlot{ID: 9}, date), ErrBookingNotModifiable)
}

func TestBooking_Edit(t *testing.T) {
	date := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

	b := newScheduled(t, date)
	require.NoError(t, b.Edit(" design review ", "bring slides"))
	assert.Equal(t, "design review", b.Topic)
	assert.Equal(t, "bring slides", b.Description)

	assert.Equal(t, KindValidation, KindOf(b.Edit(" ", "")))
	assert.Equal(t, KindValidation, KindOf(b.Edit("x", strings.Repeat("a", 2001))))
	assert.Equal(t, "design review", b.Topic)

	require.NoError(t, b.UpdateStatus(AttendanceAttended))
	assert.ErrorIs(t, b.Edit("late change", ""), ErrBookingNotModifiable)
}

func TestBooking_Cancel(t *testing.T) {
	date := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

	t.Run("before the day", func(t *testing.T) {
		b := newScheduled(t, date)
		require.NoError(t, b.Cancel(date.AddDate(0, 0, -1), "sick"))
		assert.Equal(t, AttendanceCancelled, b.AttendanceStatus)
		assert.Equal(t, "sick", b.CancelledReason)
		assert.False(t, b.IsActive())
	})

	t.Run("same day", func(t *testing.T) {
		b := newScheduled(t, date)
		require.NoError(t, b.Cancel(date.Add(20*time.Hour), ""))
		assert.Equal(t, AttendanceSameDayCancel, b.AttendanceStatus)
		assert.False(t, b.IsActive())
	})

	t.Run("twice", func(t *testing.T) {
		b := newScheduled(t, date)
		require.NoError(t, b.Cancel(date, ""))
		assert.ErrorIs(t, b.Cancel(date, ""), ErrBookingNotCancellable)
	})
}

func TestBooking_UpdateStatus(t *testing.T) {
	date := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

	for _, s := range []AttendanceStatus{AttendanceAttended, AttendanceNoShow, AttendanceLate} {
		t.Run(string(s), func(t *testing.T) {
			b := newScheduled(t, date)
			require.NoError(t, b.UpdateStatus(s))
			assert.Equal(t, s, b.AttendanceStatus)
			assert.True(t, b.IsActive())
			assert.ErrorIs(t, b.UpdateStatus(AttendanceAttended), ErrBookingNotModifiable)
		})
	}

	b := newScheduled(t, date)
	assert.ErrorIs(t, b.UpdateStatus(AttendanceCancelled), ErrInvalidStatus)
	assert.ErrorIs(t, b.UpdateStatus(AttendanceScheduled), ErrInvalidStatus)
}

func TestAttendanceStatus_BlocksRebooking(t *testing.T) {
	for _, s := range allStatuses {
		want := s != AttendanceCancelled && s != AttendanceSameDayCancel
		assert.Equal(t, want, s.BlocksRebooking(), s)
	}

	parsed, err := ParseAttendanceStatus("NO_SHOW")
	require.NoError(t, err)
	assert.Equal(t, AttendanceNoShow, parsed)

	_, err = ParseAttendanceStatus("no_show")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestBookingView_CanBeReadBy(t *testing.T) {
	v := BookingView{HostID: uuid.New()}
	v.GuestID = uuid.New()

	assert.True(t, v.CanBeReadBy(v.HostID))
	assert.True(t, v.CanBeReadBy(v.GuestID))
	assert.False(t, v.CanBeReadBy(uuid.New()))
	assert.False(t, v.CanBeReadBy(uuid.Nil))
}

func TestKindOf_Wrapped(t *testing.T) {
	assert.Equal(t, KindConflict, KindOf(fmt.Errorf("insert: %w", ErrBookingAlreadyExists)))
	assert.Equal(t, KindTransient, KindOf(fmt.Errorf("lock: %w", ErrLockTimeout)))
	assert.Equal(t, KindNotFound, KindOf(ErrTimeSlotNotFound))
	assert.Equal(t, KindAuthorization, KindOf(ErrSelfBooking))
	assert.Equal(t, KindInternal, KindOf(fmt.Errorf("boom")))
}
