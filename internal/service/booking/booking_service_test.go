package booking

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/slotbooking/internal/domain"
	"github.com/Domenick1991/slotbooking/internal/kafka"
	"github.com/Domenick1991/slotbooking/internal/repository"
	"github.com/Domenick1991/slotbooking/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock структуры

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

// MockBookingRepository fails every transaction with the configured error.
type MockBookingRepository struct {
	mock.Mock
	repository.BookingRepository
}

func (m *MockBookingRepository) InTx(ctx context.Context, fn func(ctx context.Context, tx repository.BookingTx) error) error {
	args := m.Called(ctx)
	return args.Error(0)
}

const topic = "booking-events"

// 2025-06-02 is a Monday.
var (
	monday = time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	now    = time.Date(2025, time.May, 30, 10, 0, 0, 0, time.UTC)
)

type fixture struct {
	store *memory.Store
	host  uuid.UUID
	slot  domain.TimeSlot
	clock time.Time
	svc   *BookingService
}

func newFixture(t *testing.T, opts ...BookingServiceOption) *fixture {
	t.Helper()
	f := &fixture{
		store: memory.NewStore(2 * time.Second),
		host:  uuid.New(),
		clock: now,
	}
	f.store.PutMember(domain.Member{ID: f.host, Username: "hh", DisplayName: "Host H", Role: domain.RoleHost})

	weekdays, err := domain.NewWeekdaySet(1, 2, 3)
	require.NoError(t, err)
	slot, err := domain.NewTimeSlot(f.host, 9*60, 10*60, weekdays)
	require.NoError(t, err)
	err = f.store.TimeSlots().WithinHostTx(context.Background(), f.host, func(ctx context.Context, tx repository.TimeSlotTx) error {
		return tx.Insert(ctx, slot)
	})
	require.NoError(t, err)
	f.slot = *slot

	opts = append([]BookingServiceOption{WithClock(func() time.Time { return f.clock })}, opts...)
	f.svc = NewBookingService(f.store.Bookings(), f.store.Members(), opts...)
	return f
}

func (f *fixture) book(guest uuid.UUID, date time.Time) (*domain.BookingView, error) {
	return f.svc.CreateBooking(context.Background(), CreateBookingInput{
		GuestID:     guest,
		TimeSlotID:  f.slot.ID,
		BookingDate: date,
		Topic:       "intro call",
		Description: "first meeting",
	})
}

func TestBookingService_CreateBooking_Success(t *testing.T) {
	f := newFixture(t)
	guest := uuid.New()

	view, err := f.book(guest, monday)
	require.NoError(t, err)

	assert.NotZero(t, view.ID)
	assert.Equal(t, domain.AttendanceScheduled, view.AttendanceStatus)
	assert.Equal(t, guest, view.GuestID)
	assert.Equal(t, f.host, view.HostID)
	assert.Equal(t, "hh", view.HostUsername)
	assert.Equal(t, "Host H", view.HostDisplayName)
	assert.Equal(t, f.slot.StartTime, view.StartTime)
	assert.Equal(t, monday, view.BookingDate)
	assert.Nil(t, view.GoogleEventID)
}

func TestBookingService_CreateBooking_Failures(t *testing.T) {
	f := newFixture(t)
	guest := uuid.New()
	ctx := context.Background()

	_, err := f.book(guest, now.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, domain.ErrPastBooking)

	_, err = f.book(f.host, monday)
	assert.ErrorIs(t, err, domain.ErrSelfBooking)

	// 2025-06-05 is a Thursday.
	_, err = f.book(guest, monday.AddDate(0, 0, 3))
	assert.ErrorIs(t, err, domain.ErrWeekdayNotAvailable)

	_, err = f.svc.CreateBooking(ctx, CreateBookingInput{GuestID: guest, TimeSlotID: 404, BookingDate: monday, Topic: "x"})
	assert.ErrorIs(t, err, domain.ErrTimeSlotNotFound)

	_, err = f.svc.CreateBooking(ctx, CreateBookingInput{GuestID: guest, TimeSlotID: f.slot.ID, BookingDate: monday})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	list, err := f.svc.ListBookingsForGuest(ctx, guest)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBookingService_CreateBooking_TodayIsNotPast(t *testing.T) {
	f := newFixture(t)
	f.clock = monday.Add(23 * time.Hour)

	_, err := f.book(uuid.New(), monday)
	assert.NoError(t, err)
}

func TestBookingService_CreateBooking_TodayInLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	f := newFixture(t, WithLocation(loc))
	// Still Monday in UTC, already Tuesday at UTC+5.
	f.clock = monday.Add(20 * time.Hour)

	_, err := f.book(uuid.New(), monday)
	assert.ErrorIs(t, err, domain.ErrPastBooking)
}

func TestBookingService_SelfBookingOnAnyDate(t *testing.T) {
	f := newFixture(t)
	for week := 0; week < 5; week++ {
		for day := 0; day < 7; day++ {
			_, err := f.book(f.host, monday.AddDate(0, 0, 7*week+day))
			assert.ErrorIs(t, err, domain.ErrSelfBooking)
		}
	}
}

func TestBookingService_ConcurrentCreateBooking(t *testing.T) {
	f := newFixture(t)

	const n = 20
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make([]error, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, results[i] = f.book(uuid.New(), monday)
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, dup int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrBookingAlreadyExists):
			dup++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)

	all, err := f.svc.ListBookingsForHost(context.Background(), f.host)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.AttendanceScheduled, all[0].AttendanceStatus)
}

func TestBookingService_RebookAfterCancellation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g, g2 := uuid.New(), uuid.New()

	first, err := f.book(g, monday)
	require.NoError(t, err)
	assert.Equal(t, domain.AttendanceScheduled, first.AttendanceStatus)

	_, err = f.book(g2, monday)
	assert.ErrorIs(t, err, domain.ErrBookingAlreadyExists)

	cancelled, err := f.svc.CancelBooking(ctx, first.ID, g, "conflict")
	require.NoError(t, err)
	assert.Equal(t, domain.AttendanceCancelled, cancelled.AttendanceStatus)
	assert.Equal(t, "conflict", cancelled.CancelledReason)

	second, err := f.book(g2, monday)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	// Another cancelled booking on the same pair does not block either.
	_, err = f.svc.CancelBooking(ctx, second.ID, g2, "")
	require.NoError(t, err)
	_, err = f.book(g, monday)
	assert.NoError(t, err)
}

func TestBookingService_CancelBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	guest := uuid.New()

	view, err := f.book(guest, monday)
	require.NoError(t, err)

	_, err = f.svc.CancelBooking(ctx, view.ID, f.host, "")
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	_, err = f.svc.CancelBooking(ctx, 999, guest, "")
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)

	f.clock = monday.Add(8 * time.Hour)
	cancelled, err := f.svc.CancelBooking(ctx, view.ID, guest, "")
	require.NoError(t, err)
	assert.Equal(t, domain.AttendanceSameDayCancel, cancelled.AttendanceStatus)

	_, err = f.svc.CancelBooking(ctx, view.ID, guest, "")
	assert.ErrorIs(t, err, domain.ErrBookingNotCancellable)
}

func TestBookingService_UpdateBookingStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	guest := uuid.New()

	view, err := f.book(guest, monday)
	require.NoError(t, err)

	_, err = f.svc.UpdateBookingStatus(ctx, view.ID, f.host, domain.AttendanceCancelled)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.svc.UpdateBookingStatus(ctx, view.ID, guest, domain.AttendanceAttended)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	updated, err := f.svc.UpdateBookingStatus(ctx, view.ID, f.host, domain.AttendanceNoShow)
	require.NoError(t, err)
	assert.Equal(t, domain.AttendanceNoShow, updated.AttendanceStatus)

	_, err = f.svc.UpdateBookingStatus(ctx, view.ID, f.host, domain.AttendanceAttended)
	assert.ErrorIs(t, err, domain.ErrBookingNotModifiable)

	// A booking that took place still occupies its date.
	_, err = f.book(uuid.New(), monday)
	assert.ErrorIs(t, err, domain.ErrBookingAlreadyExists)

	_, err = f.svc.CancelBooking(ctx, view.ID, guest, "")
	assert.ErrorIs(t, err, domain.ErrBookingNotCancellable)
}

func TestBookingService_GetBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	guest := uuid.New()

	view, err := f.book(guest, monday)
	require.NoError(t, err)

	got, err := f.svc.GetBooking(ctx, view.ID, guest)
	require.NoError(t, err)
	assert.Equal(t, view.ID, got.ID)

	got, err = f.svc.GetBooking(ctx, view.ID, f.host)
	require.NoError(t, err)
	assert.Equal(t, "hh", got.HostUsername)

	_, err = f.svc.GetBooking(ctx, view.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	_, err = f.svc.GetBooking(ctx, 12345, guest)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestBookingService_Listings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	guest := uuid.New()

	dates := []time.Time{monday, monday.AddDate(0, 0, 7), monday.AddDate(0, 0, 29)} // Jun 2, Jun 9, Jul 1
	for _, d := range dates {
		_, err := f.book(guest, d)
		require.NoError(t, err)
	}

	mine, err := f.svc.ListBookingsForGuest(ctx, guest)
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.Equal(t, dates[2], mine[0].BookingDate)
	assert.Equal(t, dates[0], mine[2].BookingDate)

	hosted, err := f.svc.ListBookingsForHost(ctx, f.host)
	require.NoError(t, err)
	assert.Len(t, hosted, 3)

	june, err := f.svc.ListBookingsForHostInMonth(ctx, f.host, 2025, 6)
	require.NoError(t, err)
	require.Len(t, june, 2)
	assert.Equal(t, dates[0], june[0].BookingDate)
	assert.Equal(t, dates[1], june[1].BookingDate)

	july, err := f.svc.ListBookingsForHostInMonth(ctx, f.host, 2025, 7)
	require.NoError(t, err)
	assert.Len(t, july, 1)

	_, err = f.svc.ListBookingsForHostInMonth(ctx, f.host, 2025, 13)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = f.svc.ListBookingsForHostInMonth(ctx, f.host, 1800, 1)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestBookingService_PublishesAfterCommit(t *testing.T) {
	producer := &MockProducer{}
	f := newFixture(t, WithProducer(producer, topic))
	ctx := context.Background()
	guest := uuid.New()

	producer.On("Publish", mock.Anything, topic, mock.AnythingOfType("string"), mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBookingCreated && e.StartTime == "09:00" && e.BookingDate == "2025-06-02"
	})).Return(nil).Once()

	view, err := f.book(guest, monday)
	require.NoError(t, err)

	producer.On("Publish", mock.Anything, topic, "booking-"+itoa(view.ID), mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBookingCancelled && e.Status == string(domain.AttendanceCancelled)
	})).Return(nil).Once()

	_, err = f.svc.CancelBooking(ctx, view.ID, guest, "")
	require.NoError(t, err)
	producer.AssertExpectations(t)
}

func TestBookingService_PublishFailureKeepsBooking(t *testing.T) {
	producer := &MockProducer{}
	f := newFixture(t, WithProducer(producer, topic))
	guest := uuid.New()

	producer.On("Publish", mock.Anything, topic, mock.Anything, mock.Anything).Return(errors.New("kafka down")).Once()

	view, err := f.book(guest, monday)
	require.NoError(t, err)

	stored, err := f.svc.GetBooking(context.Background(), view.ID, guest)
	require.NoError(t, err)
	assert.Equal(t, domain.AttendanceScheduled, stored.AttendanceStatus)
	producer.AssertExpectations(t)
}

func TestBookingService_NoPublishOnFailure(t *testing.T) {
	producer := &MockProducer{}
	f := newFixture(t, WithProducer(producer, topic))

	_, err := f.book(f.host, monday)
	require.ErrorIs(t, err, domain.ErrSelfBooking)
	producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_LockTimeoutIsTransient(t *testing.T) {
	repo := &MockBookingRepository{}
	repo.On("InTx", mock.Anything).Return(domain.ErrLockTimeout).Once()
	svc := NewBookingService(repo, nil, WithClock(func() time.Time { return now }))

	_, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		GuestID:     uuid.New(),
		TimeSlotID:  1,
		BookingDate: monday,
		Topic:       "t",
	})
	assert.ErrorIs(t, err, domain.ErrLockTimeout)
	assert.Equal(t, domain.KindTransient, domain.KindOf(err))
	repo.AssertExpectations(t)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func (f *fixture) addSlot(t *testing.T, host uuid.UUID, startMin, endMin int) domain.TimeSlot {
	t.Helper()
	weekdays, err := domain.NewWeekdaySet(1, 2, 3)
	require.NoError(t, err)
	slot, err := domain.NewTimeSlot(host, domain.TimeOfDay(startMin), domain.TimeOfDay(endMin), weekdays)
	require.NoError(t, err)
	require.NoError(t, f.store.TimeSlots().WithinHostTx(context.Background(), host, func(ctx context.Context, tx repository.TimeSlotTx) error {
		return tx.Insert(ctx, slot)
	}))
	return *slot
}

func TestBookingService_UpdateBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	guest := uuid.New()
	later := f.addSlot(t, f.host, 11*60, 12*60)
	tuesday := monday.AddDate(0, 0, 1)

	view, err := f.book(guest, monday)
	require.NoError(t, err)

	updated, err := f.svc.UpdateBooking(ctx, UpdateBookingInput{
		BookingID:   view.ID,
		GuestID:     guest,
		TimeSlotID:  later.ID,
		BookingDate: tuesday,
		Topic:       " follow-up ",
		Description: "bring notes",
	})
	require.NoError(t, err)
	assert.Equal(t, later.ID, updated.TimeSlotID)
	assert.Equal(t, tuesday, updated.BookingDate)
	assert.Equal(t, later.StartTime, updated.StartTime)
	assert.Equal(t, "follow-up", updated.Topic)
	assert.Equal(t, "bring notes", updated.Description)
	assert.Equal(t, "hh", updated.HostUsername)

	stored, err := f.svc.GetBooking(ctx, view.ID, guest)
	require.NoError(t, err)
	assert.Equal(t, later.ID, stored.TimeSlotID)
	assert.Equal(t, tuesday, stored.BookingDate)

	// the old slot and date are free again
	_, err = f.book(uuid.New(), monday)
	assert.NoError(t, err)
}

func TestBookingService_UpdateBooking_KeepsOwnSlot(t *testing.T) {
	f := newFixture(t)
	guest := uuid.New()

	view, err := f.book(guest, monday)
	require.NoError(t, err)

	updated, err := f.svc.UpdateBooking(context.Background(), UpdateBookingInput{
		BookingID:   view.ID,
		GuestID:     guest,
		TimeSlotID:  f.slot.ID,
		BookingDate: monday,
		Topic:       "renamed",
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Topic)
	assert.Empty(t, updated.Description)
}

func TestBookingService_UpdateBooking_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	guest := uuid.New()
	other := uuid.New()
	tuesday := monday.AddDate(0, 0, 1)

	mine, err := f.book(guest, tuesday)
	require.NoError(t, err)
	_, err = f.book(other, monday)
	require.NoError(t, err)

	otherHost := uuid.New()
	f.store.PutMember(domain.Member{ID: otherHost, Username: "oh", Role: domain.RoleHost})
	foreign := f.addSlot(t, otherHost, 9*60, 10*60)

	input := func(mod func(*UpdateBookingInput)) UpdateBookingInput {
		in := UpdateBookingInput{BookingID: mine.ID, GuestID: guest, TimeSlotID: f.slot.ID, BookingDate: tuesday, Topic: "t"}
		mod(&in)
		return in
	}

	tests := []struct {
		name  string
		input UpdateBookingInput
		want  error
		kind  domain.Kind
	}{
		{name: "taken by another booking", input: input(func(in *UpdateBookingInput) { in.BookingDate = monday }), want: domain.ErrBookingAlreadyExists},
		{name: "slot of another host", input: input(func(in *UpdateBookingInput) { in.TimeSlotID = foreign.ID }), want: domain.ErrAccessDenied},
		{name: "not the guest", input: input(func(in *UpdateBookingInput) { in.GuestID = other }), want: domain.ErrAccessDenied},
		{name: "past date", input: input(func(in *UpdateBookingInput) { in.BookingDate = now.AddDate(0, 0, -3) }), want: domain.ErrPastBooking},
		{name: "weekday not offered", input: input(func(in *UpdateBookingInput) { in.BookingDate = monday.AddDate(0, 0, 3) }), want: domain.ErrWeekdayNotAvailable},
		{name: "unknown slot", input: input(func(in *UpdateBookingInput) { in.TimeSlotID = 404 }), want: domain.ErrTimeSlotNotFound},
		{name: "unknown booking", input: input(func(in *UpdateBookingInput) { in.BookingID = 404 }), want: domain.ErrBookingNotFound},
		{name: "empty topic", input: input(func(in *UpdateBookingInput) { in.Topic = "" }), kind: domain.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.UpdateBooking(ctx, tt.input)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			} else {
				assert.Equal(t, tt.kind, domain.KindOf(err))
			}

			stored, err := f.svc.GetBooking(ctx, mine.ID, guest)
			require.NoError(t, err)
			assert.Equal(t, tuesday, stored.BookingDate)
			assert.Equal(t, "intro call", stored.Topic)
		})
	}

	_, err = f.svc.CancelBooking(ctx, mine.ID, guest, "")
	require.NoError(t, err)
	_, err = f.svc.UpdateBooking(ctx, input(func(*UpdateBookingInput) {}))
	assert.ErrorIs(t, err, domain.ErrBookingNotModifiable)
}

func TestBookingService_RescheduleBooking(t *testing.T) {
	producer := &MockProducer{}
	f := newFixture(t, WithProducer(producer, topic))
	ctx := context.Background()
	guest := uuid.New()
	later := f.addSlot(t, f.host, 11*60, 12*60)
	wednesday := monday.AddDate(0, 0, 2)

	producer.On("Publish", mock.Anything, topic, mock.Anything, mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBookingCreated
	})).Return(nil).Once()
	producer.On("Publish", mock.Anything, topic, mock.Anything, mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBookingUpdated && e.StartTime == "11:00" && e.BookingDate == "2025-06-04"
	})).Return(nil).Once()

	view, err := f.book(guest, monday)
	require.NoError(t, err)

	_, err = f.svc.RescheduleBooking(ctx, RescheduleBookingInput{BookingID: view.ID, HostID: guest, TimeSlotID: later.ID, BookingDate: wednesday})
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	moved, err := f.svc.RescheduleBooking(ctx, RescheduleBookingInput{BookingID: view.ID, HostID: f.host, TimeSlotID: later.ID, BookingDate: wednesday})
	require.NoError(t, err)
	assert.Equal(t, later.ID, moved.TimeSlotID)
	assert.Equal(t, wednesday, moved.BookingDate)
	assert.Equal(t, "intro call", moved.Topic)
	producer.AssertExpectations(t)
}

func TestBookingService_ConcurrentMovesToSameTarget(t *testing.T) {
	f := newFixture(t)
	target := f.addSlot(t, f.host, 14*60, 15*60)

	const n = 10
	ids := make([]int64, n)
	for i := range ids {
		view, err := f.book(uuid.New(), monday.AddDate(0, 0, 7*i))
		require.NoError(t, err)
		ids[i] = view.ID
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := f.svc.RescheduleBooking(context.Background(), RescheduleBookingInput{
				BookingID: id, HostID: f.host, TimeSlotID: target.ID, BookingDate: monday,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrBookingAlreadyExists):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)
}

func TestBookingService_ListPublicBookingsForHostInMonth(t *testing.T) {
	f := newFixture(t)
	f.svc = NewBookingService(f.store.Bookings(), f.store.Members(),
		WithClock(func() time.Time { return f.clock }),
		WithCalendars(f.store.Calendars()))
	ctx := context.Background()
	guest := uuid.New()

	_, err := f.svc.ListPublicBookingsForHostInMonth(ctx, f.host, 2025, 6)
	assert.ErrorIs(t, err, domain.ErrCalendarNotFound)
	_, err = f.svc.ListPublicBookingsForHostInMonth(ctx, uuid.New(), 2025, 6)
	assert.ErrorIs(t, err, domain.ErrCalendarNotFound)

	f.store.PutCalendar(domain.Calendar{HostID: f.host})
	kept, err := f.book(guest, monday)
	require.NoError(t, err)
	dropped, err := f.book(guest, monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	_, err = f.svc.CancelBooking(ctx, dropped.ID, guest, "")
	require.NoError(t, err)

	taken, err := f.svc.ListPublicBookingsForHostInMonth(ctx, f.host, 2025, 6)
	require.NoError(t, err)
	require.Len(t, taken, 1)
	assert.Equal(t, kept.ID, taken[0].ID)

	_, err = f.svc.ListPublicBookingsForHostInMonth(ctx, f.host, 2025, 0)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}
