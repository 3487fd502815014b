package slotbooking_service_api

import (
	"context"
	"math"
	"time"

	"github.com/Domenick1991/slotbooking/internal/api/rpcerr"
	"github.com/Domenick1991/slotbooking/internal/domain"
	"github.com/Domenick1991/slotbooking/internal/service/booking"
	"github.com/Domenick1991/slotbooking/internal/service/timeslots"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Server implements SlotBookingServer on top of the use cases.
type Server struct {
	slots    timeslots.TimeSlotUseCase
	bookings booking.BookingUseCase
}

func NewServer(slots timeslots.TimeSlotUseCase, bookings booking.BookingUseCase) *Server {
	return &Server{slots: slots, bookings: bookings}
}

// ErrorInterceptor turns domain errors returned by handlers into statuses.
func ErrorInterceptor(ctx context.Context, req interface{}, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		return nil, rpcerr.Status(err).Err()
	}
	return resp, nil
}

func (s *Server) CreateTimeSlot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	hostID, err := memberID(ctx)
	if err != nil {
		return nil, err
	}
	start, err := domain.ParseTimeOfDay(str(req, "start_time"))
	if err != nil {
		return nil, err
	}
	end, err := domain.ParseTimeOfDay(str(req, "end_time"))
	if err != nil {
		return nil, err
	}
	weekdays, err := ints(req, "weekdays")
	if err != nil {
		return nil, err
	}

	slot, err := s.slots.CreateTimeSlot(ctx, timeslots.CreateTimeSlotInput{
		HostID:    hostID,
		StartTime: start,
		EndTime:   end,
		Weekdays:  weekdays,
	})
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(timeSlotFields(*slot))
}

func (s *Server) ListMyTimeSlots(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	hostID, err := memberID(ctx)
	if err != nil {
		return nil, err
	}
	slots, err := s.slots.ListMyTimeSlots(ctx, hostID)
	if err != nil {
		return nil, err
	}
	return timeSlotList(slots)
}

func (s *Server) ListHostTimeSlots(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	hostID, err := uuidField(req, "host_id")
	if err != nil {
		return nil, err
	}
	slots, err := s.slots.ListTimeSlotsForHost(ctx, hostID)
	if err != nil {
		return nil, err
	}
	return timeSlotList(slots)
}

func (s *Server) CreateBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	guestID, err := memberID(ctx)
	if err != nil {
		return nil, err
	}
	slotID, err := idField(req, "time_slot_id")
	if err != nil {
		return nil, err
	}
	date, err := domain.ParseDate(str(req, "booking_date"))
	if err != nil {
		return nil, err
	}

	view, err := s.bookings.CreateBooking(ctx, booking.CreateBookingInput{
		GuestID:     guestID,
		TimeSlotID:  slotID,
		BookingDate: date,
		Topic:       str(req, "topic"),
		Description: str(req, "description"),
	})
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(bookingFields(*view))
}

func (s *Server) GetBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	requester, err := memberID(ctx)
	if err != nil {
		return nil, err
	}
	id, err := idField(req, "id")
	if err != nil {
		return nil, err
	}
	view, err := s.bookings.GetBooking(ctx, id, requester)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(bookingFields(*view))
}

func (s *Server) ListGuestBookings(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	guestID, err := memberID(ctx)
	if err != nil {
		return nil, err
	}
	views, err := s.bookings.ListBookingsForGuest(ctx, guestID)
	if err != nil {
		return nil, err
	}
	return bookingList(views)
}

// ListHostBookings switches to the month view when year or month is set.
func (s *Server) ListHostBookings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	hostID, err := memberID(ctx)
	if err != nil {
		return nil, err
	}

	var views []domain.BookingView
	if has(req, "year") || has(req, "month") {
		views, err = s.bookings.ListBookingsForHostInMonth(ctx, hostID, int(num(req, "year")), int(num(req, "month")))
	} else {
		views, err = s.bookings.ListBookingsForHost(ctx, hostID)
	}
	if err != nil {
		return nil, err
	}
	return bookingList(views)
}

func (s *Server) ListPublicHostBookings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	hostID, err := uuidField(req, "host_id")
	if err != nil {
		return nil, err
	}
	views, err := s.bookings.ListPublicBookingsForHostInMonth(ctx, hostID, int(num(req, "year")), int(num(req, "month")))
	if err != nil {
		return nil, err
	}

	items := make([]interface{}, len(views))
	for i, v := range views {
		items[i] = map[string]interface{}{
			"booking_date": v.BookingDate.Format(domain.DateLayout),
			"time_slot": map[string]interface{}{
				"start_time": v.StartTime.String(),
				"end_time":   v.EndTime.String(),
			},
		}
	}
	return structpb.NewStruct(map[string]interface{}{"items": items})
}

func (s *Server) UpdateBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	guestID, err := memberID(ctx)
	if err != nil {
		return nil, err
	}
	id, err := idField(req, "id")
	if err != nil {
		return nil, err
	}
	slotID, err := idField(req, "time_slot_id")
	if err != nil {
		return nil, err
	}
	date, err := domain.ParseDate(str(req, "booking_date"))
	if err != nil {
		return nil, err
	}

	view, err := s.bookings.UpdateBooking(ctx, booking.UpdateBookingInput{
		BookingID:   id,
		GuestID:     guestID,
		TimeSlotID:  slotID,
		BookingDate: date,
		Topic:       str(req, "topic"),
		Description: str(req, "description"),
	})
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(bookingFields(*view))
}

func (s *Server) RescheduleBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	hostID, err := memberID(ctx)
	if err != nil {
		return nil, err
	}
	id, err := idField(req, "id")
	if err != nil {
		return nil, err
	}
	slotID, err := idField(req, "time_slot_id")
	if err != nil {
		return nil, err
	}
	date, err := domain.ParseDate(str(req, "booking_date"))
	if err != nil {
		return nil, err
	}

	view, err := s.bookings.RescheduleBooking(ctx, booking.RescheduleBookingInput{
		BookingID:   id,
		HostID:      hostID,
		TimeSlotID:  slotID,
		BookingDate: date,
	})
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(bookingFields(*view))
}

func (s *Server) UpdateBookingStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	hostID, err := memberID(ctx)
	if err != nil {
		return nil, err
	}
	id, err := idField(req, "id")
	if err != nil {
		return nil, err
	}
	st, err := domain.ParseAttendanceStatus(str(req, "status"))
	if err != nil {
		return nil, err
	}
	view, err := s.bookings.UpdateBookingStatus(ctx, id, hostID, st)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(bookingFields(*view))
}

func (s *Server) CancelBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	guestID, err := memberID(ctx)
	if err != nil {
		return nil, err
	}
	id, err := idField(req, "id")
	if err != nil {
		return nil, err
	}
	view, err := s.bookings.CancelBooking(ctx, id, guestID, str(req, "reason"))
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(bookingFields(*view))
}

func memberID(ctx context.Context) (uuid.UUID, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get(MemberMetadataKey)
	if len(values) == 0 {
		return uuid.Nil, status.Error(codes.Unauthenticated, "missing "+MemberMetadataKey+" metadata")
	}
	id, err := uuid.Parse(values[0])
	if err != nil || id == uuid.Nil {
		return uuid.Nil, status.Error(codes.Unauthenticated, "invalid "+MemberMetadataKey+" metadata")
	}
	return id, nil
}

func has(req *structpb.Struct, key string) bool {
	_, ok := req.GetFields()[key]
	return ok
}

func str(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

func num(req *structpb.Struct, key string) float64 {
	return req.GetFields()[key].GetNumberValue()
}

func idField(req *structpb.Struct, key string) (int64, error) {
	n := num(req, key)
	if n <= 0 || n != math.Trunc(n) || n > math.MaxInt64 {
		return 0, domain.NewValidationError(key + " must be a positive integer")
	}
	return int64(n), nil
}

func uuidField(req *structpb.Struct, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(str(req, key))
	if err != nil {
		return uuid.Nil, domain.NewValidationError("invalid " + key)
	}
	return id, nil
}

func ints(req *structpb.Struct, key string) ([]int, error) {
	values := req.GetFields()[key].GetListValue().GetValues()
	out := make([]int, len(values))
	for i, v := range values {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok || n.NumberValue != math.Trunc(n.NumberValue) {
			return nil, domain.NewValidationError(key + " must hold integers")
		}
		out[i] = int(n.NumberValue)
	}
	return out, nil
}

func timeSlotFields(s domain.TimeSlot) map[string]interface{} {
	days := s.Weekdays.Days()
	weekdays := make([]interface{}, len(days))
	for i, d := range days {
		weekdays[i] = d
	}
	return map[string]interface{}{
		"id":         s.ID,
		"host_id":    s.HostID.String(),
		"start_time": s.StartTime.String(),
		"end_time":   s.EndTime.String(),
		"weekdays":   weekdays,
		"created_at": s.CreatedAt.Format(time.RFC3339),
	}
}

func timeSlotList(slots []domain.TimeSlot) (*structpb.Struct, error) {
	items := make([]interface{}, len(slots))
	for i, s := range slots {
		items[i] = timeSlotFields(s)
	}
	return structpb.NewStruct(map[string]interface{}{"items": items})
}

func bookingFields(v domain.BookingView) map[string]interface{} {
	fields := map[string]interface{}{
		"id":                v.ID,
		"time_slot_id":      v.TimeSlotID,
		"guest_id":          v.GuestID.String(),
		"host_id":           v.HostID.String(),
		"booking_date":      v.BookingDate.Format(domain.DateLayout),
		"start_time":        v.StartTime.String(),
		"end_time":          v.EndTime.String(),
		"topic":             v.Topic,
		"description":       v.Description,
		"attendance_status": string(v.AttendanceStatus),
		"created_at":        v.CreatedAt.Format(time.RFC3339),
		"updated_at":        v.UpdatedAt.Format(time.RFC3339),
	}
	if v.HostUsername != "" {
		fields["host_username"] = v.HostUsername
	}
	if v.HostDisplayName != "" {
		fields["host_display_name"] = v.HostDisplayName
	}
	if v.CancelledReason != "" {
		fields["cancelled_reason"] = v.CancelledReason
	}
	if v.GoogleEventID != nil {
		fields["google_event_id"] = *v.GoogleEventID
	}
	return fields
}

func bookingList(views []domain.BookingView) (*structpb.Struct, error) {
	items := make([]interface{}, len(views))
	for i, v := range views {
		items[i] = bookingFields(v)
	}
	return structpb.NewStruct(map[string]interface{}{"items": items})
}

var _ SlotBookingServer = (*Server)(nil)
