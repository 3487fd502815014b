package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/slotbooking/internal/domain"
	"github.com/Domenick1991/slotbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	TimeSlotID  int64  `json:"time_slot_id" binding:"required"`
	BookingDate string `json:"booking_date" binding:"required"`
	Topic       string `json:"topic"`
	Description string `json:"description"`
}

type updateBookingRequest struct {
	TimeSlotID  int64  `json:"time_slot_id" binding:"required"`
	BookingDate string `json:"booking_date" binding:"required"`
	Topic       string `json:"topic"`
	Description string `json:"description"`
}

type rescheduleRequest struct {
	TimeSlotID  int64  `json:"time_slot_id" binding:"required"`
	BookingDate string `json:"booking_date" binding:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type bookingResponse struct {
	ID               int64   `json:"id"`
	TimeSlotID       int64   `json:"time_slot_id"`
	GuestID          string  `json:"guest_id"`
	HostID           string  `json:"host_id"`
	HostUsername     string  `json:"host_username,omitempty"`
	HostDisplayName  string  `json:"host_display_name,omitempty"`
	BookingDate      string  `json:"booking_date"`
	StartTime        string  `json:"start_time"`
	EndTime          string  `json:"end_time"`
	Topic            string  `json:"topic"`
	Description      string  `json:"description"`
	AttendanceStatus string  `json:"attendance_status"`
	CancelledReason  string  `json:"cancelled_reason,omitempty"`
	GoogleEventID    *string `json:"google_event_id,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

// publicBookingResponse tells which date and slot are taken, nothing about
// who took it or why.
type publicBookingResponse struct {
	BookingDate string             `json:"booking_date"`
	TimeSlot    publicSlotResponse `json:"time_slot"`
}

type publicSlotResponse struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/guest", h.listForGuest)
	router.GET("/host", h.listForHost)
	router.GET("/:id", h.get)
	router.PATCH("/:id", h.update)
	router.PATCH("/:id/schedule", h.reschedule)
	router.PATCH("/:id/status", h.updateStatus)
	router.DELETE("/:id", h.cancel)
}

// RegisterPublic adds the routes that need no member id.
func (h *BookingHandler) RegisterPublic(router *gin.RouterGroup) {
	router.GET("/hosts/:hostId/bookings", h.listPublic)
}

func (h *BookingHandler) create(c *gin.Context) {
	guestID, ok := memberID(c)
	if !ok {
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	date, err := domain.ParseDate(req.BookingDate)
	if err != nil {
		writeError(c, err)
		return
	}

	view, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		GuestID:     guestID,
		TimeSlotID:  req.TimeSlotID,
		BookingDate: date,
		Topic:       req.Topic,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newBookingResponse(*view))
}

func (h *BookingHandler) get(c *gin.Context) {
	requester, ok := memberID(c)
	if !ok {
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}

	view, err := h.service.GetBooking(c.Request.Context(), id, requester)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(*view))
}

func (h *BookingHandler) listForGuest(c *gin.Context) {
	guestID, ok := memberID(c)
	if !ok {
		return
	}
	views, err := h.service.ListBookingsForGuest(c.Request.Context(), guestID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponses(views))
}

// listForHost switches to the month view when both year and month are set.
func (h *BookingHandler) listForHost(c *gin.Context) {
	hostID, ok := memberID(c)
	if !ok {
		return
	}

	var (
		views []domain.BookingView
		err   error
	)
	if c.Query("year") == "" && c.Query("month") == "" {
		views, err = h.service.ListBookingsForHost(c.Request.Context(), hostID)
	} else {
		year, month, ok := yearMonth(c)
		if !ok {
			return
		}
		views, err = h.service.ListBookingsForHostInMonth(c.Request.Context(), hostID, year, month)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponses(views))
}

func (h *BookingHandler) listPublic(c *gin.Context) {
	hostID, err := uuid.Parse(c.Param("hostId"))
	if err != nil {
		badRequest(c, "invalid host id")
		return
	}
	year, month, ok := yearMonth(c)
	if !ok {
		return
	}

	views, err := h.service.ListPublicBookingsForHostInMonth(c.Request.Context(), hostID, year, month)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]publicBookingResponse, len(views))
	for i, v := range views {
		out[i] = publicBookingResponse{
			BookingDate: v.BookingDate.Format(domain.DateLayout),
			TimeSlot:    publicSlotResponse{StartTime: v.StartTime.String(), EndTime: v.EndTime.String()},
		}
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) update(c *gin.Context) {
	guestID, ok := memberID(c)
	if !ok {
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	date, err := domain.ParseDate(req.BookingDate)
	if err != nil {
		writeError(c, err)
		return
	}

	view, err := h.service.UpdateBooking(c.Request.Context(), booking.UpdateBookingInput{
		BookingID:   id,
		GuestID:     guestID,
		TimeSlotID:  req.TimeSlotID,
		BookingDate: date,
		Topic:       req.Topic,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(*view))
}

func (h *BookingHandler) reschedule(c *gin.Context) {
	hostID, ok := memberID(c)
	if !ok {
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	date, err := domain.ParseDate(req.BookingDate)
	if err != nil {
		writeError(c, err)
		return
	}

	view, err := h.service.RescheduleBooking(c.Request.Context(), booking.RescheduleBookingInput{
		BookingID:   id,
		HostID:      hostID,
		TimeSlotID:  req.TimeSlotID,
		BookingDate: date,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(*view))
}

func (h *BookingHandler) updateStatus(c *gin.Context) {
	hostID, ok := memberID(c)
	if !ok {
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	status, err := domain.ParseAttendanceStatus(req.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	view, err := h.service.UpdateBookingStatus(c.Request.Context(), id, hostID, status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(*view))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	guestID, ok := memberID(c)
	if !ok {
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}

	view, err := h.service.CancelBooking(c.Request.Context(), id, guestID, c.Query("reason"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(*view))
}

// yearMonth reads the required year and month query parameters. It writes
// 400 and returns false when either is missing or not a number.
func yearMonth(c *gin.Context) (int, int, bool) {
	yearParam, monthParam := c.Query("year"), c.Query("month")
	if yearParam == "" || monthParam == "" {
		badRequest(c, "year and month must be given together")
		return 0, 0, false
	}
	year, yErr := strconv.Atoi(yearParam)
	month, mErr := strconv.Atoi(monthParam)
	if yErr != nil || mErr != nil {
		badRequest(c, "year and month must be integers")
		return 0, 0, false
	}
	return year, month, true
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

func newBookingResponse(v domain.BookingView) bookingResponse {
	return bookingResponse{
		ID:               v.ID,
		TimeSlotID:       v.TimeSlotID,
		GuestID:          v.GuestID.String(),
		HostID:           v.HostID.String(),
		HostUsername:     v.HostUsername,
		HostDisplayName:  v.HostDisplayName,
		BookingDate:      v.BookingDate.Format(domain.DateLayout),
		StartTime:        v.StartTime.String(),
		EndTime:          v.EndTime.String(),
		Topic:            v.Topic,
		Description:      v.Description,
		AttendanceStatus: string(v.AttendanceStatus),
		CancelledReason:  v.CancelledReason,
		GoogleEventID:    v.GoogleEventID,
		CreatedAt:        v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        v.UpdatedAt.Format(time.RFC3339),
	}
}

func newBookingResponses(views []domain.BookingView) []bookingResponse {
	out := make([]bookingResponse, len(views))
	for i, v := range views {
		out[i] = newBookingResponse(v)
	}
	return out
}
