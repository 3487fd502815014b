package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/slotbooking/internal/domain"
	"github.com/Domenick1991/slotbooking/internal/service/timeslots"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TimeSlotHandler struct {
	service timeslots.TimeSlotUseCase
}

type createTimeSlotRequest struct {
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Weekdays  []int  `json:"weekdays"`
}

type timeSlotResponse struct {
	ID        int64  `json:"id"`
	HostID    string `json:"host_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Weekdays  []int  `json:"weekdays"`
	CreatedAt string `json:"created_at"`
}

func NewTimeSlotHandler(service timeslots.TimeSlotUseCase) *TimeSlotHandler {
	return &TimeSlotHandler{service: service}
}

func (h *TimeSlotHandler) Register(router *gin.RouterGroup) {
	router.POST("/timeslots", h.create)
	router.GET("/timeslots", h.listMine)
	router.GET("/hosts/:hostId/timeslots", h.listForHost)
}

func (h *TimeSlotHandler) create(c *gin.Context) {
	hostID, ok := memberID(c)
	if !ok {
		return
	}

	var req createTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	start, err := domain.ParseTimeOfDay(req.StartTime)
	if err != nil {
		writeError(c, err)
		return
	}
	end, err := domain.ParseTimeOfDay(req.EndTime)
	if err != nil {
		writeError(c, err)
		return
	}

	slot, err := h.service.CreateTimeSlot(c.Request.Context(), timeslots.CreateTimeSlotInput{
		HostID:    hostID,
		StartTime: start,
		EndTime:   end,
		Weekdays:  req.Weekdays,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTimeSlotResponse(*slot))
}

func (h *TimeSlotHandler) listMine(c *gin.Context) {
	hostID, ok := memberID(c)
	if !ok {
		return
	}
	slots, err := h.service.ListMyTimeSlots(c.Request.Context(), hostID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTimeSlotResponses(slots))
}

func (h *TimeSlotHandler) listForHost(c *gin.Context) {
	hostID, err := uuid.Parse(c.Param("hostId"))
	if err != nil {
		badRequest(c, "invalid host id")
		return
	}
	slots, err := h.service.ListTimeSlotsForHost(c.Request.Context(), hostID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTimeSlotResponses(slots))
}

func newTimeSlotResponse(s domain.TimeSlot) timeSlotResponse {
	return timeSlotResponse{
		ID:        s.ID,
		HostID:    s.HostID.String(),
		StartTime: s.StartTime.String(),
		EndTime:   s.EndTime.String(),
		Weekdays:  s.Weekdays.Days(),
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
	}
}

func newTimeSlotResponses(slots []domain.TimeSlot) []timeSlotResponse {
	out := make([]timeSlotResponse, len(slots))
	for i, s := range slots {
		out[i] = newTimeSlotResponse(s)
	}
	return out
}
