package domain

import (
	"time"

	"github.com/google/uuid"
)

// TimeSlot is a host's recurring weekly availability window.
type TimeSlot struct {
	ID        int64      `json:"id"`
	HostID    uuid.UUID  `json:"host_id"`
	StartTime TimeOfDay  `json:"start_time"`
	EndTime   TimeOfDay  `json:"end_time"`
	Weekdays  WeekdaySet `json:"weekdays"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewTimeSlot(hostID uuid.UUID, start, end TimeOfDay, weekdays WeekdaySet) (*TimeSlot, error) {
	if hostID == uuid.Nil {
		return nil, validationError("host_id is required")
	}
	if !start.Valid() || !end.Valid() {
		return nil, validationError("start_time and end_time must be within a day")
	}
	if start >= end {
		return nil, validationError("end_time must be after start_time")
	}
	if weekdays.IsEmpty() {
		return nil, validationError("at least one weekday is required")
	}
	return &TimeSlot{
		HostID:    hostID,
		StartTime: start,
		EndTime:   end,
		Weekdays:  weekdays,
	}, nil
}
