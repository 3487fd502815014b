package domain

import "fmt"

type AttendanceStatus string

const (
	AttendanceScheduled     AttendanceStatus = "SCHEDULED"
	AttendanceAttended      AttendanceStatus = "ATTENDED"
	AttendanceNoShow        AttendanceStatus = "NO_SHOW"
	AttendanceLate          AttendanceStatus = "LATE"
	AttendanceCancelled     AttendanceStatus = "CANCELLED"
	AttendanceSameDayCancel AttendanceStatus = "SAME_DAY_CANCEL"
)

var allStatuses = []AttendanceStatus{
	AttendanceScheduled,
	AttendanceAttended,
	AttendanceNoShow,
	AttendanceLate,
	AttendanceCancelled,
	AttendanceSameDayCancel,
}

func ParseAttendanceStatus(s string) (AttendanceStatus, error) {
	for _, st := range allStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", validationError(fmt.Sprintf("unknown attendance status %q", s))
}

// CancelledStatuses never block a new booking on the same slot and date.
func CancelledStatuses() []AttendanceStatus {
	return []AttendanceStatus{AttendanceCancelled, AttendanceSameDayCancel}
}

func (s AttendanceStatus) IsCancelled() bool {
	return s == AttendanceCancelled || s == AttendanceSameDayCancel
}

// BlocksRebooking is true for every status that still occupies the slot
// and date, including the terminal ATTENDED, NO_SHOW and LATE.
func (s AttendanceStatus) BlocksRebooking() bool {
	return !s.IsCancelled()
}

func (s AttendanceStatus) IsHostSettable() bool {
	return s == AttendanceAttended || s == AttendanceNoShow || s == AttendanceLate
}

func (s AttendanceStatus) IsCancellable() bool {
	return s == AttendanceScheduled
}

func (s AttendanceStatus) IsModifiable() bool {
	return s == AttendanceScheduled
}
