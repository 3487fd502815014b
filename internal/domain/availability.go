package domain

import "time"

// TimeSlotsOverlap reports whether a and b share a weekday and their
// half-open time ranges intersect. Touching ranges do not overlap.
func TimeSlotsOverlap(a, b TimeSlot) bool {
	return a.StartTime < b.EndTime &&
		a.EndTime > b.StartTime &&
		a.Weekdays.Intersects(b.Weekdays)
}

// WeekdayAllowed reports whether date falls on one of the slot's weekdays.
func WeekdayAllowed(slot TimeSlot, date time.Time) bool {
	return slot.Weekdays.Contains(WeekdayOf(date))
}
