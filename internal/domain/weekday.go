package domain

import (
	"fmt"
	"time"
)

// WeekdaySet is a set of Sunday-based weekday codes: 0=Sunday ... 6=Saturday.
type WeekdaySet uint8

func NewWeekdaySet(days ...int) (WeekdaySet, error) {
	var s WeekdaySet
	for _, d := range days {
		if d < 0 || d > 6 {
			return 0, validationError(fmt.Sprintf("invalid weekday %d", d))
		}
		s |= 1 << uint(d)
	}
	return s, nil
}

func (s WeekdaySet) Contains(day int) bool {
	if day < 0 || day > 6 {
		return false
	}
	return s&(1<<uint(day)) != 0
}

func (s WeekdaySet) Intersects(other WeekdaySet) bool {
	return s&other != 0
}

func (s WeekdaySet) IsEmpty() bool {
	return s == 0
}

// Days returns the codes in ascending order.
func (s WeekdaySet) Days() []int {
	days := make([]int, 0, 7)
	for d := 0; d <= 6; d++ {
		if s.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

// WeekdayOf returns the Sunday-based code of the date's day of week.
// ISO numbering (Monday=1 ... Sunday=7) maps onto it as iso % 7, which is
// exactly what time.Weekday already encodes.
func WeekdayOf(date time.Time) int {
	return int(date.Weekday())
}
