package models

import (
	"fmt"
	"strings"
	"time"
)

// Weekday names a day within a scheduling week. Weeks are anchored on Sunday,
// so the canonical ordering runs sunday..saturday.
type Weekday string

const (
	Sunday    Weekday = "sunday"
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
)

// WeekDays lists all days in week order.
var WeekDays = []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

var weekdayIndex = map[Weekday]int{
	Sunday: 0, Monday: 1, Tuesday: 2, Wednesday: 3, Thursday: 4, Friday: 5, Saturday: 6,
}

// Valid reports whether the weekday is one of the seven canonical names.
func (d Weekday) Valid() bool {
	_, ok := weekdayIndex[d]
	return ok
}

// Index returns the day's offset from the Sunday anchor (-1 when invalid).
func (d Weekday) Index() int {
	if idx, ok := weekdayIndex[d]; ok {
		return idx
	}
	return -1
}

// ParseWeekday normalises a raw day name into a Weekday.
func ParseWeekday(raw string) (Weekday, error) {
	d := Weekday(strings.ToLower(strings.TrimSpace(raw)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown day of week %q", raw)
	}
	return d, nil
}

// WeekStartLayout is the wire format for week keys.
const WeekStartLayout = "2006-01-02"

// ParseWeekStart validates a week key: an ISO date that falls on a Sunday.
func ParseWeekStart(raw string) (time.Time, error) {
	t, err := time.Parse(WeekStartLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("week start must be YYYY-MM-DD: %w", err)
	}
	if t.Weekday() != time.Sunday {
		return time.Time{}, fmt.Errorf("week start %s is not a Sunday", raw)
	}
	return t, nil
}

// DateForDay resolves a weekday to its calendar date within the given week.
func DateForDay(weekStart time.Time, day Weekday) time.Time {
	return weekStart.AddDate(0, 0, day.Index())
}
