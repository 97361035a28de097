// Package dateutil holds the calendar helpers used for weekly bucketing.
// Weeks run Sunday through Saturday.
package dateutil

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the calendar-date wire format (YYYY-MM-DD) used by every record
const DateLayout = "2006-01-02"

// ErrInvalidDate indicates a string that is not a calendar date
var ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")

// Week is an inclusive [Start, End] window.
// Start is Sunday 00:00:00.000, End is Saturday 23:59:59.999.
type Week struct {
	Start time.Time
	End   time.Time
}

// WeekOption is one entry of the recent-weeks picker
type WeekOption struct {
	Value string `json:"value"` // weekStart as YYYY-MM-DD
	Label string `json:"label"`
}

// WeekRange returns the Sunday-to-Saturday week containing d, in d's location
func WeekRange(d time.Time) Week {
	offset := int(d.Weekday()) // Sunday = 0
	year, month, day := d.Date()
	loc := d.Location()

	return Week{
		Start: time.Date(year, month, day-offset, 0, 0, 0, 0, loc),
		End:   time.Date(year, month, day-offset+6, 23, 59, 59, int(999*time.Millisecond), loc),
	}
}

// Contains reports whether t falls inside the week, both ends inclusive
func (w Week) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// IsInWeek parses dateString as a calendar date in the week's reference frame and
// reports whether it falls in [weekStart, weekEnd]. Malformed input yields false.
func IsInWeek(dateString string, weekStart, weekEnd time.Time) bool {
	date, err := ParseDateIn(dateString, weekStart.Location())
	if err != nil {
		return false
	}
	return Week{Start: weekStart, End: weekEnd}.Contains(date)
}

// ParseDateIn returns midnight of the calendar date named by value in loc.
// Full RFC 3339 timestamps are accepted too; their UTC calendar date is used.
func ParseDateIn(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidDate
	}

	if t, err := time.Parse(DateLayout, value); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
	}

	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		u := t.UTC()
		return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, loc), nil
	}

	return time.Time{}, ErrInvalidDate
}

// IsDate reports whether value is a well-formed calendar date
func IsDate(value string) bool {
	_, err := time.Parse(DateLayout, strings.TrimSpace(value))
	return err == nil
}

// FormatDate renders t as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// WeekLabel renders the picker label, e.g. "Week of Oct 27, 2024"
func WeekLabel(weekStart time.Time) string {
	return "Week of " + weekStart.Format("Jan 2, 2006")
}

// RecentWeeks returns count weeks, most recent first, starting with the week
// containing now. Each entry steps back exactly seven days. The slice is built
// fresh on every call.
func RecentWeeks(now time.Time, count int) []WeekOption {
	if count <= 0 {
		return []WeekOption{}
	}

	weeks := make([]WeekOption, 0, count)
	current := WeekRange(now).Start
	for i := 0; i < count; i++ {
		weeks = append(weeks, WeekOption{
			Value: FormatDate(current),
			Label: WeekLabel(current),
		})
		current = current.AddDate(0, 0, -7)
	}
	return weeks
}

// WeekOf resolves a YYYY-MM-DD value (normally a picker value) to the week containing it
func WeekOf(value string, loc *time.Location) (Week, error) {
	date, err := ParseDateIn(value, loc)
	if err != nil {
		return Week{}, err
	}
	return WeekRange(date), nil
}
