// Package schedule computes the weekly promotion deadline and renders it for humans.
package schedule

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // runners and slim containers often ship without a zoneinfo database
)

// ExpiryLayout renders e.g. "March 6, 2025 at 8:00am PST".
const ExpiryLayout = "January 2, 2006 at 3:04pm MST"

// DateLayout is the ISO date used for ledger bookkeeping.
const DateLayout = "2006-01-02"

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM" (24h).
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return Clock{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Reached reports whether the wall-clock time of t is at or past c.
func (c Clock) Reached(t time.Time) bool {
	if t.Hour() != c.Hour {
		return t.Hour() > c.Hour
	}
	if t.Minute() != c.Minute {
		return t.Minute() > c.Minute
	}
	return true
}

// ParseWeekday accepts full or three-letter English day names, case-insensitive.
func ParseWeekday(s string) (time.Weekday, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if needle == name || (len(needle) == 3 && strings.HasPrefix(name, needle)) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid weekday %q", s)
}

// NextOccurrence returns the next instant strictly after ref that falls on weekday
// at the given clock time in loc. A ref exactly on the target moment yields the
// same moment one week later.
func NextOccurrence(weekday time.Weekday, at Clock, loc *time.Location, ref time.Time) time.Time {
	local := ref.In(loc)
	daysAhead := (int(weekday) - int(local.Weekday()) + 7) % 7

	y, m, d := local.Date()
	next := time.Date(y, m, d+daysAhead, at.Hour, at.Minute, 0, 0, loc)
	if daysAhead == 0 && !next.After(ref) {
		next = time.Date(y, m, d+7, at.Hour, at.Minute, 0, 0, loc)
	}
	return next
}

// FormatExpiry renders t in the display timezone.
func FormatExpiry(t time.Time, display *time.Location) string {
	return t.In(display).Format(ExpiryLayout)
}

// DateKey returns the calendar date of t in loc as YYYY-MM-DD.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}
