package recurrence

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"

	// EndOfDay is the time of day assumed for a due date with no time.
	EndOfDay = "23:59"
)

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day, using
// a's location for both.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// WeekBounds returns the Monday 00:00 and Sunday 23:59:59.999999999 of
// the ISO week containing ref shifted by offsetWeeks weeks.
func WeekBounds(ref time.Time, offsetWeeks int) (time.Time, time.Time) {
	start := weekStart(ref.AddDate(0, 0, 7*offsetWeeks))
	end := start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return start, end
}

func weekStart(t time.Time) time.Time {
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday
	}
	monday := t.AddDate(0, 0, -offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
}

// WeekdayName returns the canonical lowercase English weekday of t.
func WeekdayName(t time.Time) string {
	return canonicalNames[t.Weekday()]
}

// ParseDate parses a YYYY-MM-DD calendar date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	// Tolerate full timestamps; only the calendar part is used.
	if i := strings.IndexByte(s, 'T'); i > 0 {
		s = s[:i]
	}
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// ParseDateTime combines a calendar date and an optional HH:MM time of
// day. A blank time means end of day.
func ParseDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	d, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	clock = strings.TrimSpace(clock)
	if clock == "" {
		clock = EndOfDay
	}
	if len(clock) > 5 {
		clock = clock[:5]
	}
	t, err := time.ParseInLocation(dateTimeLayout, d.Format(dateLayout)+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", clock, err)
	}
	return t, nil
}

// DaysBetween returns the number of calendar days from a to b, counting
// midnights rather than elapsed 24h periods.
func DaysBetween(a, b time.Time) int {
	a = StartOfDay(a)
	b = StartOfDay(b.In(a.Location()))
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}
