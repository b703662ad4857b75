package recurrence

import (
	"time"

	"github.com/dukerupert/planner/internal/model"
)

// OccursOn reports whether a class session takes place on date's
// calendar day. A dated session matches that day only; otherwise the
// session's weekday list is compared by canonical weekday. Sessions with
// neither a valid date nor a recognized day never occur.
func OccursOn(c model.ClassSession, date time.Time) bool {
	if c.Date != "" {
		d, err := ParseDate(c.Date, date.Location())
		if err != nil {
			return false
		}
		return SameDay(d, date)
	}
	if c.Day == "" {
		return false
	}
	days, err := ParseDays(c.Day)
	if err != nil {
		return false
	}
	for _, wd := range days {
		if wd == date.Weekday() {
			return true
		}
	}
	return false
}

// Occurrences lists the days in [start, end] on which the session meets,
// each at midnight in start's location.
func Occurrences(c model.ClassSession, start, end time.Time) []time.Time {
	var results []time.Time
	end = end.In(start.Location())
	for day := StartOfDay(start); !day.After(end); day = day.AddDate(0, 0, 1) {
		if OccursOn(c, day) {
			results = append(results, day)
		}
	}
	return results
}
