package recurrence

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var canonicalNames = map[time.Weekday]string{
	time.Sunday:    "sunday",
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
}

var spanishNames = map[time.Weekday]string{
	time.Sunday:    "domingo",
	time.Monday:    "lunes",
	time.Tuesday:   "martes",
	time.Wednesday: "miércoles",
	time.Thursday:  "jueves",
	time.Friday:    "viernes",
	time.Saturday:  "sábado",
}

// RRULE two-letter codes, accepted as a third spelling.
var dayAbbrev = map[time.Weekday]string{
	time.Sunday:    "su",
	time.Monday:    "mo",
	time.Tuesday:   "tu",
	time.Wednesday: "we",
	time.Thursday:  "th",
	time.Friday:    "fr",
	time.Saturday:  "sa",
}

// dayNames maps every folded spelling to its weekday.
var dayNames = buildDayNames()

func buildDayNames() map[string]time.Weekday {
	m := make(map[string]time.Weekday, 21)
	for _, table := range []map[time.Weekday]string{canonicalNames, spanishNames, dayAbbrev} {
		for wd, name := range table {
			m[fold(name)] = wd
		}
	}
	return m
}

// fold lowercases s and strips diacritics so "Miércoles" and "miercoles"
// compare equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

// ParseWeekday resolves an English, Spanish or RRULE-code weekday name.
func ParseWeekday(name string) (time.Weekday, bool) {
	wd, ok := dayNames[fold(name)]
	return wd, ok
}

// Canonical returns the canonical English token for any accepted
// spelling, or "" if the name is not recognized.
func Canonical(name string) string {
	wd, ok := ParseWeekday(name)
	if !ok {
		return ""
	}
	return canonicalNames[wd]
}

// ParseDays parses a comma-separated weekday list such as "monday,
// miércoles" or "MO,WE".
func ParseDays(s string) ([]time.Weekday, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty day list")
	}
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		wd, ok := ParseWeekday(part)
		if !ok {
			return nil, fmt.Errorf("unknown day: %q", part)
		}
		days = append(days, wd)
	}
	return days, nil
}

// LocalizedName renders a weekday for display. lang is "es" or "en";
// anything else falls back to English.
func LocalizedName(wd time.Weekday, lang string) string {
	if lang == "es" {
		return spanishNames[wd]
	}
	return canonicalNames[wd]
}
