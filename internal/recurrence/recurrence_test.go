package recurrence

import (
	"testing"
	"time"

	"github.com/dukerupert/planner/internal/model"
)

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		b    time.Time
		want bool
	}{
		{time.Date(2026, 2, 5, 23, 59, 0, 0, time.UTC), true},
		{time.Date(2026, 2, 6, 0, 0, 0, 0, time.UTC), false},
		{time.Date(2025, 2, 5, 12, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		if got := SameDay(a, tt.b); got != tt.want {
			t.Errorf("SameDay(%v, %v) = %v, want %v", a, tt.b, got, tt.want)
		}
	}
}

func TestWeekBounds(t *testing.T) {
	// Thursday
	ref := time.Date(2026, 2, 5, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		offset    int
		wantStart time.Time
	}{
		{0, time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)},
		{-1, time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC)},
		{1, time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		start, end := WeekBounds(ref, tt.offset)
		if !start.Equal(tt.wantStart) {
			t.Errorf("offset %d: start = %v, want %v", tt.offset, start, tt.wantStart)
		}
		if end.Weekday() != time.Sunday {
			t.Errorf("offset %d: end weekday = %v, want Sunday", tt.offset, end.Weekday())
		}
		if got := end.Sub(start); got != 7*24*time.Hour-time.Nanosecond {
			t.Errorf("offset %d: span = %v", tt.offset, got)
		}
	}
}

func TestWeekBoundsSunday(t *testing.T) {
	sunday := time.Date(2026, 2, 8, 10, 0, 0, 0, time.UTC)
	start, _ := WeekBounds(sunday, 0)
	want := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Errorf("start = %v, want %v", start, want)
	}
}

func TestWeekdayName(t *testing.T) {
	d := time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC)
	if got := WeekdayName(d); got != "wednesday" {
		t.Errorf("WeekdayName = %q, want %q", got, "wednesday")
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"monday", "monday"},
		{"Lunes", "monday"},
		{"miércoles", "wednesday"},
		{"miercoles", "wednesday"},
		{"MIÉRCOLES", "wednesday"},
		{"sábado", "saturday"},
		{"TH", "thursday"},
		{" viernes ", "friday"},
		{"funday", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Canonical(tt.in); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDays(t *testing.T) {
	days, err := ParseDays("lunes, WE,friday")
	if err != nil {
		t.Fatalf("ParseDays error: %v", err)
	}
	want := []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	if len(days) != len(want) {
		t.Fatalf("len = %d, want %d", len(days), len(want))
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("days[%d] = %v, want %v", i, days[i], want[i])
		}
	}

	if _, err := ParseDays("monday,someday"); err == nil {
		t.Error("expected error for unknown day")
	}
}

func TestParseDateTime(t *testing.T) {
	got, err := ParseDateTime("2026-02-05", "", time.UTC)
	if err != nil {
		t.Fatalf("ParseDateTime error: %v", err)
	}
	want := time.Date(2026, 2, 5, 23, 59, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	got, err = ParseDateTime("2026-02-05", "08:30", time.UTC)
	if err != nil {
		t.Fatalf("ParseDateTime error: %v", err)
	}
	want = time.Date(2026, 2, 5, 8, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	for _, bad := range []string{"", "05/02/2026", "2026-13-01"} {
		if _, err := ParseDateTime(bad, "10:00", time.UTC); err == nil {
			t.Errorf("ParseDateTime(%q) should fail", bad)
		}
	}
	if _, err := ParseDateTime("2026-02-05", "25:00", time.UTC); err == nil {
		t.Error("expected error for invalid clock")
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 2, 5, 23, 0, 0, 0, time.UTC)
	b := time.Date(2026, 2, 6, 1, 0, 0, 0, time.UTC)
	if got := DaysBetween(a, b); got != 1 {
		t.Errorf("DaysBetween = %d, want 1", got)
	}
	if got := DaysBetween(b, a); got != -1 {
		t.Errorf("DaysBetween reversed = %d, want -1", got)
	}
}

func TestOccursOnWeekday(t *testing.T) {
	monday := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	tests := []struct {
		name    string
		session model.ClassSession
		date    time.Time
		want    bool
	}{
		{"english", model.ClassSession{Day: "monday"}, monday, true},
		{"spanish", model.ClassSession{Day: "lunes"}, monday, true},
		{"wrong day", model.ClassSession{Day: "lunes"}, tuesday, false},
		{"list", model.ClassSession{Day: "MO,TU"}, tuesday, true},
		{"unknown", model.ClassSession{Day: "someday"}, monday, false},
		{"neither", model.ClassSession{}, monday, false},
	}
	for _, tt := range tests {
		if got := OccursOn(tt.session, tt.date); got != tt.want {
			t.Errorf("%s: OccursOn = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestOccursOnDatePrecedence(t *testing.T) {
	// Date is authoritative even when Day names another weekday.
	c := model.ClassSession{Day: "friday", Date: "2026-02-03"}
	tuesday := time.Date(2026, 2, 3, 14, 0, 0, 0, time.UTC)
	friday := time.Date(2026, 2, 6, 14, 0, 0, 0, time.UTC)

	if !OccursOn(c, tuesday) {
		t.Error("expected dated session to occur on its date")
	}
	if OccursOn(c, friday) {
		t.Error("dated session should ignore day field")
	}

	bad := model.ClassSession{Date: "not-a-date", Day: "tuesday"}
	if OccursOn(bad, tuesday) {
		t.Error("malformed date should never occur")
	}
}

func TestOccurrences(t *testing.T) {
	c := model.ClassSession{Day: "lunes,miércoles"}
	start := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 15, 23, 59, 0, 0, time.UTC)

	occ := Occurrences(c, start, end)
	if len(occ) != 4 {
		t.Fatalf("occurrences = %d, want 4", len(occ))
	}
	want := []int{2, 4, 9, 11}
	for i, d := range occ {
		if d.Day() != want[i] {
			t.Errorf("occ[%d] = %v, want day %d", i, d, want[i])
		}
	}
}

func TestLocalizedName(t *testing.T) {
	if got := LocalizedName(time.Wednesday, "es"); got != "miércoles" {
		t.Errorf("es = %q", got)
	}
	if got := LocalizedName(time.Wednesday, "fr"); got != "wednesday" {
		t.Errorf("fallback = %q", got)
	}
}
