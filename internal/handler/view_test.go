package handler

import (
	"net/http"
	"testing"

	"github.com/dukerupert/planner/internal/aggregate"
)

func TestDayView(t *testing.T) {
	h := NewViewHandler(testPlanner(t))

	rec := do(t, "GET /api/day", h.Day, "GET", "/api/day?date=2026-02-02", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	day := decode[aggregate.Day](t, rec)
	if len(day.Classes) != 3 || day.CompletedCount != 1 || day.TotalCount != 3 {
		t.Errorf("monday = %d classes, %d/%d completed", len(day.Classes), day.CompletedCount, day.TotalCount)
	}

	rec = do(t, "GET /api/day", h.Day, "GET", "/api/day?date=tomorrow", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date status = %d, want 400", rec.Code)
	}
}

func TestWeekView(t *testing.T) {
	h := NewViewHandler(testPlanner(t))

	rec := do(t, "GET /api/week", h.Week, "GET", "/api/week", nil)
	week := decode[aggregate.Week](t, rec)
	if len(week.Days) != 7 {
		t.Fatalf("days = %d, want 7", len(week.Days))
	}
	if week.Days[0].Classes != 3 {
		t.Errorf("monday classes = %d, want 3", week.Days[0].Classes)
	}

	rec = do(t, "GET /api/week", h.Week, "GET", "/api/week?offset=x", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad offset status = %d", rec.Code)
	}
}

func TestWeeksCount(t *testing.T) {
	h := NewViewHandler(testPlanner(t))

	tests := []struct {
		query  string
		status int
		weeks  int
	}{
		{"", http.StatusOK, 4},
		{"?count=1", http.StatusOK, 1},
		{"?count=52", http.StatusOK, 52},
		{"?count=0", http.StatusBadRequest, 0},
		{"?count=53", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		rec := do(t, "GET /api/weeks", h.Weeks, "GET", "/api/weeks"+tt.query, nil)
		if rec.Code != tt.status {
			t.Errorf("%q status = %d, want %d", tt.query, rec.Code, tt.status)
			continue
		}
		if tt.status == http.StatusOK {
			if got := decode[[]aggregate.Week](t, rec); len(got) != tt.weeks {
				t.Errorf("%q weeks = %d, want %d", tt.query, len(got), tt.weeks)
			}
		}
	}
}
