package handler

import (
	"net/http"
	"slices"
	"testing"

	"github.com/dukerupert/planner/internal/model"
)

func TestClassCreateValidation(t *testing.T) {
	h := NewScheduleHandler(testPlanner(t), testLogger)

	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"weekly", map[string]any{"name": "Redes", "time": "07:00", "day": "Miércoles"}, http.StatusCreated},
		{"one off", map[string]any{"name": "Taller", "date": "2026-02-07"}, http.StatusCreated},
		{"no day or date", map[string]any{"name": "Redes"}, http.StatusBadRequest},
		{"unknown day", map[string]any{"name": "Redes", "day": "funday"}, http.StatusBadRequest},
		{"bad date", map[string]any{"name": "Redes", "date": "7 feb"}, http.StatusBadRequest},
		{"missing name", map[string]any{"day": "monday"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, "POST /api/classes", h.CreateClass, "POST", "/api/classes", tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
		})
	}
}

func TestClassCreateCanonicalizesDay(t *testing.T) {
	h := NewScheduleHandler(testPlanner(t), testLogger)
	rec := do(t, "POST /api/classes", h.CreateClass, "POST", "/api/classes", map[string]any{"name": "Redes", "day": "Miércoles"})
	got := decode[model.ClassSession](t, rec)
	if got.ID != 4 || got.Day != "wednesday" {
		t.Errorf("class = %+v", got)
	}
}

func TestClassUpdateToggleDelete(t *testing.T) {
	h := NewScheduleHandler(testPlanner(t), testLogger)

	rec := do(t, "PUT /api/classes/{id}", h.UpdateClass, "PUT", "/api/classes/1", map[string]any{"name": "Web II", "day": "tuesday", "time": "09:00"})
	if got := decode[model.ClassSession](t, rec); got.Name != "Web II" || got.Day != "tuesday" {
		t.Errorf("updated = %+v", got)
	}

	rec = do(t, "POST /api/classes/{id}/toggle", h.ToggleClass, "POST", "/api/classes/1/toggle", nil)
	if got := decode[model.ClassSession](t, rec); !got.Completed {
		t.Error("class should be completed")
	}

	rec = do(t, "DELETE /api/classes/{id}", h.DeleteClass, "DELETE", "/api/classes/9", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestExamLifecycle(t *testing.T) {
	h := NewScheduleHandler(testPlanner(t), testLogger)

	rec := do(t, "POST /api/exams", h.CreateExam, "POST", "/api/exams", map[string]any{"subject": "Química", "date": "2026-02-09", "time": "10:00", "duration": "2 horas"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	exam := decode[model.Exam](t, rec)
	if exam.ID != 3 {
		t.Errorf("id = %d, want 3", exam.ID)
	}

	rec = do(t, "POST /api/exams", h.CreateExam, "POST", "/api/exams", map[string]any{"subject": "Química"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing date status = %d, want 400", rec.Code)
	}

	rec = do(t, "PUT /api/exams/{id}", h.UpdateExam, "PUT", "/api/exams/3", map[string]any{"subject": "Química Orgánica", "date": "2026-02-10"})
	if got := decode[model.Exam](t, rec); got.Subject != "Química Orgánica" || got.Date != "2026-02-10" {
		t.Errorf("updated = %+v", got)
	}

	rec = do(t, "POST /api/exams/{id}/toggle", h.ToggleExam, "POST", "/api/exams/3/toggle", nil)
	if got := decode[model.Exam](t, rec); !got.Completed {
		t.Error("exam should be completed")
	}

	rec = do(t, "DELETE /api/exams/{id}", h.DeleteExam, "DELETE", "/api/exams/3", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	rec = do(t, "GET /api/exams", h.ListExams, "GET", "/api/exams", nil)
	if got := decode[[]model.Exam](t, rec); len(got) != 2 {
		t.Errorf("exams = %d, want 2", len(got))
	}
}

func TestClassOccurrences(t *testing.T) {
	h := NewScheduleHandler(testPlanner(t), testLogger)

	tests := []struct {
		name   string
		target string
		status int
		dates  []string
	}{
		{"current week", "/api/classes/1/occurrences", http.StatusOK, []string{"2026-02-02"}},
		{"month", "/api/classes/1/occurrences?from=2026-02-01&to=2026-02-28", http.StatusOK,
			[]string{"2026-02-02", "2026-02-09", "2026-02-16", "2026-02-23"}},
		{"no meetings", "/api/classes/1/occurrences?from=2026-02-03&to=2026-02-08", http.StatusOK, []string{}},
		{"reversed", "/api/classes/1/occurrences?from=2026-02-28&to=2026-02-01", http.StatusBadRequest, nil},
		{"too long", "/api/classes/1/occurrences?from=2026-01-01&to=2028-01-01", http.StatusBadRequest, nil},
		{"bad from", "/api/classes/1/occurrences?from=feb", http.StatusBadRequest, nil},
		{"unknown class", "/api/classes/9/occurrences", http.StatusNotFound, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, "GET /api/classes/{id}/occurrences", h.ClassOccurrences, "GET", tt.target, nil)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
			if tt.dates == nil {
				return
			}
			got := decode[struct {
				Dates []string `json:"dates"`
			}](t, rec)
			if !slices.Equal(got.Dates, tt.dates) {
				t.Errorf("dates = %v, want %v", got.Dates, tt.dates)
			}
		})
	}
}
