package handler

import (
	"net/http"
	"testing"

	"github.com/dukerupert/planner/internal/model"
)

func TestSettingsUpdate(t *testing.T) {
	p := testPlanner(t)
	h := NewSettingsHandler(p, testLogger)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"dark english", map[string]any{"theme": "dark", "language": "en", "notifications": map[string]any{"enabled": true, "assignment_reminder": 24, "exam_reminder": 48}}, http.StatusOK},
		{"bad theme", map[string]any{"theme": "neon"}, http.StatusBadRequest},
		{"bad language", map[string]any{"language": "fr"}, http.StatusBadRequest},
		{"negative reminder", map[string]any{"notifications": map[string]any{"assignment_reminder": -1}}, http.StatusBadRequest},
		{"malformed", "{", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, "PUT /api/settings", h.Update, "PUT", "/api/settings", tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
		})
	}

	got := p.Snapshot().Settings
	if got.Theme != "dark" || got.Language != "en" {
		t.Errorf("settings = %+v", got)
	}
}

func TestSetUserTypeRejectsUnknown(t *testing.T) {
	h := NewSettingsHandler(testPlanner(t), testLogger)
	rec := do(t, "PUT /api/user/type", h.SetUserType, "PUT", "/api/user/type", map[string]any{"type": "admin"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRecordSubmission(t *testing.T) {
	p := testPlanner(t)
	h := NewSettingsHandler(p, testLogger)

	rec := do(t, "POST /api/submissions", h.RecordSubmission, "POST", "/api/submissions", map[string]any{"student": "Ana", "task_id": 1, "completed": true})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	sub := decode[model.Submission](t, rec)
	if sub.CompletedAt == nil || !sub.CompletedAt.Equal(now) {
		t.Errorf("completed at = %v, want %v", sub.CompletedAt, now)
	}

	rec = do(t, "POST /api/submissions", h.RecordSubmission, "POST", "/api/submissions", map[string]any{"student": " ", "task_id": 1})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank student status = %d, want 400", rec.Code)
	}
}
