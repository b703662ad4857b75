package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/planner/internal/model"
	"github.com/dukerupert/planner/internal/state"
)

type SettingsHandler struct {
	planner Planner
	logger  *slog.Logger
}

func NewSettingsHandler(p Planner, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{planner: p, logger: logger}
}

var (
	validThemes    = map[string]bool{"": true, "light": true, "dark": true}
	validLanguages = map[string]bool{"": true, "es": true, "en": true}
)

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.planner.Snapshot().Settings)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.Settings
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !validThemes[req.Theme] {
		writeError(w, http.StatusBadRequest, "theme must be light or dark")
		return
	}
	if !validLanguages[req.Language] {
		writeError(w, http.StatusBadRequest, "language must be es or en")
		return
	}

	snap, ok := dispatch(w, h.planner, h.logger, state.UpdateSettings{Settings: req}, "update settings")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.Settings)
}

func (h *SettingsHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.planner.Snapshot().User)
}

type userTypeRequest struct {
	Type model.UserType `json:"type"`
}

// SetUserType handles PUT /api/user/type, switching between the student
// and teacher views.
func (h *SettingsHandler) SetUserType(w http.ResponseWriter, r *http.Request) {
	var req userTypeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	snap, ok := dispatch(w, h.planner, h.logger, state.SetUserType{Type: req.Type}, "set user type")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.User)
}

func (h *SettingsHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.planner.Snapshot().Submissions)
}

type submissionRequest struct {
	Student   string `json:"student"`
	TaskID    int64  `json:"task_id"`
	Completed bool   `json:"completed"`
}

// RecordSubmission handles POST /api/submissions. A completed submission
// is stamped with the current time.
func (h *SettingsHandler) RecordSubmission(w http.ResponseWriter, r *http.Request) {
	var req submissionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	sub := model.Submission{Student: strings.TrimSpace(req.Student), TaskID: req.TaskID}
	if req.Completed {
		now := h.planner.Now()
		sub.CompletedAt = &now
	}
	if _, ok := dispatch(w, h.planner, h.logger, state.RecordSubmission{Submission: sub}, "record submission"); !ok {
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}
