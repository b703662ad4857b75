package handler

import (
	"net/http"
	"strconv"

	"github.com/dukerupert/planner/internal/aggregate"
	"github.com/dukerupert/planner/internal/recurrence"
)

const maxWeeks = 52

// ViewHandler serves the derived day, week and report views. Every view
// is computed from the current snapshot on request.
type ViewHandler struct {
	planner Planner
}

func NewViewHandler(p Planner) *ViewHandler {
	return &ViewHandler{planner: p}
}

// Day handles GET /api/day?date=YYYY-MM-DD, defaulting to today.
func (h *ViewHandler) Day(w http.ResponseWriter, r *http.Request) {
	now := h.planner.Now()
	date := now
	if q := r.URL.Query().Get("date"); q != "" {
		d, err := recurrence.ParseDate(q, now.Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = d
	}
	snap := h.planner.Snapshot()
	writeJSON(w, http.StatusOK, aggregate.ForDay(date, snap.Tasks, snap.Classes, snap.Exams))
}

// Week handles GET /api/week?offset=N.
func (h *ViewHandler) Week(w http.ResponseWriter, r *http.Request) {
	offset, err := intQuery(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "offset must be an integer")
		return
	}
	snap := h.planner.Snapshot()
	writeJSON(w, http.StatusOK, aggregate.ForWeek(snap.Tasks, snap.Classes, snap.Exams, offset, h.planner.Now(), snap.Settings.Language))
}

// Weeks handles GET /api/weeks?count=N, oldest week first.
func (h *ViewHandler) Weeks(w http.ResponseWriter, r *http.Request) {
	count, err := intQuery(r, "count", 4)
	if err != nil || count < 1 || count > maxWeeks {
		writeError(w, http.StatusBadRequest, "count must be between 1 and 52")
		return
	}
	snap := h.planner.Snapshot()
	writeJSON(w, http.StatusOK, aggregate.ForWeeks(snap.Tasks, snap.Classes, snap.Exams, count, h.planner.Now(), snap.Settings.Language))
}

func (h *ViewHandler) Report(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, aggregate.BuildReport(h.planner.Snapshot(), h.planner.Now()))
}

// Students handles GET /api/students, the teacher's per-student summary.
func (h *ViewHandler) Students(w http.ResponseWriter, r *http.Request) {
	snap := h.planner.Snapshot()
	writeJSON(w, http.StatusOK, aggregate.ForStudents(snap.Submissions, snap.Tasks, h.planner.Now().Location()))
}

func intQuery(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
