package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/planner/internal/model"
	"github.com/dukerupert/planner/internal/recurrence"
	"github.com/dukerupert/planner/internal/state"
)

// ScheduleHandler serves classes and exams.
type ScheduleHandler struct {
	planner Planner
	logger  *slog.Logger
}

func NewScheduleHandler(p Planner, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{planner: p, logger: logger}
}

type classRequest struct {
	Name      string `json:"name"`
	Time      string `json:"time"`
	Room      string `json:"room"`
	Professor string `json:"professor"`
	Day       string `json:"day"`
	Date      string `json:"date"`
}

func (req *classRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	switch {
	case req.Name == "":
		return "name is required"
	case req.Day == "" && req.Date == "":
		return "day or date is required"
	case !validDate(req.Date, true):
		return "date must be YYYY-MM-DD"
	case !validClock(req.Time):
		return "time must be HH:MM"
	}
	if req.Day != "" {
		if _, ok := recurrence.ParseWeekday(req.Day); !ok {
			return "unknown day " + req.Day
		}
		req.Day = recurrence.Canonical(req.Day)
	}
	return ""
}

func (req classRequest) class(id int64) model.ClassSession {
	return model.ClassSession{
		ID:        id,
		Name:      req.Name,
		Time:      req.Time,
		Room:      req.Room,
		Professor: req.Professor,
		Day:       req.Day,
		Date:      req.Date,
	}
}

func (h *ScheduleHandler) ListClasses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.planner.Snapshot().Classes)
}

func (h *ScheduleHandler) CreateClass(w http.ResponseWriter, r *http.Request) {
	var req classRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	snap, ok := dispatch(w, h.planner, h.logger, state.AddClass{Class: req.class(0)}, "create class")
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, snap.Classes[len(snap.Classes)-1])
}

func (h *ScheduleHandler) UpdateClass(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req classRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	snap, ok := dispatch(w, h.planner, h.logger, state.UpdateClass{Class: req.class(id)}, "update class")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, findClass(snap.Classes, id))
}

func (h *ScheduleHandler) DeleteClass(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if _, ok := dispatch(w, h.planner, h.logger, state.DeleteClass{ID: id}, "delete class"); !ok {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ScheduleHandler) ToggleClass(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	snap, ok := dispatch(w, h.planner, h.logger, state.ToggleClass{ID: id}, "toggle class")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, findClass(snap.Classes, id))
}

// maxOccurrenceSpan bounds the range ClassOccurrences will expand.
const maxOccurrenceSpan = 366 * 24 * time.Hour

// ClassOccurrences lists the dates a class meets between ?from and ?to,
// both YYYY-MM-DD and inclusive. The current week is used when they are
// omitted.
func (h *ScheduleHandler) ClassOccurrences(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	now := h.planner.Now()
	from, to := recurrence.WeekBounds(now, 0)
	if q := r.URL.Query().Get("from"); q != "" {
		if from, err = recurrence.ParseDate(q, now.Location()); err != nil {
			writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
	}
	if q := r.URL.Query().Get("to"); q != "" {
		if to, err = recurrence.ParseDate(q, now.Location()); err != nil {
			writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return
		}
	}
	if to.Before(from) || to.Sub(from) > maxOccurrenceSpan {
		writeError(w, http.StatusBadRequest, "to must follow from by at most a year")
		return
	}

	var class *model.ClassSession
	for _, c := range h.planner.Snapshot().Classes {
		if c.ID == id {
			class = &c
			break
		}
	}
	if class == nil {
		writeError(w, http.StatusNotFound, "class not found")
		return
	}

	dates := []string{}
	for _, d := range recurrence.Occurrences(*class, from, to) {
		dates = append(dates, d.Format(time.DateOnly))
	}
	writeJSON(w, http.StatusOK, map[string]any{"class": class, "dates": dates})
}

func findClass(classes []model.ClassSession, id int64) model.ClassSession {
	for _, c := range classes {
		if c.ID == id {
			return c
		}
	}
	return model.ClassSession{}
}

type examRequest struct {
	Subject  string `json:"subject"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Duration string `json:"duration"`
	Room     string `json:"room"`
}

func (req *examRequest) validate() string {
	req.Subject = strings.TrimSpace(req.Subject)
	switch {
	case req.Subject == "":
		return "subject is required"
	case !validDate(req.Date, false):
		return "date must be YYYY-MM-DD"
	case !validClock(req.Time):
		return "time must be HH:MM"
	}
	return ""
}

func (req examRequest) exam(id int64) model.Exam {
	return model.Exam{
		ID:       id,
		Subject:  req.Subject,
		Date:     req.Date,
		Time:     req.Time,
		Duration: req.Duration,
		Room:     req.Room,
	}
}

func (h *ScheduleHandler) ListExams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.planner.Snapshot().Exams)
}

func (h *ScheduleHandler) CreateExam(w http.ResponseWriter, r *http.Request) {
	var req examRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	snap, ok := dispatch(w, h.planner, h.logger, state.AddExam{Exam: req.exam(0)}, "create exam")
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, snap.Exams[len(snap.Exams)-1])
}

func (h *ScheduleHandler) UpdateExam(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req examRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	snap, ok := dispatch(w, h.planner, h.logger, state.UpdateExam{Exam: req.exam(id)}, "update exam")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, findExam(snap.Exams, id))
}

func (h *ScheduleHandler) DeleteExam(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if _, ok := dispatch(w, h.planner, h.logger, state.DeleteExam{ID: id}, "delete exam"); !ok {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ScheduleHandler) ToggleExam(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	snap, ok := dispatch(w, h.planner, h.logger, state.ToggleExam{ID: id}, "toggle exam")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, findExam(snap.Exams, id))
}

func findExam(exams []model.Exam, id int64) model.Exam {
	for _, e := range exams {
		if e.ID == id {
			return e
		}
	}
	return model.Exam{}
}
