package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/planner/internal/model"
	"github.com/dukerupert/planner/internal/recurrence"
	"github.com/dukerupert/planner/internal/state"
)

// Planner is the state the API reads and mutates. Changes reach
// websocket clients through the container's listeners, so handlers do
// not broadcast.
type Planner interface {
	Snapshot() model.Snapshot
	Dispatch(a state.Action) (model.Snapshot, error)
	Now() time.Time
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIDParam(r *http.Request) (int64, error) {
	return parsePathInt(r, "id")
}

func parsePathInt(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// dispatch applies a and writes the error response when it fails. It
// reports whether the caller should continue.
func dispatch(w http.ResponseWriter, p Planner, logger *slog.Logger, a state.Action, what string) (model.Snapshot, bool) {
	snap, err := p.Dispatch(a)
	if err == nil {
		return snap, true
	}
	switch {
	case errors.Is(err, state.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, state.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error(what, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to "+what)
	}
	return model.Snapshot{}, false
}

// validDate reports whether s is a YYYY-MM-DD date, or blank when optional.
func validDate(s string, optional bool) bool {
	if s == "" {
		return optional
	}
	_, err := recurrence.ParseDate(s, time.UTC)
	return err == nil
}

func validClock(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}
