package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/planner/internal/lms"
	"github.com/dukerupert/planner/internal/model"
	"github.com/dukerupert/planner/internal/store"
)

// Syncer runs the LMS import.
type Syncer interface {
	Run(ctx context.Context) (*lms.Result, error)
	Status() lms.Status
}

type SyncHandler struct {
	syncer   Syncer
	runStore *store.SyncRunStore
	logger   *slog.Logger
}

func NewSyncHandler(s Syncer, runs *store.SyncRunStore, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{syncer: s, runStore: runs, logger: logger}
}

// Run handles POST /api/sync. A sync already in flight answers 409.
func (h *SyncHandler) Run(w http.ResponseWriter, r *http.Request) {
	res, err := h.syncer.Run(r.Context())
	switch {
	case errors.Is(err, lms.ErrSyncInProgress):
		writeError(w, http.StatusConflict, "sync already in progress")
		return
	case errors.Is(err, context.Canceled):
		// client went away; the import still completes in the background
		return
	case err != nil:
		h.logger.Error("sync", "error", err)
		writeError(w, http.StatusBadGateway, "sync failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.syncer.Status())
}

// Runs handles GET /api/sync/runs, the most recent sync attempts.
func (h *SyncHandler) Runs(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", 20)
	if err != nil || limit < 1 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	runs, err := h.runStore.List(limit)
	if err != nil {
		h.logger.Error("list sync runs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list sync runs")
		return
	}
	if runs == nil {
		runs = []model.SyncRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}
