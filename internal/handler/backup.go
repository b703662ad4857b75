package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/planner/internal/backup"
	"github.com/dukerupert/planner/internal/model"
	"github.com/dukerupert/planner/internal/store"
)

type BackupHandler struct {
	manager     *backup.Manager
	backupStore *store.BackupStore
	logger      *slog.Logger
}

func NewBackupHandler(m *backup.Manager, bs *store.BackupStore, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: m, backupStore: bs, logger: logger}
}

func (h *BackupHandler) writeBackupError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, backup.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, backup.ErrNotFound):
		writeError(w, http.StatusNotFound, "backup not found")
	case errors.Is(err, backup.ErrDecrypt):
		writeError(w, http.StatusBadRequest, "wrong passphrase")
	default:
		h.logger.Error(what, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to "+what)
	}
}

func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Status())
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	backups, err := h.backupStore.List(50)
	if err != nil {
		h.logger.Error("list backups", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list backups")
		return
	}
	if backups == nil {
		backups = []model.Backup{}
	}
	writeJSON(w, http.StatusOK, backups)
}

type backupRequest struct {
	Passphrase string `json:"passphrase"`
	// Remember keeps the passphrase in memory for scheduled backups.
	Remember bool `json:"remember"`
}

// Run handles POST /api/backups.
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req backupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Passphrase) < 8 {
		writeError(w, http.StatusBadRequest, "passphrase must be at least 8 characters")
		return
	}

	id, err := h.manager.RunNow(r.Context(), req.Passphrase)
	if err != nil {
		h.writeBackupError(w, err, "run backup")
		return
	}
	if req.Remember {
		h.manager.CacheKey(req.Passphrase)
	}

	record, err := h.backupStore.GetByID(id)
	if err != nil || record == nil {
		writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// Restore handles POST /api/backups/{id}/restore. The planner state is
// replaced in place.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req backupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.manager.Restore(r.Context(), id, req.Passphrase); err != nil {
		h.writeBackupError(w, err, "restore backup")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Download handles GET /api/backups/{id}/download, streaming the
// encrypted file.
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	body, size, err := h.manager.Download(r.Context(), id)
	if err != nil {
		h.writeBackupError(w, err, "download backup")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="planner-backup-`+strconv.FormatInt(id, 10)+`.json.enc"`)
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("stream backup", "id", id, "error", err)
	}
}
