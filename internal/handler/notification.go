package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/planner/internal/model"
	"github.com/dukerupert/planner/internal/notify"
	"github.com/dukerupert/planner/internal/state"
)

type NotificationHandler struct {
	planner Planner
	logger  *slog.Logger
}

func NewNotificationHandler(p Planner, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{planner: p, logger: logger}
}

// List handles GET /api/notifications, newest first. ?unread=true
// filters to unread ones.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	all := h.planner.Snapshot().Notifications
	if r.URL.Query().Get("unread") != "true" {
		writeJSON(w, http.StatusOK, all)
		return
	}
	unread := []model.Notification{}
	for _, n := range all {
		if !n.Read {
			unread = append(unread, n)
		}
	}
	writeJSON(w, http.StatusOK, unread)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if _, ok := dispatch(w, h.planner, h.logger, state.MarkNotificationRead{ID: r.PathValue("id")}, "mark notification read"); !ok {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if _, ok := dispatch(w, h.planner, h.logger, state.MarkAllNotificationsRead{}, "mark notifications read"); !ok {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := dispatch(w, h.planner, h.logger, state.DeleteNotification{ID: r.PathValue("id")}, "delete notification"); !ok {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type announceRequest struct {
	Title    string         `json:"title"`
	Course   string         `json:"course"`
	Priority model.Priority `json:"priority"`
}

// Announce handles POST /api/notifications/announce, the teacher's
// broadcast to students.
func (h *NotificationHandler) Announce(w http.ResponseWriter, r *http.Request) {
	snap := h.planner.Snapshot()
	if snap.User.Type != model.UserTeacher {
		writeError(w, http.StatusForbidden, "only teachers can send announcements")
		return
	}

	var req announceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Priority != "" && !req.Priority.Valid() {
		writeError(w, http.StatusBadRequest, "priority must be high, medium, or low")
		return
	}

	n := notify.Announcement(req.Title, req.Course, req.Priority, h.planner.Now())
	if _, ok := dispatch(w, h.planner, h.logger, state.AddNotifications{Notifications: []model.Notification{n}}, "create announcement"); !ok {
		return
	}
	writeJSON(w, http.StatusCreated, n)
}
