package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/dukerupert/planner/internal/backup"
	"github.com/dukerupert/planner/internal/handler"
	"github.com/dukerupert/planner/internal/middleware"
	"github.com/dukerupert/planner/internal/push"
	"github.com/dukerupert/planner/internal/store"
	ws "github.com/dukerupert/planner/internal/websocket"
)

const (
	// sync and announcements are limited per client address
	rateLimit  = 10
	rateWindow = time.Minute
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	taskH         *handler.TaskHandler
	scheduleH     *handler.ScheduleHandler
	viewH         *handler.ViewHandler
	notificationH *handler.NotificationHandler
	challengeH    *handler.ChallengeHandler
	settingsH     *handler.SettingsHandler
	syncH         *handler.SyncHandler
	pushH         *handler.PushHandler
	backupH       *handler.BackupHandler
	rateLimiter   *middleware.RateLimiter
	origins       []string
	logger        *slog.Logger
}

// New wires the API. pushSvc and backupMgr may be nil, in which case
// their routes are not registered.
func New(db *sql.DB, planner handler.Planner, hub *ws.Hub, syncer handler.Syncer, backupMgr *backup.Manager, pushSvc *push.Service, logger *slog.Logger) *Server {
	s := &Server{
		db:            db,
		hub:           hub,
		taskH:         handler.NewTaskHandler(planner, logger.With("component", "task")),
		scheduleH:     handler.NewScheduleHandler(planner, logger.With("component", "schedule")),
		viewH:         handler.NewViewHandler(planner),
		notificationH: handler.NewNotificationHandler(planner, logger.With("component", "notification")),
		challengeH:    handler.NewChallengeHandler(planner, logger.With("component", "challenge")),
		settingsH:     handler.NewSettingsHandler(planner, logger.With("component", "settings")),
		syncH:         handler.NewSyncHandler(syncer, store.NewSyncRunStore(db), logger.With("component", "sync_handler")),
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}

	if pushSvc != nil {
		s.pushH = handler.NewPushHandler(store.NewPushStore(db), pushSvc, pushSvc.VAPIDPublicKey(), logger.With("component", "push_handler"))
	}
	if backupMgr != nil {
		s.backupH = handler.NewBackupHandler(backupMgr, store.NewBackupStore(db), logger.With("component", "backup_handler"))
	}
	return s
}

// AllowOrigins enables CORS for the given browser origins.
func (s *Server) AllowOrigins(origins ...string) {
	s.origins = origins
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Tasks
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("POST /api/tasks/{id}/toggle", s.taskH.Toggle)
	mux.HandleFunc("PUT /api/tasks/{id}/priority", s.taskH.Lock)
	mux.HandleFunc("DELETE /api/tasks/{id}/priority", s.taskH.Unlock)

	// Subtasks
	mux.HandleFunc("POST /api/tasks/{id}/subtasks", s.taskH.CreateSubtask)
	mux.HandleFunc("PUT /api/tasks/{id}/subtasks/{subtask_id}", s.taskH.UpdateSubtask)
	mux.HandleFunc("DELETE /api/tasks/{id}/subtasks/{subtask_id}", s.taskH.DeleteSubtask)
	mux.HandleFunc("POST /api/tasks/{id}/subtasks/{subtask_id}/toggle", s.taskH.ToggleSubtask)

	// Classes and exams
	mux.HandleFunc("GET /api/classes", s.scheduleH.ListClasses)
	mux.HandleFunc("POST /api/classes", s.scheduleH.CreateClass)
	mux.HandleFunc("PUT /api/classes/{id}", s.scheduleH.UpdateClass)
	mux.HandleFunc("DELETE /api/classes/{id}", s.scheduleH.DeleteClass)
	mux.HandleFunc("POST /api/classes/{id}/toggle", s.scheduleH.ToggleClass)
	mux.HandleFunc("GET /api/classes/{id}/occurrences", s.scheduleH.ClassOccurrences)
	mux.HandleFunc("GET /api/exams", s.scheduleH.ListExams)
	mux.HandleFunc("POST /api/exams", s.scheduleH.CreateExam)
	mux.HandleFunc("PUT /api/exams/{id}", s.scheduleH.UpdateExam)
	mux.HandleFunc("DELETE /api/exams/{id}", s.scheduleH.DeleteExam)
	mux.HandleFunc("POST /api/exams/{id}/toggle", s.scheduleH.ToggleExam)

	// Derived views
	mux.HandleFunc("GET /api/day", s.viewH.Day)
	mux.HandleFunc("GET /api/week", s.viewH.Week)
	mux.HandleFunc("GET /api/weeks", s.viewH.Weeks)
	mux.HandleFunc("GET /api/report", s.viewH.Report)
	mux.HandleFunc("GET /api/students", s.viewH.Students)

	// Notifications
	mux.HandleFunc("GET /api/notifications", s.notificationH.List)
	mux.HandleFunc("POST /api/notifications/read-all", s.notificationH.MarkAllRead)
	mux.HandleFunc("POST /api/notifications/announce", s.rateLimited(s.notificationH.Announce))
	mux.HandleFunc("POST /api/notifications/{id}/read", s.notificationH.MarkRead)
	mux.HandleFunc("DELETE /api/notifications/{id}", s.notificationH.Delete)

	// Challenges and badges
	mux.HandleFunc("GET /api/challenges", s.challengeH.List)
	mux.HandleFunc("GET /api/challenges/catalog", s.challengeH.Catalog)
	mux.HandleFunc("POST /api/challenges/{id}/join", s.challengeH.Join)
	mux.HandleFunc("GET /api/badges", s.challengeH.Badges)

	// Settings, user and submissions
	mux.HandleFunc("GET /api/settings", s.settingsH.Get)
	mux.HandleFunc("PUT /api/settings", s.settingsH.Update)
	mux.HandleFunc("GET /api/user", s.settingsH.GetUser)
	mux.HandleFunc("PUT /api/user/type", s.settingsH.SetUserType)
	mux.HandleFunc("GET /api/submissions", s.settingsH.ListSubmissions)
	mux.HandleFunc("POST /api/submissions", s.settingsH.RecordSubmission)

	// LMS sync
	mux.HandleFunc("POST /api/sync", s.rateLimited(s.syncH.Run))
	mux.HandleFunc("GET /api/sync/status", s.syncH.Status)
	mux.HandleFunc("GET /api/sync/runs", s.syncH.Runs)

	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
		mux.HandleFunc("POST /api/push/test", s.rateLimited(s.pushH.TestNotification))
	}

	if s.backupH != nil {
		mux.HandleFunc("GET /api/backups", s.backupH.List)
		mux.HandleFunc("POST /api/backups", s.rateLimited(s.backupH.Run))
		mux.HandleFunc("GET /api/backups/status", s.backupH.Status)
		mux.HandleFunc("POST /api/backups/{id}/restore", s.rateLimited(s.backupH.Restore))
		mux.HandleFunc("GET /api/backups/{id}/download", s.backupH.Download)
	}

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.origins))

	var h http.Handler = mux
	if len(s.origins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders: []string{"Content-Type"},
		}).Handler(h)
	}
	return middleware.RequestLogger(s.logger.With("component", "http"))(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok", "clients": s.hub.ClientCount(), "feed_seq": s.hub.Seq(), "dropped": s.hub.Dropped()}
	if err := s.db.PingContext(r.Context()); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		status["status"] = "unavailable"
		json.NewEncoder(w).Encode(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP, rateLimit, rateWindow)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(h).ServeHTTP(w, r)
	}
}
