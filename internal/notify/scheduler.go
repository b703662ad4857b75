package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/planner/internal/model"
	"github.com/dukerupert/planner/internal/push"
	"github.com/dukerupert/planner/internal/state"
)

const (
	// DefaultInterval is how often pending alerts are regenerated.
	DefaultInterval = time.Hour

	notifTypeChallenge = "challenge"
	sentRetention      = 30 * 24 * time.Hour
)

// Planner is the state the scheduler reads and updates.
type Planner interface {
	Snapshot() model.Snapshot
	Dispatch(a state.Action) (model.Snapshot, error)
	Now() time.Time
}

// SubscriptionStore lists push targets and remembers which alerts went out.
type SubscriptionStore interface {
	List() ([]model.PushSubscription, error)
	DeleteByEndpoint(endpoint string) error
	WasSent(notifType, refID string) (bool, error)
	RecordSent(notifType, refID string) error
	CleanupSent(before time.Time) error
}

// Scheduler regenerates notifications, re-derives priorities and
// challenge progress, and pushes alerts for urgent items.
type Scheduler struct {
	mu       sync.RWMutex
	planner  Planner
	sender   push.Sender
	subs     SubscriptionStore
	logger   *slog.Logger
	interval time.Duration
	trigger  chan struct{}
	tickMu   sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewScheduler creates a scheduler. sender and subs may be nil when push
// delivery is not configured.
func NewScheduler(p Planner, sender push.Sender, subs SubscriptionStore, logger *slog.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		planner:  p,
		sender:   sender,
		subs:     subs,
		logger:   logger.With("component", "notify"),
		interval: interval,
		trigger:  make(chan struct{}, 1),
	}
}

// Start runs one pass immediately and then one per interval or trigger.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		s.Tick()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick()
			case <-s.trigger:
				s.Tick()
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Trigger requests a pass soon. Requests made while one is pending
// collapse into it.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Affects reports whether an action can change which alerts are due.
func Affects(a state.Action) bool {
	switch a.(type) {
	case state.AddTask, state.UpdateTask, state.DeleteTask, state.ToggleTask,
		state.AddExam, state.UpdateExam, state.DeleteExam, state.ToggleExam,
		state.UpdateSettings, state.ApplySync, nil:
		return true
	}
	return false
}

// Tick runs one pass. Passes never overlap.
func (s *Scheduler) Tick() {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	if _, err := s.planner.Dispatch(state.RefreshPriorities{}); err != nil {
		s.logger.Error("refresh priorities", "error", err)
		return
	}

	before := s.planner.Snapshot()
	now := s.planner.Now()
	created := Generate(before.Tasks, before.Exams, before.Notifications, now, RemindersFrom(before.Settings.Notifications))
	if len(created) > 0 {
		if _, err := s.planner.Dispatch(state.AddNotifications{Notifications: created}); err != nil {
			s.logger.Error("add notifications", "error", err)
			return
		}
		s.logger.Info("notifications generated", "count", len(created))
	}

	after, err := s.planner.Dispatch(state.EvaluateChallenges{})
	if err != nil {
		s.logger.Error("evaluate challenges", "error", err)
		return
	}

	s.pushAlerts(after)
	s.pushCompletedChallenges(before.Challenges, after)

	if s.subs != nil {
		if err := s.subs.CleanupSent(now.Add(-sentRetention)); err != nil {
			s.logger.Warn("cleanup sent alerts", "error", err)
		}
	}
}

func (s *Scheduler) pushAlerts(snap model.Snapshot) {
	for _, n := range snap.Notifications {
		if !ShouldAlert(n, snap.Settings.Notifications) {
			continue
		}
		s.deliver(n.Type, n.ID, push.AlertPayload(n))
	}
}

func (s *Scheduler) pushCompletedChallenges(before []model.Challenge, snap model.Snapshot) {
	if !snap.Settings.Notifications.Enabled {
		return
	}
	wasCompleted := make(map[int64]bool, len(before))
	for _, c := range before {
		wasCompleted[c.ID] = c.Completed
	}
	for _, c := range snap.Challenges {
		if !c.Completed || wasCompleted[c.ID] {
			continue
		}
		s.logger.Info("challenge completed", "challenge", c.Title, "badge", c.Reward)
		s.deliver(notifTypeChallenge, fmt.Sprintf("challenge-%d", c.ID), push.Payload{
			Title: "¡Reto Completado!",
			Body:  fmt.Sprintf("Has completado %q y ganado %s", c.Title, c.Reward),
			URL:   "/challenges",
			Tag:   fmt.Sprintf("challenge-%d", c.ID),
		})
	}
}

// deliver pushes payload to every subscription once per reference.
func (s *Scheduler) deliver(notifType, refID string, payload push.Payload) {
	if s.sender == nil || s.subs == nil {
		return
	}

	sent, err := s.subs.WasSent(notifType, refID)
	if err != nil {
		s.logger.Error("check sent", "error", err)
		return
	}
	if sent {
		return
	}

	subs, err := s.subs.List()
	if err != nil {
		s.logger.Error("list subscriptions", "error", err)
		return
	}

	for _, sub := range subs {
		if err := s.sender.Send(&sub, payload); err != nil {
			if errors.Is(err, push.ErrExpired) {
				s.subs.DeleteByEndpoint(sub.Endpoint)
				s.logger.Info("removed expired subscription", "device", sub.DeviceName)
			} else {
				s.logger.Warn("send alert", "ref", refID, "error", err)
			}
		}
	}

	if err := s.subs.RecordSent(notifType, refID); err != nil {
		s.logger.Error("record sent", "error", err)
	}
}
