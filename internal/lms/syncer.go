package lms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/planner/internal/model"
)

// ErrSyncInProgress is returned when a sync is requested while another is
// still outstanding.
var ErrSyncInProgress = errors.New("sync already in progress")

// Applier commits fetched tasks to the planner state as one transition
// and records at as the last sync time.
type Applier interface {
	ApplySync(fetched []model.Task, at time.Time) ([]model.Task, error)
	LastSync() *time.Time
}

// RunRecorder keeps the sync history.
type RunRecorder interface {
	Start(startedAt time.Time) (*model.SyncRun, error)
	Finish(run *model.SyncRun) error
	LastCompleted() (*model.SyncRun, error)
}

// Result reports what one sync fetched and inserted. Exams and classes
// are returned for the caller to handle; they are not merged.
type Result struct {
	At       time.Time            `json:"at"`
	Courses  []Course             `json:"courses"`
	Inserted []model.Task         `json:"inserted"`
	Exams    []model.Exam         `json:"exams"`
	Classes  []model.ClassSession `json:"classes"`
}

// Status is the sync state exposed to clients.
type Status struct {
	LastSync   *time.Time `json:"last_sync,omitempty"`
	NextSync   *time.Time `json:"next_sync,omitempty"`
	NeedsSync  bool       `json:"needs_sync"`
	InProgress bool       `json:"in_progress"`
	Error      string     `json:"error,omitempty"`
	// LastRun is the latest successful run in the history, if one is kept.
	LastRun *model.SyncRun `json:"last_run,omitempty"`
}

// StatusCallback is called whenever a sync starts or finishes.
type StatusCallback func(Status)

// Syncer runs syncs against a Source, one at a time.
type Syncer struct {
	source   Source
	applier  Applier
	runs     RunRecorder
	logger   *slog.Logger
	callback StatusCallback
	now      func() time.Time

	mu      sync.Mutex
	running bool
	lastErr string

	cancel context.CancelFunc
	done   chan struct{}
	// inflight tracks detached runs that outlive their caller.
	inflight sync.WaitGroup
}

// NewSyncer creates a syncer. runs and callback may be nil.
func NewSyncer(source Source, applier Applier, runs RunRecorder, logger *slog.Logger, callback StatusCallback) *Syncer {
	return &Syncer{
		source:   source,
		applier:  applier,
		runs:     runs,
		logger:   logger.With("component", "lms"),
		callback: callback,
		now:      time.Now,
	}
}

// Run performs one sync and waits for it. A second call while a sync is
// outstanding returns ErrSyncInProgress. If ctx ends first Run returns
// ctx.Err(), but the fetch keeps going and its result is still applied.
func (s *Syncer) Run(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrSyncInProgress
	}
	s.running = true
	s.lastErr = ""
	s.mu.Unlock()
	s.notify()

	type outcome struct {
		res *Result
		err error
	}
	ch := make(chan outcome, 1)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		res, err := s.run(context.WithoutCancel(ctx))

		s.mu.Lock()
		s.running = false
		if err != nil {
			s.lastErr = err.Error()
		}
		s.mu.Unlock()
		s.notify()

		ch <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case o := <-ch:
		return o.res, o.err
	}
}

func (s *Syncer) run(ctx context.Context) (*Result, error) {
	started := s.now()
	run := s.startRun(started)

	batch, err := s.source.Fetch(ctx)
	if err != nil {
		s.finishRun(run, nil, err)
		s.logger.Error("sync failed", "error", err)
		return nil, fmt.Errorf("sync: %w", err)
	}

	at := s.now()
	inserted, err := s.applier.ApplySync(batch.Tasks(), at)
	if err != nil {
		s.finishRun(run, nil, err)
		s.logger.Error("apply sync failed", "error", err)
		return nil, fmt.Errorf("apply sync: %w", err)
	}

	res := &Result{
		At:       at,
		Courses:  batch.Courses,
		Inserted: inserted,
		Exams:    batch.Exams(),
		Classes:  batch.Classes(),
	}
	s.finishRun(run, res, nil)
	s.logger.Info("sync complete",
		"inserted", len(inserted),
		"exams", len(res.Exams),
		"classes", len(res.Classes),
		"duration", at.Sub(started))
	return res, nil
}

func (s *Syncer) startRun(at time.Time) *model.SyncRun {
	if s.runs == nil {
		return nil
	}
	run, err := s.runs.Start(at)
	if err != nil {
		s.logger.Warn("record sync start", "error", err)
		return nil
	}
	return run
}

func (s *Syncer) finishRun(run *model.SyncRun, res *Result, syncErr error) {
	if run == nil {
		return
	}
	finished := s.now()
	run.FinishedAt = &finished
	if syncErr != nil {
		run.Status = model.SyncStatusFailed
		run.ErrorMessage = syncErr.Error()
	} else {
		run.Status = model.SyncStatusCompleted
		run.Inserted = len(res.Inserted)
		run.Exams = len(res.Exams)
		run.Classes = len(res.Classes)
	}
	if err := s.runs.Finish(run); err != nil {
		s.logger.Warn("record sync finish", "error", err)
	}
}

// Status returns the current sync state.
func (s *Syncer) Status() Status {
	last := s.applier.LastSync()
	var lastRun *model.SyncRun
	if s.runs != nil {
		r, err := s.runs.LastCompleted()
		if err != nil {
			s.logger.Warn("read sync history", "error", err)
		}
		lastRun = r
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		LastSync:   last,
		NextSync:   NextSync(last),
		NeedsSync:  NeedsSync(last, s.now()),
		InProgress: s.running,
		Error:      s.lastErr,
		LastRun:    lastRun,
	}
}

func (s *Syncer) notify() {
	if s.callback != nil {
		s.callback(s.Status())
	}
}

// Start begins the automatic sync loop. It syncs immediately when one is
// due and then checks every interval.
func (s *Syncer) Start(ctx context.Context, interval time.Duration) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		s.syncIfDue(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.syncIfDue(ctx)
			}
		}
	}()
}

// Stop stops the automatic sync loop and waits for any sync still in
// flight to apply its result.
func (s *Syncer) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	s.inflight.Wait()
}

func (s *Syncer) syncIfDue(ctx context.Context) {
	if !NeedsSync(s.applier.LastSync(), s.now()) {
		return
	}
	if _, err := s.Run(ctx); err != nil && !errors.Is(err, ErrSyncInProgress) && !errors.Is(err, context.Canceled) {
		s.logger.Warn("automatic sync failed", "error", err)
	}
}
