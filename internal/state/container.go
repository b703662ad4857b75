package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/planner/internal/model"
)

// Persister stores the encoded snapshot. Load returns nil data when
// nothing has been saved yet.
type Persister interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// Listener is called after every committed transition, one at a time and
// in commit order. A listener must not call Dispatch or Replace.
type Listener func(a Action, s model.Snapshot)

// Container owns the current snapshot. Every transition replaces the
// whole snapshot under the lock, so readers never see a partial update.
type Container struct {
	mu        sync.RWMutex
	snap      model.Snapshot
	persister Persister
	logger    *slog.Logger
	clock     func() time.Time

	listenersMu sync.RWMutex
	listeners   []Listener

	// notifyMu is taken before mu is released, so listeners see
	// transitions in commit order without running under mu.
	notifyMu sync.Mutex
}

// NewContainer creates a container holding the default snapshot. Call
// Load to restore persisted state. p may be nil for an in-memory planner.
func NewContainer(p Persister, logger *slog.Logger) *Container {
	c := &Container{
		persister: p,
		logger:    logger.With("component", "state"),
		clock:     time.Now,
	}
	c.snap = Default(c.Now())
	return c
}

// SetClock replaces the time source. Intended for tests and for pinning
// a time zone.
func (c *Container) SetClock(fn func() time.Time) {
	c.mu.Lock()
	c.clock = fn
	c.mu.Unlock()
}

// Now returns the container's current time.
func (c *Container) Now() time.Time {
	c.mu.RLock()
	clock := c.clock
	c.mu.RUnlock()
	return clock()
}

// Load restores the persisted snapshot. A missing or corrupt snapshot
// leaves the defaults in place; only persister errors are returned.
func (c *Container) Load() error {
	if c.persister == nil {
		return nil
	}
	data, err := c.persister.Load()
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	now := c.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if data == nil {
		c.snap = Default(now)
		return nil
	}
	var s model.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		c.logger.Warn("saved snapshot is corrupt, using defaults", "error", err)
		c.snap = Default(now)
		return nil
	}
	c.snap = normalize(s, now)
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Container) Snapshot() model.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Clone(c.snap)
}

// Dispatch applies a, persists the result and notifies listeners. When
// the action fails or cannot be saved the current state is kept.
func (c *Container) Dispatch(a Action) (model.Snapshot, error) {
	now := c.Now()

	c.mu.Lock()
	next, err := Reduce(c.snap, a, now)
	if err != nil {
		c.mu.Unlock()
		return model.Snapshot{}, err
	}
	if err := c.save(next); err != nil {
		c.mu.Unlock()
		return model.Snapshot{}, err
	}
	c.snap = next
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	out := Clone(next)
	c.notify(a, out)
	return out, nil
}

// Replace swaps in a whole snapshot, as when restoring a backup.
func (c *Container) Replace(s model.Snapshot) error {
	s = normalize(s, c.Now())

	c.mu.Lock()
	if err := c.save(s); err != nil {
		c.mu.Unlock()
		return err
	}
	c.snap = s
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	c.notify(nil, Clone(s))
	return nil
}

// Export encodes the current snapshot.
func (c *Container) Export() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, err := json.Marshal(c.snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// ApplySync merges fetched tasks and stamps the sync time in one
// transition, returning the tasks that were inserted.
func (c *Container) ApplySync(fetched []model.Task, at time.Time) ([]model.Task, error) {
	before := c.Snapshot()
	after, err := c.Dispatch(ApplySync{Fetched: fetched, At: at})
	if err != nil {
		return nil, err
	}
	inserted := []model.Task{}
	for _, t := range after.Tasks {
		if t.ID >= before.NextTaskID && t.FromMoodle {
			inserted = append(inserted, t)
		}
	}
	return inserted, nil
}

// LastSync returns when the last successful sync was applied.
func (c *Container) LastSync() *time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap.LastSync == nil {
		return nil
	}
	t := *c.snap.LastSync
	return &t
}

// Subscribe registers fn to run after every committed transition. A nil
// action means the whole snapshot was replaced.
func (c *Container) Subscribe(fn Listener) {
	c.listenersMu.Lock()
	c.listeners = append(c.listeners, fn)
	c.listenersMu.Unlock()
}

func (c *Container) notify(a Action, s model.Snapshot) {
	c.listenersMu.RLock()
	listeners := append([]Listener(nil), c.listeners...)
	c.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(a, s)
	}
}

func (c *Container) save(s model.Snapshot) error {
	if c.persister == nil {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.persister.Save(data); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
