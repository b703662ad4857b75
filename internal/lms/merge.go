package lms

import (
	"time"

	"github.com/dukerupert/planner/internal/model"
)

// SyncInterval is the minimum time between automatic syncs.
const SyncInterval = 24 * time.Hour

// Merge returns the fetched tasks that are not yet present locally. A
// fetched task is a duplicate when a local task, or one earlier in the
// same batch, was imported with an identical title.
func Merge(local, fetched []model.Task) []model.Task {
	imported := make(map[string]bool)
	for _, t := range local {
		if t.FromMoodle {
			imported[t.Title] = true
		}
	}

	insert := []model.Task{}
	for _, t := range fetched {
		if imported[t.Title] {
			continue
		}
		imported[t.Title] = true
		t.FromMoodle = true
		insert = append(insert, t)
	}
	return insert
}

// NeedsSync reports whether a sync is due: never synced, or the last one
// is at least a day old.
func NeedsSync(last *time.Time, now time.Time) bool {
	if last == nil {
		return true
	}
	return now.Sub(*last) >= SyncInterval
}

// NextSync returns when the next automatic sync becomes due, or nil when
// one is due now because no sync has run.
func NextSync(last *time.Time) *time.Time {
	if last == nil {
		return nil
	}
	next := last.Add(SyncInterval)
	return &next
}
