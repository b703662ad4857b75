package store

import (
	"database/sql"
	"fmt"
	"time"
)

// SnapshotStore keeps the encoded planner snapshot in a single row.
type SnapshotStore struct {
	db *sql.DB
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Load returns the saved snapshot, or nil when none has been saved.
func (s *SnapshotStore) Load() ([]byte, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM snapshots WHERE id = 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return []byte(data), nil
}

// Save replaces the saved snapshot.
func (s *SnapshotStore) Save(data []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO snapshots (id, data, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// UpdatedAt returns when the snapshot was last saved, or nil.
func (s *SnapshotStore) UpdatedAt() (*time.Time, error) {
	var at time.Time
	err := s.db.QueryRow(`SELECT updated_at FROM snapshots WHERE id = 1`).Scan(&at)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot updated_at: %w", err)
	}
	return &at, nil
}
