package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/planner/internal/model"
)

// SyncRunStore keeps the history of LMS sync attempts.
type SyncRunStore struct {
	db *sql.DB
}

func NewSyncRunStore(db *sql.DB) *SyncRunStore {
	return &SyncRunStore{db: db}
}

const syncRunColumns = `id, status, inserted, exams, classes, error_message, started_at, finished_at`

func scanSyncRun(row rowScanner) (*model.SyncRun, error) {
	r := &model.SyncRun{}
	var errMsg sql.NullString
	var finishedAt sql.NullTime
	if err := row.Scan(&r.ID, &r.Status, &r.Inserted, &r.Exams, &r.Classes, &errMsg, &r.StartedAt, &finishedAt); err != nil {
		return nil, err
	}
	r.ErrorMessage = errMsg.String
	if finishedAt.Valid {
		r.FinishedAt = &finishedAt.Time
	}
	return r, nil
}

// Start records a running sync.
func (s *SyncRunStore) Start(startedAt time.Time) (*model.SyncRun, error) {
	startedAt = startedAt.UTC()
	result, err := s.db.Exec(
		`INSERT INTO sync_runs (status, started_at) VALUES (?, ?)`,
		model.SyncStatusRunning, startedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("start sync run: %w", err)
	}
	id, _ := result.LastInsertId()
	return &model.SyncRun{ID: id, Status: model.SyncStatusRunning, StartedAt: startedAt}, nil
}

// Finish stores the outcome of run.
func (s *SyncRunStore) Finish(run *model.SyncRun) error {
	var errPtr *string
	if run.ErrorMessage != "" {
		errPtr = &run.ErrorMessage
	}
	var finished any
	if run.FinishedAt != nil {
		finished = run.FinishedAt.UTC()
	}
	_, err := s.db.Exec(
		`UPDATE sync_runs SET status = ?, inserted = ?, exams = ?, classes = ?, error_message = ?, finished_at = ?
		 WHERE id = ?`,
		run.Status, run.Inserted, run.Exams, run.Classes, errPtr, finished, run.ID,
	)
	if err != nil {
		return fmt.Errorf("finish sync run: %w", err)
	}
	return nil
}

func (s *SyncRunStore) GetByID(id int64) (*model.SyncRun, error) {
	r, err := scanSyncRun(s.db.QueryRow(`SELECT `+syncRunColumns+` FROM sync_runs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get sync run %d: %w", id, err)
	}
	return r, nil
}

// List returns the most recent runs first.
func (s *SyncRunStore) List(limit int) ([]model.SyncRun, error) {
	rows, err := s.db.Query(`SELECT `+syncRunColumns+` FROM sync_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	defer rows.Close()

	var runs []model.SyncRun
	for rows.Next() {
		r, err := scanSyncRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sync run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// LastCompleted returns the latest successful run, or nil.
func (s *SyncRunStore) LastCompleted() (*model.SyncRun, error) {
	r, err := scanSyncRun(s.db.QueryRow(
		`SELECT `+syncRunColumns+` FROM sync_runs WHERE status = ? ORDER BY id DESC LIMIT 1`,
		model.SyncStatusCompleted,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last completed sync run: %w", err)
	}
	return r, nil
}
