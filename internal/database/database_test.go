package database

import (
	"context"
	"path/filepath"
	"testing"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{":memory:", ":memory:?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"},
		{"planner.db", "planner.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"},
	}
	for _, tt := range tests {
		if got := dsn(tt.path); got != tt.want {
			t.Errorf("dsn(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestOpenRunsMigrations(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"snapshots", "push_subscriptions", "sent_notifications", "backups", "sync_runs"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}

	v, err := Version(context.Background(), db)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != 1 {
		t.Errorf("version = %d, want 1", v)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO snapshots (id, data) VALUES (1, '{}')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	var data string
	if err := db.QueryRow(`SELECT data FROM snapshots WHERE id = 1`).Scan(&data); err != nil {
		t.Fatalf("select: %v", err)
	}
	if data != "{}" {
		t.Errorf("data = %q", data)
	}
}
