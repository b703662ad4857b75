package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dukerupert/planner/internal/database"
	"github.com/dukerupert/planner/internal/model"
	"github.com/dukerupert/planner/internal/state"
	"github.com/dukerupert/planner/internal/store"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	getErr  error
	delErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3NotFound{}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(data)),
	}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.delErr != nil {
		return nil, m.delErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type s3NotFound struct{}

func (e *s3NotFound) Error() string { return "NoSuchKey" }

var (
	testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	testS3     = S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret", Region: "us-east-1"}
)

// newTestManager wires a manager to an in-memory planner, store and bucket.
func newTestManager(t *testing.T) (*Manager, *state.Container, *mockS3Client, *store.BackupStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	planner := state.NewContainer(nil, testLogger)
	bs := store.NewBackupStore(db)
	m := NewManager(Config{S3: testS3}, planner, bs, testLogger, nil)
	mock := newMockS3()
	m.client = mock
	return m, planner, mock, bs
}

func TestManagerStateLifecycle(t *testing.T) {
	m := NewManager(Config{}, nil, nil, testLogger, nil)
	if m.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m.Status().State, StateDisabled)
	}

	m2 := NewManager(Config{S3: testS3}, nil, nil, testLogger, nil)
	if m2.Status().State != StateIdle {
		t.Errorf("state = %q, want %q", m2.Status().State, StateIdle)
	}
}

func TestManagerDefaults(t *testing.T) {
	m := NewManager(Config{}, nil, nil, testLogger, nil)
	if m.cfg.Interval != DefaultInterval {
		t.Errorf("interval = %v, want %v", m.cfg.Interval, DefaultInterval)
	}
	if m.cfg.RetentionDays != DefaultRetentionDays {
		t.Errorf("retention = %d, want %d", m.cfg.RetentionDays, DefaultRetentionDays)
	}
}

func TestManagerStatusCallback(t *testing.T) {
	var received []Status
	var mu sync.Mutex
	cb := func(s Status) {
		mu.Lock()
		received = append(received, s)
		mu.Unlock()
	}

	m := NewManager(Config{S3: testS3}, nil, nil, testLogger, cb)

	m.setStatus(Status{State: StateRunning, InProgress: true})
	m.setStatus(Status{State: StateIdle})

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("received %d callbacks, want 2", len(received))
	}
	if received[0].State != StateRunning {
		t.Errorf("first callback state = %q, want %q", received[0].State, StateRunning)
	}
	if received[1].State != StateIdle {
		t.Errorf("second callback state = %q, want %q", received[1].State, StateIdle)
	}
}

func TestManagerStopSafety(t *testing.T) {
	m := NewManager(Config{S3: testS3}, nil, nil, testLogger, nil)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	m.Stop()

	// Double stop should not panic
	m.Stop()
}

func TestManagerDisabledNoStart(t *testing.T) {
	m := NewManager(Config{}, nil, nil, testLogger, nil)
	m.Start(context.Background())
	m.Stop()
}

func TestManagerCachedKey(t *testing.T) {
	m := NewManager(Config{}, nil, nil, testLogger, nil)
	if m.HasCachedKey() {
		t.Error("expected no cached key")
	}
	m.CacheKey("passphrase")
	if !m.HasCachedKey() {
		t.Error("expected cached key")
	}
}

func TestUpdateS3Config(t *testing.T) {
	var received []Status
	var mu sync.Mutex
	cb := func(s Status) {
		mu.Lock()
		received = append(received, s)
		mu.Unlock()
	}

	m := NewManager(Config{}, nil, nil, testLogger, cb)

	m.UpdateS3Config(testS3)
	if m.Status().State != StateIdle {
		t.Errorf("state after set = %q, want %q", m.Status().State, StateIdle)
	}

	m.UpdateS3Config(S3Config{})
	if m.Status().State != StateDisabled {
		t.Errorf("state after clear = %q, want %q", m.Status().State, StateDisabled)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("received %d callbacks, want 2", len(received))
	}
}

func TestRunNowNotConfigured(t *testing.T) {
	m := NewManager(Config{}, nil, nil, testLogger, nil)
	if _, err := m.RunNow(context.Background(), "pass"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	m, planner, mock, bs := newTestManager(t)
	ctx := context.Background()

	if _, err := planner.Dispatch(state.AddTask{Task: model.Task{Title: "Proyecto final", DueDate: "2026-03-01"}}); err != nil {
		t.Fatalf("add task: %v", err)
	}
	want := planner.Snapshot()

	id, err := m.RunNow(ctx, "correct horse")
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}

	record, err := bs.GetByID(id)
	if err != nil || record == nil {
		t.Fatalf("get record: %v", err)
	}
	if record.Status != model.BackupStatusCompleted {
		t.Errorf("status = %q, want completed", record.Status)
	}
	stored, ok := mock.objects[record.S3Key]
	if !ok {
		t.Fatalf("object %q not uploaded", record.S3Key)
	}
	if int64(len(stored)) != record.SizeBytes {
		t.Errorf("size = %d, want %d", record.SizeBytes, len(stored))
	}
	if bytes.Contains(stored, []byte("Proyecto final")) {
		t.Error("uploaded backup should be encrypted")
	}
	if m.Status().LastBackup == nil {
		t.Error("last backup should be set")
	}

	if _, err := planner.Dispatch(state.DeleteTask{ID: want.Tasks[len(want.Tasks)-1].ID}); err != nil {
		t.Fatalf("delete task: %v", err)
	}

	if err := m.Restore(ctx, id, "wrong"); !errors.Is(err, ErrDecrypt) {
		t.Errorf("restore with wrong passphrase: err = %v", err)
	}
	if len(planner.Snapshot().Tasks) != len(want.Tasks)-1 {
		t.Fatal("failed restore should not change state")
	}

	if err := m.Restore(ctx, id, "correct horse"); err != nil {
		t.Fatalf("restore: %v", err)
	}
	got := planner.Snapshot()
	if len(got.Tasks) != len(want.Tasks) {
		t.Fatalf("restored %d tasks, want %d", len(got.Tasks), len(want.Tasks))
	}
	if got.Tasks[len(got.Tasks)-1].Title != "Proyecto final" {
		t.Errorf("last task = %q", got.Tasks[len(got.Tasks)-1].Title)
	}
}

func TestRunNowUploadFailure(t *testing.T) {
	m, _, mock, bs := newTestManager(t)
	mock.putErr = errors.New("bucket unavailable")

	if _, err := m.RunNow(context.Background(), "pass"); err == nil {
		t.Fatal("expected upload error")
	}
	if m.Status().State != StateError {
		t.Errorf("state = %q, want %q", m.Status().State, StateError)
	}

	list, err := bs.List(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Status != model.BackupStatusFailed {
		t.Errorf("records = %+v", list)
	}
}

func TestRestoreUnknownBackup(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	if err := m.Restore(context.Background(), 99, "pass"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCleanupKeepsRecentBackups(t *testing.T) {
	m, _, mock, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := m.RunNow(ctx, "pass"); err != nil {
		t.Fatalf("run backup: %v", err)
	}
	if err := m.Cleanup(ctx, 30); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if len(mock.objects) != 1 {
		t.Errorf("objects = %d, want 1", len(mock.objects))
	}
}
