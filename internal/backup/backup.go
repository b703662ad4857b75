package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dukerupert/planner/internal/model"
	"github.com/dukerupert/planner/internal/store"
)

const (
	// DefaultInterval is the time between scheduled backups.
	DefaultInterval = 24 * time.Hour
	// DefaultRetentionDays is how long scheduled cleanup keeps backups.
	DefaultRetentionDays = 30

	keyPrefix = "planner"
)

var (
	ErrNotConfigured = errors.New("backup not configured: S3 credentials missing")
	ErrNotFound      = errors.New("backup not found")
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Snapshotter exports and replaces the planner state.
type Snapshotter interface {
	Export() ([]byte, error)
	Replace(s model.Snapshot) error
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

func (c S3Config) complete() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Config holds backup manager configuration.
type Config struct {
	S3            S3Config
	Interval      time.Duration
	RetentionDays int
}

// State represents the backup manager state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

// Status holds the current backup manager status.
type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	Error      string     `json:"error,omitempty"`
	InProgress bool       `json:"in_progress"`
}

// StatusCallback is called whenever the backup state changes.
type StatusCallback func(Status)

// Manager writes encrypted snapshots to S3-compatible storage.
type Manager struct {
	mu       sync.RWMutex
	cfg      Config
	status   Status
	callback StatusCallback
	logger   *slog.Logger

	snaps       Snapshotter
	backupStore *store.BackupStore
	client      s3Client

	// passphrase for scheduled backups, memory only
	passphrase string

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a new backup manager.
func NewManager(cfg Config, snaps Snapshotter, bs *store.BackupStore, logger *slog.Logger, callback StatusCallback) *Manager {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = DefaultRetentionDays
	}
	m := &Manager{
		cfg:         cfg,
		snaps:       snaps,
		backupStore: bs,
		logger:      logger.With("component", "backup"),
		callback:    callback,
		status:      Status{State: StateDisabled},
	}

	if cfg.S3.complete() {
		m.client = newS3Client(cfg.S3)
		m.status.State = StateIdle
	}

	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// UpdateS3Config hot-reloads the S3 configuration.
func (m *Manager) UpdateS3Config(s3cfg S3Config) {
	m.mu.Lock()
	m.cfg.S3 = s3cfg
	if s3cfg.complete() {
		m.client = newS3Client(s3cfg)
		m.status.State = StateIdle
	} else {
		m.client = nil
		m.status.State = StateDisabled
	}
	status := m.status
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(status)
	}
}

// Start begins the scheduled backup loop. Scheduled backups only run
// once a passphrase has been cached.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.status.State == StateDisabled {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	interval := m.cfg.Interval
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.scheduled(ctx)
			}
		}
	}()
}

// Stop gracefully stops the backup manager.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Status returns the current backup status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(s)
	}
}

// CacheKey keeps the passphrase in memory for scheduled backups.
func (m *Manager) CacheKey(passphrase string) {
	m.mu.Lock()
	m.passphrase = passphrase
	m.mu.Unlock()
}

// HasCachedKey reports whether scheduled backups can run.
func (m *Manager) HasCachedKey() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.passphrase != ""
}

func (m *Manager) scheduled(ctx context.Context) {
	m.mu.RLock()
	passphrase := m.passphrase
	retention := m.cfg.RetentionDays
	m.mu.RUnlock()

	if passphrase == "" {
		m.logger.Info("skipping scheduled backup, no cached passphrase")
		return
	}

	if _, err := m.RunNow(ctx, passphrase); err != nil {
		m.logger.Error("scheduled backup failed", "error", err)
	}
	if err := m.Cleanup(ctx, retention); err != nil {
		m.logger.Error("backup cleanup failed", "error", err)
	}
}

// RunNow encrypts the current snapshot and uploads it, returning the
// backup record id.
func (m *Manager) RunNow(ctx context.Context, passphrase string) (int64, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	m.mu.RUnlock()

	if client == nil {
		return 0, ErrNotConfigured
	}
	if passphrase == "" {
		return 0, fmt.Errorf("backup passphrase is required")
	}

	m.setStatus(Status{State: StateRunning, InProgress: true})

	timestamp := time.Now().UTC().Format("2006-01-02T150405Z")
	filename := fmt.Sprintf("backup-%s.json.enc", timestamp)
	s3Key := fmt.Sprintf("%s/%s", keyPrefix, filename)

	record, err := m.backupStore.Create(filename, s3Key)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return 0, fmt.Errorf("create backup record: %w", err)
	}

	fail := func(stage string, err error) (int64, error) {
		m.backupStore.UpdateStatus(record.ID, model.BackupStatusFailed, err.Error())
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return 0, fmt.Errorf("%s: %w", stage, err)
	}

	m.backupStore.UpdateStatus(record.ID, model.BackupStatusUploading, "")

	data, err := m.snaps.Export()
	if err != nil {
		return fail("export snapshot", err)
	}

	salt, err := GenerateSalt()
	if err != nil {
		return fail("encrypt", err)
	}
	sealed, err := Encrypt(data, passphrase, salt)
	if err != nil {
		return fail("encrypt", err)
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(s3Key),
		Body:          bytes.NewReader(sealed),
		ContentLength: aws.Int64(int64(len(sealed))),
	})
	if err != nil {
		return fail("upload to s3", err)
	}

	if err := m.backupStore.UpdateCompleted(record.ID, int64(len(sealed))); err != nil {
		m.logger.Warn("mark backup completed", "id", record.ID, "error", err)
	}

	now := time.Now().UTC()
	m.setStatus(Status{State: StateIdle, LastBackup: &now})
	m.logger.Info("backup completed", "id", record.ID, "key", s3Key, "bytes", len(sealed))

	return record.ID, nil
}

// Restore downloads a backup, decrypts it and replaces the planner state.
func (m *Manager) Restore(ctx context.Context, backupID int64, passphrase string) error {
	body, _, err := m.Download(ctx, backupID)
	if err != nil {
		return err
	}
	defer body.Close()

	sealed, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}

	data, err := Decrypt(sealed, passphrase)
	if err != nil {
		return err
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode backup: %w", err)
	}

	if err := m.snaps.Replace(snap); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	m.logger.Info("restore complete", "id", backupID)
	return nil
}

// Download streams an encrypted backup from S3.
func (m *Manager) Download(ctx context.Context, backupID int64) (io.ReadCloser, int64, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	m.mu.RUnlock()

	if client == nil {
		return nil, 0, ErrNotConfigured
	}

	record, err := m.backupStore.GetByID(backupID)
	if err != nil {
		return nil, 0, fmt.Errorf("get backup: %w", err)
	}
	if record == nil || record.Status != model.BackupStatusCompleted {
		return nil, 0, ErrNotFound
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(record.S3Key),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("download from s3: %w", err)
	}

	return result.Body, record.SizeBytes, nil
}

// Cleanup deletes backups older than the retention period.
func (m *Manager) Cleanup(ctx context.Context, retentionDays int) error {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	m.mu.RUnlock()

	if client == nil {
		return nil
	}

	before := time.Now().UTC().AddDate(0, 0, -retentionDays)
	keys, err := m.backupStore.DeleteOlderThan(before)
	if err != nil {
		return fmt.Errorf("delete old backups: %w", err)
	}

	for _, key := range keys {
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		}); err != nil {
			m.logger.Warn("delete s3 object", "key", key, "error", err)
		}
	}

	return nil
}
