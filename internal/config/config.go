// Package config loads planner settings from defaults, an optional YAML
// file and PLANNER_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/planner/internal/push"
	"gopkg.in/yaml.v3"
)

// Config is the top-level planner configuration.
type Config struct {
	Port     string       `yaml:"port"`
	DBPath   string       `yaml:"db_path"`
	LogLevel string       `yaml:"log_level"`
	Timezone string       `yaml:"timezone"` // IANA name, empty for local
	// CORSOrigins lists browser origins allowed to call the API, for a UI
	// served from another host. Empty disables CORS.
	CORSOrigins []string `yaml:"cors_origins"`
	Push     push.Config  `yaml:"push"`
	S3       S3Config     `yaml:"s3"`
	Backup   BackupConfig `yaml:"backup"`
	Notify   NotifyConfig `yaml:"notify"`
	Sync     SyncConfig   `yaml:"sync"`
}

// S3Config points backups at S3-compatible storage.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

type BackupConfig struct {
	Interval      time.Duration `yaml:"interval"`
	RetentionDays int           `yaml:"retention_days"`
}

type NotifyConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type SyncConfig struct {
	Auto     bool          `yaml:"auto"`
	Interval time.Duration `yaml:"interval"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:     "8080",
		DBPath:   "planner.db",
		LogLevel: "info",
		S3:       S3Config{Region: "us-east-1"},
		Backup: BackupConfig{
			Interval:      24 * time.Hour,
			RetentionDays: 30,
		},
		Notify: NotifyConfig{Interval: time.Hour},
		Sync: SyncConfig{
			Auto:     true,
			Interval: time.Hour,
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path (skipped
// when path is empty) and then the environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := map[string]*string{
		"PLANNER_PORT":              &c.Port,
		"PLANNER_DB_PATH":           &c.DBPath,
		"PLANNER_LOG_LEVEL":         &c.LogLevel,
		"PLANNER_TIMEZONE":          &c.Timezone,
		"PLANNER_VAPID_PUBLIC_KEY":  &c.Push.VAPIDPublicKey,
		"PLANNER_VAPID_PRIVATE_KEY": &c.Push.VAPIDPrivateKey,
		"PLANNER_VAPID_SUBSCRIBER":  &c.Push.Subscriber,
		"PLANNER_S3_ENDPOINT":       &c.S3.Endpoint,
		"PLANNER_S3_BUCKET":         &c.S3.Bucket,
		"PLANNER_S3_REGION":         &c.S3.Region,
		"PLANNER_S3_ACCESS_KEY":     &c.S3.AccessKey,
		"PLANNER_S3_SECRET_KEY":     &c.S3.SecretKey,
	}
	for key, dst := range str {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"PLANNER_NOTIFY_INTERVAL": &c.Notify.Interval,
		"PLANNER_SYNC_INTERVAL":   &c.Sync.Interval,
		"PLANNER_BACKUP_INTERVAL": &c.Backup.Interval,
	}
	for key, dst := range durations {
		v := getenv(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		*dst = d
	}

	if v := getenv("PLANNER_CORS_ORIGINS"); v != "" {
		c.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.CORSOrigins = append(c.CORSOrigins, o)
			}
		}
	}
	if v := getenv("PLANNER_BACKUP_RETENTION_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PLANNER_BACKUP_RETENTION_DAYS: %w", err)
		}
		c.Backup.RetentionDays = n
	}
	if v := getenv("PLANNER_SYNC_AUTO"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse PLANNER_SYNC_AUTO: %w", err)
		}
		c.Sync.Auto = b
	}
	return nil
}

// Validate rejects settings the planner cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	} else if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("port %q is not a number", c.Port))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if c.Notify.Interval <= 0 {
		errs = append(errs, errors.New("notify.interval must be positive"))
	}
	if c.Sync.Interval <= 0 {
		errs = append(errs, errors.New("sync.interval must be positive"))
	}
	if c.Backup.RetentionDays < 0 {
		errs = append(errs, errors.New("backup.retention_days must not be negative"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves Timezone, defaulting to the host zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
