// Package config loads WatchOut configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// WATCHOUT_ environment variables (WATCHOUT_DAEMON__ADDR sets daemon.addr).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/manav03panchal/watchout/internal/errors"
	"github.com/manav03panchal/watchout/internal/model"
	"github.com/manav03panchal/watchout/internal/validate"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "watchout"

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "WATCHOUT_"

// Storage backends.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Config holds all configuration values.
type Config struct {
	Storage   StorageConfig   `koanf:"storage"`
	Daemon    DaemonConfig    `koanf:"daemon"`
	Notify    NotifyConfig    `koanf:"notify"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
}

// StorageConfig selects and locates the document store.
type StorageConfig struct {
	// Backend is "badger" or "sqlite".
	// Default: badger
	Backend string `koanf:"backend"`

	// Path overrides the data location. Empty means the XDG data dir.
	Path string `koanf:"path"`

	// Seed installs the two starter reminders when no active document exists.
	// Default: true
	Seed bool `koanf:"seed"`
}

// DaemonConfig holds daemon-related configuration.
type DaemonConfig struct {
	// Addr is the loopback address of the local API.
	// Default: 127.0.0.1:7391
	Addr string `koanf:"addr"`

	// StartupWait is the time to wait for the daemon to start before checking status.
	// Default: 500ms
	StartupWait time.Duration `koanf:"startup_wait"`

	// KillTimeout is the timeout for graceful shutdown before force kill.
	// Default: 5s
	KillTimeout time.Duration `koanf:"kill_timeout"`

	// ShutdownTimeout bounds the API server drain on exit.
	// Default: 3s
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// NotifyConfig configures delivery sinks.
type NotifyConfig struct {
	// Desktop enables native desktop notifications.
	// Default: true
	Desktop bool `koanf:"desktop"`

	// RatePerSec caps deliveries per second across all reminders.
	// Default: 5
	RatePerSec int `koanf:"rate_per_sec"`

	// Timeout is the HTTP timeout for a single webhook post.
	// Default: 10s
	Timeout time.Duration `koanf:"timeout"`

	Webhooks []model.Webhook `koanf:"webhooks"`
}

// SchedulerConfig holds scheduler-related configuration.
type SchedulerConfig struct {
	// DeliveryTimeout bounds one delivery fan-out started by a fire.
	// Default: 15s
	DeliveryTimeout time.Duration `koanf:"delivery_timeout"`
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Load reads configuration from defaults, the YAML file at path (if it exists)
// and the environment. An empty path uses DefaultPath.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	path = expandPath(path)

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Storage.Path = expandPath(cfg.Storage.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps WATCHOUT_NOTIFY__RATE_PER_SEC to notify.rate_per_sec.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendBadger, BackendSQLite:
	default:
		return errors.NewValidationError("storage.backend",
			fmt.Sprintf("%s %q", errors.ErrUnknownBackend, c.Storage.Backend),
			"Use 'badger' or 'sqlite'")
	}

	if c.Daemon.Addr == "" {
		return errors.NewValidationError("daemon.addr", "address is required", "")
	}
	if c.Notify.RatePerSec <= 0 {
		return errors.NewValidationError("notify.rate_per_sec", "must be positive", "")
	}
	if c.Scheduler.DeliveryTimeout <= 0 {
		return errors.NewValidationError("scheduler.delivery_timeout", "must be positive", "")
	}

	seen := make(map[string]bool)
	for i := range c.Notify.Webhooks {
		w := &c.Notify.Webhooks[i]
		field := fmt.Sprintf("notify.webhooks[%d]", i)
		if !model.IsValidWebhookName(w.Name) {
			return errors.NewValidationError(field+".name", fmt.Sprintf("invalid name %q", w.Name),
				"Names start with a letter or digit and contain only letters, digits, '-' and '_'")
		}
		if seen[w.Name] {
			return errors.NewValidationError(field+".name", fmt.Sprintf("duplicate name %q", w.Name), "")
		}
		seen[w.Name] = true
		if err := validate.WebhookURL(field+".url", w.URL); err != nil {
			return err
		}
		if w.Type == "" {
			w.Type = model.DetectWebhookType(w.URL)
		}
		if !model.IsValidWebhookType(w.Type) {
			return errors.NewValidationError(field+".type", fmt.Sprintf("unknown type %q", w.Type),
				"Use discord, slack, teams or generic")
		}
	}
	return nil
}

// DataDir returns the directory holding the document store.
func (c *Config) DataDir() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return filepath.Join(xdg.DataHome, AppName)
}

func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}
