// Package config resolves runtime settings from defaults, an optional TOML
// file and CORTEXACT_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/morozRed/cortexact/internal/fileutil"
)

const (
	envPrefix      = "CORTEXACT_"
	configFileName = "config.toml"
	LogFileName    = "cortexact.log"
)

// Config holds all configuration values.
type Config struct {
	DataDir  string
	LogFile  string
	LogLevel slog.Level

	// Repair oracle
	RepairEndpoint string
	RepairModel    string
	RepairAPIKey   string
	RepairTimeout  time.Duration

	// Jobs
	JobTimeout   time.Duration
	JobMaxAge    time.Duration
	PollInterval time.Duration
}

// fileConfig mirrors config.toml. Zero values leave the current setting alone.
type fileConfig struct {
	DataDir  string `toml:"data_dir"`
	LogFile  string `toml:"log_file"`
	LogLevel string `toml:"log_level"`

	Repair struct {
		Endpoint    string `toml:"endpoint"`
		Model       string `toml:"model"`
		APIKey      string `toml:"api_key"`
		TimeoutSecs int    `toml:"timeout_secs"`
	} `toml:"repair"`

	Jobs struct {
		TimeoutSecs    int `toml:"timeout_secs"`
		MaxAgeHours    int `toml:"max_age_hours"`
		PollIntervalMs int `toml:"poll_interval_ms"`
	} `toml:"jobs"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DataDir:        defaultDataDir(),
		LogLevel:       slog.LevelInfo,
		RepairEndpoint: "http://127.0.0.1:1234/v1",
		RepairModel:    "local-model",
		RepairTimeout:  10 * time.Second,
		JobTimeout:     300 * time.Second,
		JobMaxAge:      24 * time.Hour,
		PollInterval:   200 * time.Millisecond,
	}
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".cortexact")
	}
	return filepath.Join(os.TempDir(), "cortexact")
}

// DefaultPath is where Load looks for a config file when none is named.
func (c Config) DefaultPath() string {
	return filepath.Join(c.DataDir, configFileName)
}

// Load resolves configuration. An explicit path must exist; otherwise
// <data dir>/config.toml is read when present.
func Load(path string) (Config, error) {
	cfg := Default()
	if dir := os.Getenv(envPrefix + "DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}

	explicit := path != ""
	if !explicit {
		path = cfg.DefaultPath()
	}
	if err := cfg.applyFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.finalize()
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	setString(&c.DataDir, fc.DataDir)
	setString(&c.LogFile, fc.LogFile)
	if fc.LogLevel != "" {
		c.LogLevel = ParseLogLevel(fc.LogLevel)
	}
	setString(&c.RepairEndpoint, fc.Repair.Endpoint)
	setString(&c.RepairModel, fc.Repair.Model)
	setString(&c.RepairAPIKey, fc.Repair.APIKey)
	setDuration(&c.RepairTimeout, fc.Repair.TimeoutSecs, time.Second)
	setDuration(&c.JobTimeout, fc.Jobs.TimeoutSecs, time.Second)
	setDuration(&c.JobMaxAge, fc.Jobs.MaxAgeHours, time.Hour)
	setDuration(&c.PollInterval, fc.Jobs.PollIntervalMs, time.Millisecond)
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.DataDir, os.Getenv(envPrefix+"DATA_DIR"))
	setString(&c.LogFile, os.Getenv(envPrefix+"LOG_FILE"))
	if level := os.Getenv(envPrefix + "LOG_LEVEL"); level != "" {
		c.LogLevel = ParseLogLevel(level)
	}
	setString(&c.RepairEndpoint, os.Getenv(envPrefix+"REPAIR_ENDPOINT"))
	setString(&c.RepairModel, os.Getenv(envPrefix+"REPAIR_MODEL"))
	setString(&c.RepairAPIKey, os.Getenv(envPrefix+"REPAIR_API_KEY"))

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"REPAIR_TIMEOUT", &c.RepairTimeout},
		{"JOB_TIMEOUT", &c.JobTimeout},
		{"JOB_MAX_AGE", &c.JobMaxAge},
		{"POLL_INTERVAL", &c.PollInterval},
	}
	for _, d := range durations {
		raw := os.Getenv(envPrefix + d.key)
		if raw == "" {
			continue
		}
		value, err := ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", envPrefix, d.key, err)
		}
		*d.dst = value
	}
	return nil
}

func (c *Config) finalize() {
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.DataDir, LogFileName)
	}
}

// ParseDuration accepts Go duration syntax or a bare number of seconds.
func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("duration must be positive, got %q", raw)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %q", raw)
	}
	return d, nil
}

// WriteDefault writes cfg as TOML unless path already exists.
func WriteDefault(path string, cfg Config) error {
	var fc fileConfig
	fc.DataDir = cfg.DataDir
	fc.LogLevel = strings.ToLower(cfg.LogLevel.String())
	fc.Repair.Endpoint = cfg.RepairEndpoint
	fc.Repair.Model = cfg.RepairModel
	fc.Repair.TimeoutSecs = int(cfg.RepairTimeout / time.Second)
	fc.Jobs.TimeoutSecs = int(cfg.JobTimeout / time.Second)
	fc.Jobs.MaxAgeHours = int(cfg.JobMaxAge / time.Hour)
	fc.Jobs.PollIntervalMs = int(cfg.PollInterval / time.Millisecond)

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(fc); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return fileutil.WriteIfMissing(path, buf.Bytes(), 0644)
}

func setString(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

func setDuration(dst *time.Duration, value int, unit time.Duration) {
	if value > 0 {
		*dst = time.Duration(value) * unit
	}
}

func ParseLogLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
