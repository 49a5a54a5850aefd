// Package config loads client configuration from a YAML file with
// environment overrides on top of compiled defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the client needs to talk to the expense API
// and keep its local state.
type Config struct {
	// BaseURL is the API root, including the /api/ prefix.
	BaseURL string `yaml:"base_url"`

	// TimeoutSeconds bounds every single HTTP request. There are no
	// retries, so this is also how long a command can hang at most.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// DBPath is the SQLite file holding the session token, the offline
	// cache and the sync cursor.
	DBPath string `yaml:"db_path"`

	// DefaultGroupName names the group auto-provisioned when an expense
	// is submitted before any group exists.
	DefaultGroupName string `yaml:"default_group_name"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// MetricsAddr, when non-empty, is the listen address for the
	// Prometheus endpoint during dashboard watch mode (e.g. ":9188").
	MetricsAddr string `yaml:"metrics_addr"`
}

// Timeout returns the per-request timeout as a duration.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		BaseURL:          "http://localhost:8000/api/",
		TimeoutSeconds:   10,
		DBPath:           filepath.Join(stateDir(), "splitmate.db"),
		DefaultGroupName: "My group",
		LogLevel:         "info",
	}
}

// Path returns the default config file location.
func Path() string {
	return filepath.Join(stateDir(), "config.yaml")
}

func stateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".splitmate")
}

// Load reads the config file at path, if it exists, and applies
// environment overrides. A missing file is not an error: defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file, defaults only.
	case err != nil:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SPLITMATE_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("SPLITMATE_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("SPLITMATE_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
