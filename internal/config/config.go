// Package config loads dashboard settings from an optional YAML file with
// environment-variable overrides.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name, searched for in
// the working directory and then the user's home directory.
const DefaultConfigFile = ".funddash.yaml"

// ErrConfigNotFound is returned when an explicitly requested configuration
// file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Config holds the deployment-level settings the dashboard consumes.
type Config struct {
	// APIBaseURL points at the scrape/extraction backend.
	APIBaseURL string `yaml:"api_base_url"`
	// AppPassword is the optional shared-secret access gate. Empty
	// disables the gate entirely.
	AppPassword string `yaml:"app_password"`
	// PollIntervalSeconds overrides the job status poll cadence.
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
}

// Default returns the built-in settings: local backend, no gate, 4s polls.
func Default() Config {
	return Config{
		APIBaseURL:          "http://localhost:8000",
		PollIntervalSeconds: 4,
	}
}

// Load resolves the effective configuration: defaults, then the YAML file
// (explicit path, else the first .funddash.yaml found), then environment
// overrides API_BASE_URL, APP_PASSWORD and POLL_INTERVAL_SECONDS.
func Load(path string) (Config, error) {
	cfg := Default()

	resolved := findConfigFile(path)
	if path != "" && resolved == "" {
		return cfg, ErrConfigNotFound
	}
	if resolved != "" {
		data, err := os.ReadFile(resolved)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if v := strings.TrimSpace(os.Getenv("API_BASE_URL")); v != "" {
		cfg.APIBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("APP_PASSWORD")); v != "" {
		cfg.AppPassword = v
	}
	if v := strings.TrimSpace(os.Getenv("POLL_INTERVAL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PollIntervalSeconds = n
		}
	}

	if cfg.PollIntervalSeconds <= 0 {
		cfg.PollIntervalSeconds = 4
	}
	return cfg, nil
}

// PollInterval converts the configured cadence to a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// GateEnabled reports whether the shared-secret access gate is active.
func (c Config) GateEnabled() bool {
	return strings.TrimSpace(c.AppPassword) != ""
}

func findConfigFile(path string) string {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
