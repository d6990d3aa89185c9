// Package config loads application configuration. Precedence, lowest to
// highest: built-in defaults, YAML config file, environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds all configuration for the application.
type Config struct {
	// Logging configuration
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	// Storage configuration
	Storage struct {
		// Dir is the directory holding the SQLite database file.
		Dir string `yaml:"dir"`
	} `yaml:"storage"`

	// Fetch configuration for provider HTTP traffic
	Fetch struct {
		Source    string   `yaml:"source"`
		Timeout   Duration `yaml:"timeout"`
		UserAgent string   `yaml:"user_agent"`
		// Parallelism bounds concurrent book scrapes during a search.
		Parallelism int `yaml:"parallelism"`
	} `yaml:"fetch"`
}

// Default returns the built-in defaults.
func Default() *Config {
	cfg := &Config{}
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "console"
	cfg.Storage.Dir = defaultStorageDir()
	cfg.Fetch.Source = "royalroad"
	cfg.Fetch.Timeout = Duration(30 * time.Second)
	cfg.Fetch.UserAgent = "shelfkeeper/1.0"
	cfg.Fetch.Parallelism = 4
	return cfg
}

// Load reads configuration from the given YAML file (if it exists) and then
// applies environment variable overrides. An empty path skips the file step.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Missing file is fine, defaults plus env apply.
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	loadFromEnv(cfg)

	if cfg.Fetch.Parallelism < 1 {
		cfg.Fetch.Parallelism = 1
	}

	return cfg, nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("SHELFKEEPER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SHELFKEEPER_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("SHELFKEEPER_DATA_DIR"); v != "" {
		cfg.Storage.Dir = v
	}
	if v := os.Getenv("SHELFKEEPER_SOURCE"); v != "" {
		cfg.Fetch.Source = v
	}
	if v := os.Getenv("SHELFKEEPER_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Fetch.Timeout = Duration(d)
		}
	}
	if v := os.Getenv("SHELFKEEPER_USER_AGENT"); v != "" {
		cfg.Fetch.UserAgent = v
	}
}

func defaultStorageDir() string {
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, "shelfkeeper")
	}
	return "./data"
}
