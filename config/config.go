// Package config provides configuration parsing for status-pulse.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Theme selects the rendered image color palette.
type Theme string

const (
	// ThemeLight renders on a light background with dark text.
	ThemeLight Theme = "light"
	// ThemeDark renders on a dark background with light text.
	ThemeDark Theme = "dark"
)

// Config represents the status-pulse plugin configuration.
type Config struct {
	// OnlySuperuser restricts status commands to superusers. The permission
	// decision itself is made by the command dispatcher, not the core.
	OnlySuperuser bool `yaml:"only_superuser"`

	// CacheEnabled controls whether rendered artifacts are cached at all.
	CacheEnabled bool `yaml:"cache_enabled"`

	// CacheExpireMinutes is how long a cached artifact stays valid.
	CacheExpireMinutes int `yaml:"cache_expire_minutes"`

	// CacheDir is an optional directory for an on-disk artifact mirror.
	// Empty means memory-only caching.
	CacheDir string `yaml:"cache_dir"`

	// MaxCacheMB bounds the on-disk artifact mirror. Ignored when CacheDir
	// is empty.
	MaxCacheMB int `yaml:"max_cache_mb"`

	// Theme is the rendered image theme: "light" or "dark".
	Theme string `yaml:"theme"`

	// ShowNetwork enables the network panel (and its sampling cost).
	ShowNetwork bool `yaml:"show_network"`

	// ShowProcessCount enables the process-count line (and its sampling cost).
	ShowProcessCount bool `yaml:"show_process_count"`

	// LogFile is the path for log output. Empty logs to stderr.
	LogFile string `yaml:"log_file"`
}

// RenderOptions is the immutable per-request view of everything that affects
// rendered output. It is derived from Config once and never mutated.
type RenderOptions struct {
	Theme            Theme
	ShowNetwork      bool
	ShowProcessCount bool
}

// ConfigError describes an invalid configuration value. It is raised at load
// time so a bad theme or TTL can never surface mid-render.
type ConfigError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		OnlySuperuser:      false,
		CacheEnabled:       true,
		CacheExpireMinutes: 5,
		CacheDir:           "",
		MaxCacheMB:         20,
		Theme:              string(ThemeLight),
		ShowNetwork:        true,
		ShowProcessCount:   true,
		LogFile:            "",
	}
}

// DefaultConfigPath returns the conventional config file location.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "status-pulse", "config.yaml")
}

// LoadConfig loads configuration from a YAML file, merging with defaults.
// A missing file is not an error; the defaults are returned. The result is
// validated before being returned.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for invalid values. It returns a
// *ConfigError describing the first offending field.
func (c *Config) Validate() error {
	switch Theme(c.Theme) {
	case ThemeLight, ThemeDark:
	default:
		return &ConfigError{
			Field:  "theme",
			Reason: fmt.Sprintf("must be %q or %q, got %q", ThemeLight, ThemeDark, c.Theme),
		}
	}

	if c.CacheExpireMinutes < 0 {
		return &ConfigError{
			Field:  "cache_expire_minutes",
			Reason: fmt.Sprintf("must be non-negative, got %d", c.CacheExpireMinutes),
		}
	}

	if c.MaxCacheMB < 0 {
		return &ConfigError{
			Field:  "max_cache_mb",
			Reason: fmt.Sprintf("must be non-negative, got %d", c.MaxCacheMB),
		}
	}

	return nil
}

// RenderOptions derives the immutable render options for this configuration.
func (c *Config) RenderOptions() RenderOptions {
	return RenderOptions{
		Theme:            Theme(c.Theme),
		ShowNetwork:      c.ShowNetwork,
		ShowProcessCount: c.ShowProcessCount,
	}
}

// CacheTTL returns the artifact time-to-live as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheExpireMinutes) * time.Minute
}
