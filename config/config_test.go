package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if !cfg.CacheEnabled {
		t.Error("cache should be enabled by default")
	}
	if cfg.CacheExpireMinutes != 5 {
		t.Errorf("default expiry = %d minutes, want 5", cfg.CacheExpireMinutes)
	}
	if cfg.Theme != string(ThemeLight) {
		t.Errorf("default theme = %q, want light", cfg.Theme)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.CacheExpireMinutes != DefaultConfig().CacheExpireMinutes {
		t.Error("missing file should yield defaults")
	}
}

func TestLoadConfigMergesOverDefaults(t *testing.T) {
	path := writeConfigFile(t, "theme: dark\ncache_expire_minutes: 10\nshow_network: false\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Theme != string(ThemeDark) {
		t.Errorf("theme = %q, want dark", cfg.Theme)
	}
	if cfg.CacheExpireMinutes != 10 {
		t.Errorf("cache_expire_minutes = %d, want 10", cfg.CacheExpireMinutes)
	}
	if cfg.ShowNetwork {
		t.Error("show_network should be overridden to false")
	}
	if !cfg.ShowProcessCount {
		t.Error("show_process_count should keep its default")
	}
}

func TestLoadConfigRejectsUnknownTheme(t *testing.T) {
	path := writeConfigFile(t, "theme: blue\n")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for theme=blue")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T: %v", err, err)
	}
	if cfgErr.Field != "theme" {
		t.Errorf("field = %q, want theme", cfgErr.Field)
	}
}

func TestLoadConfigRejectsNegativeExpiry(t *testing.T) {
	path := writeConfigFile(t, "cache_expire_minutes: -1\n")

	_, err := LoadConfig(path)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %v", err)
	}
	if cfgErr.Field != "cache_expire_minutes" {
		t.Errorf("field = %q, want cache_expire_minutes", cfgErr.Field)
	}
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "theme: [unclosed\n")

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRenderOptionsDerivation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Theme = string(ThemeDark)
	cfg.ShowNetwork = false

	opts := cfg.RenderOptions()
	if opts.Theme != ThemeDark {
		t.Errorf("theme = %q, want dark", opts.Theme)
	}
	if opts.ShowNetwork {
		t.Error("ShowNetwork should be false")
	}
	if !opts.ShowProcessCount {
		t.Error("ShowProcessCount should be true")
	}
}

func TestCacheTTL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheExpireMinutes = 7
	if got := cfg.CacheTTL(); got != 7*time.Minute {
		t.Errorf("CacheTTL = %v, want 7m", got)
	}

	cfg.CacheExpireMinutes = 0
	if got := cfg.CacheTTL(); got != 0 {
		t.Errorf("CacheTTL = %v, want 0", got)
	}
}
