// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.DefaultModel != Default().DefaultModel {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
	if cfg.Generation.TimeoutSecs != 60 {
		t.Errorf("TimeoutSecs = %d", cfg.Generation.TimeoutSecs)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.DefaultModel = "gemini-2.5-pro"
	cfg.Generation.MaxRetries = 5
	cfg.Storage.Backend = "sqlite"
	cfg.Logging.Level = "debug"

	if err := SaveToPath(cfg, path); err != nil {
		t.Fatalf("SaveToPath: %v", err)
	}

	got, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if got.DefaultModel != "gemini-2.5-pro" {
		t.Errorf("DefaultModel = %q", got.DefaultModel)
	}
	if got.Generation.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d", got.Generation.MaxRetries)
	}
	if got.Storage.Backend != "sqlite" {
		t.Errorf("Backend = %q", got.Storage.Backend)
	}
	if got.Logging.Level != "debug" {
		t.Errorf("Level = %q", got.Logging.Level)
	}
}

func TestSaveRestrictsPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := SaveToPath(Default(), path); err != nil {
		t.Fatalf("SaveToPath: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 0600", perm)
	}
}

func TestPartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("default_model = \"gemini-2.0-flash\"\n"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.DefaultModel != "gemini-2.0-flash" {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
	if cfg.Generation.TimeoutSecs != 60 || cfg.Storage.Backend != "file" {
		t.Errorf("defaults not filled: %+v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ZAVIYE_MODEL", "gemini-2.0-flash-lite")
	t.Setenv("ZAVIYE_STORAGE_BACKEND", "memory")
	t.Setenv("ZAVIYE_LOG_LEVEL", "warn")

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.DefaultModel != "gemini-2.0-flash-lite" {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("Backend = %q", cfg.Storage.Backend)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %q", cfg.Logging.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown model", func(c *Config) { c.DefaultModel = "gpt-99" }},
		{"bad backend", func(c *Config) { c.Storage.Backend = "redis" }},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"zero timeout", func(c *Config) { c.Generation.TimeoutSecs = -1 }},
		{"excessive retries", func(c *Config) { c.Generation.MaxRetries = 50 }},
		{"negative pacing", func(c *Config) { c.Generation.RequestsPerSec = -1 }},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: validation passed", tc.name)
		}
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("default_model = \"nope\"\n"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("invalid config loaded without error")
	}
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := SaveToPath(Default(), path); err != nil {
		t.Fatalf("SaveToPath: %v", err)
	}

	changed := make(chan *Config, 1)
	w, err := NewWatcher(path, func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()
	if err := w.Watch(); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	updated := Default()
	updated.DefaultModel = "gemini-2.5-pro"
	if err := SaveToPath(updated, path); err != nil {
		t.Fatalf("SaveToPath: %v", err)
	}

	select {
	case cfg := <-changed:
		if cfg.DefaultModel != "gemini-2.5-pro" {
			t.Errorf("reloaded DefaultModel = %q", cfg.DefaultModel)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never fired")
	}
}
