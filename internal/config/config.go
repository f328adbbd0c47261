// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for zaviye.
//
// Configuration comes from ~/.zaviye/config.toml with sensible defaults,
// environment variable overrides, and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/zaviye/internal/model"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete zaviye configuration.
type Config struct {
	// DefaultModel is the global model id used by personas without an override.
	DefaultModel string `toml:"default_model"`

	// Generation configures the generation service client.
	Generation GenerationConfig `toml:"generation"`

	// Storage configures the durable store backend.
	Storage StorageConfig `toml:"storage"`

	// Logging configures the application log.
	Logging LoggingConfig `toml:"logging"`
}

// GenerationConfig contains generation service client settings.
type GenerationConfig struct {
	// BaseURL is the generation endpoint.
	BaseURL string `toml:"base_url"`
	// TimeoutSecs bounds each request attempt.
	TimeoutSecs int `toml:"timeout_secs"`
	// MaxRetries is the total attempt count for transient failures.
	MaxRetries int `toml:"max_retries"`
	// RetryDelaySecs is the linear backoff unit between retries.
	RetryDelaySecs int `toml:"retry_delay_secs"`
	// RequestsPerSec enables client-side pacing when positive.
	RequestsPerSec float64 `toml:"requests_per_sec"`
}

// StorageConfig contains durable store settings.
type StorageConfig struct {
	// Backend selects the store implementation: "file", "sqlite", "memory".
	Backend string `toml:"backend"`
	// Dir is where store files live (empty = ~/.zaviye/data).
	Dir string `toml:"dir"`
}

// LoggingConfig contains log settings.
type LoggingConfig struct {
	// Level is the minimum level: "debug", "info", "warn", "error".
	Level string `toml:"level"`
	// Dir is where log files live (empty = ~/.zaviye/logs).
	Dir string `toml:"dir"`
	// MaxSizeMB caps one log file before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
	// MaxBackups is how many rotated files to keep.
	MaxBackups int `toml:"max_backups"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		DefaultModel: model.DefaultModelID,
		Generation: GenerationConfig{
			BaseURL:        "http://127.0.0.1:8801/api/generate",
			TimeoutSecs:    60,
			MaxRetries:     3,
			RetryDelaySecs: 1,
		},
		Storage: StorageConfig{
			Backend: "file",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// GenTimeout returns the per-attempt timeout as a duration.
func (g GenerationConfig) GenTimeout() time.Duration {
	return time.Duration(g.TimeoutSecs) * time.Second
}

// RetryDelay returns the backoff unit as a duration.
func (g GenerationConfig) RetryDelay() time.Duration {
	return time.Duration(g.RetryDelaySecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the zaviye configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".zaviye"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// DataDir resolves the storage directory, creating it if needed.
func (c *Config) DataDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, os.MkdirAll(c.Storage.Dir, 0755)
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	data := filepath.Join(dir, "data")
	return data, os.MkdirAll(data, 0755)
}

// LogDir resolves the log directory.
func (c *Config) LogDir() (string, error) {
	if c.Logging.Dir != "" {
		return c.Logging.Dir, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads the configuration from the default path, falling back to
// defaults when no file exists. Environment overrides apply last.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file. A missing
// file is not an error; defaults are used.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}
	cfg.SetDefaults()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the default TOML file with owner-only
// permissions.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to a specific TOML file.
func SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# zaviye configuration file")
	fmt.Fprintln(file, "# Generated by zaviye - edit with care")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// SetDefaults fills in zero values with defaults.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.DefaultModel == "" {
		c.DefaultModel = defaults.DefaultModel
	}
	if c.Generation.BaseURL == "" {
		c.Generation.BaseURL = defaults.Generation.BaseURL
	}
	if c.Generation.TimeoutSecs == 0 {
		c.Generation.TimeoutSecs = defaults.Generation.TimeoutSecs
	}
	if c.Generation.MaxRetries == 0 {
		c.Generation.MaxRetries = defaults.Generation.MaxRetries
	}
	if c.Generation.RetryDelaySecs == 0 {
		c.Generation.RetryDelaySecs = defaults.Generation.RetryDelaySecs
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = defaults.Logging.MaxSizeMB
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = defaults.Logging.MaxBackups
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if !model.IsKnownModel(c.DefaultModel) {
		errs = append(errs, ValidationError{
			Field:   "default_model",
			Message: fmt.Sprintf("unknown model '%s'", c.DefaultModel),
		})
	}

	if c.Generation.TimeoutSecs < 1 {
		errs = append(errs, ValidationError{
			Field:   "generation.timeout_secs",
			Message: fmt.Sprintf("must be at least 1, got %d", c.Generation.TimeoutSecs),
		})
	}
	if c.Generation.MaxRetries < 1 || c.Generation.MaxRetries > 10 {
		errs = append(errs, ValidationError{
			Field:   "generation.max_retries",
			Message: fmt.Sprintf("must be 1-10, got %d", c.Generation.MaxRetries),
		})
	}
	if c.Generation.RequestsPerSec < 0 {
		errs = append(errs, ValidationError{
			Field:   "generation.requests_per_sec",
			Message: "cannot be negative",
		})
	}

	validBackends := map[string]bool{"file": true, "sqlite": true, "memory": true}
	if !validBackends[strings.ToLower(c.Storage.Backend)] {
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: file, sqlite, memory", c.Storage.Backend),
		})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - ZAVIYE_MODEL: overrides default_model
//   - ZAVIYE_GEN_URL: overrides generation.base_url
//   - ZAVIYE_STORAGE_BACKEND: overrides storage.backend
//   - ZAVIYE_STORAGE_DIR: overrides storage.dir
//   - ZAVIYE_LOG_LEVEL: overrides logging.level
//   - ZAVIYE_LOG_DIR: overrides logging.dir
func (c *Config) ApplyEnvOverrides() {
	if m := os.Getenv("ZAVIYE_MODEL"); m != "" {
		c.DefaultModel = m
	}
	if u := os.Getenv("ZAVIYE_GEN_URL"); u != "" {
		c.Generation.BaseURL = u
	}
	if b := os.Getenv("ZAVIYE_STORAGE_BACKEND"); b != "" {
		c.Storage.Backend = b
	}
	if d := os.Getenv("ZAVIYE_STORAGE_DIR"); d != "" {
		c.Storage.Dir = d
	}
	if l := os.Getenv("ZAVIYE_LOG_LEVEL"); l != "" {
		c.Logging.Level = l
	}
	if d := os.Getenv("ZAVIYE_LOG_DIR"); d != "" {
		c.Logging.Dir = d
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
