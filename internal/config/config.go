// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for patri.
//
// Configuration lives at ~/.patri/config.toml with sensible defaults and
// environment variable overrides applied last.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete patri client configuration.
type Config struct {
	Version string `toml:"version"`

	API     APIConfig     `toml:"api"`
	UI      UIConfig      `toml:"ui"`
	Cache   CacheConfig   `toml:"cache"`
	Log     LogConfig     `toml:"log"`
	Session SessionConfig `toml:"session"`
}

// APIConfig configures the onboarding API endpoint.
type APIConfig struct {
	// BaseURL is the base URL for all API calls, e.g. http://localhost:8000/api
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the request timeout for non-streaming calls.
	// Streaming reads are controlled by context, never by this timeout.
	TimeoutSecs int `toml:"timeout_secs"`
}

// UIConfig configures the terminal interface.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// CompactMode uses a denser layout
	CompactMode bool `toml:"compact_mode"`
	// ShowProgress displays the data-collection progress bar in the chat step
	ShowProgress bool `toml:"show_progress"`
}

// CacheConfig configures the local resource cache.
type CacheConfig struct {
	// Enabled controls whether fetched resources are mirrored to disk
	Enabled bool `toml:"enabled"`
	// TTLHours is how long a cached snapshot is considered fresh
	TTLHours int `toml:"ttl_hours"`
}

// LogConfig configures file logging. The TUI owns stdout, so logs always
// go to a file.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error"
	Level string `toml:"level"`
	// Path overrides the default log location (~/.patri/patri.log)
	Path string `toml:"path"`
}

// SessionConfig configures idle-session handling.
type SessionConfig struct {
	// TimeoutMins logs the user out of the TUI after this many idle minutes.
	// 0 disables the idle timeout.
	TimeoutMins int `toml:"timeout_mins"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultBaseURL matches the API's development default.
const DefaultBaseURL = "http://localhost:8000/api"

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		API: APIConfig{
			BaseURL:     DefaultBaseURL,
			TimeoutSecs: 60,
		},
		UI: UIConfig{
			Theme:        "dark",
			CompactMode:  false,
			ShowProgress: true,
		},
		Cache: CacheConfig{
			Enabled:  true,
			TTLHours: 24,
		},
		Log: LogConfig{
			Level: "info",
		},
		Session: SessionConfig{
			TimeoutMins: 30,
		},
	}
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// Dir returns the patri configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".patri"), nil
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

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads configuration from ~/.patri/config.toml, falling back to
// defaults when the file is absent. Environment overrides apply last.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to decode config file: %w", err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific TOML file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to ~/.patri/config.toml.
// SECURITY: The file is created 0600; it may hold a private API endpoint.
func Save(cfg *Config) error {
	if err := EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	path, err := Path()
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# patri configuration file")
	fmt.Fprintln(file, "# Generated by patri - edit with care")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// fillDefaults fills in any missing values with defaults.
func (c *Config) fillDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = defaults.API.TimeoutSecs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.Cache.TTLHours == 0 {
		c.Cache.TTLHours = defaults.Cache.TTLHours
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
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
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("invalid URL '%s'", c.API.BaseURL),
		})
	}
	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_secs",
			Message: fmt.Sprintf("must be 1-600, got %d", c.API.TimeoutSecs),
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if c.Cache.TTLHours < 0 {
		errs = append(errs, ValidationError{
			Field:   "cache.ttl_hours",
			Message: "must be non-negative",
		})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if c.Session.TimeoutMins < 0 || c.Session.TimeoutMins > 480 {
		errs = append(errs, ValidationError{
			Field:   "session.timeout_mins",
			Message: fmt.Sprintf("must be 0-480, got %d", c.Session.TimeoutMins),
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
//   - PATRI_API_URL: overrides api.base_url
//   - PATRI_THEME: overrides ui.theme
//   - PATRI_LOG_LEVEL: overrides log.level
//   - PATRI_CACHE: set to "0" or "false" to disable the local cache
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("PATRI_API_URL"); u != "" {
		c.API.BaseURL = strings.TrimSuffix(u, "/")
	}
	if theme := os.Getenv("PATRI_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if level := os.Getenv("PATRI_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if cache := os.Getenv("PATRI_CACHE"); cache != "" {
		c.Cache.Enabled = cache != "0" && strings.ToLower(cache) != "false"
	}
}

// =============================================================================
// SINGLETON (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
