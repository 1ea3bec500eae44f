// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("expected base URL %q, got %q", DefaultBaseURL, cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSecs != 60 {
		t.Errorf("expected timeout 60, got %d", cfg.API.TimeoutSecs)
	}
	if !cfg.Cache.Enabled {
		t.Error("expected cache enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad url", func(c *Config) { c.API.BaseURL = "not a url" }, "api.base_url"},
		{"timeout too low", func(c *Config) { c.API.TimeoutSecs = 0 }, "api.timeout_secs"},
		{"timeout too high", func(c *Config) { c.API.TimeoutSecs = 9999 }, "api.timeout_secs"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"negative ttl", func(c *Config) { c.Cache.TTLHours = -1 }, "cache.ttl_hours"},
		{"bad log level", func(c *Config) { c.Log.Level = "chatty" }, "log.level"},
		{"negative session", func(c *Config) { c.Session.TimeoutMins = -5 }, "session.timeout_mins"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error mentioning %q, got: %v", tt.field, err)
			}
		})
	}
}

func TestSessionTimeoutZeroIsValid(t *testing.T) {
	cfg := Default()
	cfg.Session.TimeoutMins = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("timeout 0 (disabled) should be valid: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PATRI_API_URL", "https://api.example.com/api/")
	t.Setenv("PATRI_THEME", "light")
	t.Setenv("PATRI_LOG_LEVEL", "debug")
	t.Setenv("PATRI_CACHE", "false")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.API.BaseURL != "https://api.example.com/api" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.API.BaseURL)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("expected theme light, got %q", cfg.UI.Theme)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected level debug, got %q", cfg.Log.Level)
	}
	if cfg.Cache.Enabled {
		t.Error("expected cache disabled via PATRI_CACHE=false")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.API.BaseURL = "https://onboard.example.com/api"
	cfg.UI.Theme = "light"
	cfg.Session.TimeoutMins = 15

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		t.Fatalf("encode: %v", err)
	}
	f.Close()

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.API.BaseURL != cfg.API.BaseURL {
		t.Errorf("base URL not preserved: %q", loaded.API.BaseURL)
	}
	if loaded.UI.Theme != "light" {
		t.Errorf("theme not preserved: %q", loaded.UI.Theme)
	}
	if loaded.Session.TimeoutMins != 15 {
		t.Errorf("session timeout not preserved: %d", loaded.Session.TimeoutMins)
	}
}

func TestLoadFillsDefaultsForPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	partial := "[api]\nbase_url = \"https://partial.example.com/api\"\n"
	if err := os.WriteFile(path, []byte(partial), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != "https://partial.example.com/api" {
		t.Errorf("explicit value lost: %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSecs != 60 {
		t.Errorf("expected default timeout filled in, got %d", cfg.API.TimeoutSecs)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level filled in, got %q", cfg.Log.Level)
	}
}
