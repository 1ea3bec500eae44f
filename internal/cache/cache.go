// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache mirrors fetched server resources to a local SQLite
// database so the TUI can render instantly on startup and the status
// command works with stale data when the backend is unreachable.
//
// Policy is revalidate-on-mutation: every successful write against a
// resource invalidates its cached copy; reads repopulate it.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/patrimonial/patri-tui/internal/config"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Well-known cache keys. Per-step resources append the step ID.
const (
	KeyUser = "user:me"
	KeyFlow = "onboarding:flow"
)

// StepKey builds a per-step cache key, e.g. StepKey("chat:messages", 5).
func StepKey(prefix string, stepID int64) string {
	return fmt.Sprintf("%s:%d", prefix, stepID)
}

const schema = `
CREATE TABLE IF NOT EXISTS resources (
	key        TEXT PRIMARY KEY,
	body       TEXT NOT NULL,
	fetched_at INTEGER NOT NULL
);
`

// Cache is a key to JSON-snapshot store with TTL expiry.
type Cache struct {
	db  *sql.DB
	ttl time.Duration

	// now is swappable for tests
	now func() time.Time
}

// Open opens (creating if needed) the cache database at path.
func Open(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return &Cache{db: db, ttl: ttl, now: time.Now}, nil
}

// OpenDefault opens the cache at ~/.patri/cache.db using config settings.
// Returns nil (no error) when the cache is disabled.
func OpenDefault(cfg config.CacheConfig) (*Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return Open(filepath.Join(dir, "cache.db"), time.Duration(cfg.TTLHours)*time.Hour)
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.db.Close()
}

// Put stores v as JSON under key, replacing any previous snapshot.
func (c *Cache) Put(key string, v any) error {
	if c == nil {
		return nil
	}
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	_, err = c.db.Exec(
		`INSERT INTO resources (key, body, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		key, string(body), c.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Get loads the snapshot under key into out. Expired or absent entries
// return ErrMiss; expired rows are deleted on the way out.
func (c *Cache) Get(key string, out any) error {
	if c == nil {
		return ErrMiss
	}
	var body string
	var fetchedAt int64
	err := c.db.QueryRow(
		"SELECT body, fetched_at FROM resources WHERE key = ?", key).
		Scan(&body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("failed to read cache entry: %w", err)
	}

	if c.ttl > 0 && c.now().Sub(time.Unix(fetchedAt, 0)) > c.ttl {
		c.db.Exec("DELETE FROM resources WHERE key = ?", key)
		return ErrMiss
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return nil
}

// FetchedAt returns when the snapshot under key was stored.
func (c *Cache) FetchedAt(key string) (time.Time, error) {
	if c == nil {
		return time.Time{}, ErrMiss
	}
	var fetchedAt int64
	err := c.db.QueryRow(
		"SELECT fetched_at FROM resources WHERE key = ?", key).Scan(&fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrMiss
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return time.Unix(fetchedAt, 0), nil
}

// Invalidate removes the snapshot under key. Missing keys are fine.
func (c *Cache) Invalidate(keys ...string) error {
	if c == nil {
		return nil
	}
	for _, key := range keys {
		if _, err := c.db.Exec("DELETE FROM resources WHERE key = ?", key); err != nil {
			return fmt.Errorf("failed to invalidate %s: %w", key, err)
		}
	}
	return nil
}

// Clear drops every cached snapshot. Used on logout.
func (c *Cache) Clear() error {
	if c == nil {
		return nil
	}
	if _, err := c.db.Exec("DELETE FROM resources"); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
