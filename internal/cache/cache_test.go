// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/patrimonial/patri-tui/internal/model"
)

func testCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"), ttl)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutGetRoundTrip(t *testing.T) {
	c := testCache(t, time.Hour)

	in := model.User{ID: "u7", Email: "user@example.com"}
	if err := c.Put(KeyUser, in); err != nil {
		t.Fatalf("put: %v", err)
	}

	var out model.User
	if err := c.Get(KeyUser, &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.ID != "u7" || out.Email != "user@example.com" {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestGetMissing(t *testing.T) {
	c := testCache(t, time.Hour)
	var out model.User
	if err := c.Get("absent", &out); !errors.Is(err, ErrMiss) {
		t.Errorf("expected ErrMiss, got %v", err)
	}
}

func TestExpiry(t *testing.T) {
	c := testCache(t, time.Hour)
	if err := c.Put(KeyFlow, model.UserOnboardingFlow{ID: 1}); err != nil {
		t.Fatalf("put: %v", err)
	}

	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	var out model.UserOnboardingFlow
	if err := c.Get(KeyFlow, &out); !errors.Is(err, ErrMiss) {
		t.Errorf("expected ErrMiss after TTL, got %v", err)
	}
}

func TestPutReplaces(t *testing.T) {
	c := testCache(t, time.Hour)
	c.Put(KeyUser, model.User{ID: "u1"})
	c.Put(KeyUser, model.User{ID: "u2"})

	var out model.User
	if err := c.Get(KeyUser, &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.ID != "u2" {
		t.Errorf("expected replacement snapshot, got ID %s", out.ID)
	}
}

func TestInvalidate(t *testing.T) {
	c := testCache(t, time.Hour)
	c.Put(KeyFlow, model.UserOnboardingFlow{ID: 1})
	c.Put(StepKey("chat:messages", 5), []model.ChatMessage{{ID: "m1"}})

	if err := c.Invalidate(KeyFlow, StepKey("chat:messages", 5)); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	var flow model.UserOnboardingFlow
	if err := c.Get(KeyFlow, &flow); !errors.Is(err, ErrMiss) {
		t.Errorf("expected ErrMiss after invalidate, got %v", err)
	}
	// Invalidating a missing key is not an error.
	if err := c.Invalidate("never-existed"); err != nil {
		t.Errorf("invalidate missing key: %v", err)
	}
}

func TestClear(t *testing.T) {
	c := testCache(t, time.Hour)
	c.Put(KeyUser, model.User{ID: "u1"})
	c.Put(KeyFlow, model.UserOnboardingFlow{ID: 1})
	if err := c.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	var u model.User
	if err := c.Get(KeyUser, &u); !errors.Is(err, ErrMiss) {
		t.Errorf("expected empty cache after Clear, got %v", err)
	}
}

func TestNilCacheIsSafe(t *testing.T) {
	var c *Cache
	if err := c.Put(KeyUser, model.User{}); err != nil {
		t.Errorf("nil Put: %v", err)
	}
	var u model.User
	if err := c.Get(KeyUser, &u); !errors.Is(err, ErrMiss) {
		t.Errorf("nil Get should miss, got %v", err)
	}
	if err := c.Invalidate(KeyUser); err != nil {
		t.Errorf("nil Invalidate: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}
