// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	s := NewStoreAt(path)

	if _, err := s.Token(); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn on empty store, got %v", err)
	}
	if s.LoggedIn() {
		t.Error("LoggedIn should be false before Save")
	}

	if err := s.Save("abc123"); err != nil {
		t.Fatalf("save: %v", err)
	}
	tok, err := s.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if tok != "abc123" {
		t.Errorf("expected abc123, got %q", tok)
	}
	if !s.LoggedIn() {
		t.Error("LoggedIn should be true after Save")
	}
}

func TestStoreEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	s := NewStoreAt(path)

	t.Setenv(EnvToken, "env-token")
	tok, err := s.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if tok != "env-token" {
		t.Errorf("expected env-token, got %q", tok)
	}
	if !s.LoggedIn() {
		t.Error("LoggedIn should be true with env token set")
	}

	// File token loses to the environment.
	if err := s.Save("file-token"); err != nil {
		t.Fatalf("save: %v", err)
	}
	tok, _ = s.Token()
	if tok != "env-token" {
		t.Errorf("env should take precedence, got %q", tok)
	}
}

func TestStorePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes not meaningful on windows")
	}
	path := filepath.Join(t.TempDir(), "token")
	s := NewStoreAt(path)
	if err := s.Save("secret"); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected 0600 permissions, got %o", perm)
	}
}

func TestStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	s := NewStoreAt(path)
	if err := s.Save("abc"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := s.Token(); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("expected ErrNotLoggedIn after Clear, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("token file should be removed")
	}
	// Clearing again is not an error.
	if err := s.Clear(); err != nil {
		t.Errorf("double clear: %v", err)
	}
}

func TestStoreRejectsEmptyToken(t *testing.T) {
	s := NewStoreAt(filepath.Join(t.TempDir(), "token"))
	if err := s.Save(""); err == nil {
		t.Error("expected error saving empty token")
	}
}

func TestStoreReadsTrimmedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("abc123\n"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := NewStoreAt(path)
	tok, err := s.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if tok != "abc123" {
		t.Errorf("expected trailing newline trimmed, got %q", tok)
	}
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestInspect(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := signedToken(t, jwt.MapClaims{
		"sub": "user@example.com",
		"exp": exp.Unix(),
	})

	claims, err := Inspect(raw)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if claims.Subject != "user@example.com" {
		t.Errorf("subject: got %q", claims.Subject)
	}
	if !claims.ExpiresAt.Equal(exp) {
		t.Errorf("expiry: got %v, want %v", claims.ExpiresAt, exp)
	}
	if claims.Expired() {
		t.Error("token expiring in an hour should not be expired")
	}
}

func TestInspectExpired(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{
		"sub": "user@example.com",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	claims, err := Inspect(raw)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !claims.Expired() {
		t.Error("token expired an hour ago should report Expired")
	}
}

func TestInspectNoExpiry(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{"sub": "u"})
	claims, err := Inspect(raw)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if claims.Expired() {
		t.Error("token without exp claim should never report Expired")
	}
}

func TestInspectMalformed(t *testing.T) {
	if _, err := Inspect("not-a-jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
}
