// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth manages the persisted access token.
//
// The token is stored as a single file at ~/.patri/token with 0600
// permissions. Writes are atomic so a crash mid-write never leaves a
// truncated token behind.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/patrimonial/patri-tui/internal/config"
	"github.com/patrimonial/patri-tui/internal/util"
)

// ErrNotLoggedIn is returned when no token is stored.
var ErrNotLoggedIn = errors.New("not logged in")

// TokenFileName is the name of the token file inside the config directory.
const TokenFileName = "token"

// Store persists and retrieves the access token.
type Store struct {
	mu   sync.RWMutex
	path string

	// cached token, loaded lazily
	token  string
	loaded bool
}

// NewStore creates a Store backed by ~/.patri/token.
func NewStore() (*Store, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return &Store{path: filepath.Join(dir, TokenFileName)}, nil
}

// NewStoreAt creates a Store backed by an explicit file path.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// EnvToken is an environment override for the access token, meant for
// scripted runs where no token file exists.
const EnvToken = "PATRI_TOKEN"

// Token returns the stored access token, or ErrNotLoggedIn when absent.
// The PATRI_TOKEN environment variable takes precedence over the file.
// Implements the api.TokenSource interface.
func (s *Store) Token() (string, error) {
	if tok := strings.TrimSpace(os.Getenv(EnvToken)); tok != "" {
		return tok, nil
	}

	s.mu.RLock()
	if s.loaded {
		tok := s.token
		s.mu.RUnlock()
		if tok == "" {
			return "", ErrNotLoggedIn
		}
		return tok, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		data, err := os.ReadFile(s.path)
		if err != nil {
			if os.IsNotExist(err) {
				s.token = ""
				s.loaded = true
				return "", ErrNotLoggedIn
			}
			return "", fmt.Errorf("failed to read token file: %w", err)
		}
		s.token = strings.TrimSpace(string(data))
		s.loaded = true
	}
	if s.token == "" {
		return "", ErrNotLoggedIn
	}
	return s.token, nil
}

// Save stores the token to disk atomically with 0600 permissions.
func (s *Store) Save(token string) error {
	if token == "" {
		return errors.New("refusing to save empty token")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := util.AtomicWriteFile(s.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	s.mu.Lock()
	s.token = token
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Clear removes the stored token. Missing file is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.loaded = true
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// LoggedIn reports whether a token is currently stored.
func (s *Store) LoggedIn() bool {
	_, err := s.Token()
	return err == nil
}

// =============================================================================
// TOKEN INSPECTION
// =============================================================================

// Claims holds the subset of JWT claims patri displays.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Expired reports whether the token expiry has passed. Tokens without an
// exp claim never report expired.
func (c Claims) Expired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}

// Inspect parses the token without verifying its signature. The server is
// the only verifier; the client only reads expiry for display and for
// skipping requests that are guaranteed to fail with 401.
func Inspect(token string) (Claims, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return Claims{}, fmt.Errorf("malformed token: %w", err)
	}

	var out Claims
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	return out, nil
}
