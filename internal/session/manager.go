// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks user activity and enforces the idle timeout.
//
// Onboarding collects sensitive financial data, so an abandoned terminal
// logs itself out. The manager also drives periodic draft saves of
// partially filled form data.
package session

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// Manager tracks idle time and draft state for one TUI session.
type Manager struct {
	mu sync.Mutex

	sessionID    string
	startTime    time.Time
	lastActivity time.Time

	// timeout of 0 disables idle logout
	timeout       time.Duration
	warningBefore time.Duration
	warningShown  bool

	// draft saving: dirty means the active step holds unsent form data
	draftInterval time.Duration
	lastDraftSave time.Time
	dirty         bool
}

// Config holds session manager settings.
type Config struct {
	// Timeout is the idle duration before forced logout; 0 disables.
	Timeout time.Duration
	// WarningBefore is how long before timeout to warn the user.
	WarningBefore time.Duration
	// DraftInterval is how often dirty step data is pushed to the server.
	DraftInterval time.Duration
}

// DefaultConfig returns the default session settings.
func DefaultConfig() Config {
	return Config{
		Timeout:       30 * time.Minute,
		WarningBefore: 2 * time.Minute,
		DraftInterval: 30 * time.Second,
	}
}

// NewManager creates a session manager.
func NewManager(cfg Config) *Manager {
	now := time.Now()
	return &Manager{
		sessionID:     uuid.NewString(),
		startTime:     now,
		lastActivity:  now,
		timeout:       cfg.Timeout,
		warningBefore: cfg.WarningBefore,
		draftInterval: cfg.DraftInterval,
		lastDraftSave: now,
	}
}

// SessionID returns the unique ID for this session.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// Duration returns how long the session has been running.
func (m *Manager) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.startTime)
}

// IdleTime returns how long since the last user input.
func (m *Manager) IdleTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.lastActivity)
}

// RemainingTime returns time until idle logout; 0 when already expired
// or when the timeout is disabled.
func (m *Manager) RemainingTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timeout == 0 {
		return 0
	}
	remaining := m.timeout - time.Since(m.lastActivity)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RecordActivity resets the idle clock. Call on every key press.
func (m *Manager) RecordActivity() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActivity = time.Now()
	m.warningShown = false
}

// MarkDirty flags unsent draft data on the active step.
func (m *Manager) MarkDirty() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirty = true
}

// MarkClean clears the dirty flag after a successful draft save.
func (m *Manager) MarkClean() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirty = false
	m.lastDraftSave = time.Now()
}

// IsDirty reports whether draft data is pending.
func (m *Manager) IsDirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirty
}

// Expired reports whether the idle timeout has elapsed.
func (m *Manager) Expired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timeout > 0 && time.Since(m.lastActivity) >= m.timeout
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// TickMsg is sent once a second to re-evaluate session state.
type TickMsg struct {
	Time time.Time
}

// TimeoutWarningMsg tells the UI to show the idle-logout warning.
type TimeoutWarningMsg struct {
	Remaining time.Duration
}

// TimeoutMsg tells the UI to log out now.
type TimeoutMsg struct{}

// SaveDraftMsg tells the active step to push its draft data.
type SaveDraftMsg struct{}

// TickCmd schedules the next session tick.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// HandleTick evaluates timeouts and draft saves, emits the matching
// messages, and reschedules itself.
func (m *Manager) HandleTick() tea.Cmd {
	m.mu.Lock()
	idle := time.Since(m.lastActivity)
	expired := m.timeout > 0 && idle >= m.timeout

	warn := false
	var remaining time.Duration
	if m.timeout > 0 && !m.warningShown && !expired && idle >= m.timeout-m.warningBefore {
		warn = true
		remaining = m.timeout - idle
		m.warningShown = true
	}

	saveDraft := m.dirty && time.Since(m.lastDraftSave) >= m.draftInterval
	m.mu.Unlock()

	var cmds []tea.Cmd
	if warn {
		cmds = append(cmds, func() tea.Msg { return TimeoutWarningMsg{Remaining: remaining} })
	}
	if expired {
		cmds = append(cmds, func() tea.Msg { return TimeoutMsg{} })
	}
	if saveDraft {
		cmds = append(cmds, func() tea.Msg { return SaveDraftMsg{} })
	}
	cmds = append(cmds, TickCmd())
	return tea.Batch(cmds...)
}
