// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"testing"
	"time"
)

func TestNewManagerNotExpired(t *testing.T) {
	m := NewManager(DefaultConfig())
	if m.Expired() {
		t.Error("fresh session must not be expired")
	}
	if m.SessionID() == "" {
		t.Error("session ID must be set")
	}
}

func TestExpiry(t *testing.T) {
	m := NewManager(Config{Timeout: 10 * time.Millisecond})
	time.Sleep(20 * time.Millisecond)
	if !m.Expired() {
		t.Error("session should be expired after the timeout elapses")
	}

	m.RecordActivity()
	if m.Expired() {
		t.Error("activity must reset the idle clock")
	}
}

func TestZeroTimeoutDisablesExpiry(t *testing.T) {
	m := NewManager(Config{Timeout: 0})
	time.Sleep(5 * time.Millisecond)
	if m.Expired() {
		t.Error("timeout 0 must disable idle logout")
	}
	if m.RemainingTime() != 0 {
		t.Error("RemainingTime is 0 when the timeout is disabled")
	}
}

func TestRemainingTime(t *testing.T) {
	m := NewManager(Config{Timeout: time.Hour})
	r := m.RemainingTime()
	if r <= 0 || r > time.Hour {
		t.Errorf("unexpected remaining time %v", r)
	}
}

func TestDirtyTracking(t *testing.T) {
	m := NewManager(DefaultConfig())
	if m.IsDirty() {
		t.Error("fresh session must be clean")
	}
	m.MarkDirty()
	if !m.IsDirty() {
		t.Error("MarkDirty must set the flag")
	}
	m.MarkClean()
	if m.IsDirty() {
		t.Error("MarkClean must clear the flag")
	}
}

func TestHandleTickEmitsTimeout(t *testing.T) {
	m := NewManager(Config{Timeout: time.Millisecond, WarningBefore: 0})
	time.Sleep(5 * time.Millisecond)

	cmd := m.HandleTick()
	if cmd == nil {
		t.Fatal("HandleTick must always return a command")
	}
	// The batch contains a TimeoutMsg producer; executing the batch is a
	// bubbletea concern, so we just assert the manager state here.
	if !m.Expired() {
		t.Error("manager should report expired")
	}
}
