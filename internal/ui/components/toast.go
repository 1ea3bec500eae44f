// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/patrimonial/patri-tui/internal/ui/styles"
)

// toastDuration is how long a toast stays visible.
const toastDuration = 4 * time.Second

// Toast is a transient notification shown above the active screen.
type Toast struct {
	message string
	isError bool
	shownAt time.Time
}

// ToastExpiredMsg asks the UI to re-render after a toast times out.
type ToastExpiredMsg struct{}

// ShowToast replaces the current toast and schedules its expiry.
func (t *Toast) ShowToast(message string, isError bool) tea.Cmd {
	t.message = message
	t.isError = isError
	t.shownAt = time.Now()
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{}
	})
}

// Active reports whether a toast is currently visible.
func (t *Toast) Active() bool {
	return t.message != "" && time.Since(t.shownAt) < toastDuration
}

// Clear hides the toast immediately.
func (t *Toast) Clear() {
	t.message = ""
}

// View renders the toast; empty string when inactive.
func (t *Toast) View(theme *styles.Theme) string {
	if !t.Active() {
		return ""
	}
	if t.isError {
		return theme.ToastError.Render(t.message)
	}
	return theme.Toast.Render(t.message)
}
