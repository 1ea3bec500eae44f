// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the patri TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette colors. Kept small: the onboarding UI is mostly text.
const (
	ColorPrimary = "#7D56F4" // brand purple
	ColorAccent  = "#04B575" // confirmation green
	ColorWarning = "#FFB454"
	ColorError   = "#FF5F5F"
	ColorMuted   = "#6C6C6C"
	ColorBorder  = "#3C3C3C"
)

// Theme holds the styled components for the application.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// App chrome
	App      lipgloss.Style
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Help     lipgloss.Style

	// Step indicator
	StepActive   lipgloss.Style
	StepComplete lipgloss.Style
	StepPending  lipgloss.Style
	StepGated    lipgloss.Style

	// Chat
	UserBubble        lipgloss.Style
	AssistantBubble   lipgloss.Style
	SystemBubble      lipgloss.Style
	TypingIndicator   lipgloss.Style
	StructuredSummary lipgloss.Style

	// Forms
	Label      lipgloss.Style
	FieldError lipgloss.Style
	InputFocus lipgloss.Style
	InputBlur  lipgloss.Style

	// Documents
	DocUploaded  lipgloss.Style
	DocValidated lipgloss.Style
	DocInvalid   lipgloss.Style
	DocPending   lipgloss.Style
	Required     lipgloss.Style

	// Feedback
	Toast      lipgloss.Style
	ToastError lipgloss.Style
	ErrorCard  lipgloss.Style
	Success    lipgloss.Style
	Muted      lipgloss.Style
}

// NewTheme builds a Theme for the given appearance.
func NewTheme(dark bool) *Theme {
	t := &Theme{
		IsDark:       dark,
		ColorProfile: termenv.ColorProfile(),
	}

	primary := lipgloss.Color(ColorPrimary)
	accent := lipgloss.Color(ColorAccent)
	warning := lipgloss.Color(ColorWarning)
	errc := lipgloss.Color(ColorError)
	muted := lipgloss.Color(ColorMuted)
	border := lipgloss.Color(ColorBorder)

	t.App = lipgloss.NewStyle().Padding(1, 2)
	t.Title = lipgloss.NewStyle().Bold(true).Foreground(primary)
	t.Subtitle = lipgloss.NewStyle().Foreground(muted)
	t.Help = lipgloss.NewStyle().Foreground(muted)

	t.StepActive = lipgloss.NewStyle().Bold(true).Foreground(primary)
	t.StepComplete = lipgloss.NewStyle().Foreground(accent)
	t.StepPending = lipgloss.NewStyle().Foreground(muted)
	t.StepGated = lipgloss.NewStyle().Foreground(muted).Faint(true)

	t.UserBubble = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(primary).
		Padding(0, 1)
	t.AssistantBubble = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
	t.SystemBubble = lipgloss.NewStyle().Foreground(muted).Italic(true)
	t.TypingIndicator = lipgloss.NewStyle().Foreground(muted).Italic(true)
	t.StructuredSummary = lipgloss.NewStyle().Foreground(accent)

	t.Label = lipgloss.NewStyle().Bold(true)
	t.FieldError = lipgloss.NewStyle().Foreground(errc)
	t.InputFocus = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(primary).
		Padding(0, 1)
	t.InputBlur = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(border).
		Padding(0, 1)

	t.DocUploaded = lipgloss.NewStyle().Foreground(warning)
	t.DocValidated = lipgloss.NewStyle().Foreground(accent)
	t.DocInvalid = lipgloss.NewStyle().Foreground(errc)
	t.DocPending = lipgloss.NewStyle().Foreground(muted)
	t.Required = lipgloss.NewStyle().Foreground(errc).Bold(true)

	t.Toast = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)
	t.ToastError = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(errc).
		Padding(0, 1)
	t.ErrorCard = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(errc).
		Padding(1, 2)
	t.Success = lipgloss.NewStyle().Foreground(accent)
	t.Muted = lipgloss.NewStyle().Foreground(muted)

	return t
}

// StatusStyle maps a document status string to its style.
func (t *Theme) StatusStyle(status string) lipgloss.Style {
	switch status {
	case "validated":
		return t.DocValidated
	case "invalid":
		return t.DocInvalid
	case "pending_review":
		return t.DocPending
	default:
		return t.DocUploaded
	}
}
