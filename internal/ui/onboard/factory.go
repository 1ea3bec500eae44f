// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package onboard ties the onboarding flow together: it loads the flow,
// tracks the current step, and dispatches each step type to its capture
// component.
package onboard

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/patrimonial/patri-tui/internal/model"
	"github.com/patrimonial/patri-tui/internal/ui/chat"
	"github.com/patrimonial/patri-tui/internal/ui/docs"
	"github.com/patrimonial/patri-tui/internal/ui/form"
	"github.com/patrimonial/patri-tui/internal/ui/styles"
)

// component is the contract every step capture UI honors.
type component interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	// Close releases background work when the step loses focus.
	Close()
}

// buildComponent maps a step's declared type to its capture component.
// Unknown types get a neutral fallback; they must never crash the flow.
func (m *Model) buildComponent(step model.UserOnboardingStep) component {
	switch step.Step.Type {
	case model.StepTypePersonalData:
		return &formComponent{inner: form.New(m.client, m.theme, step.ID, step.Data)}
	case model.StepTypeLLMChat:
		return &chatComponent{inner: chat.New(m.client, m.runner, m.theme, step.StepID, step.ID)}
	case model.StepTypeDataVerification:
		return &docsComponent{inner: docs.New(m.client, m.sender, m.theme, step.StepID, step.ID, step.IsCompleted)}
	default:
		return &fallbackComponent{theme: m.theme, step: step}
	}
}

// --- adapters -----------------------------------------------------------

type formComponent struct{ inner *form.Model }

func (c *formComponent) Init() tea.Cmd { return c.inner.Init() }
func (c *formComponent) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.inner, cmd = c.inner.Update(msg)
	return cmd
}
func (c *formComponent) View() string { return c.inner.View() }
func (c *formComponent) Close()       {}

type chatComponent struct{ inner *chat.Model }

func (c *chatComponent) Init() tea.Cmd { return c.inner.Init() }
func (c *chatComponent) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.inner, cmd = c.inner.Update(msg)
	return cmd
}
func (c *chatComponent) View() string { return c.inner.View() }
func (c *chatComponent) Close()       { c.inner.Close() }

type docsComponent struct{ inner *docs.Model }

func (c *docsComponent) Init() tea.Cmd { return c.inner.Init() }
func (c *docsComponent) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.inner, cmd = c.inner.Update(msg)
	return cmd
}
func (c *docsComponent) View() string { return c.inner.View() }
func (c *docsComponent) Close()       {}

// fallbackComponent renders a neutral notice for unrecognized step types.
type fallbackComponent struct {
	theme *styles.Theme
	step  model.UserOnboardingStep
}

func (c *fallbackComponent) Init() tea.Cmd              { return nil }
func (c *fallbackComponent) Update(msg tea.Msg) tea.Cmd { return nil }
func (c *fallbackComponent) View() string {
	return c.theme.Muted.Render(
		"Tipo de etapa desconhecido: " + string(c.step.Step.Type) +
			"\nAtualize o aplicativo ou contate seu consultor.")
}
func (c *fallbackComponent) Close() {}
