// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package onboard

import (
	"context"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/patrimonial/patri-tui/internal/api"
	"github.com/patrimonial/patri-tui/internal/cache"
	"github.com/patrimonial/patri-tui/internal/model"
	"github.com/patrimonial/patri-tui/internal/onboarding"
	"github.com/patrimonial/patri-tui/internal/session"
	"github.com/patrimonial/patri-tui/internal/ui/chat"
	"github.com/patrimonial/patri-tui/internal/ui/components"
	"github.com/patrimonial/patri-tui/internal/ui/docs"
	"github.com/patrimonial/patri-tui/internal/ui/form"
	"github.com/patrimonial/patri-tui/internal/ui/styles"
)

// Sender delivers messages from background goroutines to the program.
type Sender interface {
	Send(tea.Msg)
}

// FlowLoadedMsg carries the user's onboarding flow.
type FlowLoadedMsg struct {
	Flow *model.UserOnboardingFlow
	Err  error
}

// StepStatusMsg reports a completion-status mutation.
type StepStatusMsg struct {
	UserStepID int64
	Completed  bool
	Err        error
}

// Model is the onboarding flow screen.
type Model struct {
	client *api.Client
	cache  *cache.Cache
	runner *chat.Runner
	sender Sender
	sess   *session.Manager
	theme  *styles.Theme

	flow    *model.UserOnboardingFlow
	stepper *onboarding.Stepper
	active  component
	toast   components.Toast

	width  int
	height int
	err    string
}

// New creates the onboarding screen. sender must be the running program.
func New(client *api.Client, c *cache.Cache, sender Sender, sess *session.Manager, theme *styles.Theme) *Model {
	return &Model{
		client: client,
		cache:  c,
		runner: chat.NewRunner(client, sender),
		sender: sender,
		sess:   sess,
		theme:  theme,
	}
}

// Init loads the flow, serving a cached snapshot first when present.
func (m *Model) Init() tea.Cmd {
	var cached model.UserOnboardingFlow
	if err := m.cache.Get(cache.KeyFlow, &cached); err == nil {
		m.setFlow(&cached)
	}
	return m.loadFlowCmd()
}

// Close cancels background streams. Call on screen teardown.
func (m *Model) Close() {
	if m.active != nil {
		m.active.Close()
	}
}

func (m *Model) loadFlowCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		flow, err := client.MyFlow(ctx)
		return FlowLoadedMsg{Flow: flow, Err: err}
	}
}

// completeStepCmd marks a user step done on the server.
func (m *Model) completeStepCmd(userStepID int64) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, err := client.UpdateStepStatus(ctx, userStepID, true)
		return StepStatusMsg{UserStepID: userStepID, Completed: true, Err: err}
	}
}

// setFlow installs a flow snapshot and mounts the current step.
func (m *Model) setFlow(flow *model.UserOnboardingFlow) tea.Cmd {
	m.flow = flow
	if m.stepper == nil {
		m.stepper = onboarding.NewStepper(flow)
	} else {
		m.stepper.Reload(flow)
	}
	return m.mountCurrent()
}

// mountCurrent replaces the active component with the current step's.
func (m *Model) mountCurrent() tea.Cmd {
	if m.active != nil {
		m.active.Close()
		m.active = nil
	}
	step := m.stepper.Current()
	if step == nil {
		return nil
	}
	m.active = m.buildComponent(*step)
	cmds := []tea.Cmd{m.active.Init()}
	if m.width > 0 {
		cmds = append(cmds, func() tea.Msg {
			return tea.WindowSizeMsg{Width: m.width, Height: m.height}
		})
	}
	return tea.Batch(cmds...)
}

// Update handles flow-level messages and forwards the rest to the
// active step component.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// fall through to the active component below

	case FlowLoadedMsg:
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.err = ""
		m.cache.Put(cache.KeyFlow, msg.Flow)
		return m, m.setFlow(msg.Flow)

	case StepStatusMsg:
		if msg.Err != nil {
			return m, m.toast.ShowToast(msg.Err.Error(), true)
		}
		// server state changed; local copy is stale
		m.cache.Invalidate(cache.KeyFlow)
		if msg.Completed {
			m.markCompleted(msg.UserStepID)
			m.stepper.Advance()
			cmd := m.mountCurrent()
			return m, tea.Batch(cmd, m.loadFlowCmd(),
				m.toast.ShowToast("Etapa concluída!", false))
		}
		return m, m.loadFlowCmd()

	case chat.CompleteRequestedMsg:
		return m, m.completeStepCmd(msg.UserStepID)

	case docs.CompleteRequestedMsg:
		return m, m.completeStepCmd(msg.UserStepID)

	case session.SaveDraftMsg:
		// Periodic draft push for the active form. Other step types
		// persist as they go and never mark the session dirty.
		if fc, ok := m.active.(*formComponent); ok {
			return m, fc.inner.SaveDraftCmd()
		}
		return m, nil

	case form.SavedMsg:
		if msg.Err == nil {
			m.sess.MarkClean()
		}
		if msg.Err == nil && msg.Completed {
			m.cache.Invalidate(cache.KeyFlow)
			m.markCompleted(msg.UserStepID)
			m.stepper.Advance()
			cmd := m.mountCurrent()
			return m, tea.Batch(cmd, m.loadFlowCmd(),
				m.toast.ShowToast("Etapa concluída!", false))
		}
		// draft saves and errors are handled inside the form view

	case docs.StatusChangedMsg:
		if msg.Err == nil {
			m.cache.Invalidate(cache.KeyFlow)
			return m, m.loadFlowCmd()
		}

	case components.ToastExpiredMsg:
		return m, nil

	case tea.KeyMsg:
		if m.flow == nil && m.err != "" && msg.String() == "r" {
			m.err = ""
			return m, m.loadFlowCmd()
		}
		if cmd, handled := m.handleNavKey(msg); handled {
			return m, cmd
		}
	}

	if m.active != nil {
		cmd := m.active.Update(msg)
		if _, isKey := msg.(tea.KeyMsg); isKey {
			if fc, ok := m.active.(*formComponent); ok && fc.inner.Dirty() {
				m.sess.MarkDirty()
			}
		}
		return m, cmd
	}
	return m, nil
}

// handleNavKey processes step-navigation keys. Number keys jump to a
// step; the jump silently fails when earlier steps are incomplete.
func (m *Model) handleNavKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.stepper == nil {
		return nil, false
	}
	s := msg.String()
	if len(s) == 1 && s >= "1" && s <= "9" {
		idx, _ := strconv.Atoi(s)
		idx--
		// Gated steps are a no-op, not an error.
		if m.stepper.Select(idx) {
			return m.mountCurrent(), true
		}
		return nil, true
	}
	return nil, false
}

// markCompleted flips the local completion flag so gating reflects the
// mutation before the refetch lands. The stepper keeps its position; the
// caller's Advance is the single step forward.
func (m *Model) markCompleted(userStepID int64) {
	if m.flow == nil {
		return
	}
	for i := range m.flow.UserSteps {
		if m.flow.UserSteps[i].ID == userStepID {
			m.flow.UserSteps[i].IsCompleted = true
		}
	}
	m.stepper.RefreshSteps(m.flow)
}

// View renders the step header, the active capture component, and any
// transient feedback.
func (m *Model) View() string {
	var b strings.Builder

	if m.err != "" && m.flow == nil {
		b.WriteString(m.theme.ErrorCard.Render(
			"Não foi possível carregar seu onboarding.\n" + m.err +
				"\n\nVerifique sua conexão e tente novamente (r)."))
		return b.String()
	}
	if m.stepper == nil {
		return m.theme.Muted.Render("Carregando onboarding...")
	}

	b.WriteString(components.StepHeader(m.theme, m.stepper.Steps(),
		m.stepper.Index(), m.stepper.Selectable, m.width))
	b.WriteString("\n")
	b.WriteString(components.CompletionSummary(m.theme, m.flow))
	b.WriteString("\n\n")

	if toast := m.toast.View(m.theme); toast != "" {
		b.WriteString(toast)
		b.WriteString("\n")
	}

	if m.active != nil {
		b.WriteString(m.active.View())
	}
	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render("1-9 ir para etapa"))
	return b.String()
}
