// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/patrimonial/patri-tui/internal/api"
	"github.com/patrimonial/patri-tui/internal/model"
	"github.com/patrimonial/patri-tui/internal/ui/components"
	"github.com/patrimonial/patri-tui/internal/ui/styles"
)

// displayMessage is one rendered conversation turn.
type displayMessage struct {
	sender  model.SenderType
	content string
}

// Model is the chat capture step.
type Model struct {
	client *api.Client
	runner *Runner
	theme  *styles.Theme

	stepID     int64
	userStepID int64

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	progress *model.ChatProgress
	bar      progress.Model

	messages   []displayMessage
	streaming  bool
	current    strings.Builder // assistant reply being streamed
	buffer     *StreamingBuffer
	structured *model.ChatStructuredData

	renderer *glamour.TermRenderer
	width    int
	height   int
	err      string
	ready    bool
}

// New creates the chat step model for one onboarding step.
func New(client *api.Client, runner *Runner, theme *styles.Theme, stepID, userStepID int64) *Model {
	ti := textinput.New()
	ti.Placeholder = "Conte sobre seu patrimônio..."
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	// Markdown rendering is best-effort; a nil renderer falls back to
	// plain text.
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		renderer = nil
	}

	return &Model{
		client:     client,
		runner:     runner,
		theme:      theme,
		stepID:     stepID,
		userStepID: userStepID,
		input:      ti,
		spinner:    sp,
		buffer:     NewStreamingBuffer(),
		renderer:   renderer,
		bar:        components.NewProgressBar(),
	}
}

// Init loads the conversation state and starts the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadStateCmd(), m.spinner.Tick)
}

// Close aborts any in-flight stream. Call when the step loses focus so
// the network read does not outlive the view.
func (m *Model) Close() {
	m.runner.Cancel()
	m.buffer.Reset()
	m.streaming = false
	m.current.Reset()
}

// Structured returns the latest structured-data snapshot, may be nil.
func (m *Model) Structured() *model.ChatStructuredData {
	return m.structured
}

func (m *Model) loadStateCmd() tea.Cmd {
	stepID := m.stepID
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		state, err := client.ChatState(ctx, stepID)
		return StateLoadedMsg{StepID: stepID, State: state, Err: err}
	}
}

func (m *Model) resetCmd() tea.Cmd {
	stepID := m.stepID
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return ResetDoneMsg{StepID: stepID, Err: client.ResetChat(ctx, stepID)}
	}
}

func flushTickCmd() tea.Cmd {
	return tea.Tick(time.Second/30, func(time.Time) tea.Msg {
		return FlushTickMsg{}
	})
}

// Update handles messages for the chat step.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - 10
		if vpHeight < 5 {
			vpHeight = 5
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return m, m.submit()
		case "ctrl+r":
			if !m.streaming {
				return m, m.resetCmd()
			}
		case "ctrl+d":
			if !m.streaming {
				return m, func() tea.Msg {
					return CompleteRequestedMsg{UserStepID: m.userStepID}
				}
			}
		}

	case StateLoadedMsg:
		if msg.StepID != m.stepID {
			return m, nil
		}
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.messages = m.messages[:0]
		for _, cm := range msg.State.Messages {
			m.messages = append(m.messages, displayMessage{
				sender:  cm.SenderType,
				content: cm.Content,
			})
		}
		if sd := msg.State.StructuredData; !sd.Empty() {
			m.structured = &sd
		}
		if p := msg.State.Progress; p.TotalSections > 0 {
			m.progress = &p
		}
		m.refreshViewport()
		return m, nil

	case StreamStartMsg:
		if msg.StepID != m.stepID {
			return m, nil
		}
		m.streaming = true
		m.err = ""
		m.current.Reset()
		m.buffer.Reset()
		return m, flushTickCmd()

	case StreamTokenMsg:
		if msg.StepID != m.stepID {
			return m, nil
		}
		m.buffer.Write(msg.Token)
		return m, nil

	case FlushTickMsg:
		if !m.streaming {
			return m, nil
		}
		if content, ok := m.buffer.Flush(); ok {
			m.current.WriteString(content)
			m.refreshViewport()
		}
		return m, flushTickCmd()

	case StructuredDataMsg:
		if msg.StepID != m.stepID {
			return m, nil
		}
		data := msg.Data
		m.structured = &data
		return m, nil

	case ProgressMsg:
		if msg.StepID != m.stepID {
			return m, nil
		}
		p := msg.Data
		m.progress = &p
		return m, nil

	case StreamCompleteMsg:
		if msg.StepID != m.stepID {
			return m, nil
		}
		if content, ok := m.buffer.ForceFlush(); ok {
			m.current.WriteString(content)
		}
		final := m.current.String()
		if msg.FinalContent != "" {
			final = msg.FinalContent
		}
		if final != "" {
			m.messages = append(m.messages, displayMessage{
				sender:  model.SenderLLM,
				content: final,
			})
		}
		m.current.Reset()
		m.streaming = false
		m.refreshViewport()
		return m, nil

	case StreamErrorMsg:
		if msg.StepID != m.stepID {
			return m, nil
		}
		m.streaming = false
		m.current.Reset()
		m.buffer.Reset()
		m.err = msg.Err.Error()
		m.refreshViewport()
		return m, nil

	case ResetDoneMsg:
		if msg.StepID != m.stepID {
			return m, nil
		}
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.messages = nil
		m.structured = nil
		m.progress = nil
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit sends the typed message. Empty input and mid-stream sends are
// ignored.
func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.streaming {
		return nil
	}
	m.input.Reset()
	m.messages = append(m.messages, displayMessage{
		sender:  model.SenderUser,
		content: text,
	})
	m.refreshViewport()
	m.runner.Start(m.stepID, text)
	return nil
}

func (m *Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	var b strings.Builder
	for _, dm := range m.messages {
		switch dm.sender {
		case model.SenderUser:
			b.WriteString(m.theme.UserBubble.Render("Você: " + dm.content))
		case model.SenderSystem:
			b.WriteString(m.theme.SystemBubble.Render(dm.content))
		default:
			b.WriteString(m.theme.AssistantBubble.Render(m.renderMarkdown(dm.content)))
		}
		b.WriteString("\n")
	}
	if m.streaming && m.current.Len() > 0 {
		b.WriteString(m.theme.AssistantBubble.Render(m.current.String()))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// View renders the chat step.
func (m *Model) View() string {
	if !m.ready {
		return m.theme.Muted.Render("Carregando conversa...")
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.streaming {
		b.WriteString(m.theme.TypingIndicator.Render(m.spinner.View() + " assistente digitando..."))
		b.WriteString("\n")
	}
	if m.err != "" {
		b.WriteString(m.theme.FieldError.Render(m.err))
		b.WriteString("\n")
	}
	if dp := components.DataProgressView(m.theme, m.bar, m.progress); dp != "" {
		b.WriteString(dp)
		b.WriteString("\n")
	}
	if m.structured != nil && !m.structured.Empty() {
		b.WriteString(m.theme.StructuredSummary.Render(m.structured.Summary()))
		b.WriteString("\n")
	}

	b.WriteString(m.theme.InputFocus.Width(m.width - 6).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render("enter enviar · ctrl+r reiniciar conversa · ctrl+d concluir etapa"))
	return b.String()
}
