// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package login implements the authentication screen.
package login

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/patrimonial/patri-tui/internal/api"
	"github.com/patrimonial/patri-tui/internal/ui/styles"
)

// mode selects between the login and signup forms.
type mode int

const (
	modeLogin mode = iota
	modeSignup
)

// field indexes; name is only shown in signup mode
const (
	fieldName = iota
	fieldEmail
	fieldPassword
	fieldTotal
)

// DoneMsg reports a successful authentication.
type DoneMsg struct {
	Token string
}

// resultMsg is the raw outcome of the auth request.
type resultMsg struct {
	token string
	err   error
}

// Model is the login/signup screen.
type Model struct {
	client *api.Client
	theme  *styles.Theme

	mode    mode
	inputs  [fieldTotal]textinput.Model
	focused int

	busy bool
	err  string
}

// New creates the login screen.
func New(client *api.Client, theme *styles.Theme) *Model {
	name := textinput.New()
	name.Placeholder = "Nome completo"
	name.CharLimit = 120

	email := textinput.New()
	email.Placeholder = "email@exemplo.com"
	email.CharLimit = 120
	email.Focus()

	password := textinput.New()
	password.Placeholder = "senha"
	password.CharLimit = 120
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	m := &Model{client: client, theme: theme, focused: fieldEmail}
	m.inputs[fieldName] = name
	m.inputs[fieldEmail] = email
	m.inputs[fieldPassword] = password
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// visible lists the active field indexes for the current mode.
func (m *Model) visible() []int {
	if m.mode == modeSignup {
		return []int{fieldName, fieldEmail, fieldPassword}
	}
	return []int{fieldEmail, fieldPassword}
}

func (m *Model) setFocus(i int) {
	m.inputs[m.focused].Blur()
	m.focused = i
	m.inputs[i].Focus()
}

func (m *Model) cycleFocus(dir int) {
	fields := m.visible()
	cur := 0
	for pos, f := range fields {
		if f == m.focused {
			cur = pos
			break
		}
	}
	next := (cur + dir + len(fields)) % len(fields)
	m.setFocus(fields[next])
}

func (m *Model) submitCmd() tea.Cmd {
	client := m.client
	kind := m.mode
	name := strings.TrimSpace(m.inputs[fieldName].Value())
	email := strings.TrimSpace(m.inputs[fieldEmail].Value())
	password := m.inputs[fieldPassword].Value()

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var (
			out *api.TokenResponse
			err error
		)
		if kind == modeSignup {
			out, err = client.Signup(ctx, api.SignupRequest{
				Email:    email,
				Password: password,
				FullName: name,
			})
		} else {
			out, err = client.Login(ctx, email, password)
		}
		if err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{token: out.AccessToken}
	}
}

// Update handles login-screen messages.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			m.cycleFocus(1)
			return m, nil
		case "shift+tab", "up":
			m.cycleFocus(-1)
			return m, nil
		case "ctrl+t":
			if m.mode == modeLogin {
				m.mode = modeSignup
			} else {
				m.mode = modeLogin
				if m.focused == fieldName {
					m.setFocus(fieldEmail)
				}
			}
			m.err = ""
			return m, nil
		case "enter":
			if m.busy {
				return m, nil
			}
			email := strings.TrimSpace(m.inputs[fieldEmail].Value())
			if email == "" || m.inputs[fieldPassword].Value() == "" {
				m.err = "Informe email e senha."
				return m, nil
			}
			if m.mode == modeSignup && strings.TrimSpace(m.inputs[fieldName].Value()) == "" {
				m.err = "Informe seu nome."
				return m, nil
			}
			m.busy = true
			m.err = ""
			return m, m.submitCmd()
		}

	case resultMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		token := msg.token
		return m, func() tea.Msg { return DoneMsg{Token: token} }
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

// View renders the login screen.
func (m *Model) View() string {
	var b strings.Builder
	if m.mode == modeSignup {
		b.WriteString(m.theme.Title.Render("Criar conta"))
	} else {
		b.WriteString(m.theme.Title.Render("Entrar"))
	}
	b.WriteString("\n")
	b.WriteString(m.theme.Subtitle.Render("Holding patrimonial — onboarding"))
	b.WriteString("\n\n")

	labels := [fieldTotal]string{"Nome", "Email", "Senha"}
	for _, i := range m.visible() {
		b.WriteString(m.theme.Label.Render(labels[i]))
		b.WriteString("\n")
		if i == m.focused {
			b.WriteString(m.theme.InputFocus.Render(m.inputs[i].View()))
		} else {
			b.WriteString(m.theme.InputBlur.Render(m.inputs[i].View()))
		}
		b.WriteString("\n")
	}

	if m.busy {
		b.WriteString(m.theme.Muted.Render("Autenticando..."))
		b.WriteString("\n")
	}
	if m.err != "" {
		b.WriteString(m.theme.FieldError.Render(m.err))
		b.WriteString("\n")
	}

	toggle := "ctrl+t criar conta"
	if m.mode == modeSignup {
		toggle = "ctrl+t já tenho conta"
	}
	b.WriteString(m.theme.Help.Render("enter entrar · " + toggle))
	return b.String()
}
