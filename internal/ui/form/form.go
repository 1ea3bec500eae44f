// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package form implements the personal-data capture step.
package form

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/patrimonial/patri-tui/internal/api"
	"github.com/patrimonial/patri-tui/internal/model"
	"github.com/patrimonial/patri-tui/internal/ui/styles"
)

// Field indexes. Order matters: it is the tab order.
const (
	fieldFullName = iota
	fieldCPF
	fieldBirthDate
	fieldMaritalStatus
	fieldProfession
	fieldPhone
	fieldCount
)

// field labels and step-data keys, by index
var fieldDefs = []struct {
	label       string
	key         string
	placeholder string
	required    bool
}{
	{"Nome completo", "full_name", "Maria da Silva", true},
	{"CPF", "cpf", "000.000.000-00", true},
	{"Data de nascimento", "birth_date", "DD/MM/AAAA", true},
	{"Estado civil", "marital_status", "casado(a), solteiro(a)...", false},
	{"Profissão", "profession", "", false},
	{"Telefone", "phone", "(11) 90000-0000", false},
}

// SavedMsg reports a draft save (complete=false) or submission outcome.
type SavedMsg struct {
	UserStepID int64
	Completed  bool
	Err        error
}

// Model is the personal-data form step.
type Model struct {
	client *api.Client
	theme  *styles.Theme

	userStepID int64
	inputs     []textinput.Model
	focused    int

	fieldErrs map[int]string
	submitErr string
	saving    bool
}

// New creates the form step, prefilled from previously saved step data.
func New(client *api.Client, theme *styles.Theme, userStepID int64, saved model.StepData) *Model {
	inputs := make([]textinput.Model, fieldCount)
	for i, def := range fieldDefs {
		ti := textinput.New()
		ti.Placeholder = def.placeholder
		ti.CharLimit = 120
		if v, ok := saved[def.key].(string); ok {
			ti.SetValue(v)
		}
		inputs[i] = ti
	}
	inputs[0].Focus()

	return &Model{
		client:     client,
		theme:      theme,
		userStepID: userStepID,
		inputs:     inputs,
		fieldErrs:  make(map[int]string),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Data returns the current field values as a step-data payload.
func (m *Model) Data() model.StepData {
	data := make(model.StepData, fieldCount)
	for i, def := range fieldDefs {
		data[def.key] = strings.TrimSpace(m.inputs[i].Value())
	}
	return data
}

// Dirty reports whether any field has content not yet persisted.
func (m *Model) Dirty() bool {
	for i := range m.inputs {
		if strings.TrimSpace(m.inputs[i].Value()) != "" {
			return true
		}
	}
	return false
}

// validate fills fieldErrs for empty required fields.
func (m *Model) validate() bool {
	clear(m.fieldErrs)
	for i, def := range fieldDefs {
		if def.required && strings.TrimSpace(m.inputs[i].Value()) == "" {
			m.fieldErrs[i] = "campo obrigatório"
		}
	}
	return len(m.fieldErrs) == 0
}

// SaveDraftCmd persists the current data without completing the step.
func (m *Model) SaveDraftCmd() tea.Cmd {
	return m.saveCmd(false)
}

func (m *Model) saveCmd(complete bool) tea.Cmd {
	client := m.client
	userStepID := m.userStepID
	data := m.Data()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := client.UpdateStepData(ctx, userStepID, data); err != nil {
			return SavedMsg{UserStepID: userStepID, Err: err}
		}
		if !complete {
			return SavedMsg{UserStepID: userStepID}
		}
		if _, err := client.UpdateStepStatus(ctx, userStepID, true); err != nil {
			return SavedMsg{UserStepID: userStepID, Err: err}
		}
		return SavedMsg{UserStepID: userStepID, Completed: true}
	}
}

// Update handles messages for the form step.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			m.setFocus((m.focused + 1) % fieldCount)
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focused - 1 + fieldCount) % fieldCount)
			return m, nil
		case "enter":
			if m.focused < fieldCount-1 {
				m.setFocus(m.focused + 1)
				return m, nil
			}
			return m, m.submit()
		case "ctrl+s":
			return m, m.submit()
		}

	case SavedMsg:
		if msg.UserStepID != m.userStepID {
			return m, nil
		}
		m.saving = false
		if msg.Err != nil {
			m.submitErr = msg.Err.Error()
		} else {
			m.submitErr = ""
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	if m.saving {
		return nil
	}
	if !m.validate() {
		return nil
	}
	m.saving = true
	m.submitErr = ""
	return m.saveCmd(true)
}

func (m *Model) setFocus(i int) {
	m.inputs[m.focused].Blur()
	m.focused = i
	m.inputs[i].Focus()
}

// View renders the form.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Dados pessoais"))
	b.WriteString("\n\n")

	for i, def := range fieldDefs {
		label := def.label
		if def.required {
			label += m.theme.Required.Render(" *")
		}
		b.WriteString(m.theme.Label.Render(label))
		b.WriteString("\n")
		if i == m.focused {
			b.WriteString(m.theme.InputFocus.Render(m.inputs[i].View()))
		} else {
			b.WriteString(m.theme.InputBlur.Render(m.inputs[i].View()))
		}
		if fieldErr, ok := m.fieldErrs[i]; ok {
			b.WriteString("\n")
			b.WriteString(m.theme.FieldError.Render(fieldErr))
		}
		b.WriteString("\n")
	}

	if m.saving {
		b.WriteString(m.theme.Muted.Render("Salvando..."))
		b.WriteString("\n")
	}
	if m.submitErr != "" {
		b.WriteString(m.theme.FieldError.Render(m.submitErr))
		b.WriteString("\n")
	}
	b.WriteString(m.theme.Help.Render("tab próximo campo · enter/ctrl+s salvar e concluir"))
	return b.String()
}
