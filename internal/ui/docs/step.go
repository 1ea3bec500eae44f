// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package docs implements the document verification step and the
// consultant review table.
package docs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/patrimonial/patri-tui/internal/api"
	"github.com/patrimonial/patri-tui/internal/model"
	"github.com/patrimonial/patri-tui/internal/onboarding"
	"github.com/patrimonial/patri-tui/internal/ui/components"
	"github.com/patrimonial/patri-tui/internal/ui/styles"
	"github.com/patrimonial/patri-tui/internal/util"
)

// LoadedMsg carries the requirements and documents for the step.
type LoadedMsg struct {
	UserStepID   int64
	Requirements []model.DocumentRequirement
	Documents    []model.Document
	Err          error
}

// UploadProgressMsg reports bytes sent for the in-flight upload.
type UploadProgressMsg struct {
	UserStepID int64
	Progress   api.UploadProgress
}

// UploadDoneMsg reports the outcome of an upload.
type UploadDoneMsg struct {
	UserStepID int64
	Document   *model.Document
	Err        error
}

// StatusChangedMsg reports a completion-status change pushed by this
// step, so the parent can refresh the flow.
type StatusChangedMsg struct {
	UserStepID int64
	Completed  bool
	Err        error
}

// CompleteRequestedMsg asks the parent to mark this step done.
type CompleteRequestedMsg struct {
	UserStepID int64
}

// Sender delivers messages from upload goroutines to the program.
type Sender interface {
	Send(tea.Msg)
}

// Model is the document verification step.
type Model struct {
	client *api.Client
	sender Sender
	theme  *styles.Theme

	stepID      int64
	userStepID  int64
	isCompleted bool

	reqs []model.DocumentRequirement
	docs []model.Document

	cursor    int
	entering  bool
	pathInput textinput.Model

	uploading bool
	uploadPct float64
	bar       progress.Model
	err       string
	loaded    bool
}

// New creates the document step.
func New(client *api.Client, sender Sender, theme *styles.Theme, stepID, userStepID int64, isCompleted bool) *Model {
	ti := textinput.New()
	ti.Placeholder = "/caminho/para/documento.pdf"
	ti.CharLimit = 512

	return &Model{
		client:      client,
		sender:      sender,
		theme:       theme,
		stepID:      stepID,
		userStepID:  userStepID,
		isCompleted: isCompleted,
		pathInput:   ti,
		bar:         components.NewProgressBar(),
	}
}

// Init loads requirements and documents.
func (m *Model) Init() tea.Cmd {
	return m.loadCmd()
}

// Satisfied reports whether every required requirement has an upload.
func (m *Model) Satisfied() bool {
	return onboarding.RequirementsSatisfied(m.reqs, m.docs)
}

func (m *Model) loadCmd() tea.Cmd {
	client := m.client
	stepID, userStepID := m.stepID, m.userStepID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		reqs, err := client.StepRequirements(ctx, stepID)
		if err != nil {
			return LoadedMsg{UserStepID: userStepID, Err: err}
		}
		docs, err := client.UserStepDocuments(ctx, userStepID)
		if err != nil {
			return LoadedMsg{UserStepID: userStepID, Err: err}
		}
		return LoadedMsg{UserStepID: userStepID, Requirements: reqs, Documents: docs}
	}
}

// uncompleteCmd proactively reverts completion when the required set is
// no longer satisfied, e.g. a requirement added after the step was done.
func (m *Model) uncompleteCmd() tea.Cmd {
	client := m.client
	userStepID := m.userStepID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, err := client.UpdateStepStatus(ctx, userStepID, false)
		return StatusChangedMsg{UserStepID: userStepID, Completed: false, Err: err}
	}
}

// uploadCmd streams the file at path for the selected requirement.
// Progress events go through the sender because the upload runs on its
// own goroutine.
func (m *Model) uploadCmd(req model.DocumentRequirement, path string) tea.Cmd {
	client := m.client
	sender := m.sender
	userStepID := m.userStepID
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return UploadDoneMsg{UserStepID: userStepID, Err: fmt.Errorf("não foi possível abrir o arquivo: %w", err)}
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return UploadDoneMsg{UserStepID: userStepID, Err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		var onProgress func(api.UploadProgress)
		if sender != nil {
			onProgress = func(p api.UploadProgress) {
				sender.Send(UploadProgressMsg{UserStepID: userStepID, Progress: p})
			}
		}

		doc, err := client.UploadDocument(ctx, userStepID, req.ID,
			filepath.Base(path), f, info.Size(), onProgress)
		return UploadDoneMsg{UserStepID: userStepID, Document: doc, Err: err}
	}
}

// Update handles messages for the document step.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.UserStepID != m.userStepID {
			return m, nil
		}
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.reqs = msg.Requirements
		m.docs = msg.Documents
		m.loaded = true
		m.err = ""
		if m.cursor >= len(m.reqs) {
			m.cursor = 0
		}
		// Completion must track the gate: revert when it no longer holds.
		if m.isCompleted && !m.Satisfied() {
			m.isCompleted = false
			return m, m.uncompleteCmd()
		}
		return m, nil

	case UploadProgressMsg:
		if msg.UserStepID != m.userStepID {
			return m, nil
		}
		m.uploadPct = msg.Progress.Percent()
		return m, nil

	case UploadDoneMsg:
		if msg.UserStepID != m.userStepID {
			return m, nil
		}
		m.uploading = false
		m.uploadPct = 0
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.err = ""
		return m, m.loadCmd()

	case StatusChangedMsg:
		if msg.UserStepID == m.userStepID && msg.Err != nil {
			m.err = msg.Err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		if m.entering {
			switch msg.String() {
			case "esc":
				m.entering = false
				m.pathInput.Reset()
				return m, nil
			case "enter":
				path := strings.TrimSpace(m.pathInput.Value())
				if path == "" || m.cursor >= len(m.reqs) {
					return m, nil
				}
				m.entering = false
				m.pathInput.Reset()
				m.uploading = true
				m.err = ""
				return m, m.uploadCmd(m.reqs[m.cursor], path)
			}
			var cmd tea.Cmd
			m.pathInput, cmd = m.pathInput.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.reqs)-1 {
				m.cursor++
			}
		case "enter", "u":
			if !m.uploading && len(m.reqs) > 0 {
				m.entering = true
				m.pathInput.Focus()
				return m, textinput.Blink
			}
		case "r":
			return m, m.loadCmd()
		case "ctrl+d":
			if m.Satisfied() {
				return m, func() tea.Msg {
					return CompleteRequestedMsg{UserStepID: m.userStepID}
				}
			}
			m.err = "Envie todos os documentos obrigatórios antes de concluir."
		}
	}
	return m, nil
}

// View renders the requirement list and uploader.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Documentos"))
	b.WriteString("\n\n")

	if !m.loaded && m.err == "" {
		b.WriteString(m.theme.Muted.Render("Carregando requisitos..."))
		return b.String()
	}
	if len(m.reqs) == 0 && m.loaded {
		b.WriteString(m.theme.Muted.Render("Nenhum documento é necessário nesta etapa."))
		b.WriteString("\n")
	}

	for i, req := range m.reqs {
		prefix := "  "
		if i == m.cursor {
			prefix = "> "
		}
		name := req.Name
		if req.IsRequired {
			name += m.theme.Required.Render(" *")
		}
		b.WriteString(prefix + name + "\n")

		uploaded := onboarding.DocumentsFor(req.ID, m.docs)
		if len(uploaded) == 0 {
			b.WriteString(m.theme.Muted.Render("    nenhum arquivo enviado"))
			b.WriteString("\n")
			continue
		}
		for _, doc := range uploaded {
			line := fmt.Sprintf("    %s  %s",
				util.TruncateRunes(doc.OriginalFilename, 40),
				m.theme.StatusStyle(string(doc.Status)).Render(statusLabel(doc.Status)))
			if doc.Status == model.DocumentInvalid && doc.RejectionReason != "" {
				line += m.theme.FieldError.Render("  (" + doc.RejectionReason + ")")
			}
			b.WriteString(line + "\n")
		}
	}
	b.WriteString("\n")

	if m.entering {
		b.WriteString(m.theme.Label.Render("Arquivo para enviar:"))
		b.WriteString("\n")
		b.WriteString(m.theme.InputFocus.Render(m.pathInput.View()))
		b.WriteString("\n")
	}
	if m.uploading {
		b.WriteString(m.theme.Muted.Render(fmt.Sprintf("Enviando... %.0f%%", m.uploadPct)))
		b.WriteString("\n")
		b.WriteString(m.bar.ViewAs(m.uploadPct / 100))
		b.WriteString("\n")
	}
	if m.err != "" {
		b.WriteString(m.theme.FieldError.Render(m.err))
		b.WriteString("\n")
	}

	if m.Satisfied() {
		b.WriteString(m.theme.Success.Render("Todos os documentos obrigatórios foram enviados."))
		b.WriteString("\n")
	}
	b.WriteString(m.theme.Help.Render("↑/↓ navegar · enter enviar arquivo · r atualizar · ctrl+d concluir etapa"))
	return b.String()
}

func statusLabel(s model.DocumentStatus) string {
	switch s {
	case model.DocumentValidated:
		return "validado"
	case model.DocumentInvalid:
		return "inválido"
	case model.DocumentPendingReview:
		return "em análise"
	default:
		return "enviado"
	}
}
