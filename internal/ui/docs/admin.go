// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package docs

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/patrimonial/patri-tui/internal/api"
	"github.com/patrimonial/patri-tui/internal/model"
	"github.com/patrimonial/patri-tui/internal/ui/styles"
	"github.com/patrimonial/patri-tui/internal/util"
)

// AdminLoadedMsg carries the document list for review.
type AdminLoadedMsg struct {
	Documents []model.Document
	Err       error
}

// ReviewDoneMsg reports the outcome of a validate/reject action.
type ReviewDoneMsg struct {
	Document *model.Document
	Err      error
}

// AdminModel is the consultant document review screen.
type AdminModel struct {
	client *api.Client
	theme  *styles.Theme

	docs  []model.Document
	table table.Model

	rejecting   bool
	reasonInput textinput.Model

	statusFilter model.DocumentStatus
	err          string
	notice       string
}

// NewAdmin creates the review screen.
func NewAdmin(client *api.Client, theme *styles.Theme) *AdminModel {
	columns := []table.Column{
		{Title: "Arquivo", Width: 32},
		{Title: "Enviado em", Width: 16},
		{Title: "Status", Width: 14},
		{Title: "Motivo", Width: 24},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	st := table.DefaultStyles()
	st.Selected = st.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color(styles.ColorPrimary))
	t.SetStyles(st)

	ti := textinput.New()
	ti.Placeholder = "motivo da recusa"
	ti.CharLimit = 200

	return &AdminModel{
		client:      client,
		theme:       theme,
		table:       t,
		reasonInput: ti,
	}
}

// Init loads the document list.
func (m *AdminModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m *AdminModel) loadCmd() tea.Cmd {
	client := m.client
	filter := api.AdminDocumentsFilter{Status: m.statusFilter, Limit: 200}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		docs, err := client.AdminDocuments(ctx, filter)
		return AdminLoadedMsg{Documents: docs, Err: err}
	}
}

func (m *AdminModel) reviewCmd(doc model.Document, status model.DocumentStatus, reason string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		updated, err := client.ReviewDocument(ctx, doc.ID, status, reason)
		return ReviewDoneMsg{Document: updated, Err: err}
	}
}

func (m *AdminModel) selected() (model.Document, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.docs) {
		return model.Document{}, false
	}
	return m.docs[i], true
}

func (m *AdminModel) refreshRows() {
	rows := make([]table.Row, 0, len(m.docs))
	for _, d := range m.docs {
		rows = append(rows, table.Row{
			util.TruncateRunes(d.OriginalFilename, 30),
			d.UploadedAt.Format("02/01/2006 15:04"),
			statusLabel(d.Status),
			util.TruncateRunes(d.RejectionReason, 22),
		})
	}
	m.table.SetRows(rows)
}

// Update handles review-screen messages.
func (m *AdminModel) Update(msg tea.Msg) (*AdminModel, tea.Cmd) {
	switch msg := msg.(type) {
	case AdminLoadedMsg:
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.err = ""
		m.docs = msg.Documents
		m.refreshRows()
		return m, nil

	case ReviewDoneMsg:
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.err = ""
		m.notice = "Documento atualizado."
		return m, m.loadCmd()

	case tea.KeyMsg:
		if m.rejecting {
			switch msg.String() {
			case "esc":
				m.rejecting = false
				m.reasonInput.Reset()
				return m, nil
			case "enter":
				doc, ok := m.selected()
				reason := strings.TrimSpace(m.reasonInput.Value())
				if !ok || reason == "" {
					return m, nil
				}
				m.rejecting = false
				m.reasonInput.Reset()
				return m, m.reviewCmd(doc, model.DocumentInvalid, reason)
			}
			var cmd tea.Cmd
			m.reasonInput, cmd = m.reasonInput.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "v":
			if doc, ok := m.selected(); ok {
				return m, m.reviewCmd(doc, model.DocumentValidated, "")
			}
		case "x":
			if _, ok := m.selected(); ok {
				m.rejecting = true
				m.reasonInput.Focus()
				return m, textinput.Blink
			}
		case "f":
			m.statusFilter = nextFilter(m.statusFilter)
			return m, m.loadCmd()
		case "r":
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// nextFilter cycles all → uploaded → pending_review → all.
func nextFilter(f model.DocumentStatus) model.DocumentStatus {
	switch f {
	case "":
		return model.DocumentUploaded
	case model.DocumentUploaded:
		return model.DocumentPendingReview
	default:
		return ""
	}
}

// View renders the review table.
func (m *AdminModel) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Revisão de documentos"))
	if m.statusFilter != "" {
		b.WriteString(m.theme.Muted.Render("  [filtro: " + string(m.statusFilter) + "]"))
	}
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")

	if m.rejecting {
		b.WriteString(m.theme.Label.Render("Motivo da recusa:"))
		b.WriteString("\n")
		b.WriteString(m.theme.InputFocus.Render(m.reasonInput.View()))
		b.WriteString("\n")
	}
	if m.err != "" {
		b.WriteString(m.theme.FieldError.Render(m.err))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(m.theme.Success.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(m.theme.Help.Render("v validar · x recusar · f filtrar · r atualizar"))
	return b.String()
}
