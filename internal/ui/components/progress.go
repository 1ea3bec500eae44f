// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/patrimonial/patri-tui/internal/model"
	"github.com/patrimonial/patri-tui/internal/ui/styles"
)

// NewProgressBar builds the shared progress bar used for uploads and for
// the chat data-collection meter.
func NewProgressBar() progress.Model {
	return progress.New(
		progress.WithScaledGradient(styles.ColorPrimary, styles.ColorAccent),
		progress.WithoutPercentage(),
	)
}

// DataProgressView renders the chat structured-data progress snapshot.
// The percentage is informational only; it never gates step completion.
func DataProgressView(theme *styles.Theme, bar progress.Model, p *model.ChatProgress) string {
	if p == nil || p.TotalSections == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(theme.Muted.Render(
		fmt.Sprintf("Dados coletados: %d/%d seções (%.0f%%)",
			p.CompletedSections, p.TotalSections, p.Percentage)))
	b.WriteString("\n")
	b.WriteString(bar.ViewAs(p.Percentage / 100))
	if len(p.MissingData) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Muted.Render("Faltando: " + strings.Join(p.MissingData, ", ")))
	}
	return b.String()
}
