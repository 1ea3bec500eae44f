// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components holds small reusable view pieces shared by the
// onboarding screens.
package components

import (
	"fmt"
	"strings"

	"github.com/patrimonial/patri-tui/internal/model"
	"github.com/patrimonial/patri-tui/internal/ui/styles"
	"github.com/patrimonial/patri-tui/internal/util"
)

// StepHeader renders the horizontal step indicator. Each step shows its
// position, name, and state: done, active, pending, or gated (not yet
// selectable because an earlier step is incomplete).
func StepHeader(theme *styles.Theme, steps []model.UserOnboardingStep, current int, selectable func(int) bool, width int) string {
	if len(steps) == 0 {
		return ""
	}

	parts := make([]string, 0, len(steps))
	for i, st := range steps {
		label := fmt.Sprintf("%d. %s", i+1, util.TruncateRunes(st.Step.Name, 20))
		switch {
		case st.IsCompleted:
			parts = append(parts, theme.StepComplete.Render("✓ "+label))
		case i == current:
			parts = append(parts, theme.StepActive.Render("→ "+label))
		case selectable != nil && !selectable(i):
			parts = append(parts, theme.StepGated.Render("  "+label))
		default:
			parts = append(parts, theme.StepPending.Render("  "+label))
		}
	}

	line := strings.Join(parts, theme.Muted.Render("  ·  "))
	if width > 0 {
		line = util.TruncateWidth(line, width)
	}
	return line
}

// CompletionSummary renders "N of M etapas concluídas".
func CompletionSummary(theme *styles.Theme, flow *model.UserOnboardingFlow) string {
	if flow == nil {
		return ""
	}
	total := len(flow.UserSteps)
	done := flow.CompletedCount()
	s := fmt.Sprintf("%d de %d etapas concluídas", done, total)
	if done == total && total > 0 {
		return theme.Success.Render(s + " — onboarding completo!")
	}
	return theme.Muted.Render(s)
}
