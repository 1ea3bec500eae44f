// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package onboard

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/patrimonial/patri-tui/internal/api"
	"github.com/patrimonial/patri-tui/internal/auth"
	"github.com/patrimonial/patri-tui/internal/model"
	"github.com/patrimonial/patri-tui/internal/session"
	"github.com/patrimonial/patri-tui/internal/ui/form"
	"github.com/patrimonial/patri-tui/internal/ui/styles"
)

type nopSender struct{}

func (nopSender) Send(tea.Msg) {}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	tokens := auth.NewStoreAt(filepath.Join(t.TempDir(), "token"))
	client := api.NewClient("http://127.0.0.1:1", tokens)
	sess := session.NewManager(session.DefaultConfig())
	return New(client, nil, nopSender{}, sess, styles.NewTheme(true))
}

func formFlow(completed ...bool) *model.UserOnboardingFlow {
	flow := &model.UserOnboardingFlow{ID: 1, FlowID: 1}
	for i, done := range completed {
		flow.UserSteps = append(flow.UserSteps, model.UserOnboardingStep{
			ID:          int64(10 + i),
			StepID:      int64(i + 1),
			IsCompleted: done,
			Data:        model.StepData{},
			Step: model.OnboardingStep{
				ID:    int64(i + 1),
				Name:  "Etapa",
				Order: i + 1,
				Type:  model.StepTypePersonalData,
			},
		})
	}
	return flow
}

func TestCompletionAdvancesExactlyOne(t *testing.T) {
	m := newTestModel(t)
	m, _ = m.Update(FlowLoadedMsg{Flow: formFlow(false, false, false)})

	if got := m.stepper.Index(); got != 0 {
		t.Fatalf("initial index = %d, want 0", got)
	}

	m, _ = m.Update(StepStatusMsg{UserStepID: 10, Completed: true})
	if got := m.stepper.Index(); got != 1 {
		t.Errorf("after completing step 0, index = %d, want 1", got)
	}

	m, _ = m.Update(StepStatusMsg{UserStepID: 11, Completed: true})
	if got := m.stepper.Index(); got != 2 {
		t.Errorf("after completing step 1, index = %d, want 2", got)
	}
}

func TestCompletionMarksLocalFlagBeforeRefetch(t *testing.T) {
	m := newTestModel(t)
	m, _ = m.Update(FlowLoadedMsg{Flow: formFlow(false, false)})

	m, _ = m.Update(StepStatusMsg{UserStepID: 10, Completed: true})
	if !m.flow.UserSteps[0].IsCompleted {
		t.Error("local completion flag should flip before the refetch lands")
	}
}

func TestCompletionErrorDoesNotAdvance(t *testing.T) {
	m := newTestModel(t)
	m, _ = m.Update(FlowLoadedMsg{Flow: formFlow(false, false)})

	m, _ = m.Update(StepStatusMsg{UserStepID: 10, Completed: true, Err: errAny})
	if got := m.stepper.Index(); got != 0 {
		t.Errorf("a failed completion must not move the index, got %d", got)
	}
}

func TestFormEditMarksSessionDirty(t *testing.T) {
	m := newTestModel(t)
	m, _ = m.Update(FlowLoadedMsg{Flow: formFlow(false)})

	if m.sess.IsDirty() {
		t.Fatal("fresh session must start clean")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	if !m.sess.IsDirty() {
		t.Error("typing into the form must flag draft data on the session")
	}
}

func TestSaveDraftTargetsActiveForm(t *testing.T) {
	m := newTestModel(t)
	m, _ = m.Update(FlowLoadedMsg{Flow: formFlow(false)})

	_, cmd := m.Update(session.SaveDraftMsg{})
	if cmd == nil {
		t.Error("an active form must get a draft-save command on the session tick")
	}
}

func TestDraftSaveMarksSessionClean(t *testing.T) {
	m := newTestModel(t)
	m, _ = m.Update(FlowLoadedMsg{Flow: formFlow(false)})
	m.sess.MarkDirty()

	m, _ = m.Update(form.SavedMsg{UserStepID: 10})
	if m.sess.IsDirty() {
		t.Error("a successful draft save must clear the dirty flag")
	}
}

var errAny = &stubError{}

type stubError struct{}

func (*stubError) Error() string { return "falha" }
