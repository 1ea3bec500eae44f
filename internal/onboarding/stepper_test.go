// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package onboarding

import (
	"testing"

	"github.com/patrimonial/patri-tui/internal/model"
)

func flowWith(completed ...bool) *model.UserOnboardingFlow {
	steps := make([]model.UserOnboardingStep, len(completed))
	for i, done := range completed {
		steps[i] = model.UserOnboardingStep{
			ID:          int64(i + 1),
			StepID:      int64(i + 1),
			IsCompleted: done,
			Step: model.OnboardingStep{
				ID:    int64(i + 1),
				Order: i,
				Type:  model.StepTypePersonalData,
			},
		}
	}
	return &model.UserOnboardingFlow{ID: 1, UserSteps: steps}
}

func TestActiveIndexIsFirstIncomplete(t *testing.T) {
	s := NewStepper(flowWith(true, false, false))
	if s.Index() != 1 {
		t.Errorf("expected index 1, got %d", s.Index())
	}
}

func TestActiveIndexAllCompleteStaysAtLast(t *testing.T) {
	s := NewStepper(flowWith(true, true, true))
	if s.Index() != 2 {
		t.Errorf("expected last index 2, got %d", s.Index())
	}
	if !s.Complete() {
		t.Error("flow with all steps complete should report Complete")
	}
}

func TestEmptyFlow(t *testing.T) {
	s := NewStepper(&model.UserOnboardingFlow{})
	if s.Index() != 0 {
		t.Errorf("expected index 0, got %d", s.Index())
	}
	if s.Current() != nil {
		t.Error("Current should be nil for an empty flow")
	}
	if s.Complete() {
		t.Error("empty flow must not report Complete")
	}
	s.Advance() // must not panic
}

func TestAdvanceStopsAtEnd(t *testing.T) {
	s := NewStepper(flowWith(true, true, false))
	if s.Index() != 2 {
		t.Fatalf("expected index 2, got %d", s.Index())
	}
	s.Advance()
	if s.Index() != 2 {
		t.Errorf("advancing past last step must not move, got %d", s.Index())
	}
}

func TestAdvanceMovesExactlyOne(t *testing.T) {
	s := NewStepper(flowWith(false, false, false))
	s.Advance()
	if s.Index() != 1 {
		t.Errorf("expected index 1 after Advance, got %d", s.Index())
	}
}

func TestSelectGatedStepRejected(t *testing.T) {
	s := NewStepper(flowWith(true, false, false))
	if s.Select(2) {
		t.Error("selecting step 2 with step 1 incomplete must be rejected")
	}
	if s.Index() != 1 {
		t.Errorf("index must be unchanged after rejected select, got %d", s.Index())
	}
	if s.ManualNav() {
		t.Error("rejected select must not set the manual-navigation latch")
	}
}

func TestSelectEarlierStepAlwaysAllowed(t *testing.T) {
	s := NewStepper(flowWith(true, false, false))
	if !s.Select(0) {
		t.Fatal("selecting step 0 must always succeed")
	}
	if s.Index() != 0 {
		t.Errorf("expected index 0, got %d", s.Index())
	}
	if !s.ManualNav() {
		t.Error("successful select must set the manual-navigation latch")
	}
}

func TestManualNavLatchSuppressesSync(t *testing.T) {
	s := NewStepper(flowWith(true, false, false))
	s.Select(0)
	s.SyncActive()
	if s.Index() != 0 {
		t.Errorf("SyncActive must be a no-op after manual navigation, got %d", s.Index())
	}

	// The latch is one-way: a reload keeps it set too.
	s.Reload(flowWith(true, true, false))
	if s.Index() != 0 {
		t.Errorf("Reload must not snap after manual navigation, got %d", s.Index())
	}
	if !s.ManualNav() {
		t.Error("latch must survive Reload")
	}
}

func TestReloadSnapsWithoutManualNav(t *testing.T) {
	s := NewStepper(flowWith(false, false))
	s.Reload(flowWith(true, false))
	if s.Index() != 1 {
		t.Errorf("expected snap to first incomplete after reload, got %d", s.Index())
	}
}

func TestReloadClampsIndex(t *testing.T) {
	s := NewStepper(flowWith(true, true, false))
	s.Select(2)
	s.Reload(flowWith(true))
	if s.Index() != 0 {
		t.Errorf("index must clamp to the new last step, got %d", s.Index())
	}
}

func TestRefreshStepsKeepsPosition(t *testing.T) {
	s := NewStepper(flowWith(false, false, false))
	s.RefreshSteps(flowWith(true, false, false))
	if s.Index() != 0 {
		t.Errorf("RefreshSteps must not move the index, got %d", s.Index())
	}
	// An explicit Advance is then exactly one step.
	s.Advance()
	if s.Index() != 1 {
		t.Errorf("expected index 1 after Advance, got %d", s.Index())
	}
}

func TestRefreshStepsClampsIndex(t *testing.T) {
	s := NewStepper(flowWith(true, true, false))
	s.RefreshSteps(flowWith(true))
	if s.Index() != 0 {
		t.Errorf("index must clamp to the new last step, got %d", s.Index())
	}
}

func TestSelectOutOfRange(t *testing.T) {
	s := NewStepper(flowWith(true, true))
	if s.Select(-1) || s.Select(5) {
		t.Error("out-of-range select must be rejected")
	}
}

func TestStepsSortedByOrder(t *testing.T) {
	flow := &model.UserOnboardingFlow{
		UserSteps: []model.UserOnboardingStep{
			{ID: 1, Step: model.OnboardingStep{Order: 2}},
			{ID: 2, Step: model.OnboardingStep{Order: 0}},
			{ID: 3, Step: model.OnboardingStep{Order: 1}},
		},
	}
	s := NewStepper(flow)
	want := []int64{2, 3, 1}
	for i, st := range s.Steps() {
		if st.ID != want[i] {
			t.Errorf("position %d: expected step %d, got %d", i, want[i], st.ID)
		}
	}
}
