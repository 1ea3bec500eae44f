// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package onboarding holds the client-side step progression logic.
//
// The server owns all step state; this package only decides which step
// is shown and which steps the user may jump to.
package onboarding

import (
	"github.com/patrimonial/patri-tui/internal/model"
)

// Stepper tracks the current position within an ordered list of steps.
//
// Rules:
//   - SyncActive snaps to the server's active step (first incomplete)
//     unless the user has manually navigated, which latches permanently.
//   - Advance moves forward by exactly one; past the end it stays put.
//   - Select only succeeds when every earlier step is complete.
type Stepper struct {
	steps []model.UserOnboardingStep
	index int
	// manualNav latches true on the first successful Select and never
	// resets for the lifetime of the Stepper.
	manualNav bool
}

// NewStepper creates a Stepper over the flow's steps, sorted by order.
// The initial index is the server-reported active step.
func NewStepper(flow *model.UserOnboardingFlow) *Stepper {
	s := &Stepper{}
	if flow != nil {
		s.steps = flow.SortedSteps()
	}
	s.index = s.firstIncomplete()
	return s
}

// Steps returns the ordered steps.
func (s *Stepper) Steps() []model.UserOnboardingStep {
	return s.steps
}

// Len returns the number of steps.
func (s *Stepper) Len() int {
	return len(s.steps)
}

// Index returns the current step index.
func (s *Stepper) Index() int {
	return s.index
}

// Current returns the step at the current index, or nil when empty.
func (s *Stepper) Current() *model.UserOnboardingStep {
	if len(s.steps) == 0 {
		return nil
	}
	return &s.steps[s.index]
}

// ManualNav reports whether the user has manually navigated.
func (s *Stepper) ManualNav() bool {
	return s.manualNav
}

// firstIncomplete returns the index of the first incomplete step, or the
// last index when all are complete. Empty lists return 0.
func (s *Stepper) firstIncomplete() int {
	if len(s.steps) == 0 {
		return 0
	}
	for i, st := range s.steps {
		if !st.IsCompleted {
			return i
		}
	}
	return len(s.steps) - 1
}

// SyncActive snaps the index to the first incomplete step. It is a no-op
// once the user has manually navigated.
func (s *Stepper) SyncActive() {
	if s.manualNav {
		return
	}
	s.index = s.firstIncomplete()
}

// Advance moves to the next step after a completion. At the last step it
// leaves the index unchanged; there is no wraparound.
func (s *Stepper) Advance() {
	if s.index+1 < len(s.steps) {
		s.index++
	}
}

// Selectable reports whether the step at i may be jumped to: every step
// before it must be complete. The first step is always selectable.
func (s *Stepper) Selectable(i int) bool {
	if i < 0 || i >= len(s.steps) {
		return false
	}
	for j := 0; j < i; j++ {
		if !s.steps[j].IsCompleted {
			return false
		}
	}
	return true
}

// Select jumps to step i and sets the manual-navigation latch. Selecting
// a gated or out-of-range step is a no-op and returns false.
func (s *Stepper) Select(i int) bool {
	if !s.Selectable(i) {
		return false
	}
	s.index = i
	s.manualNav = true
	return true
}

// Reload replaces the step list with fresh server state, keeping the
// current position when possible. The manual-navigation latch survives.
func (s *Stepper) Reload(flow *model.UserOnboardingFlow) {
	s.RefreshSteps(flow)
	s.SyncActive()
}

// RefreshSteps replaces the step snapshot without moving the active
// index beyond clamping it into range. Callers that just completed the
// current step pair this with Advance so the position moves by exactly
// one rather than snapping to the first incomplete step.
func (s *Stepper) RefreshSteps(flow *model.UserOnboardingFlow) {
	if flow == nil {
		return
	}
	s.steps = flow.SortedSteps()
	if s.index >= len(s.steps) {
		if len(s.steps) == 0 {
			s.index = 0
		} else {
			s.index = len(s.steps) - 1
		}
	}
}

// Complete reports whether every step is complete. Empty flows are not
// complete.
func (s *Stepper) Complete() bool {
	if len(s.steps) == 0 {
		return false
	}
	for _, st := range s.steps {
		if !st.IsCompleted {
			return false
		}
	}
	return true
}
