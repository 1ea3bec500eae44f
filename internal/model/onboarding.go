// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the server-owned resources the client mirrors.
//
// Every type here is a cache copy of something the API owns: the client
// never invents state, it replaces whole snapshots after each refetch.
// Field names follow the wire format of the onboarding API.
package model

import (
	"sort"
	"time"
)

// =============================================================================
// STEP TYPES
// =============================================================================

// StepType tags the capture behavior an onboarding step requires.
type StepType string

// Known step types. Servers may introduce new types at any time; callers
// must treat anything else as StepTypeUnknown rather than failing.
const (
	StepTypePersonalData     StepType = "personal_data"
	StepTypeLLMChat          StepType = "llm_chat"
	StepTypeDataVerification StepType = "data_verification"
	StepTypeUnknown          StepType = ""
)

// Known reports whether the step type maps to a capture behavior this
// client implements.
func (t StepType) Known() bool {
	switch t {
	case StepTypePersonalData, StepTypeLLMChat, StepTypeDataVerification:
		return true
	}
	return false
}

// =============================================================================
// ONBOARDING RESOURCES
// =============================================================================

// StepData is the free-form JSON payload a step accumulates.
type StepData map[string]any

// OnboardingStep is a step definition inside a flow.
type OnboardingStep struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Order       int      `json:"order"`
	Type        StepType `json:"type"`
}

// OnboardingFlow is a named sequence of step definitions.
type OnboardingFlow struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	CreatedAt   time.Time        `json:"created_at"`
	Steps       []OnboardingStep `json:"steps"`
}

// UserOnboardingStep is one user's instance of a step definition,
// carrying completion state and the data collected so far.
type UserOnboardingStep struct {
	ID          int64          `json:"id"`
	StepID      int64          `json:"step_id"`
	IsCompleted bool           `json:"is_completed"`
	StartedAt   *time.Time     `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at"`
	Data        StepData       `json:"data"`
	Step        OnboardingStep `json:"step"`
}

// UserOnboardingFlow is the flow assigned to a user plus its step instances.
type UserOnboardingFlow struct {
	ID          int64                `json:"id"`
	FlowID      int64                `json:"flow_id"`
	IsCompleted bool                 `json:"is_completed"`
	StartedAt   time.Time            `json:"started_at"`
	CompletedAt *time.Time           `json:"completed_at"`
	Flow        OnboardingFlow       `json:"flow"`
	UserSteps   []UserOnboardingStep `json:"user_steps"`
}

// SortedSteps returns the user steps ordered by their step definition's
// order field. The input slice is not modified.
func (f *UserOnboardingFlow) SortedSteps() []UserOnboardingStep {
	steps := make([]UserOnboardingStep, len(f.UserSteps))
	copy(steps, f.UserSteps)
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Step.Order < steps[j].Step.Order
	})
	return steps
}

// ActiveStep returns the first incomplete step in order, or the last step
// when every step is complete. Returns nil for an empty flow.
func (f *UserOnboardingFlow) ActiveStep() *UserOnboardingStep {
	steps := f.SortedSteps()
	if len(steps) == 0 {
		return nil
	}
	for i := range steps {
		if !steps[i].IsCompleted {
			return &steps[i]
		}
	}
	return &steps[len(steps)-1]
}

// CompletedCount returns how many user steps are marked complete.
func (f *UserOnboardingFlow) CompletedCount() int {
	n := 0
	for _, s := range f.UserSteps {
		if s.IsCompleted {
			n++
		}
	}
	return n
}
