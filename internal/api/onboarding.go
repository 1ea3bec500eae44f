// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/patrimonial/patri-tui/internal/model"
)

// MyFlow returns the authenticated user's onboarding flow with its
// ordered user steps.
func (c *Client) MyFlow(ctx context.Context) (*model.UserOnboardingFlow, error) {
	var out model.UserOnboardingFlow
	if err := c.getJSON(ctx, "/onboarding/flow", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStepData persists a partial data payload for a user step.
func (c *Client) UpdateStepData(ctx context.Context, userStepID int64, data model.StepData) (*model.UserOnboardingStep, error) {
	body := struct {
		Data model.StepData `json:"data"`
	}{Data: data}

	var out model.UserOnboardingStep
	path := fmt.Sprintf("/onboarding/step/%d/data", userStepID)
	if err := c.sendJSON(ctx, http.MethodPatch, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStepStatus marks a user step complete or incomplete.
func (c *Client) UpdateStepStatus(ctx context.Context, userStepID int64, completed bool) (*model.UserOnboardingStep, error) {
	body := struct {
		IsCompleted bool `json:"is_completed"`
	}{IsCompleted: completed}

	var out model.UserOnboardingStep
	path := fmt.Sprintf("/onboarding/step/%d/status", userStepID)
	if err := c.sendJSON(ctx, http.MethodPatch, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
