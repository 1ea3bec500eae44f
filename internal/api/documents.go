// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/patrimonial/patri-tui/internal/model"
)

// StepRequirements lists the document requirements attached to a step
// definition.
func (c *Client) StepRequirements(ctx context.Context, stepID int64) ([]model.DocumentRequirement, error) {
	var out []model.DocumentRequirement
	path := fmt.Sprintf("/documents/steps/%d/requirements", stepID)
	if err := c.getJSON(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateRequirementRequest defines a new document requirement (admin only).
type CreateRequirementRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	DocType     string `json:"doc_type,omitempty"`
	IsRequired  bool   `json:"is_required"`
}

// CreateRequirement attaches a new document requirement to a step.
func (c *Client) CreateRequirement(ctx context.Context, stepID int64, req CreateRequirementRequest) (*model.DocumentRequirement, error) {
	var out model.DocumentRequirement
	path := fmt.Sprintf("/documents/steps/%d/requirements", stepID)
	if err := c.sendJSON(ctx, http.MethodPost, path, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserStepDocuments lists the documents uploaded for a user step.
func (c *Client) UserStepDocuments(ctx context.Context, userStepID int64) ([]model.Document, error) {
	var out []model.Document
	path := fmt.Sprintf("/documents/user-steps/%d/documents", userStepID)
	if err := c.getJSON(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDocument returns one document by ID.
func (c *Client) GetDocument(ctx context.Context, documentID string) (*model.Document, error) {
	var out model.Document
	if err := c.getJSON(ctx, "/documents/"+documentID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
