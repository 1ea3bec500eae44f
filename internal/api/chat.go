// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/patrimonial/patri-tui/internal/model"
)

// ChatMessages returns the stored conversation for a chat step, oldest
// first. limit/offset of 0 use the server defaults.
func (c *Client) ChatMessages(ctx context.Context, stepID int64, limit, offset int) ([]model.ChatMessage, error) {
	query := url.Values{}
	query.Set("step_id", strconv.FormatInt(stepID, 10))
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}

	var out []model.ChatMessage
	if err := c.getJSON(ctx, "/llm-chat/messages", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChatState returns the full chat snapshot for a step in one call:
// message history, structured data, progress and completion flag.
func (c *Client) ChatState(ctx context.Context, stepID int64) (*model.ChatState, error) {
	query := url.Values{}
	query.Set("step_id", strconv.FormatInt(stepID, 10))

	var out model.ChatState
	if err := c.getJSON(ctx, "/llm-chat/state", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChatProgress returns the server's current data-collection progress
// estimate for a chat step.
func (c *Client) ChatProgress(ctx context.Context, stepID int64) (*model.ChatProgress, error) {
	query := url.Values{}
	query.Set("step_id", strconv.FormatInt(stepID, 10))

	var out model.ChatProgress
	if err := c.getJSON(ctx, "/llm-chat/progress", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StructuredData returns the latest structured-data snapshot the LLM has
// extracted for a chat step.
func (c *Client) StructuredData(ctx context.Context, stepID int64) (*model.ChatStructuredData, error) {
	query := url.Values{}
	query.Set("step_id", strconv.FormatInt(stepID, 10))

	var out model.ChatStructuredData
	if err := c.getJSON(ctx, "/llm-chat/structured-data", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetChat clears the conversation and collected data for a chat step.
func (c *Client) ResetChat(ctx context.Context, stepID int64) error {
	body := struct {
		StepID int64 `json:"step_id"`
	}{StepID: stepID}
	return c.sendJSON(ctx, http.MethodPost, "/llm-chat/reset", nil, body, nil)
}
