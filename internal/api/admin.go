// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/patrimonial/patri-tui/internal/model"
)

// AdminDocumentsFilter narrows the admin document listing.
type AdminDocumentsFilter struct {
	// Status filters by validation status; empty means all.
	Status model.DocumentStatus
	Limit  int
	Offset int
}

// AdminDocuments lists documents across all users for consultant review.
func (c *Client) AdminDocuments(ctx context.Context, filter AdminDocumentsFilter) ([]model.Document, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		query.Set("offset", strconv.Itoa(filter.Offset))
	}

	var out []model.Document
	if err := c.getJSON(ctx, "/admin/documents", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReviewDocument sets a document's validation status. rejectionReason is
// only meaningful when status is invalid.
func (c *Client) ReviewDocument(ctx context.Context, documentID string, status model.DocumentStatus, rejectionReason string) (*model.Document, error) {
	body := struct {
		Status          model.DocumentStatus `json:"status"`
		RejectionReason string               `json:"rejection_reason,omitempty"`
	}{Status: status, RejectionReason: rejectionReason}

	var out model.Document
	path := fmt.Sprintf("/admin/documents/%s/status", documentID)
	if err := c.sendJSON(ctx, http.MethodPatch, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
