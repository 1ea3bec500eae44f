// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// DOCUMENTS
// =============================================================================

// DocumentStatus is the validation state of an uploaded document.
type DocumentStatus string

const (
	DocumentUploaded      DocumentStatus = "uploaded"
	DocumentValidated     DocumentStatus = "validated"
	DocumentInvalid       DocumentStatus = "invalid"
	DocumentPendingReview DocumentStatus = "pending_review"
)

// Document is an uploaded file plus its validation status.
type Document struct {
	ID               string         `json:"id"`
	RequirementID    string         `json:"requirement_id"`
	HoldingID        string         `json:"holding_id"`
	Status           DocumentStatus `json:"status"`
	UploadedByID     string         `json:"uploaded_by_id"`
	UploadedAt       time.Time      `json:"uploaded_at"`
	ValidatedAt      *time.Time     `json:"validated_at,omitempty"`
	FilePath         string         `json:"file_path"`
	OriginalFilename string         `json:"original_filename"`
	FileType         string         `json:"file_type"`
	FileSize         int64          `json:"file_size"`
	ContentType      string         `json:"content_type"`
	RejectionReason  string         `json:"rejection_reason,omitempty"`
}

// DocumentRequirement is a named category of document a step may mandate.
// Required requirements gate step completion; validation of the uploaded
// file is a later, consultant-side concern.
type DocumentRequirement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	DocType     string `json:"doc_type"`
	IsRequired  bool   `json:"is_required"`
	Status      string `json:"status,omitempty"`
}
