// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package onboarding

import (
	"github.com/patrimonial/patri-tui/internal/model"
)

// RequirementsSatisfied reports whether every required document
// requirement has at least one uploaded document.
//
// A document counts once it exists with a matching requirement_id; its
// validation status is irrelevant here. Validation is a later,
// consultant-driven concern and never gates the upload step.
func RequirementsSatisfied(reqs []model.DocumentRequirement, docs []model.Document) bool {
	uploaded := make(map[string]bool, len(docs))
	for _, d := range docs {
		uploaded[d.RequirementID] = true
	}
	for _, r := range reqs {
		if r.IsRequired && !uploaded[r.ID] {
			return false
		}
	}
	return true
}

// MissingRequirements returns the required requirements that have no
// uploaded document yet, in input order.
func MissingRequirements(reqs []model.DocumentRequirement, docs []model.Document) []model.DocumentRequirement {
	uploaded := make(map[string]bool, len(docs))
	for _, d := range docs {
		uploaded[d.RequirementID] = true
	}
	var missing []model.DocumentRequirement
	for _, r := range reqs {
		if r.IsRequired && !uploaded[r.ID] {
			missing = append(missing, r)
		}
	}
	return missing
}

// DocumentsFor returns the documents uploaded against one requirement.
func DocumentsFor(requirementID string, docs []model.Document) []model.Document {
	var out []model.Document
	for _, d := range docs {
		if d.RequirementID == requirementID {
			out = append(out, d)
		}
	}
	return out
}
