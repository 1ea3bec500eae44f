// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/patrimonial/patri-tui/internal/model"
)

// StreamStartMsg marks the beginning of an assistant response.
type StreamStartMsg struct {
	StepID int64
}

// StreamTokenMsg delivers one batch of assistant text.
type StreamTokenMsg struct {
	StepID int64
	Token  string
}

// StructuredDataMsg replaces the structured-data snapshot.
type StructuredDataMsg struct {
	StepID int64
	Data   model.ChatStructuredData
}

// ProgressMsg replaces the data-collection progress snapshot.
type ProgressMsg struct {
	StepID int64
	Data   model.ChatProgress
}

// StreamCompleteMsg marks the end of an assistant response.
type StreamCompleteMsg struct {
	StepID       int64
	FinalContent string
}

// StreamErrorMsg reports a failed stream.
type StreamErrorMsg struct {
	StepID int64
	Err    error
}

// StateLoadedMsg carries the server-side conversation snapshot for a step:
// stored messages, the latest structured data and the progress estimate.
type StateLoadedMsg struct {
	StepID int64
	State  *model.ChatState
	Err    error
}

// ResetDoneMsg reports the outcome of a conversation reset.
type ResetDoneMsg struct {
	StepID int64
	Err    error
}

// FlushTickMsg drives periodic buffer flushes while streaming.
type FlushTickMsg struct{}

// CompleteRequestedMsg asks the parent flow to mark this chat step done.
type CompleteRequestedMsg struct {
	UserStepID int64
}
