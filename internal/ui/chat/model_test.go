// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"

	"github.com/patrimonial/patri-tui/internal/api"
	"github.com/patrimonial/patri-tui/internal/model"
	"github.com/patrimonial/patri-tui/internal/ui/styles"
)

func newTestModel(stepID, userStepID int64) *Model {
	client := api.NewClient("http://127.0.0.1:1", nil)
	runner := NewRunner(client, newCaptureSender())
	return New(client, runner, styles.NewTheme(true), stepID, userStepID)
}

func TestStateLoadedPopulatesConversation(t *testing.T) {
	m := newTestModel(5, 50)

	convID := "c1"
	state := &model.ChatState{
		ConversationID: &convID,
		Messages: []model.ChatMessage{
			{ID: "m1", SenderType: model.SenderLLM, Content: "Olá! Vamos falar sobre seus imóveis."},
			{ID: "m2", SenderType: model.SenderUser, Content: "Tenho um apartamento em São Paulo."},
		},
		StructuredData: model.ChatStructuredData{
			Imoveis: []model.Imovel{{Tipo: "apartamento"}},
		},
		Progress: model.ChatProgress{CompletedSections: 1, TotalSections: 5, Percentage: 20},
	}

	m.Update(StateLoadedMsg{StepID: 5, State: state})

	if len(m.messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(m.messages))
	}
	if m.messages[1].sender != model.SenderUser {
		t.Errorf("second message sender = %q, want user", m.messages[1].sender)
	}
	if m.structured == nil || len(m.structured.Imoveis) != 1 {
		t.Errorf("structured data not populated from snapshot: %+v", m.structured)
	}
	if m.progress == nil || m.progress.TotalSections != 5 {
		t.Errorf("progress not populated from snapshot: %+v", m.progress)
	}
}

func TestStateLoadedEmptySnapshotLeavesPanelsBlank(t *testing.T) {
	m := newTestModel(5, 50)

	m.Update(StateLoadedMsg{StepID: 5, State: &model.ChatState{}})

	if len(m.messages) != 0 {
		t.Errorf("messages = %d, want 0", len(m.messages))
	}
	if m.structured != nil {
		t.Errorf("empty structured data must stay nil, got %+v", m.structured)
	}
	if m.progress != nil {
		t.Errorf("zero progress must stay nil, got %+v", m.progress)
	}
}

func TestStateLoadedIgnoresOtherSteps(t *testing.T) {
	m := newTestModel(5, 50)

	m.Update(StateLoadedMsg{StepID: 6, State: &model.ChatState{
		Messages: []model.ChatMessage{{ID: "m1", SenderType: model.SenderUser, Content: "oi"}},
	}})

	if len(m.messages) != 0 {
		t.Errorf("snapshot for another step must be ignored, got %d messages", len(m.messages))
	}
}
