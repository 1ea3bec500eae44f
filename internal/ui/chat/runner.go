// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/patrimonial/patri-tui/internal/api"
	"github.com/patrimonial/patri-tui/internal/model"
)

// Sender is the subset of tea.Program the runner needs; it exists so
// tests can capture messages without a real program.
type Sender interface {
	Send(tea.Msg)
}

// Runner executes chat streams on a background goroutine and forwards
// typed messages into the Bubble Tea program. One stream runs at a time;
// starting a new one cancels the previous.
type Runner struct {
	client *api.Client
	sender Sender

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewRunner creates a Runner.
func NewRunner(client *api.Client, sender Sender) *Runner {
	return &Runner{client: client, sender: sender}
}

// Start begins streaming the user's message for stepID. The previous
// stream, if any, is cancelled first.
func (r *Runner) Start(stepID int64, message string) {
	ctx := r.begin()

	go func() {
		r.sender.Send(StreamStartMsg{StepID: stepID})

		// Callbacks run sequentially on this goroutine.
		completed := false

		err := r.client.SendMessageStream(ctx, stepID, message, api.StreamCallbacks{
			OnMessage: func(delta string) {
				r.sender.Send(StreamTokenMsg{StepID: stepID, Token: delta})
			},
			OnStructuredData: func(d model.ChatStructuredData) {
				r.sender.Send(StructuredDataMsg{StepID: stepID, Data: d})
			},
			OnProgress: func(p model.ChatProgress) {
				r.sender.Send(ProgressMsg{StepID: stepID, Data: p})
			},
			OnComplete: func(final string) {
				completed = true
				r.sender.Send(StreamCompleteMsg{StepID: stepID, FinalContent: final})
			},
		})
		if err != nil {
			if ctx.Err() != nil {
				return // cancelled by a newer stream or teardown; stay quiet
			}
			r.sender.Send(StreamErrorMsg{StepID: stepID, Err: err})
			return
		}

		// A stream may end at EOF without a complete record; the
		// accumulated text stands as the reply, and the UI still needs
		// a terminal message to leave the streaming state.
		if !completed {
			r.sender.Send(StreamCompleteMsg{StepID: stepID})
		}

		r.finish(ctx)
	}()
}

// Cancel aborts the in-flight stream. Safe to call repeatedly. The UI
// calls this when the active step changes or the component unmounts, so
// the network read does not outlive its consumer.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// begin cancels any previous stream and returns a fresh context.
func (r *Runner) begin() context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	return ctx
}

// finish releases the cancel func if it still belongs to this stream.
func (r *Runner) finish(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ctx.Err() == nil && r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}
