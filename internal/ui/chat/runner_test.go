// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/patrimonial/patri-tui/internal/api"
)

// captureSender records messages in arrival order.
type captureSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
	done chan struct{}
}

func newCaptureSender() *captureSender {
	return &captureSender{done: make(chan struct{})}
}

func (c *captureSender) Send(msg tea.Msg) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	switch msg.(type) {
	case StreamCompleteMsg, StreamErrorMsg:
		close(c.done)
	}
}

func (c *captureSender) wait(t *testing.T) []tea.Msg {
	t.Helper()
	select {
	case <-c.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for stream to finish")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]tea.Msg(nil), c.msgs...)
}

type testTokens struct{}

func (testTokens) Token() (string, error) { return "tok", nil }

func TestRunnerForwardsStreamEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(strings.Join([]string{
			`data: {"type":"message","content":"oi "}`,
			`data: {"type":"message","content":"tudo bem"}`,
			`data: {"type":"progress","data":{"completed_sections":1,"total_sections":5,"percentage":20}}`,
			`data: {"type":"complete","content":"oi tudo bem"}`,
			"",
		}, "\n")))
	}))
	defer srv.Close()

	sender := newCaptureSender()
	runner := NewRunner(api.NewClient(srv.URL, testTokens{}), sender)
	runner.Start(5, "olá")

	msgs := sender.wait(t)
	if len(msgs) < 4 {
		t.Fatalf("expected at least 4 messages, got %d", len(msgs))
	}
	if _, ok := msgs[0].(StreamStartMsg); !ok {
		t.Errorf("first message should be StreamStartMsg, got %T", msgs[0])
	}

	var tokens string
	var progressSeen, completeSeen bool
	for _, msg := range msgs {
		switch m := msg.(type) {
		case StreamTokenMsg:
			tokens += m.Token
		case ProgressMsg:
			progressSeen = true
		case StreamCompleteMsg:
			completeSeen = true
			if m.FinalContent != "oi tudo bem" {
				t.Errorf("final content: got %q", m.FinalContent)
			}
		}
	}
	if tokens != "oi tudo bem" {
		t.Errorf("concatenated tokens: got %q", tokens)
	}
	if !progressSeen || !completeSeen {
		t.Errorf("missing events: progress=%v complete=%v", progressSeen, completeSeen)
	}
}

func TestRunnerCompletesStreamWithoutCompleteRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(`data: {"type":"message","content":"resposta sem fecho"}` + "\n"))
	}))
	defer srv.Close()

	sender := newCaptureSender()
	runner := NewRunner(api.NewClient(srv.URL, testTokens{}), sender)
	runner.Start(5, "olá")

	msgs := sender.wait(t)
	last := msgs[len(msgs)-1]
	complete, ok := last.(StreamCompleteMsg)
	if !ok {
		t.Fatalf("stream ending at EOF must still terminate with StreamCompleteMsg, got %T", last)
	}
	// No final content: the accumulated tokens stand as the reply.
	if complete.FinalContent != "" {
		t.Errorf("FinalContent should be empty, got %q", complete.FinalContent)
	}

	var tokens string
	for _, msg := range msgs {
		if m, ok := msg.(StreamTokenMsg); ok {
			tokens += m.Token
		}
	}
	if tokens != "resposta sem fecho" {
		t.Errorf("tokens: got %q", tokens)
	}
}

func TestRunnerReportsStreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"backend indisponível"}`))
	}))
	defer srv.Close()

	sender := newCaptureSender()
	runner := NewRunner(api.NewClient(srv.URL, testTokens{}), sender)
	runner.Start(5, "olá")

	msgs := sender.wait(t)
	last := msgs[len(msgs)-1]
	errMsg, ok := last.(StreamErrorMsg)
	if !ok {
		t.Fatalf("expected StreamErrorMsg, got %T", last)
	}
	if !strings.Contains(errMsg.Err.Error(), "backend indisponível") {
		t.Errorf("error should carry server detail, got %v", errMsg.Err)
	}
}

func TestRunnerCancelSilencesStream(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"type\":\"message\",\"content\":\"a\"}\n"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		close(started)
		<-release
	}))
	defer srv.Close()
	defer close(release)

	sender := newCaptureSender()
	runner := NewRunner(api.NewClient(srv.URL, testTokens{}), sender)
	runner.Start(5, "olá")

	<-started
	runner.Cancel()

	// The cancelled stream must not emit error or complete messages.
	select {
	case <-sender.done:
		t.Error("cancelled stream should end silently")
	case <-time.After(200 * time.Millisecond):
	}
}
