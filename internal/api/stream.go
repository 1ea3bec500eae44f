// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/patrimonial/patri-tui/internal/logging"
	"github.com/patrimonial/patri-tui/internal/model"
)

// streamDataPrefix marks payload lines in the event stream.
const streamDataPrefix = "data: "

// maxStreamLine caps one event line.
const maxStreamLine = 1024 * 1024 // 1MB

// streamEvent is one decoded record from the chat stream.
type streamEvent struct {
	Type    string          `json:"type"`
	Content string          `json:"content"`
	Data    json.RawMessage `json:"data"`
}

// StreamCallbacks receives typed events from a chat stream. Any callback
// may be nil. Callbacks fire sequentially in arrival order, on the
// goroutine that called SendMessageStream.
type StreamCallbacks struct {
	// OnMessage receives each assistant text delta.
	OnMessage func(delta string)
	// OnStructuredData receives replacement structured-data snapshots.
	OnStructuredData func(data model.ChatStructuredData)
	// OnProgress receives replacement progress snapshots.
	OnProgress func(p model.ChatProgress)
	// OnComplete fires exactly once when the server signals completion.
	// finalContent may be empty.
	OnComplete func(finalContent string)
}

// StreamAccumulator collects message deltas into the full assistant reply.
type StreamAccumulator struct {
	b strings.Builder
}

// Add appends a delta.
func (a *StreamAccumulator) Add(delta string) { a.b.WriteString(delta) }

// String returns everything accumulated so far.
func (a *StreamAccumulator) String() string { return a.b.String() }

// Len returns the accumulated length in bytes.
func (a *StreamAccumulator) Len() int { return a.b.Len() }

// Reset discards the accumulated content.
func (a *StreamAccumulator) Reset() { a.b.Reset() }

// SendMessageStream sends a user message to the chat step and consumes
// the event-stream response, dispatching each record to cb.
//
// A record with type "complete" is terminal: the function returns nil
// immediately and ignores any lines still buffered after it. Malformed
// records are logged and skipped. A failure before or during the stream
// (network error, non-2xx response, read error) is returned as a single
// error; no callbacks report partial success in that case. Cancel ctx to
// abort the read mid-stream.
func (c *Client) SendMessageStream(ctx context.Context, stepID int64, message string, cb StreamCallbacks) error {
	body := struct {
		Message string `json:"message"`
		StepID  int64  `json:"step_id"`
	}{Message: message, StepID: stepID}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	query := url.Values{}
	query.Set("step_id", strconv.FormatInt(stepID, 10))

	req, err := c.newRequest(ctx, requestOpts{
		method:      "POST",
		path:        "/llm-chat/message/stream",
		query:       query,
		body:        bytes.NewReader(data),
		contentType: "application/json",
	})
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return fmt.Errorf("stream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		return newAPIError(resp.StatusCode, raw)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), maxStreamLine)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimRight(scanner.Text(), "\r")
		if !strings.HasPrefix(line, streamDataPrefix) {
			// Blank keepalives and unknown framing are not errors.
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, streamDataPrefix))
		if payload == "" {
			continue
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			logging.L().Debug("skipping malformed stream record", zap.Error(err))
			continue
		}

		switch ev.Type {
		case "message":
			if cb.OnMessage != nil && ev.Content != "" {
				cb.OnMessage(ev.Content)
			}
		case "structured_data":
			var sd model.ChatStructuredData
			if err := json.Unmarshal(ev.Data, &sd); err != nil {
				logging.L().Debug("skipping malformed structured_data record", zap.Error(err))
				continue
			}
			if cb.OnStructuredData != nil {
				cb.OnStructuredData(sd)
			}
		case "progress":
			var p model.ChatProgress
			if err := json.Unmarshal(ev.Data, &p); err != nil {
				logging.L().Debug("skipping malformed progress record", zap.Error(err))
				continue
			}
			if cb.OnProgress != nil {
				cb.OnProgress(p)
			}
		case "complete":
			if cb.OnComplete != nil {
				cb.OnComplete(ev.Content)
			}
			return nil
		default:
			logging.L().Debug("ignoring unknown stream event type",
				zap.String("type", ev.Type))
		}
	}

	if err := scanner.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("stream read failed: %w", err)
	}
	return nil
}
