// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the LLM chat capture step of the onboarding
// flow.
//
// Token deltas arrive from a background goroutine faster than the
// terminal can usefully repaint. The StreamingBuffer batches them and
// releases content at a capped frame rate so rendering stays smooth
// without burning CPU.
package chat

import (
	"strings"
	"sync"
	"time"
)

// StreamingBuffer accumulates token deltas and flushes them either when
// enough tokens are queued or enough time has passed since the last
// flush. Writes happen on the stream goroutine, flushes on the Bubble
// Tea loop, so everything is mutex-guarded.
type StreamingBuffer struct {
	mu        sync.Mutex
	buf       strings.Builder
	tokens    int
	lastFlush time.Time

	batchSize     int
	flushInterval time.Duration
}

// NewStreamingBuffer creates a buffer tuned for terminal rendering:
// 15-token batches at most 30 times per second.
func NewStreamingBuffer() *StreamingBuffer {
	return &StreamingBuffer{
		batchSize:     15,
		flushInterval: time.Second / 30,
		lastFlush:     time.Now(),
	}
}

// Write queues a token delta.
func (sb *StreamingBuffer) Write(token string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.buf.WriteString(token)
	sb.tokens++
}

// Flush returns queued content when a flush is due, and whether anything
// was returned.
func (sb *StreamingBuffer) Flush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if sb.buf.Len() == 0 || !sb.dueLocked() {
		return "", false
	}
	return sb.takeLocked(), true
}

// ForceFlush returns everything queued regardless of thresholds. Call on
// stream completion so no tokens are left unrendered.
func (sb *StreamingBuffer) ForceFlush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if sb.buf.Len() == 0 {
		return "", false
	}
	return sb.takeLocked(), true
}

// Reset discards queued content. Used when a stream is cancelled or the
// step changes mid-stream.
func (sb *StreamingBuffer) Reset() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.buf.Reset()
	sb.tokens = 0
	sb.lastFlush = time.Now()
}

// Pending returns how many tokens are queued.
func (sb *StreamingBuffer) Pending() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.tokens
}

func (sb *StreamingBuffer) dueLocked() bool {
	return sb.tokens >= sb.batchSize || time.Since(sb.lastFlush) >= sb.flushInterval
}

func (sb *StreamingBuffer) takeLocked() string {
	content := sb.buf.String()
	sb.buf.Reset()
	sb.tokens = 0
	sb.lastFlush = time.Now()
	return content
}
