// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging sets up file-based structured logging.
//
// The terminal belongs to the TUI, so all logs go to ~/.patri/patri.log.
// A nop logger is installed until Init is called, which keeps library code
// free of nil checks.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/patrimonial/patri-tui/internal/config"
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
)

// Init opens the log file and installs the global logger. The returned
// closer flushes buffered entries and must be called on shutdown.
func Init(cfg config.LogConfig) (func(), error) {
	path := cfg.Path
	if path == "" {
		dir, err := config.Dir()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		path = filepath.Join(dir, "patri.log")
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(f),
		parseLevel(cfg.Level),
	)

	l := zap.New(core)
	mu.Lock()
	logger = l
	mu.Unlock()

	return func() {
		_ = l.Sync()
		_ = f.Close()
	}, nil
}

// L returns the current global logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetForTesting swaps in a logger for tests and returns a restore func.
func SetForTesting(l *zap.Logger) func() {
	mu.Lock()
	prev := logger
	logger = l
	mu.Unlock()
	return func() {
		mu.Lock()
		logger = prev
		mu.Unlock()
	}
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
