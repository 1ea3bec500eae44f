// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - TTY detection and color handling for the patri CLI.
//
// Colors are disabled for piped or redirected output, NO_COLOR is
// respected (https://no-color.org/), and FORCE_COLOR overrides detection.
package cli

import (
	"os"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTTY returns true if stdin is a terminal. Interactive prompts
// (password entry, REPL) require this.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

const (
	defaultTerminalWidth = 80
	minTerminalWidth     = 40
)

// TerminalWidth returns the current terminal width, with a fallback of 80.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultTerminalWidth
	}
	if width < minTerminalWidth {
		return minTerminalWidth
	}
	return width
}

// ColorProfile returns the termenv profile to use for CLI output.
func ColorProfile() termenv.Profile {
	if force := os.Getenv("FORCE_COLOR"); force != "" && force != "0" {
		return termenv.ANSI256
	}
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	if !IsStdoutTTY() {
		return termenv.Ascii
	}
	if strings.Contains(os.Getenv("TERM"), "256color") {
		return termenv.ANSI256
	}
	return termenv.ColorProfile()
}
