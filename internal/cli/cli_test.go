// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"
)

func TestParseFrom_DefaultsToTUI(t *testing.T) {
	cmd, _ := ParseFrom(nil)
	if cmd != CmdTUI {
		t.Errorf("ParseFrom(nil) = %v, want CmdTUI", cmd)
	}
}

func TestParseFrom_Commands(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want Command
	}{
		{"login", []string{"login"}, CmdLogin},
		{"signup", []string{"signup"}, CmdSignup},
		{"logout", []string{"logout"}, CmdLogout},
		{"whoami", []string{"whoami"}, CmdWhoami},
		{"whoami alias", []string{"me"}, CmdWhoami},
		{"chat", []string{"chat"}, CmdChat},
		{"docs", []string{"docs"}, CmdDocs},
		{"docs alias", []string{"documents", "list"}, CmdDocs},
		{"admin", []string{"admin"}, CmdAdmin},
		{"status", []string{"status"}, CmdStatus},
		{"status short", []string{"s"}, CmdStatus},
		{"config", []string{"config"}, CmdConfig},
		{"version", []string{"version"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"unknown falls back to help", []string{"frobnicate"}, CmdHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := ParseFrom(tt.argv)
			if cmd != tt.want {
				t.Errorf("ParseFrom(%v) = %v, want %v", tt.argv, cmd, tt.want)
			}
		})
	}
}

func TestParseFrom_GlobalFlags(t *testing.T) {
	cmd, args := ParseFrom([]string{"--json", "-q", "status"})
	if cmd != CmdStatus {
		t.Fatalf("cmd = %v, want CmdStatus", cmd)
	}
	if !args.JSON {
		t.Error("JSON should be true")
	}
	if !args.Quiet {
		t.Error("Quiet should be true")
	}
}

func TestParseFrom_LoginEmail(t *testing.T) {
	_, args := ParseFrom([]string{"login", "ana@example.com"})
	if args.Email != "ana@example.com" {
		t.Errorf("Email = %q, want ana@example.com", args.Email)
	}
}

func TestParseFrom_ChatFlags(t *testing.T) {
	tests := []struct {
		name      string
		argv      []string
		wantPlain bool
		wantStep  int64
	}{
		{"plain", []string{"chat", "--plain"}, true, 0},
		{"step separate", []string{"chat", "--step", "3"}, false, 3},
		{"step equals", []string{"chat", "--plain", "--step=2"}, true, 2},
		{"step invalid ignored", []string{"chat", "--step", "abc"}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, args := ParseFrom(tt.argv)
			if args.Plain != tt.wantPlain {
				t.Errorf("Plain = %v, want %v", args.Plain, tt.wantPlain)
			}
			if args.Step != tt.wantStep {
				t.Errorf("Step = %d, want %d", args.Step, tt.wantStep)
			}
		})
	}
}

func TestParseFrom_DocsSubcommands(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		wantSub string
		wantArg func(Args) bool
	}{
		{
			name:    "bare docs lists",
			argv:    []string{"docs"},
			wantSub: "list",
			wantArg: func(a Args) bool { return true },
		},
		{
			name:    "upload with file",
			argv:    []string{"docs", "upload", "rg.pdf"},
			wantSub: "upload",
			wantArg: func(a Args) bool { return a.File == "rg.pdf" },
		},
		{
			name:    "upload with requirement",
			argv:    []string{"docs", "upload", "rg.pdf", "--req", "req-1"},
			wantSub: "upload",
			wantArg: func(a Args) bool { return a.RequirementID == "req-1" },
		},
		{
			name:    "watch with dir",
			argv:    []string{"docs", "watch", "/tmp/docs", "--req=req-2"},
			wantSub: "watch",
			wantArg: func(a Args) bool { return a.Dir == "/tmp/docs" && a.RequirementID == "req-2" },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := ParseFrom(tt.argv)
			if cmd != CmdDocs {
				t.Fatalf("cmd = %v, want CmdDocs", cmd)
			}
			if args.Subcommand != tt.wantSub {
				t.Errorf("Subcommand = %q, want %q", args.Subcommand, tt.wantSub)
			}
			if !tt.wantArg(args) {
				t.Errorf("unexpected args: %+v", args)
			}
		})
	}
}

func TestParseFrom_AdminSubcommands(t *testing.T) {
	_, args := ParseFrom([]string{"admin", "reject", "doc-9", "--reason", "ilegível"})
	if args.Subcommand != "reject" {
		t.Errorf("Subcommand = %q, want reject", args.Subcommand)
	}
	if args.ConfigKey != "doc-9" {
		t.Errorf("document id = %q, want doc-9", args.ConfigKey)
	}
	if args.ConfigVal != "ilegível" {
		t.Errorf("reason = %q, want ilegível", args.ConfigVal)
	}

	_, args = ParseFrom([]string{"admin", "list", "--status", "pending_review"})
	if args.Subcommand != "list" || args.ConfigVal != "pending_review" {
		t.Errorf("unexpected args: %+v", args)
	}
}

func TestParseFrom_ConfigSet(t *testing.T) {
	_, args := ParseFrom([]string{"config", "set", "ui.theme", "light"})
	if args.Subcommand != "set" {
		t.Errorf("Subcommand = %q, want set", args.Subcommand)
	}
	if args.ConfigKey != "ui.theme" || args.ConfigVal != "light" {
		t.Errorf("key/val = %q/%q, want ui.theme/light", args.ConfigKey, args.ConfigVal)
	}
}
