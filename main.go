// patri - terminal client for the holding patrimonial onboarding.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/patrimonial/patri-tui/internal/api"
	"github.com/patrimonial/patri-tui/internal/auth"
	"github.com/patrimonial/patri-tui/internal/cache"
	"github.com/patrimonial/patri-tui/internal/cli"
	"github.com/patrimonial/patri-tui/internal/config"
	"github.com/patrimonial/patri-tui/internal/logging"
	"github.com/patrimonial/patri-tui/internal/session"
	"github.com/patrimonial/patri-tui/internal/ui"
	"github.com/patrimonial/patri-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdLogin:
		run(cli.HandleLogin, args)
	case cli.CmdSignup:
		run(cli.HandleSignup, args)
	case cli.CmdLogout:
		run(cli.HandleLogout, args)
	case cli.CmdWhoami:
		run(cli.HandleWhoami, args)
	case cli.CmdChat:
		if args.Plain {
			run(cli.HandleChat, args)
		} else {
			runTUI(args)
		}
	case cli.CmdDocs:
		run(cli.HandleDocs, args)
	case cli.CmdAdmin:
		run(cli.HandleAdmin, args)
	case cli.CmdStatus:
		run(cli.HandleStatus, args)
	case cli.CmdConfig:
		run(cli.HandleConfig, args)
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.PrintUsage()
	}
}

// run executes a CLI handler and exits non-zero on failure.
func run(handler func(cli.Args) error, args cli.Args) {
	if err := handler(args); err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		os.Exit(1)
	}
}

// runTUI wires the dependencies and starts the full-screen interface.
func runTUI(args cli.Args) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		os.Exit(1)
	}
	config.SetGlobal(cfg)

	if args.Verbose && cfg.Log.Level != "debug" {
		cfg.Log.Level = "debug"
	}
	closeLog, err := logging.Init(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	tokens, err := auth.NewStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		os.Exit(1)
	}

	client := api.NewClient(cfg.API.BaseURL, tokens,
		api.WithTimeout(time.Duration(cfg.API.TimeoutSecs)*time.Second))

	c, err := cache.OpenDefault(cfg.Cache)
	if err != nil {
		logging.L().Warn("cache unavailable", zap.Error(err))
		c = nil
	}
	defer c.Close()

	sessCfg := session.DefaultConfig()
	sessCfg.Timeout = time.Duration(cfg.Session.TimeoutMins) * time.Minute
	sess := session.NewManager(sessCfg)

	theme := styles.NewTheme(cfg.UI.Theme != "light")
	app := ui.NewApp(client, tokens, c, sess, theme)

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	app.Sender().Attach(program)

	logging.L().Info("tui starting",
		zap.String("version", Version),
		zap.String("session_id", sess.SessionID()))

	if _, err := program.Run(); err != nil {
		logging.L().Error("tui crashed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		os.Exit(1)
	}
}
