// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - patri config: show, set and locate the config file.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/patrimonial/patri-tui/internal/config"
)

// HandleConfig routes the config subcommands.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "show", "":
		return configShow(args)
	case "set":
		if args.ConfigKey == "" || args.ConfigVal == "" {
			return fmt.Errorf("uso: patri config set <chave> <valor>")
		}
		return configSet(args.ConfigKey, args.ConfigVal, args.Quiet)
	case "path":
		path, err := config.Path()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	default:
		return fmt.Errorf("subcomando desconhecido: %s (show, set, path)", args.Subcommand)
	}
}

func configShow(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if args.JSON {
		return printJSON(cfg)
	}

	fmt.Println(TitleStyle.Render("Configuração"))
	fmt.Printf("%s %s\n", LabelStyle.Render("api.base_url"), ValueStyle.Render(cfg.API.BaseURL))
	fmt.Printf("%s %s\n", LabelStyle.Render("api.timeout_secs"), ValueStyle.Render(strconv.Itoa(cfg.API.TimeoutSecs)))
	fmt.Printf("%s %s\n", LabelStyle.Render("ui.theme"), ValueStyle.Render(cfg.UI.Theme))
	fmt.Printf("%s %s\n", LabelStyle.Render("cache.enabled"), ValueStyle.Render(strconv.FormatBool(cfg.Cache.Enabled)))
	fmt.Printf("%s %s\n", LabelStyle.Render("cache.ttl_hours"), ValueStyle.Render(strconv.Itoa(cfg.Cache.TTLHours)))
	fmt.Printf("%s %s\n", LabelStyle.Render("log.level"), ValueStyle.Render(cfg.Log.Level))
	fmt.Printf("%s %s\n", LabelStyle.Render("session.timeout_mins"), ValueStyle.Render(strconv.Itoa(cfg.Session.TimeoutMins)))

	if path, err := config.Path(); err == nil {
		fmt.Println()
		fmt.Println(MutedStyle.Render("arquivo: " + path))
	}
	return nil
}

// configSet updates one key and persists the file.
func configSet(key, value string, quiet bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch strings.ToLower(key) {
	case "api.base_url":
		cfg.API.BaseURL = strings.TrimRight(value, "/")
	case "api.timeout_secs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("valor inválido para %s: %q", key, value)
		}
		cfg.API.TimeoutSecs = n
	case "ui.theme":
		cfg.UI.Theme = value
	case "ui.compact_mode":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("valor inválido para %s: %q", key, value)
		}
		cfg.UI.CompactMode = b
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("valor inválido para %s: %q", key, value)
		}
		cfg.Cache.Enabled = b
	case "cache.ttl_hours":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("valor inválido para %s: %q", key, value)
		}
		cfg.Cache.TTLHours = n
	case "log.level":
		cfg.Log.Level = value
	case "session.timeout_mins":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("valor inválido para %s: %q", key, value)
		}
		cfg.Session.TimeoutMins = n
	default:
		return fmt.Errorf("chave desconhecida: %s", key)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	if !quiet {
		fmt.Printf("%s %s = %s\n", SuccessStyle.Render("Salvo:"), key, value)
	}
	return nil
}
