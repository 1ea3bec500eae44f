// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status_cmd.go - patri status: account, flow and configuration summary.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/patrimonial/patri-tui/internal/cache"
	"github.com/patrimonial/patri-tui/internal/model"
)

// HandleStatus prints a one-screen overview of the onboarding state.
func HandleStatus(args Args) error {
	rt, err := NewRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if args.JSON {
		return statusJSON(ctx, rt)
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("patri"))
	fmt.Println()

	// Account
	fmt.Println(SectionStyle.Render("Conta"))
	if !rt.Tokens.LoggedIn() {
		fmt.Println(MutedStyle.Render("  não autenticado — rode: patri login"))
		fmt.Println()
		printConfigSummary(rt)
		return nil
	}
	user, userErr := rt.Client.Me(ctx)
	if userErr != nil {
		var cached model.User
		if rt.Cache.Get(cache.KeyUser, &cached) == nil {
			user = &cached
			fmt.Printf("  %s %s\n", ValueStyle.Render(user.Email), MutedStyle.Render("(cache)"))
		} else {
			fmt.Println(WarningStyle.Render("  API indisponível: ") + userErr.Error())
		}
	} else {
		rt.Cache.Put(cache.KeyUser, user)
		fmt.Printf("  %s\n", ValueStyle.Render(user.Email))
		if user.IsConsultant {
			fmt.Println(MutedStyle.Render("  perfil: consultor"))
		}
	}
	fmt.Println()

	// Onboarding
	fmt.Println(SectionStyle.Render("Onboarding"))
	flow, stale, flowErr := rt.Flow(ctx)
	switch {
	case flowErr != nil:
		fmt.Println(MutedStyle.Render("  fluxo indisponível"))
	case flow == nil || len(flow.UserSteps) == 0:
		fmt.Println(MutedStyle.Render("  nenhum fluxo atribuído"))
	default:
		printFlowSummary(flow, stale)
	}
	fmt.Println()

	printConfigSummary(rt)
	return nil
}

func printFlowSummary(flow *model.UserOnboardingFlow, stale bool) {
	steps := flow.SortedSteps()
	active := flow.ActiveStep()
	for _, s := range steps {
		marker := MutedStyle.Render("○")
		name := ValueStyle.Render(s.Step.Name)
		switch {
		case s.IsCompleted:
			marker = SuccessStyle.Render("✓")
		case active != nil && s.ID == active.ID:
			marker = WarningStyle.Render("→")
		default:
			name = MutedStyle.Render(s.Step.Name)
		}
		fmt.Printf("  %s %s\n", marker, name)
	}
	line := fmt.Sprintf("  %d de %d etapas concluídas", flow.CompletedCount(), len(steps))
	if stale {
		line += " (cache)"
	}
	fmt.Println(MutedStyle.Render(line))
}

func printConfigSummary(rt *Runtime) {
	fmt.Println(SectionStyle.Render("Configuração"))
	fmt.Printf("  %s %s\n", LabelStyle.Render("API"), ValueStyle.Render(rt.Config.API.BaseURL))
	cacheState := "desligado"
	if rt.Config.Cache.Enabled {
		cacheState = fmt.Sprintf("ligado (ttl %dh)", rt.Config.Cache.TTLHours)
	}
	fmt.Printf("  %s %s\n", LabelStyle.Render("Cache"), ValueStyle.Render(cacheState))
	fmt.Printf("  %s %s\n", LabelStyle.Render("Tema"), ValueStyle.Render(rt.Config.UI.Theme))
	fmt.Println()
}

func statusJSON(ctx context.Context, rt *Runtime) error {
	out := map[string]any{
		"version":   Version,
		"api_url":   rt.Config.API.BaseURL,
		"logged_in": rt.Tokens.LoggedIn(),
	}
	if rt.Tokens.LoggedIn() {
		if user, err := rt.Client.Me(ctx); err == nil {
			out["user"] = user
		}
		if flow, stale, err := rt.Flow(ctx); err == nil && flow != nil {
			out["steps_total"] = len(flow.UserSteps)
			out["steps_completed"] = flow.CompletedCount()
			out["flow_stale"] = stale
		}
	}
	return printJSON(out)
}
