// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// runtime.go - Shared dependency wiring for the non-TUI commands.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/patrimonial/patri-tui/internal/api"
	"github.com/patrimonial/patri-tui/internal/auth"
	"github.com/patrimonial/patri-tui/internal/cache"
	"github.com/patrimonial/patri-tui/internal/config"
	"github.com/patrimonial/patri-tui/internal/model"
)

// Runtime bundles the dependencies every CLI handler needs.
type Runtime struct {
	Config *config.Config
	Tokens *auth.Store
	Client *api.Client
	Cache  *cache.Cache
}

// NewRuntime loads configuration and wires up the API client, token store
// and cache. The cache may be nil when disabled.
func NewRuntime() (*Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	config.SetGlobal(cfg)

	tokens, err := auth.NewStore()
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.API.BaseURL, tokens,
		api.WithTimeout(time.Duration(cfg.API.TimeoutSecs)*time.Second))

	c, err := cache.OpenDefault(cfg.Cache)
	if err != nil {
		// A broken cache never blocks the CLI.
		c = nil
	}

	return &Runtime{Config: cfg, Tokens: tokens, Client: client, Cache: c}, nil
}

// Close releases the runtime's resources.
func (r *Runtime) Close() {
	r.Cache.Close()
}

// RequireLogin returns an error when no token is stored.
func (r *Runtime) RequireLogin() error {
	if !r.Tokens.LoggedIn() {
		return errors.New("você não está autenticado. Rode: patri login")
	}
	return nil
}

// Flow fetches the user's onboarding flow, serving the cache on network
// failure so offline runs still show the last known state.
func (r *Runtime) Flow(ctx context.Context) (*model.UserOnboardingFlow, bool, error) {
	flow, err := r.Client.MyFlow(ctx)
	if err == nil {
		r.Cache.Put(cache.KeyFlow, flow)
		return flow, false, nil
	}

	var stale model.UserOnboardingFlow
	if cacheErr := r.Cache.Get(cache.KeyFlow, &stale); cacheErr == nil {
		return &stale, true, nil
	}
	return nil, false, err
}

// chatStep picks the user step to chat in: the step with the given order
// when set, otherwise the first incomplete chat step.
func chatStep(flow *model.UserOnboardingFlow, order int64) (*model.UserOnboardingStep, error) {
	steps := flow.SortedSteps()
	if order > 0 {
		for i := range steps {
			if int64(steps[i].Step.Order) == order {
				if steps[i].Step.Type != model.StepTypeLLMChat {
					return nil, fmt.Errorf("a etapa %d não é uma etapa de conversa", order)
				}
				return &steps[i], nil
			}
		}
		return nil, fmt.Errorf("etapa %d não encontrada no seu fluxo", order)
	}
	for i := range steps {
		if steps[i].Step.Type == model.StepTypeLLMChat && !steps[i].IsCompleted {
			return &steps[i], nil
		}
	}
	for i := range steps {
		if steps[i].Step.Type == model.StepTypeLLMChat {
			return &steps[i], nil
		}
	}
	return nil, errors.New("seu fluxo não tem etapa de conversa")
}

// docStep picks the document step: explicit order when set, otherwise the
// first incomplete document-verification step.
func docStep(flow *model.UserOnboardingFlow, order int64) (*model.UserOnboardingStep, error) {
	steps := flow.SortedSteps()
	if order > 0 {
		for i := range steps {
			if int64(steps[i].Step.Order) == order {
				return &steps[i], nil
			}
		}
		return nil, fmt.Errorf("etapa %d não encontrada no seu fluxo", order)
	}
	for i := range steps {
		if steps[i].Step.Type == model.StepTypeDataVerification && !steps[i].IsCompleted {
			return &steps[i], nil
		}
	}
	for i := range steps {
		if steps[i].Step.Type == model.StepTypeDataVerification {
			return &steps[i], nil
		}
	}
	return nil, errors.New("seu fluxo não tem etapa de documentos")
}

// promptLine reads one line from stdin with a visible prompt.
func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo. Falls back to plain line
// input when stdin is not a terminal (piped input in scripts).
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	if !IsTTY() {
		return promptLine("")
	}
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}
