// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-based chat REPL (patri chat --plain).
//
// The default `patri chat` opens the full-screen interface; this REPL is
// for terminals where an alt-screen TUI is unwelcome (tmux panes, ssh,
// screen readers). It keeps input history across runs via liner.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/peterh/liner"

	"github.com/patrimonial/patri-tui/internal/api"
	"github.com/patrimonial/patri-tui/internal/config"
	"github.com/patrimonial/patri-tui/internal/model"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI wraps liner with persistent history under the config dir.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates the line editor and loads saved history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.Dir()
	if err != nil {
		dir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(dir, "chat_history"),
	}
	c.loadHistory()
	return c
}

func (c *ChatCLI) loadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line with history navigation.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

func (c *ChatCLI) saveHistory() {
	if err := config.EnsureDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.saveHistory()
	c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// replSession holds the state of one plain-chat run.
type replSession struct {
	rt    *Runtime
	step  *model.UserOnboardingStep
	input *ChatCLI
	quiet bool

	mu     sync.Mutex
	cancel context.CancelFunc
}

// HandleChat runs the plain-text chat loop for the active chat step.
func HandleChat(args Args) error {
	rt, err := NewRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.RequireLogin(); err != nil {
		return err
	}

	ctx := context.Background()
	flow, stale, err := rt.Flow(ctx)
	if err != nil {
		return err
	}
	if stale {
		fmt.Println(MutedStyle.Render("(fluxo do cache local; API indisponível)"))
	}

	step, err := chatStep(flow, args.Step)
	if err != nil {
		return err
	}

	sess := &replSession{
		rt:    rt,
		step:  step,
		input: NewChatCLI(),
		quiet: args.Quiet,
	}
	defer sess.input.Close()

	if !args.Quiet {
		fmt.Println(TitleStyle.Render(step.Step.Name))
		fmt.Println(MutedStyle.Render("/ajuda lista os comandos · /sair encerra"))
		fmt.Println()
	}

	sess.printHistory(ctx)

	// Ctrl+C during a stream cancels the stream, not the REPL.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			sess.cancelStream()
		}
	}()

	for {
		input, err := sess.input.ReadInput(PromptStyle.Render("você> "))
		if err != nil {
			// Ctrl+C at the prompt or EOF ends the session.
			fmt.Println()
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			cont, err := sess.handleSlashCommand(ctx, input)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("Erro:"), err)
			}
			if !cont {
				return nil
			}
			continue
		}

		if err := sess.stream(input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("Erro:"), err)
		}
	}
}

// printHistory shows the most recent turns so the user has context.
func (s *replSession) printHistory(ctx context.Context) {
	msgs, err := s.rt.Client.ChatMessages(ctx, s.step.StepID, 20, 0)
	if err != nil || len(msgs) == 0 {
		return
	}
	for _, m := range msgs {
		switch m.SenderType {
		case model.SenderUser:
			fmt.Println(PromptStyle.Render("você> ") + m.Content)
		case model.SenderSystem:
			fmt.Println(MutedStyle.Render(m.Content))
		default:
			fmt.Println(m.Content)
		}
	}
	fmt.Println()
}

func (s *replSession) cancelStream() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		fmt.Fprintln(os.Stderr, "\n"+WarningStyle.Render("[cancelado]"))
	}
}

// stream sends one message and prints reply tokens as they arrive.
func (s *replSession) stream(message string) error {
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
		s.mu.Unlock()
	}()

	var acc api.StreamAccumulator
	var progress *model.ChatProgress

	err := s.rt.Client.SendMessageStream(ctx, s.step.StepID, message, api.StreamCallbacks{
		OnMessage: func(token string) {
			acc.Add(token)
			fmt.Print(token)
		},
		OnProgress: func(p model.ChatProgress) {
			progress = &p
		},
	})
	fmt.Println()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	if progress != nil && !s.quiet {
		fmt.Println(MutedStyle.Render(fmt.Sprintf("— %d/%d seções (%.0f%%)",
			progress.CompletedSections, progress.TotalSections, progress.Percentage)))
	}
	fmt.Println()
	return nil
}

// handleSlashCommand executes a /command. Returns false to exit the REPL.
func (s *replSession) handleSlashCommand(ctx context.Context, input string) (bool, error) {
	cmd := strings.ToLower(strings.Fields(input)[0])
	switch cmd {
	case "/sair", "/quit", "/exit":
		return false, nil

	case "/ajuda", "/help":
		fmt.Println(MutedStyle.Render(`/dados      mostra o que já foi coletado
/progresso  mostra o avanço da coleta
/reiniciar  reinicia a conversa (os dados coletados são descartados)
/sair       encerra`))
		return true, nil

	case "/dados", "/data":
		sd, err := s.rt.Client.StructuredData(ctx, s.step.StepID)
		if err != nil {
			return true, err
		}
		printStructuredData(sd)
		return true, nil

	case "/progresso", "/progress":
		p, err := s.rt.Client.ChatProgress(ctx, s.step.StepID)
		if err != nil {
			return true, err
		}
		fmt.Println(ValueStyle.Render(fmt.Sprintf("%d de %d seções preenchidas (%.0f%%)",
			p.CompletedSections, p.TotalSections, p.Percentage)))
		for _, missing := range p.MissingData {
			fmt.Println(MutedStyle.Render("  falta: " + missing))
		}
		return true, nil

	case "/reiniciar", "/reset":
		confirm, err := s.input.ReadInput("Reiniciar a conversa apaga os dados coletados. Confirmar? (s/N) ")
		if err != nil || !strings.EqualFold(strings.TrimSpace(confirm), "s") {
			return true, nil
		}
		if err := s.rt.Client.ResetChat(ctx, s.step.StepID); err != nil {
			return true, err
		}
		fmt.Println(SuccessStyle.Render("Conversa reiniciada."))
		return true, nil

	default:
		return true, fmt.Errorf("comando desconhecido: %s (/ajuda lista os comandos)", cmd)
	}
}

// printStructuredData renders the collected snapshot in detail.
func printStructuredData(sd *model.ChatStructuredData) {
	if sd.Empty() {
		fmt.Println(MutedStyle.Render("Nenhum dado coletado ainda."))
		return
	}

	if len(sd.Imoveis) > 0 {
		fmt.Println(SectionStyle.Render("Imóveis"))
		for _, im := range sd.Imoveis {
			line := "  • " + im.Tipo
			if im.Localizacao != "" {
				line += " — " + im.Localizacao
			}
			if im.ValorEstimado > 0 {
				line += " (" + model.FormatBRL(im.ValorEstimado) + ")"
			}
			fmt.Println(line)
		}
	}
	if len(sd.Participacoes) > 0 {
		fmt.Println(SectionStyle.Render("Participações societárias"))
		for _, p := range sd.Participacoes {
			line := "  • " + p.Empresa
			if p.Participacao != "" {
				line += " — " + p.Participacao
			}
			if p.Segmento != "" {
				line += " (" + p.Segmento + ")"
			}
			fmt.Println(line)
		}
	}
	if ef := sd.EstruturaFamiliar; ef != nil {
		fmt.Println(SectionStyle.Render("Estrutura familiar"))
		if ef.EstadoCivil != "" {
			fmt.Println("  • Estado civil: " + ef.EstadoCivil)
		}
		if ef.Conjuge != nil {
			fmt.Println("  • Cônjuge: " + ef.Conjuge.Nome)
		}
		if n := len(ef.Filhos); n > 0 {
			fmt.Printf("  • Filhos: %d\n", n)
		}
	}
	if len(sd.Investimentos) > 0 {
		fmt.Println(SectionStyle.Render("Investimentos"))
		for _, inv := range sd.Investimentos {
			line := "  • " + inv.Tipo
			if inv.Valor > 0 {
				line += " (" + model.FormatBRL(inv.Valor) + ")"
			}
			fmt.Println(line)
		}
	}
	if len(sd.OutrosAtivos) > 0 {
		fmt.Println(SectionStyle.Render("Outros ativos"))
		for _, oa := range sd.OutrosAtivos {
			line := "  • " + oa.Descricao
			if oa.Valor > 0 {
				line += " (" + model.FormatBRL(oa.Valor) + ")"
			}
			fmt.Println(line)
		}
	}
}
