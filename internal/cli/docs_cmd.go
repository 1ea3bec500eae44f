// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// docs_cmd.go - patri docs: list, upload and watch document requirements.
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
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/patrimonial/patri-tui/internal/api"
	"github.com/patrimonial/patri-tui/internal/logging"
	"github.com/patrimonial/patri-tui/internal/model"
	"github.com/patrimonial/patri-tui/internal/onboarding"
)

// HandleDocs routes the docs subcommands.
func HandleDocs(args Args) error {
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
	if stale && !args.Quiet {
		fmt.Println(MutedStyle.Render("(fluxo do cache local; API indisponível)"))
	}

	step, err := docStep(flow, args.Step)
	if err != nil {
		return err
	}

	switch args.Subcommand {
	case "list", "":
		return docsList(ctx, rt, step, args)
	case "upload":
		if args.File == "" {
			return errors.New("informe o arquivo: patri docs upload <arquivo>")
		}
		return docsUpload(ctx, rt, step, args.File, args.RequirementID, args.Quiet)
	case "watch":
		if args.Dir == "" {
			return errors.New("informe o diretório: patri docs watch <dir>")
		}
		return docsWatch(rt, step, args.Dir, args.RequirementID, args.Quiet)
	default:
		return fmt.Errorf("subcomando desconhecido: %s (list, upload, watch)", args.Subcommand)
	}
}

// loadStepDocs fetches requirements and uploaded documents for a step.
func loadStepDocs(ctx context.Context, rt *Runtime, step *model.UserOnboardingStep) ([]model.DocumentRequirement, []model.Document, error) {
	reqs, err := rt.Client.StepRequirements(ctx, step.StepID)
	if err != nil {
		return nil, nil, err
	}
	docs, err := rt.Client.UserStepDocuments(ctx, step.ID)
	if err != nil {
		return nil, nil, err
	}
	return reqs, docs, nil
}

func docsList(ctx context.Context, rt *Runtime, step *model.UserOnboardingStep, args Args) error {
	reqs, docs, err := loadStepDocs(ctx, rt, step)
	if err != nil {
		return err
	}

	if args.JSON {
		return printJSON(map[string]any{
			"step":         step.Step.Name,
			"requirements": reqs,
			"documents":    docs,
			"satisfied":    onboarding.RequirementsSatisfied(reqs, docs),
		})
	}

	fmt.Println(TitleStyle.Render(step.Step.Name))
	if len(reqs) == 0 {
		fmt.Println(MutedStyle.Render("Esta etapa não exige documentos."))
		return nil
	}

	for _, req := range reqs {
		marker := MutedStyle.Render("○")
		uploaded := onboarding.DocumentsFor(req.ID, docs)
		if len(uploaded) > 0 {
			marker = SuccessStyle.Render("●")
		} else if req.IsRequired {
			marker = WarningStyle.Render("○")
		}
		name := req.Name
		if req.IsRequired {
			name += ErrorStyle.Render(" *")
		}
		fmt.Printf("%s %s %s\n", marker, ValueStyle.Render(name), MutedStyle.Render("["+req.ID+"]"))
		for _, d := range uploaded {
			fmt.Printf("    %s %s %s\n", MutedStyle.Render("└"), d.OriginalFilename, docStatusLabel(d))
			if d.Status == model.DocumentInvalid && d.RejectionReason != "" {
				fmt.Printf("      %s\n", ErrorStyle.Render("motivo: "+d.RejectionReason))
			}
		}
	}

	fmt.Println()
	if onboarding.RequirementsSatisfied(reqs, docs) {
		fmt.Println(SuccessStyle.Render("Todos os documentos obrigatórios foram enviados."))
	} else {
		missing := onboarding.MissingRequirements(reqs, docs)
		names := make([]string, len(missing))
		for i, m := range missing {
			names[i] = m.Name
		}
		fmt.Println(WarningStyle.Render("Faltando: ") + strings.Join(names, ", "))
	}
	return nil
}

func docStatusLabel(d model.Document) string {
	switch d.Status {
	case model.DocumentValidated:
		return SuccessStyle.Render("validado")
	case model.DocumentInvalid:
		return ErrorStyle.Render("inválido")
	case model.DocumentPendingReview:
		return WarningStyle.Render("em análise")
	default:
		return MutedStyle.Render("enviado")
	}
}

// resolveRequirement picks the upload target: the explicit id when given,
// otherwise the first required requirement without an uploaded document.
func resolveRequirement(reqs []model.DocumentRequirement, docs []model.Document, explicit string) (*model.DocumentRequirement, error) {
	if explicit != "" {
		for i := range reqs {
			if reqs[i].ID == explicit {
				return &reqs[i], nil
			}
		}
		return nil, fmt.Errorf("exigência %q não encontrada nesta etapa", explicit)
	}
	missing := onboarding.MissingRequirements(reqs, docs)
	if len(missing) > 0 {
		return &missing[0], nil
	}
	if len(reqs) > 0 {
		return &reqs[0], nil
	}
	return nil, errors.New("esta etapa não exige documentos")
}

func docsUpload(ctx context.Context, rt *Runtime, step *model.UserOnboardingStep, path, requirementID string, quiet bool) error {
	reqs, docs, err := loadStepDocs(ctx, rt, step)
	if err != nil {
		return err
	}
	req, err := resolveRequirement(reqs, docs, requirementID)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	uploadCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	onProgress := func(p api.UploadProgress) {
		if quiet || !IsStdoutTTY() {
			return
		}
		fmt.Printf("\r%s %3.0f%%", MutedStyle.Render("enviando"), p.Percent())
	}

	doc, err := rt.Client.UploadDocument(uploadCtx, step.ID, req.ID, filepath.Base(path), f, info.Size(), onProgress)
	if err != nil {
		fmt.Println()
		return err
	}
	if !quiet && IsStdoutTTY() {
		fmt.Print("\r")
	}

	logging.L().Info("document uploaded",
		zap.String("document_id", doc.ID),
		zap.String("requirement_id", req.ID),
		zap.Int64("size", info.Size()))

	if !quiet {
		fmt.Printf("%s %s → %s\n", SuccessStyle.Render("Enviado:"), filepath.Base(path), req.Name)
	}
	return nil
}

// =============================================================================
// WATCH MODE
// =============================================================================

// watchDebounce is how long a file must stay quiet before it is uploaded.
// Copies in progress fire a burst of write events; uploading mid-copy
// would send a truncated file.
const watchDebounce = 700 * time.Millisecond

func docsWatch(rt *Runtime, step *model.UserOnboardingStep, dir, requirementID string, quiet bool) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to access %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s não é um diretório", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	if !quiet {
		fmt.Printf("%s %s\n", TitleStyle.Render("Observando"), dir)
		fmt.Println(MutedStyle.Render("Arquivos novos serão enviados automaticamente. Ctrl+C encerra."))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// One timer per path; each new event resets it.
	var mu sync.Mutex
	pending := make(map[string]*time.Timer)
	uploads := make(chan string)

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := pending[path]; ok {
			t.Reset(watchDebounce)
			return
		}
		pending[path] = time.AfterFunc(watchDebounce, func() {
			mu.Lock()
			delete(pending, path)
			mu.Unlock()
			uploads <- path
		})
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if fi, err := os.Stat(event.Name); err != nil || fi.IsDir() {
				continue
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			schedule(event.Name)

		case path := <-uploads:
			if err := docsUpload(context.Background(), rt, step, path, requirementID, quiet); err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("Erro:"), err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.L().Warn("watcher error", zap.Error(err))

		case <-sigChan:
			if !quiet {
				fmt.Println()
			}
			return nil
		}
	}
}
