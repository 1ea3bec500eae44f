// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// admin_cmd.go - patri admin: document review for consultants.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrimonial/patri-tui/internal/api"
	"github.com/patrimonial/patri-tui/internal/model"
)

// HandleAdmin routes the consultant review subcommands.
func HandleAdmin(args Args) error {
	rt, err := NewRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.RequireLogin(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch args.Subcommand {
	case "list", "":
		return adminList(ctx, rt, args)
	case "validate":
		if args.ConfigKey == "" {
			return errors.New("informe o documento: patri admin validate <id>")
		}
		return adminReview(ctx, rt, args.ConfigKey, model.DocumentValidated, "", args.Quiet)
	case "reject":
		if args.ConfigKey == "" {
			return errors.New("informe o documento: patri admin reject <id> --reason \"...\"")
		}
		if args.ConfigVal == "" {
			return errors.New("a recusa exige um motivo: --reason \"...\"")
		}
		return adminReview(ctx, rt, args.ConfigKey, model.DocumentInvalid, args.ConfigVal, args.Quiet)
	default:
		return fmt.Errorf("subcomando desconhecido: %s (list, validate, reject)", args.Subcommand)
	}
}

func adminList(ctx context.Context, rt *Runtime, args Args) error {
	filter := api.AdminDocumentsFilter{Status: model.DocumentStatus(args.ConfigVal), Limit: 50}
	docs, err := rt.Client.AdminDocuments(ctx, filter)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return errors.New("revisão de documentos é restrita a consultores")
		}
		return err
	}

	if args.JSON {
		return printJSON(docs)
	}

	fmt.Println(TitleStyle.Render("Revisão de documentos"))
	if len(docs) == 0 {
		fmt.Println(MutedStyle.Render("Nenhum documento para revisar."))
		return nil
	}
	for _, d := range docs {
		fmt.Printf("%s %s %s %s\n",
			MutedStyle.Render(d.ID),
			ValueStyle.Render(d.OriginalFilename),
			MutedStyle.Render(d.UploadedAt.Local().Format("02/01 15:04")),
			docStatusLabel(d))
	}
	fmt.Println()
	fmt.Println(MutedStyle.Render("patri admin validate <id> · patri admin reject <id> --reason \"...\""))
	return nil
}

func adminReview(ctx context.Context, rt *Runtime, documentID string, status model.DocumentStatus, reason string, quiet bool) error {
	doc, err := rt.Client.ReviewDocument(ctx, documentID, status, reason)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return errors.New("revisão de documentos é restrita a consultores")
		}
		return err
	}
	if !quiet {
		fmt.Printf("%s %s %s\n", SuccessStyle.Render("Atualizado:"), doc.OriginalFilename, docStatusLabel(*doc))
	}
	return nil
}
