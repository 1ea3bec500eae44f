// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - login, signup, logout and whoami commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/patrimonial/patri-tui/internal/api"
	"github.com/patrimonial/patri-tui/internal/auth"
	"github.com/patrimonial/patri-tui/internal/cache"
	"github.com/patrimonial/patri-tui/internal/logging"
	"github.com/patrimonial/patri-tui/internal/model"
)

// HandleLogin authenticates against the API and stores the access token.
func HandleLogin(args Args) error {
	rt, err := NewRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	email := args.Email
	if email == "" {
		email, err = promptLine("Email: ")
		if err != nil {
			return err
		}
	}
	password, err := promptPassword("Senha: ")
	if err != nil {
		return err
	}
	if email == "" || password == "" {
		return errors.New("informe email e senha")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := rt.Client.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return errors.New("email ou senha incorretos")
		}
		return err
	}
	if err := rt.Tokens.Save(resp.AccessToken); err != nil {
		return err
	}

	logging.L().Info("login", zap.String("email", email))
	if !args.Quiet {
		fmt.Println(SuccessStyle.Render("Autenticado.") + " Rode " + ValueStyle.Render("patri") + " para abrir o onboarding.")
	}
	return nil
}

// HandleSignup creates an account and stores the returned token.
func HandleSignup(args Args) error {
	rt, err := NewRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	name, err := promptLine("Nome completo: ")
	if err != nil {
		return err
	}
	email, err := promptLine("Email: ")
	if err != nil {
		return err
	}
	password, err := promptPassword("Senha: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirme a senha: ")
	if err != nil {
		return err
	}
	if name == "" || email == "" || password == "" {
		return errors.New("nome, email e senha são obrigatórios")
	}
	if password != confirm {
		return errors.New("as senhas não conferem")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := rt.Client.Signup(ctx, api.SignupRequest{
		Email:    email,
		Password: password,
		FullName: name,
	})
	if err != nil {
		return err
	}
	if err := rt.Tokens.Save(resp.AccessToken); err != nil {
		return err
	}

	if !args.Quiet {
		fmt.Println(SuccessStyle.Render("Conta criada.") + " Rode " + ValueStyle.Render("patri") + " para começar o onboarding.")
	}
	return nil
}

// HandleLogout removes the stored token and clears cached resources.
func HandleLogout(args Args) error {
	rt, err := NewRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.Tokens.Clear(); err != nil {
		return err
	}
	rt.Cache.Clear()

	if !args.Quiet {
		fmt.Println("Sessão encerrada.")
	}
	return nil
}

// HandleWhoami shows the authenticated account and token validity.
func HandleWhoami(args Args) error {
	rt, err := NewRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.RequireLogin(); err != nil {
		return err
	}

	token, err := rt.Tokens.Token()
	if err != nil {
		return err
	}
	claims, claimsErr := auth.Inspect(token)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	user, userErr := rt.Client.Me(ctx)
	stale := false
	if userErr != nil {
		var cached model.User
		if rt.Cache.Get(cache.KeyUser, &cached) == nil {
			user = &cached
			stale = true
		}
	} else {
		rt.Cache.Put(cache.KeyUser, user)
	}

	if args.JSON {
		return printWhoamiJSON(user, claims, claimsErr == nil, stale)
	}

	fmt.Println(TitleStyle.Render("Conta"))
	if user != nil {
		fmt.Printf("%s %s\n", LabelStyle.Render("Nome"), ValueStyle.Render(user.Profile.FullName))
		fmt.Printf("%s %s\n", LabelStyle.Render("Email"), ValueStyle.Render(user.Email))
		if user.IsConsultant {
			fmt.Printf("%s %s\n", LabelStyle.Render("Perfil"), ValueStyle.Render("consultor"))
		}
		if stale {
			fmt.Println(MutedStyle.Render("(dados do cache local; API indisponível)"))
		}
	} else if userErr != nil {
		fmt.Println(WarningStyle.Render("API indisponível: ") + userErr.Error())
	}

	if claimsErr == nil {
		if !claims.ExpiresAt.IsZero() {
			label := SuccessStyle.Render("válido até")
			if claims.Expired() {
				label = ErrorStyle.Render("expirou em")
			}
			fmt.Printf("%s %s %s\n", LabelStyle.Render("Token"), label,
				claims.ExpiresAt.Local().Format("02/01/2006 15:04"))
		} else {
			fmt.Printf("%s %s\n", LabelStyle.Render("Token"), ValueStyle.Render("sem expiração"))
		}
	}
	return nil
}

func printWhoamiJSON(user *model.User, claims auth.Claims, haveClaims, stale bool) error {
	out := map[string]any{"stale": stale}
	if user != nil {
		out["user"] = user
	}
	if haveClaims && !claims.ExpiresAt.IsZero() {
		out["token_expires_at"] = claims.ExpiresAt
		out["token_expired"] = claims.Expired()
	}
	return printJSON(out)
}
