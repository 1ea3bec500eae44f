// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui hosts the root Bubble Tea model for the patri TUI.
package ui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/patrimonial/patri-tui/internal/api"
	"github.com/patrimonial/patri-tui/internal/auth"
	"github.com/patrimonial/patri-tui/internal/cache"
	"github.com/patrimonial/patri-tui/internal/logging"
	"github.com/patrimonial/patri-tui/internal/model"
	"github.com/patrimonial/patri-tui/internal/session"
	"github.com/patrimonial/patri-tui/internal/ui/docs"
	"github.com/patrimonial/patri-tui/internal/ui/login"
	"github.com/patrimonial/patri-tui/internal/ui/onboard"
	"github.com/patrimonial/patri-tui/internal/ui/styles"
)

// screen identifies the top-level view.
type screen int

const (
	screenLogin screen = iota
	screenOnboard
	screenAdmin
)

// userLoadedMsg carries the profile fetched after login.
type userLoadedMsg struct {
	user *model.User
	err  error
}

// App is the root model.
type App struct {
	client *api.Client
	tokens *auth.Store
	cache  *cache.Cache
	sess   *session.Manager
	theme  *styles.Theme

	// sender is set once the program starts; background goroutines use
	// it to push messages into the loop.
	sender *DeferredSender

	screen  screen
	login   *login.Model
	onboard *onboard.Model
	admin   *docs.AdminModel

	user          *model.User
	timeoutNotice string
	width, height int
}

// DeferredSender forwards messages to the tea.Program once it exists.
// Commands created before Run returns need somewhere to send.
type DeferredSender struct {
	program *tea.Program
}

// Attach binds the running program.
func (d *DeferredSender) Attach(p *tea.Program) { d.program = p }

// Send implements the Sender interfaces used by the step components.
func (d *DeferredSender) Send(msg tea.Msg) {
	if d.program != nil {
		d.program.Send(msg)
	}
}

// NewApp creates the root model.
func NewApp(client *api.Client, tokens *auth.Store, c *cache.Cache, sess *session.Manager, theme *styles.Theme) *App {
	app := &App{
		client: client,
		tokens: tokens,
		cache:  c,
		sess:   sess,
		theme:  theme,
		sender: &DeferredSender{},
		login:  login.New(client, theme),
	}
	if tokens.LoggedIn() {
		app.screen = screenOnboard
		app.onboard = onboard.New(client, c, app.sender, sess, theme)
	}
	return app
}

// Sender returns the deferred sender to attach to the program.
func (a *App) Sender() *DeferredSender { return a.sender }

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{session.TickCmd()}
	switch a.screen {
	case screenOnboard:
		cmds = append(cmds, a.onboard.Init(), a.loadUserCmd())
	default:
		cmds = append(cmds, a.login.Init())
	}
	return tea.Batch(cmds...)
}

func (a *App) loadUserCmd() tea.Cmd {
	client := a.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		u, err := client.Me(ctx)
		return userLoadedMsg{user: u, err: err}
	}
}

// logout clears credentials and returns to the login screen.
func (a *App) logout() {
	if a.onboard != nil {
		a.onboard.Close()
		a.onboard = nil
	}
	a.tokens.Clear()
	a.cache.Clear()
	a.user = nil
	a.admin = nil
	a.login = login.New(a.client, a.theme)
	a.screen = screenLogin
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case tea.KeyMsg:
		a.sess.RecordActivity()
		a.timeoutNotice = ""
		switch msg.String() {
		case "ctrl+c":
			if a.onboard != nil {
				a.onboard.Close()
			}
			return a, tea.Quit
		case "ctrl+l":
			if a.screen != screenLogin {
				a.logout()
				return a, a.login.Init()
			}
		case "ctrl+a":
			// consultant-only review screen
			if a.user != nil && a.user.IsConsultant && a.screen == screenOnboard {
				if a.admin == nil {
					a.admin = docs.NewAdmin(a.client, a.theme)
				}
				a.screen = screenAdmin
				return a, a.admin.Init()
			}
			if a.screen == screenAdmin {
				a.screen = screenOnboard
				return a, nil
			}
		}

	case session.TickMsg:
		return a, a.sess.HandleTick()

	case session.TimeoutWarningMsg:
		a.timeoutNotice = "Sessão expira em " + msg.Remaining.Round(time.Second).String()
		return a, nil

	case session.TimeoutMsg:
		if a.screen != screenLogin {
			logging.L().Info("idle timeout, logging out",
				zap.String("session", a.sess.SessionID()))
			a.logout()
			a.timeoutNotice = "Sessão encerrada por inatividade."
			return a, a.login.Init()
		}
		return a, nil

	case login.DoneMsg:
		if err := a.tokens.Save(msg.Token); err != nil {
			logging.L().Error("failed to persist token", zap.Error(err))
		}
		a.screen = screenOnboard
		a.onboard = onboard.New(a.client, a.cache, a.sender, a.sess, a.theme)
		cmds := []tea.Cmd{a.onboard.Init(), a.loadUserCmd()}
		if a.width > 0 {
			cmds = append(cmds, func() tea.Msg {
				return tea.WindowSizeMsg{Width: a.width, Height: a.height}
			})
		}
		return a, tea.Batch(cmds...)

	case userLoadedMsg:
		if msg.err == nil {
			a.user = msg.user
			a.cache.Put(cache.KeyUser, msg.user)
		}
		return a, nil
	}

	switch a.screen {
	case screenLogin:
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		return a, cmd
	case screenAdmin:
		var cmd tea.Cmd
		a.admin, cmd = a.admin.Update(msg)
		return a, cmd
	default:
		var cmd tea.Cmd
		a.onboard, cmd = a.onboard.Update(msg)
		return a, cmd
	}
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	header := a.theme.Title.Render("patri")
	if a.user != nil {
		header += a.theme.Muted.Render("  " + a.user.Email)
		if a.user.IsConsultant {
			header += a.theme.Muted.Render("  [consultor: ctrl+a revisão]")
		}
	}
	b.WriteString(header)
	b.WriteString("\n")
	if a.timeoutNotice != "" {
		b.WriteString(a.theme.ToastError.Render(a.timeoutNotice))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch a.screen {
	case screenLogin:
		b.WriteString(a.login.View())
	case screenAdmin:
		b.WriteString(a.admin.View())
	default:
		b.WriteString(a.onboard.View())
	}
	b.WriteString("\n")
	b.WriteString(a.theme.Help.Render("ctrl+c sair · ctrl+l logout"))
	return a.theme.App.Render(b.String())
}
