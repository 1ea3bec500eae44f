// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command routing for patri.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdSignup
	CmdLogout
	CmdWhoami
	CmdChat
	CmdDocs
	CmdAdmin
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool

	// Command-specific
	Email         string
	Step          int64  // --step N: target a step by its onboarding order
	Plain         bool   // chat --plain: line-based REPL instead of the TUI
	File          string // docs upload <file>
	Dir           string // docs watch <dir>
	RequirementID string // --req <id>: target document requirement
	Subcommand    string
	ConfigKey     string
	ConfigVal     string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `patri - onboarding de holding patrimonial no terminal

Acompanhe seu processo de estruturação patrimonial: converse com o
assistente, preencha seus dados e envie documentos sem sair do terminal.

Usage:
  patri                       Abre a interface interativa (padrão)
  patri login [email]         Autentica e guarda o token de acesso
  patri signup                Cria uma conta nova
  patri logout                Remove o token local
  patri whoami                Mostra a conta autenticada e a validade do token
  patri chat [--plain]        Conversa com o assistente (etapa de coleta)
  patri docs [subcommand]     Documentos da etapa atual
  patri admin [subcommand]    Revisão de documentos (consultores)
  patri status, s             Resumo da conta, do fluxo e da configuração
  patri config [show|set|path] Configuração
  patri version               Versão do binário
  patri help                  Esta mensagem

Chat:
  patri chat                  Abre a interface interativa na etapa de chat
  patri chat --plain          REPL de linha (histórico com setas)
    --step N                  Conversa na etapa de ordem N
  Comandos dentro do REPL: /dados /progresso /reiniciar /sair /ajuda

Documentos:
  patri docs list             Lista exigências e documentos enviados
  patri docs upload <arquivo> Envia um arquivo
    --req ID                  Exigência de destino (padrão: primeira pendente)
  patri docs watch <dir>      Observa um diretório e envia arquivos novos
    --req ID                  Exigência de destino dos arquivos observados

Revisão (consultores):
  patri admin list            Lista documentos aguardando revisão
    --status S                Filtra por status (uploaded, pending_review, ...)
  patri admin validate <id>   Marca um documento como validado
  patri admin reject <id> --reason "..."  Recusa com motivo

Flags globais:
  -q, --quiet                 Saída mínima
  -v, --verbose               Log detalhado
  --json                      Saída em JSON (status, whoami, docs list)

Variáveis de ambiente:
  PATRI_API_URL               URL base da API
  PATRI_THEME                 Tema da interface (dark, light)
  PATRI_LOG_LEVEL             Nível de log (debug, info, warn, error)
  PATRI_CACHE=0               Desliga o cache local
`

// Parse parses os.Args into a command and its arguments.
func Parse() (Command, Args) {
	return ParseFrom(os.Args[1:])
}

// ParseFrom parses the given argument list. Split out from Parse for tests.
func ParseFrom(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch cmd {
	case "tui", "onboard":
		return CmdTUI, args

	case "login":
		if len(remaining) > 0 && !strings.HasPrefix(remaining[0], "-") {
			args.Email = remaining[0]
		}
		return CmdLogin, args

	case "signup":
		return CmdSignup, args

	case "logout":
		return CmdLogout, args

	case "whoami", "me":
		return CmdWhoami, args

	case "chat":
		parseChatArgs(&args, remaining)
		return CmdChat, args

	case "docs", "documents":
		parseDocsArgs(&args, remaining)
		return CmdDocs, args

	case "admin", "review":
		parseAdminArgs(&args, remaining)
		return CmdAdmin, args

	case "status", "s":
		return CmdStatus, args

	case "config":
		parseConfigArgs(&args, remaining)
		return CmdConfig, args

	case "version", "-V", "--version":
		return CmdVersion, args

	case "help", "-h", "--help":
		return CmdHelp, args

	default:
		fmt.Fprintf(os.Stderr, "Comando desconhecido: %s\n\n", cmd)
		return CmdHelp, args
	}
}

// parseGlobalFlags strips global flags and returns the rest.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	var args Args

	for _, arg := range argv {
		switch arg {
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		case "--json":
			args.JSON = true
		default:
			remaining = append(remaining, arg)
		}
	}

	return remaining, args
}

// parseStepFlag consumes a --step N value if present at position i.
// Returns the new index and whether the flag was recognized.
func parseStepFlag(args *Args, remaining []string, i int) (int, bool) {
	arg := remaining[i]
	switch {
	case arg == "--step":
		if i+1 < len(remaining) {
			i++
			if n, err := strconv.ParseInt(remaining[i], 10, 64); err == nil && n > 0 {
				args.Step = n
			}
		}
		return i, true
	case strings.HasPrefix(arg, "--step="):
		if n, err := strconv.ParseInt(strings.TrimPrefix(arg, "--step="), 10, 64); err == nil && n > 0 {
			args.Step = n
		}
		return i, true
	}
	return i, false
}

func parseChatArgs(args *Args, remaining []string) {
	for i := 0; i < len(remaining); i++ {
		if j, ok := parseStepFlag(args, remaining, i); ok {
			i = j
			continue
		}
		if remaining[i] == "--plain" {
			args.Plain = true
		}
	}
}

func parseDocsArgs(args *Args, remaining []string) {
	var positional []string
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]
		if j, ok := parseStepFlag(args, remaining, i); ok {
			i = j
			continue
		}
		switch {
		case arg == "--req" || arg == "--requirement":
			if i+1 < len(remaining) {
				i++
				args.RequirementID = remaining[i]
			}
		case strings.HasPrefix(arg, "--req="):
			args.RequirementID = strings.TrimPrefix(arg, "--req=")
		case strings.HasPrefix(arg, "--requirement="):
			args.RequirementID = strings.TrimPrefix(arg, "--requirement=")
		case !strings.HasPrefix(arg, "-"):
			positional = append(positional, arg)
		}
	}

	if len(positional) == 0 {
		args.Subcommand = "list"
		return
	}
	args.Subcommand = strings.ToLower(positional[0])
	switch args.Subcommand {
	case "upload":
		if len(positional) > 1 {
			args.File = positional[1]
		}
	case "watch":
		if len(positional) > 1 {
			args.Dir = positional[1]
		}
	}
}

func parseAdminArgs(args *Args, remaining []string) {
	var positional []string
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]
		switch {
		case arg == "--status":
			if i+1 < len(remaining) {
				i++
				args.ConfigVal = remaining[i]
			}
		case strings.HasPrefix(arg, "--status="):
			args.ConfigVal = strings.TrimPrefix(arg, "--status=")
		case arg == "--reason":
			if i+1 < len(remaining) {
				i++
				args.ConfigVal = remaining[i]
			}
		case strings.HasPrefix(arg, "--reason="):
			args.ConfigVal = strings.TrimPrefix(arg, "--reason=")
		case !strings.HasPrefix(arg, "-"):
			positional = append(positional, arg)
		}
	}

	if len(positional) == 0 {
		args.Subcommand = "list"
		return
	}
	args.Subcommand = strings.ToLower(positional[0])
	if len(positional) > 1 {
		args.ConfigKey = positional[1] // document id for validate/reject
	}
}

func parseConfigArgs(args *Args, remaining []string) {
	var positional []string
	for _, arg := range remaining {
		if !strings.HasPrefix(arg, "-") {
			positional = append(positional, arg)
		}
	}

	if len(positional) == 0 {
		args.Subcommand = "show"
		return
	}
	args.Subcommand = strings.ToLower(positional[0])
	if len(positional) > 1 {
		args.ConfigKey = positional[1]
	}
	if len(positional) > 2 {
		args.ConfigVal = positional[2]
	}
}

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// HandleVersion prints build information.
func HandleVersion(args Args) {
	if args.JSON {
		fmt.Printf(`{"version":%q,"commit":%q,"built":%q,"go":%q}`+"\n",
			Version, GitCommit, BuildDate, runtime.Version())
		return
	}
	fmt.Printf("patri %s\n", Version)
	if !args.Quiet {
		fmt.Printf("  commit: %s\n", GitCommit)
		fmt.Printf("  built:  %s\n", BuildDate)
		fmt.Printf("  go:     %s (%s/%s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	}
}
