// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"
)

// =============================================================================
// CHAT MESSAGES
// =============================================================================

// SenderType identifies who produced a chat message.
type SenderType string

const (
	SenderUser       SenderType = "user"
	SenderLLM        SenderType = "llm"
	SenderSystem     SenderType = "system"
	SenderConsultant SenderType = "consultant"
)

// ChatMessage is an append-only turn in the onboarding conversation.
// Insertion order is conversation order.
type ChatMessage struct {
	ID         string     `json:"id"`
	SenderType SenderType `json:"sender_type"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"created_at"`
}

// =============================================================================
// STRUCTURED DATA
// =============================================================================

// The structured-data records keep their Portuguese wire names: the API,
// the LLM extraction prompts, and the consultant tooling all speak this
// vocabulary, and renaming fields client-side would only invite mapping bugs.

// Imovel is a real-estate holding extracted from the conversation.
type Imovel struct {
	Tipo          string  `json:"tipo"`
	Localizacao   string  `json:"localizacao"`
	ValorEstimado float64 `json:"valor_estimado,omitempty"`
	Status        string  `json:"status"`
	RendaMensal   float64 `json:"renda_mensal,omitempty"`
	Area          string  `json:"area,omitempty"`
	DataAquisicao string  `json:"data_aquisicao,omitempty"`
	Observacoes   string  `json:"observacoes,omitempty"`
}

// Participacao is a corporate equity stake.
type Participacao struct {
	Empresa          string `json:"empresa"`
	Segmento         string `json:"segmento"`
	Participacao     string `json:"participacao"`
	FaturamentoAnual string `json:"faturamento_anual,omitempty"`
	CNPJ             string `json:"cnpj,omitempty"`
	Posicao          string `json:"posicao,omitempty"`
	DataCriacao      string `json:"data_criacao,omitempty"`
	Observacoes      string `json:"observacoes,omitempty"`
}

// MembroFamilia is one family member in the family structure.
type MembroFamilia struct {
	Nome        string `json:"nome"`
	Parentesco  string `json:"parentesco"`
	Idade       int    `json:"idade,omitempty"`
	Ocupacao    string `json:"ocupacao,omitempty"`
	CPF         string `json:"cpf,omitempty"`
	Observacoes string `json:"observacoes,omitempty"`
}

// EstruturaFamiliar describes marital status and dependents.
type EstruturaFamiliar struct {
	EstadoCivil       string          `json:"estado_civil,omitempty"`
	RegimeBens        string          `json:"regime_bens,omitempty"`
	Conjuge           *MembroFamilia  `json:"conjuge,omitempty"`
	Filhos            []MembroFamilia `json:"filhos"`
	OutrosDependentes []MembroFamilia `json:"outros_dependentes"`
	Observacoes       string          `json:"observacoes,omitempty"`
}

// Investimento is a financial investment record.
type Investimento struct {
	Tipo          string  `json:"tipo"`
	Valor         float64 `json:"valor,omitempty"`
	Detalhes      string  `json:"detalhes,omitempty"`
	Instituicao   string  `json:"instituicao,omitempty"`
	DataAplicacao string  `json:"data_aplicacao,omitempty"`
	Observacoes   string  `json:"observacoes,omitempty"`
}

// OutroAtivo is any asset that fits no other category.
type OutroAtivo struct {
	Tipo        string  `json:"tipo"`
	Descricao   string  `json:"descricao"`
	Valor       float64 `json:"valor,omitempty"`
	Observacoes string  `json:"observacoes,omitempty"`
}

// ChatStructuredData is the typed summary the remote LLM extracts from the
// conversation. The client treats it as a replaceable snapshot: each
// structured_data stream record overwrites the previous one wholesale.
type ChatStructuredData struct {
	Imoveis           []Imovel           `json:"imoveis"`
	Participacoes     []Participacao     `json:"participacoes"`
	EstruturaFamiliar *EstruturaFamiliar `json:"estrutura_familiar,omitempty"`
	Investimentos     []Investimento     `json:"investimentos"`
	OutrosAtivos      []OutroAtivo       `json:"outros_ativos"`
}

// Empty reports whether no data has been extracted yet.
func (d *ChatStructuredData) Empty() bool {
	return len(d.Imoveis) == 0 &&
		len(d.Participacoes) == 0 &&
		d.EstruturaFamiliar == nil &&
		len(d.Investimentos) == 0 &&
		len(d.OutrosAtivos) == 0
}

// Summary returns a one-line description of what has been collected so far.
func (d *ChatStructuredData) Summary() string {
	var sections []string
	if n := len(d.Imoveis); n > 0 {
		sections = append(sections, plural(n, "imóvel", "imóveis"))
	}
	if n := len(d.Participacoes); n > 0 {
		sections = append(sections, plural(n, "participação societária", "participações societárias"))
	}
	if ef := d.EstruturaFamiliar; ef != nil && (ef.EstadoCivil != "" || ef.Conjuge != nil || len(ef.Filhos) > 0) {
		sections = append(sections, "estrutura familiar")
	}
	if n := len(d.Investimentos); n > 0 {
		sections = append(sections, plural(n, "investimento", "investimentos"))
	}
	if n := len(d.OutrosAtivos); n > 0 {
		sections = append(sections, plural(n, "outro ativo", "outros ativos"))
	}
	if len(sections) == 0 {
		return "Nenhum dado coletado"
	}
	return "Dados coletados: " + strings.Join(sections, ", ")
}

// =============================================================================
// PROGRESS
// =============================================================================

// ChatProgress is the server's estimate of how much of the data-collection
// questionnaire the conversation has covered. Display-only: step completion
// is gated by user action, not by this percentage.
type ChatProgress struct {
	CompletedSections int      `json:"completed_sections"`
	TotalSections     int      `json:"total_sections"`
	Percentage        float64  `json:"percentage"`
	MissingData       []string `json:"missing_data"`
}

// ChatState is the full chat snapshot for one step.
type ChatState struct {
	ConversationID *string            `json:"conversation_id"`
	Messages       []ChatMessage      `json:"messages"`
	StructuredData ChatStructuredData `json:"structured_data"`
	Progress       ChatProgress       `json:"progress"`
	IsCompleted    bool               `json:"is_completed"`
}
