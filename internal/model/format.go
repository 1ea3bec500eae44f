// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// brPrinter formats numbers with Brazilian grouping/decimal conventions.
var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders a value as Brazilian currency, e.g. "R$ 1.250.000,00".
func FormatBRL(v float64) string {
	return brPrinter.Sprintf("R$ %v", number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// plural picks the singular or plural noun and prefixes the count.
func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return brPrinter.Sprintf("%d %s", n, singular)
	}
	return brPrinter.Sprintf("%d %s", n, pluralForm)
}
