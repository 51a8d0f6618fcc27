// Number formatting for funnel reports.
//
// Every presentation layer renders numbers with one convention: Brazilian
// Portuguese grouping (period as thousands separator, comma as decimal
// separator) and the "R$" currency prefix.

package format

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// CurrencyPrefix precedes every monetary value.
	CurrencyPrefix = "R$"
	// Undefined is displayed for values that do not exist, such as ROAS
	// without a media budget.
	Undefined = "–"
)

// Locale is the single locale all numbers are rendered in.
var Locale = language.BrazilianPortuguese

var printer = message.NewPrinter(Locale)

// FormatCount renders an integer count with thousands separators: 15.150.
func FormatCount(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatDecimal renders v with two decimals and thousands separators: 1.234,56.
func FormatDecimal(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// FormatCurrency renders a monetary value with the currency prefix: R$ 1.234,56.
func FormatCurrency(v float64) string {
	return CurrencyPrefix + " " + FormatDecimal(v)
}

// FormatPercent renders a percentage with two decimals: 4,00%.
func FormatPercent(pct float64) string {
	return FormatDecimal(pct) + "%"
}

// FormatROAS renders a return on ad spend multiple (6,00x), or Undefined
// when no media budget was given.
func FormatROAS(roas float64, defined bool) string {
	if !defined {
		return Undefined
	}
	return FormatDecimal(roas) + "x"
}

// ParseNumber parses a user-typed number in either convention: "1234.5" or
// the Brazilian "1.234,5". A comma marks the decimal separator, and periods
// are then read as thousands separators.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return strconv.ParseFloat(s, 64)
}
