// Package normalize canonicalizes company identifiers, tickers and sheet
// headers so that the same company compares equal across every table.
// The same functions must be applied to both sides of every join key.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/agentstation/cgvn/pkg/table"
)

// Identifier returns the canonical form of a tax identifier: compatibility
// folded, trimmed, with every rune that is not a letter or digit removed,
// so "12.345.678/0001-90" and "12345678000190" compare equal.
func Identifier(s string) string {
	s = strings.TrimSpace(norm.NFKC.String(s))
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// Ticker returns the canonical form of a trading symbol: trimmed and
// upper-cased independently of locale.
func Ticker(s string) string {
	// cases.Caser keeps state, so one is created per call.
	return strings.TrimSpace(cases.Upper(language.Und).String(strings.TrimSpace(s)))
}

// IdentifierValue normalizes a cell value; nil yields "".
func IdentifierValue(v any) string {
	return Identifier(table.FormatValue(v))
}

// TickerValue normalizes a cell value; nil yields "".
func TickerValue(v any) string {
	return Ticker(table.FormatValue(v))
}

// Header returns the column name carried by a possibly multi-line sheet
// header cell: its last non-blank line, trimmed. Equity exports put the
// metric description above the ticker in the same cell.
func Header(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
