package extract

import (
	"math"
	"strconv"
	"strings"

	"screener_valuation/pkg/core/grid"
	"screener_valuation/pkg/core/table"
)

// CoerceStatus classifies the outcome of a numeric coercion.
type CoerceStatus int

const (
	// Parsed means the cell yielded a finite number.
	Parsed CoerceStatus = iota
	// Empty means the cell was blank or an explicit filler such as "--" or "N/A".
	Empty
	// Unparsable means the cell held content that is not a number.
	Unparsable
)

var currencyTokens = []string{"₹", "$", "€", "£", "¥"}

var fillers = map[string]bool{
	"-": true, "--": true, "---": true, "—": true, "–": true,
	"N/A": true, "NA": true, "N.A.": true, "NIL": true, "NONE": true,
	"NAN": true, "NULL": true,
}

// CoerceNumeric converts any cell to a number, or Missing. It never panics.
func CoerceNumeric(c grid.Cell) float64 {
	v, _ := Coerce(c)
	return v
}

// Coerce is CoerceNumeric with the reason a value came out Missing.
func Coerce(c grid.Cell) (float64, CoerceStatus) {
	switch c.Kind {
	case grid.KindBlank:
		return table.Missing(), Empty
	case grid.KindNumber:
		if math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
			return table.Missing(), Unparsable
		}
		return c.Num, Parsed
	case grid.KindString:
		return CoerceString(c.Str)
	default:
		return table.Missing(), Unparsable
	}
}

// CoerceString parses exported text such as "₹ 1,234.5", "(12)", "Rs. 40" or "12%".
func CoerceString(raw string) (float64, CoerceStatus) {
	s := cleanNumeric(raw)
	if s == "" {
		return table.Missing(), Empty
	}
	if fillers[strings.ToUpper(s)] {
		return table.Missing(), Empty
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	s = strings.TrimSuffix(s, "%")
	if hasPrefixFold(strings.TrimLeft(s, "+-"), "0x") {
		return table.Missing(), Unparsable
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return table.Missing(), Unparsable
	}
	if negative {
		v = -math.Abs(v)
	}
	return v, Parsed
}

func cleanNumeric(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch r {
		case ',', ' ', '\t', '\n', '\r', '\u00a0', '\u2007', '\u2009', '\u202f', '\u200b':
			continue
		case '\u2212', '\u2012':
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	s := b.String()
	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}

	for _, prefix := range []string{"RS.", "RS", "INR"} {
		if hasPrefixFold(s, prefix) {
			s = s[len(prefix):]
			break
		}
		if strings.HasPrefix(s, "-") && hasPrefixFold(s[1:], prefix) {
			s = "-" + s[len(prefix)+1:]
			break
		}
	}
	return strings.TrimSpace(s)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
