package report

import (
	"math"
	"strconv"
	"strings"
)

const (
	crore = 1e7
	lakh  = 1e5
)

// NotAvailable is printed for missing values.
const NotAvailable = "n/a"

// FormatINR formats a rupee amount the Indian way: crore above 1e7, lakh above 1e5,
// else the full figure with lakh-style digit grouping.
func FormatINR(amount float64) string {
	if !finite(amount) {
		return NotAvailable
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	switch {
	case amount >= crore:
		return sign + "₹" + strconv.FormatFloat(amount/crore, 'f', 2, 64) + " Cr"
	case amount >= lakh:
		return sign + "₹" + strconv.FormatFloat(amount/lakh, 'f', 2, 64) + " L"
	default:
		return sign + "₹" + GroupIndian(amount, 2)
	}
}

// FormatCrore formats a statement amount that is already in crore.
func FormatCrore(v float64) string {
	if !finite(v) {
		return NotAvailable
	}
	return "₹" + GroupIndian(v, 2) + " Cr"
}

// GroupIndian renders v with the last three integer digits grouped, then pairs:
// 12345678.9 -> "1,23,45,678.90".
func GroupIndian(v float64, decimals int) string {
	if !finite(v) {
		return NotAvailable
	}
	s := strconv.FormatFloat(math.Abs(v), 'f', decimals, 64)
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	if v < 0 && strings.Trim(s, "0.") != "" {
		b.WriteByte('-')
	}
	if len(intPart) > 3 {
		head, tail := intPart[:len(intPart)-3], intPart[len(intPart)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		groups = append([]string{head}, groups...)
		intPart = strings.Join(append(groups, tail), ",")
	}
	b.WriteString(intPart)
	b.WriteString(frac)
	return b.String()
}

// FormatNumber prints v with fixed decimals, or NotAvailable.
func FormatNumber(v float64, decimals int) string {
	if !finite(v) {
		return NotAvailable
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// FormatPercent prints v (already in percent) with one decimal.
func FormatPercent(v float64) string {
	if !finite(v) {
		return NotAvailable
	}
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

// FormatRate prints a fraction as a percentage: 0.12 -> "12.0%".
func FormatRate(v float64) string {
	return FormatPercent(v * 100)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
