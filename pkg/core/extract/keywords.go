package extract

import (
	"strings"

	"screener_valuation/pkg/core/grid"
)

// KeywordSet is a set of case-insensitive substrings identifying a row label.
type KeywordSet []string

// Matches reports whether text contains any keyword, ignoring case.
func (k KeywordSet) Matches(text string) bool {
	if text == "" {
		return false
	}
	upper := strings.ToUpper(text)
	for _, kw := range k {
		if kw != "" && strings.Contains(upper, strings.ToUpper(kw)) {
			return true
		}
	}
	return false
}

// Union returns the keywords of all sets in order.
func Union(sets ...KeywordSet) KeywordSet {
	var out KeywordSet
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}

// Section names.
const (
	SectionProfitLoss   = "Profit & Loss"
	SectionQuarters     = "Quarters"
	SectionBalanceSheet = "Balance Sheet"
	SectionCashFlow     = "Cash Flow"
	SectionMetadata     = "Metadata"
)

// Section keyword sets as they appear in column 0 of a Screener export.
var (
	ProfitLossKeywords   = KeywordSet{"PROFIT & LOSS", "P&L"}
	QuartersKeywords     = KeywordSet{"QUARTERS"}
	BalanceSheetKeywords = KeywordSet{"BALANCE SHEET"}
	CashFlowKeywords     = KeywordSet{"CASH FLOW"}

	// Blocks that are never extracted but still terminate the block above them.
	trailerKeywords = KeywordSet{"PRICE:", "DERIVED:", "META"}
)

// sectionSpec describes one extractable block.
type sectionSpec struct {
	name     string
	keywords KeywordSet
}

// annualSections are merged into the unified table in this order.
var annualSections = []sectionSpec{
	{SectionProfitLoss, ProfitLossKeywords},
	{SectionBalanceSheet, BalanceSheetKeywords},
	{SectionCashFlow, CashFlowKeywords},
}

var quarterlySection = sectionSpec{SectionQuarters, QuartersKeywords}

// boundaryFor returns the keywords of every block other than own.
// A section's own keyword may legitimately appear in its rows ("Net Cash Flow").
func boundaryFor(own string) KeywordSet {
	var out KeywordSet
	for _, s := range append(annualSections, quarterlySection) {
		if s.name != own {
			out = append(out, s.keywords...)
		}
	}
	return append(out, trailerKeywords...)
}

// LocateSection scans column 0 top to bottom and returns the first row whose text
// contains any keyword. Absence is reported with false, never as an error.
func LocateSection(g *grid.Grid, keywords KeywordSet) (int, bool) {
	if len(keywords) == 0 {
		return 0, false
	}
	for r := 0; r < g.Rows(); r++ {
		if keywords.Matches(g.At(r, 0).Text()) {
			return r, true
		}
	}
	return 0, false
}
