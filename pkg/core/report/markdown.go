// Package report renders an analysis.Report as markdown or a standalone HTML page.
package report

import (
	"fmt"
	"sort"
	"strings"

	"screener_valuation/pkg/core/analysis"
	"screener_valuation/pkg/core/calc"
	"screener_valuation/pkg/core/table"
	"screener_valuation/pkg/core/utils"
)

// Markdown renders the full report.
func Markdown(r *analysis.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", r.Company)
	fmt.Fprintf(&b, "Report `%s` generated %s", r.ID, r.CreatedAt.Format("2006-01-02 15:04 MST"))
	if r.Source != "" {
		fmt.Fprintf(&b, " from `%s`", r.Source)
	}
	b.WriteString(".\n\n")

	writeVerdict(&b, r)
	writeHeadline(&b, r)
	writeValuation(&b, r)
	writeSensitivity(&b, r)
	writeMultiples(&b, r)

	writeTable(&b, "Financials (₹ Cr)", r.Financials, 2)
	writeTable(&b, "Profitability", r.Profitability, 2)
	writeTable(&b, "Solvency", r.Solvency, 2)
	writeTable(&b, "Efficiency", r.Efficiency, 2)
	writeTable(&b, "DuPont", r.DuPont, 3)
	writeTable(&b, "Common Size", r.CommonSize, 1)
	writeTable(&b, "Growth", r.Growth, 1)
	writeGrowthSummary(&b, r.GrowthSummary)
	writeTable(&b, "Per Share", r.Dilution, 2)
	writeTable(&b, "Economic Value Added", r.EVA, 2)
	writeRisk(&b, r.Risk)
	writeIntegrity(&b, r)
	if r.Quarterly.Len() > 0 {
		writeTable(&b, "Quarterly Results (₹ Cr)", r.Quarterly, 2)
	}
	writeWarnings(&b, r)

	return b.String()
}

func writeVerdict(b *strings.Builder, r *analysis.Report) {
	v := r.Verdict
	fmt.Fprintf(b, "## Verdict: %s (%d/%d)\n\n", v.Grade, v.Score, v.Max)
	for _, c := range v.Checks {
		mark := "✗"
		if c.Passed {
			mark = "✓"
		}
		fmt.Fprintf(b, "- %s %s\n", mark, c.Detail)
	}
	b.WriteString("\n")
}

func writeHeadline(b *strings.Builder, r *analysis.Report) {
	h := r.Headline
	md := r.Metadata
	fmt.Fprintf(b, "## Snapshot (%s)\n\n", nonEmpty(h.Period))
	b.WriteString("| Metric | Value |\n|---|---|\n")
	rows := [][2]string{
		{"Market Cap", capCell(md.MarketCap)},
		{"Current Price", rupees(md.CurrentPrice)},
		{"Sales", FormatCrore(h.Sales.Float())},
		{"Net Profit", FormatCrore(h.NetProfit.Float())},
		{"Net Margin", FormatPercent(h.NetMargin.Float())},
		{"ROE", FormatPercent(h.ROE.Float())},
		{"ROCE", FormatPercent(h.ROCE.Float())},
		{"Debt to Equity", FormatNumber(h.DebtToEquity.Float(), 2)},
		{"EPS", FormatNumber(h.EPS.Float(), 2)},
		{"Sales CAGR (5y)", FormatPercent(h.SalesCAGR5.Float())},
	}
	for _, row := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", row[0], row[1])
	}
	b.WriteString("\n")
}

func writeValuation(b *strings.Builder, r *analysis.Report) {
	v := r.Valuation
	b.WriteString("## DCF Valuation\n\n")
	b.WriteString("| Input | Value |\n|---|---|\n")
	fmt.Fprintf(b, "| Base FCF (%s, %s) | %s |\n", v.FCFSource, nonEmpty(v.BasePeriod), FormatCrore(v.BaseFCF))
	fmt.Fprintf(b, "| Growth (5y) | %s |\n", FormatRate(v.DCF.Input.Growth))
	fmt.Fprintf(b, "| WACC (%s) | %s |\n", v.WACCSource, FormatRate(v.WACC.WACC))
	tg := FormatRate(v.DCF.TerminalGrowthUsed)
	if v.DCF.TerminalGrowthCapped {
		tg += fmt.Sprintf(" (capped from %s)", FormatRate(v.DCF.Input.TerminalGrowth))
	}
	fmt.Fprintf(b, "| Terminal Growth | %s |\n\n", tg)

	b.WriteString("| Year | FCF | PV |\n|---|---|---|\n")
	for _, p := range v.DCF.Projections {
		fmt.Fprintf(b, "| %d | %s | %s |\n", p.Year, FormatNumber(p.FCF, 2), FormatNumber(p.PresentValue, 2))
	}
	b.WriteString("\n")

	fmt.Fprintf(b, "- PV of explicit stage: %s\n", FormatCrore(v.DCF.PVExplicit))
	fmt.Fprintf(b, "- PV of terminal value: %s\n", FormatCrore(v.DCF.PVTerminal))
	fmt.Fprintf(b, "- **Intrinsic value: %s**\n", FormatCrore(v.DCF.IntrinsicValue))
	fmt.Fprintf(b, "- Intrinsic value per share: %s\n", rupees(v.IntrinsicPerShare.Float()))
	fmt.Fprintf(b, "- Upside vs price: %s\n\n", FormatPercent(v.Upside.Float()))
}

func writeMultiples(b *strings.Builder, r *analysis.Report) {
	m := r.Valuation.Multiples
	if m == nil {
		return
	}
	writeTable(b, "Historical Multiples", m.Multiples, 1)
	b.WriteString("| Multiple | Range (p25-p75) | Implied price |\n|---|---|---|\n")
	fmt.Fprintf(b, "| P/E | %s - %s | %s - %s |\n",
		FormatNumber(m.PERange[0].Float(), 1), FormatNumber(m.PERange[1].Float(), 1),
		rupees(m.ImpliedPE[0].Float()), rupees(m.ImpliedPE[1].Float()))
	fmt.Fprintf(b, "| P/B | %s - %s | %s - %s |\n\n",
		FormatNumber(m.PBRange[0].Float(), 1), FormatNumber(m.PBRange[1].Float(), 1),
		rupees(m.ImpliedPB[0].Float()), rupees(m.ImpliedPB[1].Float()))
}

func writeSensitivity(b *strings.Builder, r *analysis.Report) {
	m := r.Valuation.Sensitivity
	if len(m.Values) == 0 {
		return
	}
	b.WriteString("### Sensitivity (₹ Cr, WACC x growth)\n\n| WACC \\ Growth |")
	for _, g := range m.Growth {
		fmt.Fprintf(b, " %s |", FormatRate(g))
	}
	b.WriteString("\n|---|")
	b.WriteString(strings.Repeat("---|", len(m.Growth)))
	b.WriteString("\n")
	for i, w := range m.WACC {
		fmt.Fprintf(b, "| %s |", FormatRate(w))
		for _, v := range m.Values[i] {
			fmt.Fprintf(b, " %s |", GroupIndian(v, 0))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// writeTable prints a period table with periods as columns, the way statements read.
func writeTable(b *strings.Builder, title string, t *table.Table, decimals int) {
	if t.Len() == 0 || len(t.Columns()) == 0 {
		return
	}
	periods := t.Periods()
	fmt.Fprintf(b, "## %s\n\n| Metric |", title)
	for _, p := range periods {
		fmt.Fprintf(b, " %s |", p)
	}
	b.WriteString("\n|---|")
	b.WriteString(strings.Repeat("---:|", len(periods)))
	b.WriteString("\n")
	for _, name := range t.Columns() {
		col, _ := t.Column(name)
		fmt.Fprintf(b, "| %s |", utils.EscapeCell(name))
		for _, v := range col {
			fmt.Fprintf(b, " %s |", FormatNumber(v, decimals))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeGrowthSummary(b *strings.Builder, rows []calc.CAGRRow) {
	if len(rows) == 0 {
		return
	}
	var horizons []int
	for h := range rows[0].Rates {
		horizons = append(horizons, h)
	}
	sort.Ints(horizons)

	b.WriteString("### CAGR\n\n| Metric |")
	for _, h := range horizons {
		fmt.Fprintf(b, " %dy |", h)
	}
	b.WriteString("\n|---|")
	b.WriteString(strings.Repeat("---:|", len(horizons)))
	b.WriteString("\n")
	for _, row := range rows {
		fmt.Fprintf(b, "| %s |", row.Metric)
		for _, h := range horizons {
			fmt.Fprintf(b, " %s |", FormatPercent(row.Rates[h].Float()))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeRisk(b *strings.Builder, r calc.RiskSummary) {
	b.WriteString("## Risk\n\n| Measure | Value |\n|---|---|\n")
	fmt.Fprintf(b, "| Sales growth volatility | %s |\n", FormatPercent(r.SalesVolatility.Float()))
	fmt.Fprintf(b, "| Profit growth volatility | %s |\n", FormatPercent(r.ProfitVolatility.Float()))
	fmt.Fprintf(b, "| Sales max drawdown | %s |\n", FormatPercent(r.SalesDrawdown.Float()))
	fmt.Fprintf(b, "| Debt to equity | %s |\n", FormatNumber(r.DebtToEquity.Float(), 2))
	fmt.Fprintf(b, "| Interest coverage | %s |\n", coverage(r.InterestCoverage, r.DebtFree))
	fmt.Fprintf(b, "| CFO to debt | %s |\n", coverage(r.CFOToDebt, r.DebtFree))
	fmt.Fprintf(b, "| Altman Z-Score | %s %s |\n\n", FormatNumber(r.AltmanZ.Float(), 2), r.AltmanZone)
}

func writeIntegrity(b *strings.Builder, r *analysis.Report) {
	writeTable(b, "Statement Tie-outs (₹ Cr)", r.Integrity, 2)
	// only worth a table once some period scores
	if _, _, ok := r.Beneish.Latest(calc.MScore); ok {
		writeTable(b, "Beneish M-Score", r.Beneish, 3)
	}
	bf := r.Benford
	if bf.Sample == 0 {
		return
	}
	fmt.Fprintf(b, "### Leading digits\n\n%d amounts, MAD %s: %s\n\n", bf.Sample, FormatNumber(bf.MAD.Float(), 4), bf.Level)
}

func writeWarnings(b *strings.Builder, r *analysis.Report) {
	if len(r.Warnings) == 0 {
		return
	}
	b.WriteString("## Data Warnings\n\n")
	for _, w := range r.Warnings {
		fmt.Fprintf(b, "- %s\n", w.String())
	}
	b.WriteString("\n")
}

func coverage(v table.Num, debtFree bool) string {
	if debtFree && v.Float() == calc.DebtFreeSentinel {
		return "debt free"
	}
	return FormatNumber(v.Float(), 2)
}

func capCell(v float64) string {
	if v <= 0 {
		return NotAvailable
	}
	return FormatCrore(v)
}

func rupees(v float64) string {
	if !finite(v) || v <= 0 {
		return NotAvailable
	}
	return FormatINR(v)
}

func nonEmpty(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
