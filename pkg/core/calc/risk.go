package calc

import (
	"math"

	"screener_valuation/pkg/core/extract"
	"screener_valuation/pkg/core/table"
)

// DebtFreeSentinel is reported for coverage ratios when there is no interest or
// debt to cover.
const DebtFreeSentinel = 999.0

// RiskSummary is a point-in-time view of earnings stability and balance sheet risk.
type RiskSummary struct {
	SalesVolatility  table.Num `json:"sales_volatility_pct"`
	ProfitVolatility table.Num `json:"profit_volatility_pct"`
	SalesDrawdown    table.Num `json:"sales_max_drawdown_pct"`
	DebtToEquity     table.Num `json:"debt_to_equity"`
	InterestCoverage table.Num `json:"interest_coverage"`
	CFOToDebt        table.Num `json:"cfo_to_debt"`
	DebtFree         bool      `json:"debt_free"`
	AltmanZ          table.Num `json:"altman_z"`
	AltmanZone       string    `json:"altman_zone,omitempty"`
}

// Altman zones.
const (
	ZoneSafe     = "safe"
	ZoneGrey     = "grey"
	ZoneDistress = "distress"
)

// Risk summarises volatility of growth and the latest-period leverage. marketCap
// feeds the Altman Z-Score and may be zero when unknown.
func Risk(t *table.Table, marketCap float64) RiskSummary {
	sales := column(t, extract.MetricSales)
	debt := last(column(t, extract.MetricBorrowings))
	interest := last(column(t, extract.MetricInterest))

	r := RiskSummary{
		SalesVolatility:  table.Num(stddev(pctChange(sales))),
		ProfitVolatility: table.Num(stddev(pctChange(column(t, extract.MetricNetProfit)))),
		SalesDrawdown:    table.Num(maxDrawdown(sales)),
		DebtToEquity:     table.Num(safeDiv(debt, last(equity(t)))),
		DebtFree:         debt == 0,
	}
	z := AltmanZ(t, marketCap)
	r.AltmanZ = table.Num(z)
	r.AltmanZone = AltmanZoneFor(z)

	switch {
	case math.IsNaN(interest):
		r.InterestCoverage = table.NaN()
	case interest <= 0:
		r.InterestCoverage = DebtFreeSentinel
	default:
		r.InterestCoverage = table.Num(safeDiv(last(ebit(t)), interest))
	}

	switch {
	case math.IsNaN(debt):
		r.CFOToDebt = table.NaN()
	case debt <= 0:
		r.CFOToDebt = DebtFreeSentinel
	default:
		r.CFOToDebt = table.Num(safeDiv(last(column(t, extract.MetricCFO)), debt))
	}
	return r
}

// AltmanZ is the original manufacturing Z-Score for the latest period:
//
//	Z = 1.2A + 1.4B + 3.3C + 0.6D + 1.0E
//
// with A working capital, B retained earnings, C EBIT and E sales over total
// assets, and D market capitalisation over total liabilities. Screener exports do
// not split current liabilities, so working capital is receivables, inventory and
// cash less Other Liabilities, and reserves stand in for retained earnings.
func AltmanZ(t *table.Table, marketCap float64) float64 {
	if marketCap <= 0 || !t.Has(extract.MetricTotalAssets) {
		return math.NaN()
	}
	ta := last(column(t, extract.MetricTotalAssets))
	otherLiab := last(column(t, extract.MetricOtherLiabilities))
	tl := last(column(t, extract.MetricBorrowings)) + otherLiab
	wc := last(column(t, extract.MetricReceivables)) + last(column(t, extract.MetricInventory)) +
		last(column(t, extract.MetricCash)) - otherLiab

	return 1.2*safeDiv(wc, ta) +
		1.4*safeDiv(last(column(t, extract.MetricReserves)), ta) +
		3.3*safeDiv(last(ebit(t)), ta) +
		0.6*safeDiv(marketCap, tl) +
		1.0*safeDiv(last(column(t, extract.MetricSales)), ta)
}

// AltmanZoneFor classifies a Z-Score; undefined scores have no zone.
func AltmanZoneFor(z float64) string {
	switch {
	case math.IsNaN(z):
		return ""
	case z > 2.99:
		return ZoneSafe
	case z >= 1.81:
		return ZoneGrey
	default:
		return ZoneDistress
	}
}

// maxDrawdown is the deepest fall from a running peak, in percent (<= 0).
func maxDrawdown(s []float64) float64 {
	peak := math.NaN()
	worst := math.NaN()
	for _, v := range s {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(peak) || v > peak {
			peak = v
		}
		dd := safeDiv(v-peak, peak) * 100
		if math.IsNaN(dd) || peak < 0 {
			continue
		}
		if math.IsNaN(worst) || dd < worst {
			worst = dd
		}
	}
	return worst
}
