package calc

import (
	"math"

	"screener_valuation/pkg/core/extract"
	"screener_valuation/pkg/core/table"
)

// EVA column names.
const (
	NOPAT           = "NOPAT"
	InvestedCapital = "Invested Capital"
	CapitalCharge   = "Capital Charge"
	EVAValue        = "EVA"
	ROIC            = "ROIC %"
	Spread          = "Spread %"
	EVAMargin       = "EVA Margin %"
	TaxRateUsed     = "Tax Rate %"
)

// MaxEffectiveTax caps the historical effective tax rate.
const MaxEffectiveTax = 0.5

// EVAOptions parameterises the economic value added calculation.
type EVAOptions struct {
	WACC    float64
	TaxRate float64
	// HistoricalTax uses Tax / PBT per period, clipped to [0, MaxEffectiveTax], and
	// falls back to TaxRate where the ratio is undefined.
	HistoricalTax bool
}

// EffectiveTaxRates returns the tax rate applied to each period.
func EffectiveTaxRates(t *table.Table, opts EVAOptions) []float64 {
	rates := make([]float64, t.Len())
	tax := column(t, extract.MetricTax)
	pbt := column(t, extract.MetricPBT)
	for i := range rates {
		rates[i] = opts.TaxRate
		if !opts.HistoricalTax {
			continue
		}
		if r := safeDiv(tax[i], pbt[i]); !math.IsNaN(r) && pbt[i] > 0 {
			rates[i] = clamp(r, 0, MaxEffectiveTax)
		}
	}
	return rates
}

// EVA computes NOPAT, invested capital and the value created over the capital charge.
//
//	NOPAT            = (PBT + Interest) * (1 - tax)
//	Invested Capital = Equity Share Capital + Reserves + Borrowings
//	EVA              = NOPAT - Invested Capital * WACC
func EVA(t *table.Table, opts EVAOptions) *table.Table {
	rates := EffectiveTaxRates(t, opts)
	keep := make([]float64, len(rates))
	for i, r := range rates {
		keep[i] = 1 - r
	}

	nopat := mul(ebit(t), keep)
	ic := add(equity(t), column(t, extract.MetricBorrowings))
	charge := scale(ic, opts.WACC)
	eva := sub(nopat, charge)
	roic := scale(divide(nopat, ic), 100)

	spread := make([]float64, len(roic))
	for i, r := range roic {
		spread[i] = r - opts.WACC*100
	}

	return table.FromColumns(t.Periods(),
		[]string{NOPAT, InvestedCapital, CapitalCharge, EVAValue, ROIC, Spread, EVAMargin, TaxRateUsed},
		map[string][]float64{
			NOPAT:           nopat,
			InvestedCapital: ic,
			CapitalCharge:   charge,
			EVAValue:        eva,
			ROIC:            roic,
			Spread:          spread,
			EVAMargin:       scale(divide(eva, column(t, extract.MetricSales)), 100),
			TaxRateUsed:     scale(rates, 100),
		})
}
