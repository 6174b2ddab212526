package calc

import (
	"math"
	"strconv"

	"screener_valuation/pkg/core/extract"
	"screener_valuation/pkg/core/table"
)

// Integrity column names.
const (
	BalanceGap  = "Balance Gap"
	CashFlowGap = "Cash Flow Gap"
)

// TieOutTolerance is the largest gap, in the statement unit, accepted as rounding.
// Screener rounds every line to two decimals, so several lines summed can drift.
const TieOutTolerance = 1.0

// Integrity reports the statement tie-outs per period:
//   - Balance Gap is Total Assets minus the liability side (equity capital,
//     reserves, borrowings and other liabilities)
//   - Cash Flow Gap is Net Cash Flow minus the sum of the three activities
//
// A gap column is produced only when its total line was extracted.
func Integrity(t *table.Table) *table.Table {
	cols := map[string][]float64{}
	var order []string

	if t.Has(extract.MetricTotalAssets) && (t.Has(extract.MetricEquityCapital) || t.Has(extract.MetricReserves)) {
		liabilities := add(add(equity(t), column(t, extract.MetricBorrowings)), column(t, extract.MetricOtherLiabilities))
		cols[BalanceGap] = sub(column(t, extract.MetricTotalAssets), liabilities)
		order = append(order, BalanceGap)
	}
	if t.Has(extract.MetricNetCashFlow) && t.Has(extract.MetricCFO) {
		activities := add(add(column(t, extract.MetricCFO), column(t, extract.MetricCFI)), column(t, extract.MetricCFF))
		cols[CashFlowGap] = sub(column(t, extract.MetricNetCashFlow), activities)
		order = append(order, CashFlowGap)
	}
	return table.FromColumns(t.Periods(), order, cols)
}

// Mismatches returns the periods of column name whose absolute gap exceeds
// TieOutTolerance, with the gap. Missing gaps are skipped.
func Mismatches(integrity *table.Table, name string) map[string]float64 {
	gaps, ok := integrity.Column(name)
	if !ok {
		return nil
	}
	out := map[string]float64{}
	for i, p := range integrity.Periods() {
		if !math.IsNaN(gaps[i]) && math.Abs(gaps[i]) > TieOutTolerance {
			out[p] = gaps[i]
		}
	}
	return out
}

// benfordExpected is log10(1 + 1/d) for leading digits 1-9.
var benfordExpected = [9]float64{0.30103, 0.17609, 0.12494, 0.09691, 0.07918, 0.06695, 0.05799, 0.05115, 0.04576}

// MinBenfordSample is the fewest amounts for which a first-digit test is scored.
const MinBenfordSample = 50

// Benford conformity levels.
const (
	BenfordInsufficient = "insufficient data"
	BenfordClose        = "close"
	BenfordMarginal     = "marginal"
	BenfordNonconform   = "nonconforming"
)

// BenfordResult is the first-digit distribution of the reported amounts.
type BenfordResult struct {
	Counts      [9]int     `json:"counts"`
	Frequencies [9]float64 `json:"frequencies"`
	Sample      int        `json:"sample"`
	// MAD is the mean absolute deviation from the Benford distribution.
	MAD     table.Num `json:"mad"`
	Level   string    `json:"level"`
	Flagged bool      `json:"flagged"`
}

// benfordSkip lists columns that are not reported amounts.
var benfordSkip = map[string]bool{
	extract.MetricPrice:     true,
	extract.MetricFaceValue: true,
}

// Benford runs a first-digit test over every amount of magnitude >= 1 in the
// table. Small samples are reported but never flagged. MAD above 0.015 is
// nonconforming, above 0.010 marginal.
func Benford(t *table.Table) BenfordResult {
	var r BenfordResult
	for _, name := range t.Columns() {
		if benfordSkip[name] {
			continue
		}
		col, _ := t.Column(name)
		for _, v := range col {
			if d, ok := leadingDigit(v); ok {
				r.Counts[d-1]++
				r.Sample++
			}
		}
	}

	if r.Sample == 0 {
		r.MAD = table.NaN()
		r.Level = BenfordInsufficient
		return r
	}

	var dev float64
	for i := range r.Counts {
		r.Frequencies[i] = float64(r.Counts[i]) / float64(r.Sample)
		dev += math.Abs(r.Frequencies[i] - benfordExpected[i])
	}
	mad := dev / 9
	r.MAD = table.Num(mad)

	switch {
	case r.Sample < MinBenfordSample:
		r.Level = BenfordInsufficient
	case mad > 0.015:
		r.Level = BenfordNonconform
		r.Flagged = true
	case mad > 0.010:
		r.Level = BenfordMarginal
	default:
		r.Level = BenfordClose
	}
	return r
}

func leadingDigit(v float64) (int, bool) {
	v = math.Abs(v)
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 1 {
		return 0, false
	}
	// shortest exponent form always starts with the leading digit
	s := strconv.FormatFloat(v, 'e', -1, 64)
	d := int(s[0] - '0')
	if d < 1 || d > 9 {
		return 0, false
	}
	return d, true
}
