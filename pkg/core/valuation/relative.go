package valuation

import (
	"math"
	"sort"

	"screener_valuation/pkg/core/table"
)

// Multiple column names.
const (
	PE = "P/E"
	PB = "P/B"
)

// MultiplesResult values the company at the range of its own historical multiples.
// Ranges are the 25th and 75th percentile; implied prices apply them to the latest
// positive EPS or book value per share.
type MultiplesResult struct {
	Multiples *table.Table `json:"multiples"`
	PERange   [2]table.Num `json:"pe_range"`
	PBRange   [2]table.Num `json:"pb_range"`
	ImpliedPE [2]table.Num `json:"implied_price_pe"`
	ImpliedPB [2]table.Num `json:"implied_price_pb"`
}

// HistoricalMultiples computes P/E and P/B per period from year-end prices and
// per-share figures. Periods with a non-positive price, EPS or book value have no
// multiple.
func HistoricalMultiples(periods []string, price, eps, bookValue []float64) MultiplesResult {
	pe := ratios(price, eps)
	pb := ratios(price, bookValue)

	res := MultiplesResult{
		Multiples: table.FromColumns(periods, []string{PE, PB}, map[string][]float64{PE: pe, PB: pb}),
		PERange:   percentileRange(pe),
		PBRange:   percentileRange(pb),
	}
	res.ImpliedPE = applyRange(res.PERange, latestPositive(eps))
	res.ImpliedPB = applyRange(res.PBRange, latestPositive(bookValue))
	return res
}

func ratios(num, den []float64) []float64 {
	out := make([]float64, len(num))
	for i := range out {
		out[i] = math.NaN()
		if i < len(den) && num[i] > 0 && den[i] > 0 {
			out[i] = num[i] / den[i]
		}
	}
	return out
}

// percentileRange returns the 25th and 75th percentile of the defined values.
func percentileRange(vals []float64) [2]table.Num {
	var xs []float64
	for _, v := range vals {
		if !math.IsNaN(v) {
			xs = append(xs, v)
		}
	}
	if len(xs) == 0 {
		return [2]table.Num{table.NaN(), table.NaN()}
	}
	sort.Float64s(xs)
	lo := int(float64(len(xs)) * 0.25)
	hi := int(float64(len(xs)) * 0.75)
	if hi >= len(xs) {
		hi = len(xs) - 1
	}
	return [2]table.Num{table.Num(xs[lo]), table.Num(xs[hi])}
}

func applyRange(r [2]table.Num, base float64) [2]table.Num {
	return [2]table.Num{table.Num(float64(r[0]) * base), table.Num(float64(r[1]) * base)}
}

func latestPositive(s []float64) float64 {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] > 0 {
			return s[i]
		}
	}
	return math.NaN()
}
