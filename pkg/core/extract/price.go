package extract

import (
	"screener_valuation/pkg/core/grid"
	"screener_valuation/pkg/core/table"
)

// priceTrailerKeywords marks the row of year-end share prices after the cash flow block.
var priceTrailerKeywords = KeywordSet{"PRICE:"}

// ReadPriceTrailer returns the year-end share prices Screener writes on the PRICE:
// row, keyed by the P&L period whose column they share. ok is false when the row
// is absent or carries no number.
func ReadPriceTrailer(g *grid.Grid, plRow int) (map[string]float64, RowStats, bool) {
	var stats RowStats
	row, found := LocateSection(g, priceTrailerKeywords)
	if !found {
		return nil, stats, false
	}

	periods, cols := readPeriodColumns(g, plRow)
	prices := make(map[string]float64, len(periods))
	for i, c := range cols {
		v, st := Coerce(g.At(row, c))
		stats.Cells++
		switch st {
		case Empty:
			stats.Missing++
		case Unparsable:
			stats.Unparsable++
		}
		if !table.IsMissing(v) {
			prices[periods[i]] = v
		}
	}
	return prices, stats, len(prices) > 0
}

// withPriceTrailer adds the PRICE: row as the Price column unless a section already
// supplied one.
func withPriceTrailer(g *grid.Grid, plRow int, t *table.Table, stats *CoercionStats) *table.Table {
	if t.Has(MetricPrice) {
		return t
	}
	prices, rs, ok := ReadPriceTrailer(g, plRow)
	stats.add(rs)
	if !ok {
		return t
	}
	col := make([]float64, t.Len())
	for i, p := range t.Periods() {
		col[i] = table.Missing()
		if v, ok := prices[p]; ok {
			col[i] = v
		}
	}
	return t.WithColumn(MetricPrice, col)
}
