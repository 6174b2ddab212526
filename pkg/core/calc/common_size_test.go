package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"screener_valuation/pkg/core/extract"
	"screener_valuation/pkg/core/table"
)

func TestCommonSize(t *testing.T) {
	out := CommonSize(sample())

	assert.Equal(t, []string{
		extract.MetricInterest + OfSales,
		extract.MetricPBT + OfSales,
		extract.MetricTax + OfSales,
		extract.MetricNetProfit + OfSales,
		extract.MetricEquityCapital + OfAssets,
		extract.MetricReserves + OfAssets,
		extract.MetricBorrowings + OfAssets,
		extract.MetricReceivables + OfAssets,
	}, out.Columns())

	assertSeries(t, []float64{10, 10, 10}, col(t, out, extract.MetricNetProfit+OfSales))
	assertSeries(t, []float64{25, 25, 20}, col(t, out, extract.MetricBorrowings+OfAssets))
}

func TestCommonSizeWithoutBase(t *testing.T) {
	tbl := table.FromColumns(periods, []string{extract.MetricNetProfit, extract.MetricBorrowings},
		map[string][]float64{
			extract.MetricNetProfit:  {1, 2, 3},
			extract.MetricBorrowings: {4, 5, 6},
		})
	assert.Empty(t, CommonSize(tbl).Columns())
}

func TestDuPontMatchesROE(t *testing.T) {
	tbl := sample()
	out := DuPont(tbl)

	assertSeries(t, []float64{0.1, 0.1, 0.1}, col(t, out, DuPontMargin))
	assertSeries(t, []float64{1, 1, 1.2}, col(t, out, DuPontTurnover))
	assertSeries(t, []float64{2, 2, 125.0 / 75}, col(t, out, EquityMultiplier))
	assertSeries(t, col(t, Profitability(tbl), ROE), col(t, out, DuPontROE))
}
