package calc

import (
	"math"

	"screener_valuation/pkg/core/extract"
	"screener_valuation/pkg/core/table"
)

// CAGRHorizons are the look-back windows, in periods, of the growth summary.
var CAGRHorizons = []int{3, 5, 10}

// CAGRMetrics are summarised by GrowthSummary.
var CAGRMetrics = []string{extract.MetricSales, extract.MetricNetProfit, extract.MetricEquityCapital}

// CAGRRow holds the compound growth of one metric per horizon, in percent.
type CAGRRow struct {
	Metric string            `json:"metric"`
	Rates  map[int]table.Num `json:"rates"`
}

// CAGR is the compound annual growth rate between the last value of s and the
// value years periods earlier. NaN when history is too short or an endpoint is
// missing or non-positive.
func CAGR(s []float64, years int) float64 {
	if years <= 0 || len(s) <= years {
		return math.NaN()
	}
	end := s[len(s)-1]
	start := s[len(s)-1-years]
	if math.IsNaN(start) || math.IsNaN(end) || start <= 0 || end <= 0 {
		return math.NaN()
	}
	return math.Pow(end/start, 1/float64(years)) - 1
}

// GrowthSummary computes CAGR in percent for each summary metric and horizon.
func GrowthSummary(t *table.Table) []CAGRRow {
	rows := make([]CAGRRow, 0, len(CAGRMetrics))
	for _, name := range CAGRMetrics {
		s, ok := t.Column(name)
		row := CAGRRow{Metric: name, Rates: make(map[int]table.Num, len(CAGRHorizons))}
		for _, h := range CAGRHorizons {
			if !ok {
				row.Rates[h] = table.NaN()
				continue
			}
			row.Rates[h] = table.Num(CAGR(s, h) * 100)
		}
		rows = append(rows, row)
	}
	return rows
}
