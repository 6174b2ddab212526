package valuation

import (
	"fmt"
	"math"
	"strings"

	"screener_valuation/pkg/core/extract"
	"screener_valuation/pkg/core/table"
)

// FCFSource selects which statement line seeds the DCF.
type FCFSource string

const (
	// FCFNetProfit uses the latest net profit as a simplified free cash flow.
	FCFNetProfit FCFSource = "net_profit"
	// FCFCashFlow uses operating cash flow plus investing cash flow.
	FCFCashFlow FCFSource = "cash_flow"
)

// ParseFCFSource validates a configured source name.
func ParseFCFSource(s string) (FCFSource, error) {
	switch FCFSource(strings.ToLower(strings.TrimSpace(s))) {
	case "", FCFNetProfit:
		return FCFNetProfit, nil
	case FCFCashFlow:
		return FCFCashFlow, nil
	default:
		return "", fmt.Errorf("unknown fcf source %q", s)
	}
}

// BaseFCF returns the latest free cash flow proxy and the period it comes from.
// The cash flow source falls back to net profit when cash flow lines are absent.
func BaseFCF(t *table.Table, source FCFSource) (float64, string, FCFSource) {
	if source == FCFCashFlow {
		if v, period, ok := latestCashFCF(t); ok {
			return v, period, FCFCashFlow
		}
	}
	v, period, ok := t.Latest(extract.MetricNetProfit)
	if !ok {
		return 0, "", FCFNetProfit
	}
	return v, period, FCFNetProfit
}

func latestCashFCF(t *table.Table) (float64, string, bool) {
	cfo, ok := t.Column(extract.MetricCFO)
	if !ok {
		return 0, "", false
	}
	cfi, _ := t.Column(extract.MetricCFI)
	periods := t.Periods()
	for i := len(cfo) - 1; i >= 0; i-- {
		if math.IsNaN(cfo[i]) {
			continue
		}
		v := cfo[i]
		if i < len(cfi) && !math.IsNaN(cfi[i]) {
			v += cfi[i]
		}
		return v, periods[i], true
	}
	return 0, "", false
}
