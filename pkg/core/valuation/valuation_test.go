package valuation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screener_valuation/pkg/core/extract"
	"screener_valuation/pkg/core/table"
)

func TestCalculateDCF(t *testing.T) {
	res := CalculateDCF(100, 0.10, 0.12, 0.04)

	require.Len(t, res.Projections, ExplicitYears)
	assert.InDelta(t, 110, res.Projections[0].FCF, 1e-9)
	assert.InDelta(t, 110/1.12, res.Projections[0].PresentValue, 1e-9)

	fcf5 := 100 * math.Pow(1.1, 5)
	tv := fcf5 * 1.04 / (0.12 - 0.04)
	assert.InDelta(t, tv, res.TerminalValue, 1e-6)
	assert.InDelta(t, tv/math.Pow(1.12, 5), res.PVTerminal, 1e-6)
	assert.InDelta(t, res.PVExplicit+res.PVTerminal, res.IntrinsicValue, 1e-9)
	assert.False(t, res.TerminalGrowthCapped)
}

func TestCalculateDCFGuard(t *testing.T) {
	tests := []struct {
		name             string
		wacc, tg         float64
		wantCappedGrowth float64
		wantTV           bool
	}{
		{"wacc equals terminal growth", 0.05, 0.05, 0.03, true},
		{"wacc below terminal growth", 0.04, 0.06, 0.02, true},
		{"tiny wacc caps to zero growth", 0.01, 0.03, 0, true},
		{"zero wacc has no terminal value", 0, 0.03, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CalculateDCF(100, 0.15, tt.wacc, tt.tg)
			assert.True(t, res.TerminalGrowthCapped)
			assert.InDelta(t, tt.wantCappedGrowth, res.TerminalGrowthUsed, 1e-12)
			assert.False(t, math.IsInf(res.IntrinsicValue, 0))
			assert.False(t, math.IsNaN(res.IntrinsicValue))
			assert.GreaterOrEqual(t, res.IntrinsicValue, 0.0)
			if tt.wantTV {
				assert.Greater(t, res.TerminalValue, 0.0)
			} else {
				assert.Zero(t, res.TerminalValue)
			}
		})
	}
}

func TestCalculateDCFFloorsAtZero(t *testing.T) {
	res := CalculateDCF(-100, 0.10, 0.12, 0.04)
	assert.Zero(t, res.IntrinsicValue)

	res = CalculateDCF(math.NaN(), 0.10, 0.12, 0.04)
	assert.Zero(t, res.IntrinsicValue)
	assert.Empty(t, res.Projections)
}

func TestSensitivity(t *testing.T) {
	m := Sensitivity(100, nil, nil, 0.04)
	require.Len(t, m.Values, len(DefaultSensitivityWACC))
	require.Len(t, m.Values[0], len(DefaultSensitivityGrowth))

	assert.InDelta(t, CalculateDCF(100, 0.15, 0.10, 0.04).IntrinsicValue, m.Values[2][2], 1e-9)
	// higher WACC lowers value, higher growth raises it
	assert.Greater(t, m.Values[0][0], m.Values[4][0])
	assert.Greater(t, m.Values[0][4], m.Values[0][0])
}

func TestCalculateWACC(t *testing.T) {
	res := CalculateWACC(WACCInput{
		Beta:              1.0,
		RiskFreeRate:      0.06,
		MarketReturn:      0.12,
		PreTaxCostOfDebt:  0.10,
		TaxRate:           0.25,
		DebtToEquityRatio: 1.0,
	})
	assert.InDelta(t, 0.12, res.CostOfEquity, 1e-12)
	assert.InDelta(t, 0.075, res.CostOfDebt, 1e-12)
	assert.InDelta(t, 0.5, res.WeightDebt, 1e-12)
	assert.InDelta(t, 0.0975, res.WACC, 1e-12)
}

func TestStatementWACC(t *testing.T) {
	base := StatementWACC{
		Beta: 1, RiskFreeRate: 0.06, MarketReturn: 0.12, TaxRate: 0.25, MinDebt: 10, Fallback: 0.10,
	}

	t.Run("levered", func(t *testing.T) {
		s := base
		s.Equity, s.Debt, s.Interest = 100, 100, 10
		assert.InDelta(t, 0.0975, s.Estimate().WACC, 1e-12)
	})

	t.Run("small debt is unlevered", func(t *testing.T) {
		s := base
		s.Equity, s.Debt, s.Interest = 100, 5, 1
		res := s.Estimate()
		assert.InDelta(t, 0.12, res.WACC, 1e-12)
		assert.Zero(t, res.WeightDebt)
	})

	t.Run("no capital", func(t *testing.T) {
		s := base
		assert.Equal(t, 0.10, s.Estimate().WACC)
	})
}

func TestPerShareAndUpside(t *testing.T) {
	assert.Equal(t, 50.0, PerShare(500, 10))
	assert.True(t, math.IsNaN(PerShare(500, 0)))
	assert.InDelta(t, 25.0, Upside(125, 100), 1e-12)
	assert.True(t, math.IsNaN(Upside(125, 0)))
}

func TestBaseFCF(t *testing.T) {
	tbl := table.FromColumns(
		[]string{"2022-03-31", "2023-03-31"},
		[]string{extract.MetricNetProfit, extract.MetricCFO, extract.MetricCFI},
		map[string][]float64{
			extract.MetricNetProfit: {10, 15},
			extract.MetricCFO:       {20, table.Missing()},
			extract.MetricCFI:       {-5, -6},
		})

	v, period, src := BaseFCF(tbl, FCFNetProfit)
	assert.Equal(t, 15.0, v)
	assert.Equal(t, "2023-03-31", period)
	assert.Equal(t, FCFNetProfit, src)

	v, period, src = BaseFCF(tbl, FCFCashFlow)
	assert.Equal(t, 15.0, v)
	assert.Equal(t, "2022-03-31", period)
	assert.Equal(t, FCFCashFlow, src)

	v, _, src = BaseFCF(table.Empty(), FCFCashFlow)
	assert.Zero(t, v)
	assert.Equal(t, FCFNetProfit, src)
}

func TestParseFCFSource(t *testing.T) {
	s, err := ParseFCFSource("")
	require.NoError(t, err)
	assert.Equal(t, FCFNetProfit, s)

	s, err = ParseFCFSource("Cash_Flow")
	require.NoError(t, err)
	assert.Equal(t, FCFCashFlow, s)

	_, err = ParseFCFSource("ebitda")
	assert.Error(t, err)
}

func TestHistoricalMultiples(t *testing.T) {
	periods := []string{"2021-03-31", "2022-03-31", "2023-03-31", "2024-03-31"}
	price := []float64{100, 150, 200, 90}
	eps := []float64{10, 10, 10, -2}
	bv := []float64{50, 50, 100, math.NaN()}

	res := HistoricalMultiples(periods, price, eps, bv)

	pe, ok := res.Multiples.Column(PE)
	require.True(t, ok)
	assert.Equal(t, []float64{10, 15, 20}, pe[:3])
	assert.True(t, math.IsNaN(pe[3]), "negative EPS has no P/E")

	assert.Equal(t, [2]table.Num{10, 20}, res.PERange)
	assert.Equal(t, [2]table.Num{100, 200}, res.ImpliedPE)
	assert.Equal(t, [2]table.Num{2, 3}, res.PBRange)
	assert.Equal(t, [2]table.Num{200, 300}, res.ImpliedPB)
}

func TestHistoricalMultiplesWithoutPrices(t *testing.T) {
	res := HistoricalMultiples([]string{"2023-03-31"}, []float64{math.NaN()}, []float64{10}, []float64{50})
	assert.False(t, res.PERange[0].Valid())
	assert.False(t, res.ImpliedPE[1].Valid())
}
