package analysis

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"screener_valuation/pkg/core/calc"
	"screener_valuation/pkg/core/extract"
	"screener_valuation/pkg/core/grid"
	"screener_valuation/pkg/core/table"
	"screener_valuation/pkg/core/thesis"
	"screener_valuation/pkg/core/valuation"
)

// WACC sources.
const (
	WACCAssumed   = "assumed"
	WACCEstimated = "estimated"
)

// Engine turns a workbook into a Report. It holds no per-request state and is safe
// for concurrent use.
type Engine struct {
	Extractor   *extract.Extractor
	Assumptions Assumptions
	Logger      zerolog.Logger

	now func() time.Time
}

// NewEngine creates an engine. A nil extractor uses the defaults.
func NewEngine(ex *extract.Extractor, a Assumptions, logger zerolog.Logger) *Engine {
	if ex == nil {
		ex = extract.New()
	}
	return &Engine{
		Extractor:   ex,
		Assumptions: a,
		Logger:      logger.With().Str("module", "analysis").Logger(),
		now:         time.Now,
	}
}

// AnalyzeWorkbook loads, extracts and analyses one upload with the engine's assumptions.
func (e *Engine) AnalyzeWorkbook(ctx context.Context, r io.Reader, filename string) (*Report, error) {
	return e.AnalyzeWorkbookWith(ctx, r, filename, e.Assumptions)
}

// AnalyzeWorkbookWith is AnalyzeWorkbook with request-specific assumptions.
// Unreadable input is reported as a *extract.StructuralError.
func (e *Engine) AnalyzeWorkbookWith(ctx context.Context, r io.Reader, filename string, a Assumptions) (*Report, error) {
	g, err := grid.Load(r, filename)
	if err != nil {
		return nil, extract.NewStructuralError("unreadable workbook", err)
	}
	rep, err := e.AnalyzeGrid(ctx, g, a)
	if err != nil {
		return nil, err
	}
	rep.Source = filename
	return rep, nil
}

// AnalyzeGrid extracts and analyses an already loaded grid.
func (e *Engine) AnalyzeGrid(ctx context.Context, g *grid.Grid, a Assumptions) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := e.Extractor.Extract(g)
	if err != nil {
		return nil, err
	}
	return e.Analyze(ctx, res, a)
}

// Analyze computes every metric block, the valuation and the verdict from an
// extraction result.
func (e *Engine) Analyze(ctx context.Context, res *extract.Result, a Assumptions) (*Report, error) {
	if res == nil || res.Table == nil {
		return nil, fmt.Errorf("extraction result is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := time.Now
	if e.now != nil {
		now = e.now
	}

	t := res.Table
	rep := &Report{
		ID:          uuid.NewString(),
		Company:     res.Metadata.CompanyName,
		CreatedAt:   now().UTC(),
		Assumptions: a,
		Metadata:    res.Metadata,
		Sections:    res.Sections,
		Coercion:    res.Coercion,
		Financials:  t,
		Quarterly:   res.Quarterly,
		Warnings:    append([]extract.Warning(nil), res.Warnings...),
	}

	// 1. Ratio blocks
	rep.Profitability = calc.Profitability(t)
	rep.Solvency = calc.Solvency(t)
	rep.Efficiency = calc.Efficiency(t)
	rep.Growth = calc.Growth(t)
	rep.GrowthSummary = calc.GrowthSummary(t)
	rep.Dilution = calc.Dilution(t, calc.DilutionOptions{
		UnitScale:      a.UnitScale,
		FallbackShares: res.Metadata.TotalShares,
	})
	rep.Risk = calc.Risk(t, res.Metadata.MarketCap)
	rep.CommonSize = calc.CommonSize(t)
	rep.DuPont = calc.DuPont(t)
	rep.Integrity = calc.Integrity(t)
	rep.Benford = calc.Benford(t)
	rep.Beneish = calc.BeneishMScore(t)
	rep.Warnings = append(rep.Warnings, integrityWarnings(rep)...)

	// 2. Cost of capital, then EVA at that rate
	wacc, source := e.costOfCapital(t, a)
	rep.EVA = calc.EVA(t, calc.EVAOptions{WACC: wacc.WACC, TaxRate: a.TaxRate, HistoricalTax: a.HistoricalTax})

	// 3. DCF
	val, warns := e.valuation(t, res.Metadata, a, wacc, source)
	rep.Valuation = val
	rep.Warnings = append(rep.Warnings, warns...)
	if prices, ok := t.Column(extract.MetricPrice); ok {
		eps, _ := rep.Dilution.Column(calc.EPS)
		bv, _ := rep.Dilution.Column(calc.BookValue)
		m := valuation.HistoricalMultiples(t.Periods(), prices, eps, bv)
		rep.Valuation.Multiples = &m
	}

	// 4. Headline and verdict
	rep.Headline = headline(rep)
	rep.Verdict = thesis.Evaluate(thesis.Input{
		IntrinsicPerShare: float64(val.IntrinsicPerShare),
		Price:             float64(val.Price),
		ROE:               latest(rep.Profitability, calc.ROE),
		DebtToEquity:      latest(rep.Solvency, calc.DebtToEquity),
	})

	e.Logger.Info().
		Str("id", rep.ID).
		Str("company", rep.Company).
		Int("periods", t.Len()).
		Int("warnings", len(rep.Warnings)).
		Int("score", rep.Verdict.Score).
		Msg("analysis complete")
	return rep, nil
}

func (e *Engine) costOfCapital(t *table.Table, a Assumptions) (valuation.WACCResult, string) {
	if a.WACC > 0 {
		return valuation.WACCResult{WACC: a.WACC, CostOfEquity: a.WACC, WeightEquity: 1}, WACCAssumed
	}
	est := valuation.StatementWACC{
		Equity:       latest(t, extract.MetricEquityCapital) + latestOrZero(t, extract.MetricReserves),
		Debt:         latestOrZero(t, extract.MetricBorrowings),
		Interest:     latestOrZero(t, extract.MetricInterest),
		TaxRate:      a.TaxRate,
		Beta:         a.Beta,
		RiskFreeRate: a.RiskFreeRate,
		MarketReturn: a.MarketReturn,
		MinDebt:      a.MinDebt,
		Fallback:     a.FallbackWACC,
	}
	return est.Estimate(), WACCEstimated
}

func (e *Engine) valuation(t *table.Table, md extract.Metadata, a Assumptions, wacc valuation.WACCResult, waccSource string) (Valuation, []extract.Warning) {
	var warns []extract.Warning

	source, err := valuation.ParseFCFSource(a.FCFSource)
	if err != nil {
		source = valuation.FCFNetProfit
	}
	fcf, period, used := valuation.BaseFCF(t, source)
	if fcf < 0 {
		warns = append(warns, extract.Warning{
			Code:    WarnNegativeFCF,
			Section: period,
			Message: fmt.Sprintf("base free cash flow is negative (%.2f); intrinsic value floors at zero", fcf),
		})
	}

	dcf := valuation.CalculateDCF(fcf, a.Growth, wacc.WACC, a.TerminalGrowth)

	price := md.CurrentPrice
	if price <= 0 {
		if p, _, ok := t.Latest(extract.MetricPrice); ok && p > 0 {
			price = p
		}
	}

	perShare := math.NaN()
	switch {
	case md.MarketCap > 0 && price > 0:
		// market cap shares the statement unit, so cap/price is the share count in that unit
		perShare = valuation.PerShare(dcf.IntrinsicValue, md.MarketCap/price)
	case md.TotalShares > 0:
		perShare = valuation.PerShare(dcf.IntrinsicValue*a.UnitScale, md.TotalShares)
	default:
		if n, _, ok := t.Latest(extract.MetricShares); ok && n > 0 {
			perShare = valuation.PerShare(dcf.IntrinsicValue*a.UnitScale, n)
		} else {
			warns = append(warns, extract.Warning{
				Code:    WarnSharesUnavailable,
				Section: extract.SectionMetadata,
				Message: "no market cap, share count or price to convert intrinsic value per share",
			})
		}
	}
	if price <= 0 {
		warns = append(warns, extract.Warning{
			Code:    WarnPriceUnavailable,
			Section: extract.SectionMetadata,
			Message: "current price unavailable; upside not computed",
		})
	}

	return Valuation{
		FCFSource:         used,
		BasePeriod:        period,
		BaseFCF:           fcf,
		WACCSource:        waccSource,
		WACC:              wacc,
		DCF:               dcf,
		IntrinsicPerShare: table.Num(perShare),
		Price:             priceNum(price),
		Upside:            table.Num(valuation.Upside(perShare, price)),
		Sensitivity:       valuation.Sensitivity(fcf, a.SensitivityGrowth, a.SensitivityWACC, a.TerminalGrowth),
	}, warns
}

func integrityWarnings(r *Report) []extract.Warning {
	var warns []extract.Warning
	integrity, b := r.Integrity, r.Benford
	checks := []struct {
		column, code, section, what string
	}{
		{calc.BalanceGap, WarnBalanceMismatch, extract.SectionBalanceSheet, "total assets differ from the liability side"},
		{calc.CashFlowGap, WarnCashFlowMismatch, extract.SectionCashFlow, "net cash flow differs from the sum of activities"},
	}
	for _, c := range checks {
		gaps := calc.Mismatches(integrity, c.column)
		for _, p := range integrity.Periods() {
			if gap, ok := gaps[p]; ok {
				warns = append(warns, extract.Warning{
					Code:    c.code,
					Section: c.section,
					Message: fmt.Sprintf("%s: %s by %.2f", p, c.what, gap),
				})
			}
		}
	}
	if b.Flagged {
		warns = append(warns, extract.Warning{
			Code:    WarnBenford,
			Message: fmt.Sprintf("leading digits of %d amounts deviate from Benford's law (MAD %.4f)", b.Sample, float64(b.MAD)),
		})
	}
	if m, period, ok := r.Beneish.Latest(calc.MScore); ok && m > calc.MScoreThreshold {
		warns = append(warns, extract.Warning{
			Code:    WarnBeneish,
			Section: period,
			Message: fmt.Sprintf("Beneish M-Score %.2f is above %.2f", m, calc.MScoreThreshold),
		})
	}
	return warns
}

func headline(r *Report) Headline {
	h := Headline{
		NetMargin:    table.Num(latest(r.Profitability, calc.NetMargin)),
		ROE:          table.Num(latest(r.Profitability, calc.ROE)),
		ROCE:         table.Num(latest(r.Profitability, calc.ROCE)),
		DebtToEquity: table.Num(latest(r.Solvency, calc.DebtToEquity)),
		EPS:          table.Num(latest(r.Dilution, calc.EPS)),
		SalesCAGR5:   table.NaN(),
	}
	sales, period, _ := r.Financials.Latest(extract.MetricSales)
	h.Sales = table.Num(sales)
	h.Period = period
	h.NetProfit = table.Num(latest(r.Financials, extract.MetricNetProfit))
	for _, row := range r.GrowthSummary {
		if row.Metric == extract.MetricSales {
			h.SalesCAGR5 = row.Rates[5]
		}
	}
	return h
}

func latest(t *table.Table, name string) float64 {
	v, _, _ := t.Latest(name)
	return v
}

func latestOrZero(t *table.Table, name string) float64 {
	v, _, ok := t.Latest(name)
	if !ok {
		return 0
	}
	return v
}

func priceNum(p float64) table.Num {
	if p <= 0 {
		return table.NaN()
	}
	return table.Num(p)
}
