package analysis

import (
	"time"

	"screener_valuation/pkg/core/calc"
	"screener_valuation/pkg/core/extract"
	"screener_valuation/pkg/core/table"
	"screener_valuation/pkg/core/thesis"
	"screener_valuation/pkg/core/valuation"
)

// Analysis warning codes, reported alongside the extraction warnings.
const (
	WarnPriceUnavailable  = "price_unavailable"
	WarnSharesUnavailable = "shares_unavailable"
	WarnNegativeFCF       = "negative_fcf"
	WarnBalanceMismatch   = "balance_mismatch"
	WarnCashFlowMismatch  = "cashflow_mismatch"
	WarnBenford           = "benford_nonconforming"
	WarnBeneish           = "beneish_flag"
)

// Assumptions are the valuation inputs that do not come from the workbook.
type Assumptions struct {
	// Growth is the explicit-stage FCF growth rate.
	Growth         float64 `json:"growth" yaml:"growth" validate:"gte=-0.5,lte=1"`
	TerminalGrowth float64 `json:"terminal_growth" yaml:"terminal_growth" validate:"gte=0,lte=0.2"`
	// WACC overrides the statement estimate when positive.
	WACC          float64 `json:"wacc" yaml:"wacc" validate:"gte=0,lte=1"`
	FallbackWACC  float64 `json:"fallback_wacc" yaml:"fallback_wacc" validate:"gt=0,lte=1"`
	TaxRate       float64 `json:"tax_rate" yaml:"tax_rate" validate:"gte=0,lte=0.6"`
	HistoricalTax bool    `json:"historical_tax" yaml:"historical_tax"`
	RiskFreeRate  float64 `json:"risk_free_rate" yaml:"risk_free_rate" validate:"gte=0,lte=0.5"`
	MarketReturn  float64 `json:"market_return" yaml:"market_return" validate:"gte=0,lte=1"`
	Beta          float64 `json:"beta" yaml:"beta" validate:"gte=0,lte=5"`
	// MinDebt is the borrowing level (statement units) below which a company is unlevered.
	MinDebt float64 `json:"min_debt" yaml:"min_debt" validate:"gte=0"`
	// UnitScale converts statement units to currency (1e7 for crore).
	UnitScale         float64   `json:"unit_scale" yaml:"unit_scale" validate:"gt=0"`
	FCFSource         string    `json:"fcf_source" yaml:"fcf_source" validate:"omitempty,oneof=net_profit cash_flow"`
	SensitivityWACC   []float64 `json:"sensitivity_wacc,omitempty" yaml:"sensitivity_wacc" validate:"dive,gt=0,lte=1"`
	SensitivityGrowth []float64 `json:"sensitivity_growth,omitempty" yaml:"sensitivity_growth" validate:"dive,gte=-0.5,lte=1"`
}

// DefaultAssumptions returns the standard Indian large-cap inputs.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		Growth:         0.15,
		TerminalGrowth: 0.04,
		FallbackWACC:   0.12,
		TaxRate:        0.25,
		RiskFreeRate:   0.06,
		MarketReturn:   0.12,
		Beta:           1.0,
		MinDebt:        10,
		UnitScale:      1e7,
		FCFSource:      string(valuation.FCFNetProfit),
	}
}

// Headline is the latest-period snapshot shown at the top of a report.
type Headline struct {
	Period       string    `json:"period"`
	Sales        table.Num `json:"sales"`
	NetProfit    table.Num `json:"net_profit"`
	NetMargin    table.Num `json:"net_margin_pct"`
	ROE          table.Num `json:"roe_pct"`
	ROCE         table.Num `json:"roce_pct"`
	DebtToEquity table.Num `json:"debt_to_equity"`
	EPS          table.Num `json:"eps"`
	SalesCAGR5   table.Num `json:"sales_cagr_5y_pct"`
}

// Valuation is the DCF block of a report.
type Valuation struct {
	FCFSource         valuation.FCFSource         `json:"fcf_source"`
	BasePeriod        string                      `json:"base_period"`
	BaseFCF           float64                     `json:"base_fcf"`
	WACCSource        string                      `json:"wacc_source"`
	WACC              valuation.WACCResult        `json:"wacc"`
	DCF               valuation.DCFResult         `json:"dcf"`
	IntrinsicPerShare table.Num                   `json:"intrinsic_per_share"`
	Price             table.Num                   `json:"price"`
	Upside            table.Num                   `json:"upside_pct"`
	Sensitivity       valuation.SensitivityMatrix `json:"sensitivity"`
	// Multiples is present when the workbook carries year-end prices.
	Multiples *valuation.MultiplesResult `json:"multiples,omitempty"`
}

// Report is the full analysis of one workbook.
type Report struct {
	ID            string                `json:"id"`
	Company       string                `json:"company"`
	Source        string                `json:"source,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	Assumptions   Assumptions           `json:"assumptions"`
	Metadata      extract.Metadata      `json:"metadata"`
	Sections      []extract.SectionInfo `json:"sections"`
	Coercion      extract.CoercionStats `json:"coercion"`
	Financials    *table.Table          `json:"financials"`
	Quarterly     *table.Table          `json:"quarterly"`
	Profitability *table.Table          `json:"profitability"`
	Solvency      *table.Table          `json:"solvency"`
	Efficiency    *table.Table          `json:"efficiency"`
	Growth        *table.Table          `json:"growth"`
	GrowthSummary []calc.CAGRRow        `json:"growth_summary"`
	Dilution      *table.Table          `json:"dilution"`
	EVA           *table.Table          `json:"eva"`
	CommonSize    *table.Table          `json:"common_size"`
	DuPont        *table.Table          `json:"dupont"`
	Risk          calc.RiskSummary      `json:"risk"`
	Integrity     *table.Table          `json:"integrity"`
	Benford       calc.BenfordResult    `json:"benford"`
	Beneish       *table.Table          `json:"beneish"`
	Headline      Headline              `json:"headline"`
	Valuation     Valuation             `json:"valuation"`
	Verdict       thesis.Verdict        `json:"verdict"`
	Warnings      []extract.Warning     `json:"warnings"`
}

// Summary is the listing view of a stored report.
type Summary struct {
	ID        string    `json:"id"`
	Company   string    `json:"company"`
	Grade     string    `json:"grade"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// Summarize returns the listing view of r.
func (r *Report) Summarize() Summary {
	return Summary{ID: r.ID, Company: r.Company, Grade: r.Verdict.Grade, Score: r.Verdict.Score, CreatedAt: r.CreatedAt}
}
