package valuation

import (
	"math"
)

// WACCInput parameters for calculating Cost of Capital
type WACCInput struct {
	Beta              float64 // levered beta
	RiskFreeRate      float64
	MarketReturn      float64
	PreTaxCostOfDebt  float64
	TaxRate           float64
	DebtToEquityRatio float64
}

// WACCResult holds the calculated rates
type WACCResult struct {
	CostOfEquity float64 `json:"cost_of_equity"`
	CostOfDebt   float64 `json:"cost_of_debt"` // after tax
	WACC         float64 `json:"wacc"`
	WeightDebt   float64 `json:"weight_debt"`
	WeightEquity float64 `json:"weight_equity"`
}

// CalculateWACC computes the Weighted Average Cost of Capital using CAPM.
func CalculateWACC(input WACCInput) WACCResult {
	// 1. Cost of Equity (CAPM)
	// Ke = Rf + Beta * (Rm - Rf)
	ke := input.RiskFreeRate + input.Beta*(input.MarketReturn-input.RiskFreeRate)

	// 2. Cost of Debt (After-tax)
	kd := input.PreTaxCostOfDebt * (1 - input.TaxRate)

	// 3. Weights from D/E: Wd = x/(1+x), We = 1/(1+x)
	de := math.Max(0, input.DebtToEquityRatio)
	wd := de / (1 + de)
	we := 1.0 / (1 + de)

	return WACCResult{
		CostOfEquity: ke,
		CostOfDebt:   kd,
		WACC:         ke*we + kd*wd,
		WeightDebt:   wd,
		WeightEquity: we,
	}
}

// StatementWACC estimates WACC from the latest balance sheet.
type StatementWACC struct {
	Equity       float64
	Debt         float64
	Interest     float64
	TaxRate      float64
	Beta         float64
	RiskFreeRate float64
	MarketReturn float64
	// MinDebt treats smaller borrowings as zero (unlevered).
	MinDebt float64
	// Fallback is returned when capital is not positive.
	Fallback float64
}

// Estimate derives D/E and the pre-tax cost of debt (Interest / Debt, or 80% of the
// risk-free rate for an unlevered company) and runs CalculateWACC.
func (s StatementWACC) Estimate() WACCResult {
	debt := s.Debt
	if math.IsNaN(debt) || debt < s.MinDebt {
		debt = 0
	}
	if math.IsNaN(s.Equity) || s.Equity+debt <= 0 {
		return WACCResult{WACC: s.Fallback, CostOfEquity: s.Fallback, WeightEquity: 1}
	}

	kd := s.RiskFreeRate * 0.8
	if debt > 0 && s.Interest > 0 {
		kd = s.Interest / debt
	}

	if s.Equity <= 0 {
		// all-debt capital structure
		return WACCResult{CostOfDebt: kd * (1 - s.TaxRate), WACC: kd * (1 - s.TaxRate), WeightDebt: 1}
	}

	return CalculateWACC(WACCInput{
		Beta:              s.Beta,
		RiskFreeRate:      s.RiskFreeRate,
		MarketReturn:      s.MarketReturn,
		PreTaxCostOfDebt:  kd,
		TaxRate:           s.TaxRate,
		DebtToEquityRatio: debt / s.Equity,
	})
}
