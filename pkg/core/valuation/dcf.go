package valuation

import (
	"math"
)

// ExplicitYears is the length of the explicit forecast stage.
const ExplicitYears = 5

// TerminalGrowthCushion is how far below WACC a capped terminal growth is set.
const TerminalGrowthCushion = 0.02

// DCFInput encapsulates the inputs of a two-stage DCF valuation.
type DCFInput struct {
	FCF            float64 // base-year free cash flow
	Growth         float64 // explicit-stage growth, e.g. 0.15
	WACC           float64 // discount rate, e.g. 0.12
	TerminalGrowth float64 // perpetual growth, e.g. 0.04
}

// Projection is one explicit-stage year.
type Projection struct {
	Year           int     `json:"year"`
	FCF            float64 `json:"fcf"`
	DiscountFactor float64 `json:"discount_factor"`
	PresentValue   float64 `json:"present_value"`
}

// DCFResult holds the valuation outputs. IntrinsicValue is never negative and never
// infinite.
type DCFResult struct {
	Input                DCFInput     `json:"input"`
	Projections          []Projection `json:"projections"`
	PVExplicit           float64      `json:"pv_explicit"`
	TerminalValue        float64      `json:"terminal_value"`
	PVTerminal           float64      `json:"pv_terminal"`
	IntrinsicValue       float64      `json:"intrinsic_value"`
	TerminalGrowthUsed   float64      `json:"terminal_growth_used"`
	TerminalGrowthCapped bool         `json:"terminal_growth_capped"`
}

// CalculateDCF performs a standard 2-stage DCF analysis:
// five years at Growth, then a Gordon growth terminal value.
//
// Terminal growth must stay strictly below WACC. When it does not, it is capped at
// max(0, WACC-2%); if even the capped rate is not below WACC the terminal value is 0.
func CalculateDCF(fcf, growth, wacc, terminalGrowth float64) DCFResult {
	return Calculate(DCFInput{FCF: fcf, Growth: growth, WACC: wacc, TerminalGrowth: terminalGrowth})
}

// Calculate is CalculateDCF over a DCFInput.
func Calculate(input DCFInput) DCFResult {
	res := DCFResult{Input: input, TerminalGrowthUsed: input.TerminalGrowth}

	if !finite(input.FCF) || !finite(input.Growth) || !finite(input.WACC) || !finite(input.TerminalGrowth) || input.WACC <= -1 {
		return res
	}

	// 1. Denominator guard
	tg := input.TerminalGrowth
	if input.WACC <= tg {
		tg = math.Max(0, input.WACC-TerminalGrowthCushion)
		res.TerminalGrowthCapped = true
	}
	res.TerminalGrowthUsed = tg

	// 2. Explicit stage
	current := input.FCF
	discount := 1.0
	for year := 1; year <= ExplicitYears; year++ {
		current *= 1 + input.Growth
		discount /= 1 + input.WACC
		pv := current * discount
		res.Projections = append(res.Projections, Projection{
			Year:           year,
			FCF:            current,
			DiscountFactor: discount,
			PresentValue:   pv,
		})
		res.PVExplicit += pv
	}

	// 3. Terminal value (Gordon growth)
	if input.WACC > tg {
		res.TerminalValue = current * (1 + tg) / (input.WACC - tg)
		res.PVTerminal = res.TerminalValue * discount
	}

	// 4. Total, floored at zero
	iv := res.PVExplicit + res.PVTerminal
	if !finite(iv) || iv < 0 {
		iv = 0
	}
	res.IntrinsicValue = iv
	return res
}

// PerShare converts a total value to a per-share value. shares must be in the same
// unit as value (e.g. both in crore). Returns NaN when shares is not positive.
func PerShare(value, shares float64) float64 {
	if shares <= 0 || !finite(shares) {
		return math.NaN()
	}
	return value / shares
}

// Upside is the percentage by which intrinsic exceeds price; NaN without a price.
func Upside(intrinsic, price float64) float64 {
	if price <= 0 || !finite(price) || !finite(intrinsic) {
		return math.NaN()
	}
	return (intrinsic/price - 1) * 100
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
