// Package thesis scores a company against three investment rules.
package thesis

import (
	"fmt"
	"math"
)

// Grades.
const (
	GradeInvestable = "INVESTABLE GRADE"
	GradeAvoid      = "AVOID / MONITOR"
)

// Rule thresholds.
const (
	MinROE          = 15.0 // percent
	MaxDebtToEquity = 1.0
	PassScore       = 2
)

// Input is everything the scorecard looks at. NaN means unknown and fails the rule.
type Input struct {
	IntrinsicPerShare float64 // DCF value per share
	Price             float64 // current market price
	ROE               float64 // latest ROE in percent
	DebtToEquity      float64 // latest D/E
}

// Check is the outcome of one rule.
type Check struct {
	Rule   string `json:"rule"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Verdict is the scorecard result.
type Verdict struct {
	Score   int      `json:"score"`
	Max     int      `json:"max"`
	Grade   string   `json:"grade"`
	Checks  []Check  `json:"checks"`
	Reasons []string `json:"reasons"`
}

// Evaluate applies the three rules:
//  1. DCF value per share above the current price
//  2. ROE above 15%
//  3. Debt to equity below 1
//
// A score of 2 or more is investable.
func Evaluate(in Input) Verdict {
	checks := []Check{valueCheck(in), roeCheck(in.ROE), leverageCheck(in.DebtToEquity)}

	v := Verdict{Max: len(checks), Checks: checks}
	for _, c := range checks {
		if c.Passed {
			v.Score++
			v.Reasons = append(v.Reasons, c.Detail)
		}
	}
	v.Grade = GradeAvoid
	if v.Score >= PassScore {
		v.Grade = GradeInvestable
	}
	return v
}

func valueCheck(in Input) Check {
	c := Check{Rule: "undervalued"}
	switch {
	case !known(in.Price) || in.Price <= 0:
		c.Detail = "no market price to compare against"
	case !known(in.IntrinsicPerShare):
		c.Detail = "intrinsic value per share unavailable"
	case in.IntrinsicPerShare > in.Price:
		c.Passed = true
		upside := (in.IntrinsicPerShare/in.Price - 1) * 100
		c.Detail = fmt.Sprintf("Undervalued (Upside: %.1f%%)", upside)
	default:
		c.Detail = fmt.Sprintf("Trades above intrinsic value (%.2f vs %.2f)", in.Price, in.IntrinsicPerShare)
	}
	return c
}

func roeCheck(roe float64) Check {
	c := Check{Rule: "high_roe"}
	switch {
	case !known(roe):
		c.Detail = "ROE unavailable"
	case roe > MinROE:
		c.Passed = true
		c.Detail = fmt.Sprintf("High ROE (%.1f%%)", roe)
	default:
		c.Detail = fmt.Sprintf("ROE below %.0f%% (%.1f%%)", MinROE, roe)
	}
	return c
}

func leverageCheck(de float64) Check {
	c := Check{Rule: "low_debt"}
	switch {
	case !known(de):
		c.Detail = "debt to equity unavailable"
	case de < MaxDebtToEquity:
		c.Passed = true
		c.Detail = fmt.Sprintf("Low Debt (D/E: %.2f)", de)
	default:
		c.Detail = fmt.Sprintf("Leveraged (D/E: %.2f)", de)
	}
	return c
}

func known(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
