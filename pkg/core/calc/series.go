// Package calc is the metric engine: pure functions from the unified table to
// per-topic ratio tables keyed by the same periods.
//
// Conventions shared by every function:
//   - a wholly absent column reads as zeros (column), a present column keeps its
//     Missing cells, so Missing propagates as NaN while absent data still computes
//   - every division goes through safeDiv, which yields NaN for a zero or NaN
//     denominator instead of ±Inf
package calc

import (
	"math"

	"screener_valuation/pkg/core/table"
)

// column returns the named column, or zeros when the table has no such column.
func column(t *table.Table, name string) []float64 {
	if col, ok := t.Column(name); ok {
		return col
	}
	return make([]float64, t.Len())
}

// safeDiv returns a/b, or NaN when b is zero or undefined.
func safeDiv(a, b float64) float64 {
	if b == 0 || math.IsNaN(b) || math.IsNaN(a) {
		return math.NaN()
	}
	r := a / b
	if math.IsInf(r, 0) {
		return math.NaN()
	}
	return r
}

func divide(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = safeDiv(a[i], at(b, i))
	}
	return out
}

func add(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + at(b, i)
	}
	return out
}

func sub(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - at(b, i)
	}
	return out
}

func scale(a []float64, k float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] * k
	}
	return out
}

func mul(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] * at(b, i)
	}
	return out
}

func at(s []float64, i int) float64 {
	if i < 0 || i >= len(s) {
		return math.NaN()
	}
	return s[i]
}

// pctChange is the period-over-period change in percent. The first period is NaN;
// the base is taken in absolute value so a recovery from a loss reads as growth.
func pctChange(s []float64) []float64 {
	out := make([]float64, len(s))
	for i := range s {
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = safeDiv(s[i]-s[i-1], math.Abs(s[i-1])) * 100
	}
	return out
}

// last returns the final element of s, or NaN for an empty series.
func last(s []float64) float64 {
	if len(s) == 0 {
		return math.NaN()
	}
	return s[len(s)-1]
}

// stddev is the sample standard deviation over the defined values of s.
func stddev(s []float64) float64 {
	var vals []float64
	for _, v := range s {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			vals = append(vals, v)
		}
	}
	if len(vals) < 2 {
		return math.NaN()
	}
	var mean float64
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))
	var ss float64
	for _, v := range vals {
		ss += (v - mean) * (v - mean)
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
