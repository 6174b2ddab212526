package valuation

// Default sensitivity grid axes.
var (
	DefaultSensitivityWACC   = []float64{0.08, 0.09, 0.10, 0.11, 0.12}
	DefaultSensitivityGrowth = []float64{0.10, 0.12, 0.15, 0.18, 0.20}
)

// SensitivityMatrix is intrinsic value over a WACC x growth grid.
// Values[i][j] is the value at WACC[i] and Growth[j].
type SensitivityMatrix struct {
	WACC           []float64   `json:"wacc"`
	Growth         []float64   `json:"growth"`
	TerminalGrowth float64     `json:"terminal_growth"`
	Values         [][]float64 `json:"values"`
}

// Sensitivity evaluates CalculateDCF at every grid point. Empty axes fall back to
// the defaults.
func Sensitivity(fcf float64, growths, waccs []float64, terminalGrowth float64) SensitivityMatrix {
	if len(growths) == 0 {
		growths = DefaultSensitivityGrowth
	}
	if len(waccs) == 0 {
		waccs = DefaultSensitivityWACC
	}

	m := SensitivityMatrix{
		WACC:           append([]float64(nil), waccs...),
		Growth:         append([]float64(nil), growths...),
		TerminalGrowth: terminalGrowth,
		Values:         make([][]float64, len(waccs)),
	}
	for i, w := range waccs {
		m.Values[i] = make([]float64, len(growths))
		for j, g := range growths {
			m.Values[i][j] = CalculateDCF(fcf, g, w, terminalGrowth).IntrinsicValue
		}
	}
	return m
}
