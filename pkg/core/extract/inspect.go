package extract

import (
	"screener_valuation/pkg/core/grid"
)

// LabeledRow is one column-0 label with the cells to its right.
type LabeledRow struct {
	Row    int      `json:"row"`
	Label  string   `json:"label"`
	Values []string `json:"values,omitempty"`
}

// Inspection is a structural map of a worksheet, for diagnosing exports that do not
// extract cleanly.
type Inspection struct {
	Rows     int          `json:"rows"`
	Width    int          `json:"width"`
	Company  string       `json:"company"`
	Markers  []LabeledRow `json:"markers"`
	Metadata []LabeledRow `json:"metadata"`
	Periods  []string     `json:"periods"`
}

var inspectMarkers = Union(ProfitLossKeywords, QuartersKeywords, BalanceSheetKeywords, CashFlowKeywords, trailerKeywords)

var metadataKeywords = Union(marketCapKeywords, priceKeywords, sharesKeywords, faceValueKeywords)

// Inspect lists every section marker row, the metadata label rows and the P&L
// period header, without building a table.
func Inspect(g *grid.Grid, window int) Inspection {
	if window <= 0 {
		window = DefaultMetadataWindow
	}
	ins := Inspection{Rows: g.Rows(), Width: g.Width(), Company: companyName(g)}

	for r := 0; r < g.Rows(); r++ {
		label := g.At(r, 0).Text()
		switch {
		case inspectMarkers.Matches(label):
			ins.Markers = append(ins.Markers, LabeledRow{Row: r, Label: label})
		case metadataKeywords.Matches(label):
			lr := LabeledRow{Row: r, Label: label}
			for c := 1; c <= window; c++ {
				lr.Values = append(lr.Values, g.At(r, c).Text())
			}
			ins.Metadata = append(ins.Metadata, lr)
		}
	}

	if row, ok := LocateSection(g, ProfitLossKeywords); ok {
		ins.Periods = ReadPeriodHeader(g, row)
	}
	return ins
}
