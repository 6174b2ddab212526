package extract

import (
	"strings"

	"screener_valuation/pkg/core/grid"
)

// DefaultRowBudget bounds how many rows are scanned below a period header.
const DefaultRowBudget = 40

// Row is one metric line of a section: its source label and one value per period.
type Row struct {
	Label  string
	Values []float64
}

// StopReason records why a row scan ended.
type StopReason int

const (
	StopBudget StopReason = iota
	StopBlankLabel
	StopBoundary
	StopEndOfGrid
)

func (s StopReason) String() string {
	switch s {
	case StopBlankLabel:
		return "blank label"
	case StopBoundary:
		return "section boundary"
	case StopEndOfGrid:
		return "end of grid"
	default:
		return "row budget"
	}
}

// RowStats summarises a row scan for diagnostics.
type RowStats struct {
	Cells      int
	Missing    int
	Unparsable int
	Stop       StopReason
	StopRow    int
}

// ReadSectionRows reads up to rowBudget rows starting at headerRow+1, taking
// periodCount value cells from column 1 onward. The scan ends at a blank label or a
// label containing a boundary keyword. Absent cells are Missing, never zero.
func ReadSectionRows(g *grid.Grid, headerRow, periodCount, rowBudget int, boundary KeywordSet) ([]Row, RowStats) {
	cols := make([]int, periodCount)
	for i := range cols {
		cols[i] = i + 1
	}
	return readRowsAt(g, headerRow, cols, rowBudget, boundary)
}

func readRowsAt(g *grid.Grid, headerRow int, cols []int, rowBudget int, boundary KeywordSet) ([]Row, RowStats) {
	if rowBudget <= 0 {
		rowBudget = DefaultRowBudget
	}

	var rows []Row
	stats := RowStats{Stop: StopBudget}
	for r := headerRow + 1; r <= headerRow+rowBudget; r++ {
		stats.StopRow = r
		if r >= g.Rows() {
			stats.Stop = StopEndOfGrid
			break
		}
		label := strings.TrimSpace(g.At(r, 0).Text())
		if label == "" || strings.EqualFold(label, "nan") {
			stats.Stop = StopBlankLabel
			break
		}
		if boundary.Matches(label) {
			stats.Stop = StopBoundary
			break
		}

		values := make([]float64, len(cols))
		for i, c := range cols {
			v, status := Coerce(g.At(r, c))
			values[i] = v
			stats.Cells++
			switch status {
			case Empty:
				stats.Missing++
			case Unparsable:
				stats.Missing++
				stats.Unparsable++
			}
		}
		rows = append(rows, Row{Label: label, Values: values})
	}
	return rows, stats
}
