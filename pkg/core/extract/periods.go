package extract

import (
	"math"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"screener_valuation/pkg/core/grid"
)

// PeriodLayout is the canonical period key format.
const PeriodLayout = "2006-01-02"

// Serial numbers accepted as Excel dates: 1910-01-01 through 2099-12-31.
// Numbers outside the range (fiscal years such as 2023, amounts) are not dates.
const (
	minExcelSerial = 3653
	maxExcelSerial = 73050
)

type dateLayout struct {
	layout    string
	monthOnly bool
}

var dateLayouts = []dateLayout{
	{"2006-01-02", false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02T15:04:05", false},
	{time.RFC3339, false},
	{"02-01-2006", false},
	{"2-1-2006", false},
	{"02/01/2006", false},
	{"2/1/2006", false},
	{"02.01.2006", false},
	{"02-Jan-2006", false},
	{"2-Jan-2006", false},
	{"02 Jan 2006", false},
	{"2 Jan 2006", false},
	{"Jan 2, 2006", false},
	{"2006/01/02", false},
	{"Jan 2006", true},
	{"January 2006", true},
	{"Jan-2006", true},
	{"Jan-06", true},
	{"Jan 06", true},
	{"Jan'06", true},
	{"2006-01", true},
}

// ParsePeriod interprets a header cell as a calendar date.
func ParsePeriod(c grid.Cell) (time.Time, bool) {
	switch c.Kind {
	case grid.KindDate:
		return dateOnly(c.Time), true
	case grid.KindNumber:
		return fromSerial(c.Num)
	case grid.KindString:
		return parseDateText(c.Str)
	default:
		return time.Time{}, false
	}
}

// NormalizePeriod returns the canonical key for a header cell, or "" and false.
func NormalizePeriod(c grid.Cell) (string, bool) {
	t, ok := ParsePeriod(c)
	if !ok {
		return "", false
	}
	return t.Format(PeriodLayout), true
}

func fromSerial(v float64) (time.Time, bool) {
	if math.IsNaN(v) || v < minExcelSerial || v > maxExcelSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(v, false)
	if err != nil {
		return time.Time{}, false
	}
	return dateOnly(t), true
}

func parseDateText(raw string) (time.Time, bool) {
	s := strings.Join(strings.Fields(raw), " ")
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		t, err := time.Parse(l.layout, s)
		if err != nil {
			continue
		}
		if l.monthOnly {
			t = monthEnd(t)
		}
		return dateOnly(t), true
	}
	return time.Time{}, false
}

func monthEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ReadPeriodHeader parses the row immediately after sectionRow, from column 1 on.
// Cells that are not dates are dropped.
func ReadPeriodHeader(g *grid.Grid, sectionRow int) []string {
	periods, _ := readPeriodColumns(g, sectionRow)
	return periods
}

// readPeriodColumns is ReadPeriodHeader keeping the grid column of each period,
// so value cells stay aligned when a header cell in the middle is dropped.
func readPeriodColumns(g *grid.Grid, sectionRow int) ([]string, []int) {
	row := sectionRow + 1
	var periods []string
	var cols []int
	for c := 1; c < g.RowLen(row); c++ {
		p, ok := NormalizePeriod(g.At(row, c))
		if !ok {
			continue
		}
		periods = append(periods, p)
		cols = append(cols, c)
	}
	return periods, cols
}
