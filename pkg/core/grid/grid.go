// Package grid holds the raw, header-less cell grid read verbatim from one worksheet.
// A Grid is built once per upload and is read-only afterwards.
package grid

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies what a cell holds.
type Kind int

const (
	KindBlank Kind = iota
	KindNumber
	KindString
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	default:
		return "blank"
	}
}

// Cell is one heterogeneous spreadsheet value.
type Cell struct {
	Kind Kind
	Num  float64
	Str  string
	Time time.Time
}

// Blank is the zero cell.
var Blank = Cell{}

// Number builds a numeric cell.
func Number(v float64) Cell { return Cell{Kind: KindNumber, Num: v} }

// String builds a text cell. Empty or whitespace-only text is Blank.
func String(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Blank
	}
	return Cell{Kind: KindString, Str: s}
}

// Date builds a native date cell.
func Date(t time.Time) Cell { return Cell{Kind: KindDate, Time: t} }

// FromText classifies raw exported text: plain numbers become Number cells,
// anything else stays text. Formatting such as "1,234" is left for coercion.
func FromText(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Blank
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return Number(v)
	}
	return String(raw)
}

// IsBlank reports whether the cell carries no content.
func (c Cell) IsBlank() bool {
	return c.Kind == KindBlank
}

// Text renders the cell for label matching and diagnostics.
func (c Cell) Text() string {
	switch c.Kind {
	case KindNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case KindString:
		return c.Str
	case KindDate:
		return c.Time.Format("2006-01-02")
	default:
		return ""
	}
}

// Grid is an immutable, 0-indexed, ragged 2-D array of cells.
type Grid struct {
	rows  [][]Cell
	width int
}

// New copies rows into a Grid so later changes to the input are not observed.
func New(rows [][]Cell) *Grid {
	g := &Grid{rows: make([][]Cell, len(rows))}
	for i, r := range rows {
		cp := make([]Cell, len(r))
		copy(cp, r)
		g.rows[i] = cp
		if len(r) > g.width {
			g.width = len(r)
		}
	}
	return g
}

// FromValues builds a Grid from loosely typed values, mainly for fixtures:
// float/int -> Number, time.Time -> Date, string -> FromText, nil -> Blank.
func FromValues(rows [][]any) *Grid {
	cells := make([][]Cell, len(rows))
	for i, r := range rows {
		cells[i] = make([]Cell, len(r))
		for j, v := range r {
			cells[i][j] = valueCell(v)
		}
	}
	return New(cells)
}

func valueCell(v any) Cell {
	switch x := v.(type) {
	case nil:
		return Blank
	case Cell:
		return x
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case time.Time:
		return Date(x)
	case string:
		return FromText(x)
	default:
		return Blank
	}
}

// Rows returns the number of rows.
func (g *Grid) Rows() int {
	if g == nil {
		return 0
	}
	return len(g.rows)
}

// Width returns the length of the longest row.
func (g *Grid) Width() int {
	if g == nil {
		return 0
	}
	return g.width
}

// RowLen returns the number of stored cells in row r.
func (g *Grid) RowLen(r int) int {
	if g == nil || r < 0 || r >= len(g.rows) {
		return 0
	}
	return len(g.rows[r])
}

// At returns the cell at (r, c), or Blank outside the grid.
func (g *Grid) At(r, c int) Cell {
	if g == nil || r < 0 || r >= len(g.rows) || c < 0 || c >= len(g.rows[r]) {
		return Blank
	}
	return g.rows[r][c]
}

// Empty reports whether the grid has no non-blank cell at all.
func (g *Grid) Empty() bool {
	if g == nil {
		return true
	}
	for _, r := range g.rows {
		for _, c := range r {
			if !c.IsBlank() {
				return false
			}
		}
	}
	return true
}
