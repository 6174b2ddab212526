// Package table implements the period-indexed metric table shared by the
// extractor and the metric engine.
//
// A Table is built once through a Builder and is read-only afterwards. Every cell is a
// float64; NaN is the Missing sentinel and is distinct from zero.
package table

import (
	"encoding/json"
	"math"
	"sort"
)

// PeriodColumn is the name of the period column in row-oriented output.
const PeriodColumn = "Report Date"

// Missing returns the sentinel for an absent or unparsable value.
func Missing() float64 { return math.NaN() }

// IsMissing reports whether v is the Missing sentinel.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// Table maps period -> canonical metric -> value.
type Table struct {
	periods []string
	columns []string
	index   map[string]int
	data    map[string][]float64
}

// Empty returns a table with no periods and no columns.
func Empty() *Table {
	return &Table{index: map[string]int{}, data: map[string][]float64{}}
}

// Len returns the number of periods.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.periods)
}

// Periods returns a copy of the chronologically ordered period axis.
func (t *Table) Periods() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.periods))
	copy(out, t.periods)
	return out
}

// Columns returns a copy of the column names in insertion order.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Has reports whether the named column exists.
func (t *Table) Has(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.data[name]
	return ok
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]float64, bool) {
	if t == nil {
		return nil, false
	}
	col, ok := t.data[name]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(col))
	copy(out, col)
	return out, true
}

// Value returns the cell at (period, name), or Missing when either is unknown.
func (t *Table) Value(period, name string) float64 {
	if t == nil {
		return Missing()
	}
	i, ok := t.index[period]
	if !ok {
		return Missing()
	}
	col, ok := t.data[name]
	if !ok {
		return Missing()
	}
	return col[i]
}

// Latest returns the last non-missing value of a column and its period.
func (t *Table) Latest(name string) (float64, string, bool) {
	if t == nil {
		return Missing(), "", false
	}
	col, ok := t.data[name]
	if !ok {
		return Missing(), "", false
	}
	for i := len(col) - 1; i >= 0; i-- {
		if !IsMissing(col[i]) {
			return col[i], t.periods[i], true
		}
	}
	return Missing(), "", false
}

// Row is one period of the table in row-oriented form.
type Row struct {
	Period string
	Values map[string]float64
}

// Rows returns the table transposed to one record per period.
func (t *Table) Rows() []Row {
	if t == nil {
		return nil
	}
	out := make([]Row, len(t.periods))
	for i, p := range t.periods {
		vals := make(map[string]float64, len(t.columns))
		for _, c := range t.columns {
			vals[c] = t.data[c][i]
		}
		out[i] = Row{Period: p, Values: vals}
	}
	return out
}

type jsonTable struct {
	Periods []string         `json:"periods"`
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// MarshalJSON renders the table with Missing cells as null.
func (t *Table) MarshalJSON() ([]byte, error) {
	out := jsonTable{Periods: []string{}, Columns: []string{}, Rows: []map[string]any{}}
	if t != nil {
		out.Periods = t.Periods()
		out.Columns = t.Columns()
		for i, p := range t.periods {
			row := make(map[string]any, len(t.columns)+1)
			row[PeriodColumn] = p
			for _, c := range t.columns {
				v := t.data[c][i]
				if math.IsNaN(v) || math.IsInf(v, 0) {
					row[c] = nil
				} else {
					row[c] = v
				}
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a table written by MarshalJSON; null cells become Missing.
func (t *Table) UnmarshalJSON(data []byte) error {
	var in struct {
		Periods []string                      `json:"periods"`
		Columns []string                      `json:"columns"`
		Rows    []map[string]*json.RawMessage `json:"rows"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	b := NewBuilder(in.Periods)
	for _, c := range in.Columns {
		b.Ensure(c)
	}
	for _, row := range in.Rows {
		var period string
		if raw := row[PeriodColumn]; raw != nil {
			if err := json.Unmarshal(*raw, &period); err != nil {
				return err
			}
		}
		for _, c := range in.Columns {
			raw := row[c]
			if raw == nil {
				continue
			}
			var v *float64
			if err := json.Unmarshal(*raw, &v); err != nil {
				return err
			}
			if v != nil {
				b.Set(period, c, *v)
			}
		}
	}
	*t = *b.Build()
	return nil
}

// SortPeriods returns the sorted unique union of the given period lists.
// Periods are ISO dates, so lexical order is chronological.
func SortPeriods(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, l := range lists {
		for _, p := range l {
			if p == "" {
				continue
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}
