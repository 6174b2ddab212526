package table

// Outcome describes what a Builder.Set call did with its value.
type Outcome int

const (
	// Stored means the cell was empty and now holds the value.
	Stored Outcome = iota
	// Kept means the cell already held an equal value, or the new value was Missing.
	Kept
	// Conflict means the cell already held a different non-missing value, which was kept.
	Conflict
	// UnknownPeriod means the period is not on the axis and the value was dropped.
	UnknownPeriod
)

// Builder assembles a Table. Values are first-writer-wins: a non-missing cell is never
// overwritten, a Missing cell is filled by the first later non-missing value.
type Builder struct {
	t     *Table
	built bool
}

// NewBuilder starts a table over the sorted unique union of periods.
func NewBuilder(periods ...[]string) *Builder {
	axis := SortPeriods(periods...)
	idx := make(map[string]int, len(axis))
	for i, p := range axis {
		idx[p] = i
	}
	return &Builder{t: &Table{
		periods: axis,
		index:   idx,
		data:    make(map[string][]float64),
	}}
}

// Ensure creates the named column (all Missing) if absent.
func (b *Builder) Ensure(name string) {
	b.mustOpen()
	if _, ok := b.t.data[name]; ok {
		return
	}
	col := make([]float64, len(b.t.periods))
	for i := range col {
		col[i] = Missing()
	}
	b.t.data[name] = col
	b.t.columns = append(b.t.columns, name)
}

// Set writes one cell under the first-writer-wins rule.
func (b *Builder) Set(period, name string, v float64) Outcome {
	b.mustOpen()
	i, ok := b.t.index[period]
	if !ok {
		return UnknownPeriod
	}
	b.Ensure(name)
	col := b.t.data[name]
	cur := col[i]
	switch {
	case IsMissing(v):
		return Kept
	case IsMissing(cur):
		col[i] = v
		return Stored
	case cur == v:
		return Kept
	default:
		return Conflict
	}
}

// SetColumn writes a whole column aligned to the period axis. Extra values are
// ignored, short input leaves the remaining cells Missing.
func (b *Builder) SetColumn(name string, values []float64) {
	b.Ensure(name)
	for i, p := range b.t.periods {
		if i >= len(values) {
			break
		}
		b.Set(p, name, values[i])
	}
}

// Periods returns the axis the builder was created with.
func (b *Builder) Periods() []string {
	return b.t.Periods()
}

// Build returns the finished table. The builder cannot be used afterwards.
func (b *Builder) Build() *Table {
	b.mustOpen()
	b.built = true
	return b.t
}

func (b *Builder) mustOpen() {
	if b.built {
		panic("table: builder used after Build")
	}
}

// FromColumns builds a table from a period axis and aligned columns, in the given
// column order. It is the common way metric functions produce their output.
func FromColumns(periods []string, order []string, cols map[string][]float64) *Table {
	b := &Builder{t: &Table{
		periods: append([]string(nil), periods...),
		index:   make(map[string]int, len(periods)),
		data:    make(map[string][]float64),
	}}
	for i, p := range b.t.periods {
		b.t.index[p] = i
	}
	for _, name := range order {
		vals, ok := cols[name]
		if !ok {
			continue
		}
		col := make([]float64, len(periods))
		for i := range col {
			if i < len(vals) {
				col[i] = vals[i]
			} else {
				col[i] = Missing()
			}
		}
		b.t.data[name] = col
		b.t.columns = append(b.t.columns, name)
	}
	return b.Build()
}

// WithColumn returns a copy of t with name set to values, appended after the
// existing columns or replacing a column of the same name in place.
func (t *Table) WithColumn(name string, values []float64) *Table {
	order := t.Columns()
	cols := make(map[string][]float64, len(order)+1)
	for _, c := range order {
		cols[c] = t.data[c]
	}
	if _, ok := cols[name]; !ok {
		order = append(order, name)
	}
	cols[name] = values
	return FromColumns(t.Periods(), order, cols)
}
