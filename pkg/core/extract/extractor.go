// Package extract turns a raw Screener worksheet grid into a unified period-indexed
// table plus the company metadata block.
//
// Sections are found by keyword search in column 0, never by fixed offsets. Only a
// missing grid or a missing/empty P&L block is fatal; everything else degrades to
// warnings and Missing cells.
package extract

import (
	"github.com/rs/zerolog"

	"screener_valuation/pkg/core/grid"
	"screener_valuation/pkg/core/table"
)

// DefaultMinPeriods is the history length below which a short_history warning is raised.
const DefaultMinPeriods = 3

// DefaultRequiredMetrics must be present for a complete analysis.
var DefaultRequiredMetrics = []string{MetricSales, MetricNetProfit, MetricBorrowings}

// Extractor holds the tunables of one extraction. The zero value is usable.
type Extractor struct {
	Aliases         *AliasTable
	RowBudget       int
	MetadataWindow  int
	MinPeriods      int
	RequiredMetrics []string
	Logger          zerolog.Logger
}

// New returns an extractor with default settings and a silent logger.
func New() *Extractor {
	return &Extractor{
		Aliases:         DefaultAliases,
		RowBudget:       DefaultRowBudget,
		MetadataWindow:  DefaultMetadataWindow,
		MinPeriods:      DefaultMinPeriods,
		RequiredMetrics: DefaultRequiredMetrics,
		Logger:          zerolog.Nop(),
	}
}

// SectionInfo describes where a section was found and how it was read.
type SectionInfo struct {
	Name      string `json:"name"`
	Found     bool   `json:"found"`
	Row       int    `json:"row"`
	HeaderRow int    `json:"header_row"`
	Periods   int    `json:"periods"`
	Rows      int    `json:"rows"`
	Stop      string `json:"stop,omitempty"`
}

// CoercionStats counts value cells read from all sections.
type CoercionStats struct {
	Cells      int `json:"cells"`
	Missing    int `json:"missing"`
	Unparsable int `json:"unparsable"`
}

func (s *CoercionStats) add(r RowStats) {
	s.Cells += r.Cells
	s.Missing += r.Missing
	s.Unparsable += r.Unparsable
}

// Result is a successful extraction.
type Result struct {
	Table     *table.Table  `json:"table"`
	Quarterly *table.Table  `json:"quarterly"`
	Metadata  Metadata      `json:"metadata"`
	Sections  []SectionInfo `json:"sections"`
	Warnings  []Warning     `json:"warnings"`
	Coercion  CoercionStats `json:"coercion"`
}

// Extract runs the full extraction over g. The only error is a *StructuralError.
func (e *Extractor) Extract(g *grid.Grid) (*Result, error) {
	e = e.withDefaults()
	log := e.Logger.With().Str("module", "extract").Logger()

	if g == nil || g.Empty() {
		return nil, NewStructuralError("workbook has no readable cells", nil)
	}

	plRow, ok := LocateSection(g, ProfitLossKeywords)
	if !ok {
		return nil, NewStructuralError("profit & loss section not found", nil)
	}
	if periods, _ := readPeriodColumns(g, plRow); len(periods) == 0 {
		return nil, NewStructuralError("profit & loss section has no parsable periods", nil)
	}

	res := &Result{}

	var sections []Section
	for _, spec := range annualSections {
		sec, info, warns, ok := e.readSection(g, spec, &res.Coercion)
		res.Sections = append(res.Sections, info)
		res.Warnings = append(res.Warnings, warns...)
		if ok {
			sections = append(sections, sec)
		}
	}

	tbl, warns := MergeSections(sections, e.Aliases)
	tbl = withPriceTrailer(g, plRow, tbl, &res.Coercion)
	res.Table = tbl
	res.Warnings = append(res.Warnings, warns...)

	qsec, qinfo, qwarns, ok := e.readSection(g, quarterlySection, &res.Coercion)
	res.Sections = append(res.Sections, qinfo)
	res.Warnings = append(res.Warnings, qwarns...)
	res.Quarterly = table.Empty()
	if ok {
		q, warns := MergeSections([]Section{qsec}, e.Aliases)
		res.Quarterly = q
		res.Warnings = append(res.Warnings, warns...)
	}

	md, mdWarns := ExtractMetadata(g, e.MetadataWindow)
	res.Metadata = md
	res.Warnings = append(res.Warnings, mdWarns...)
	res.Warnings = append(res.Warnings, e.completeness(tbl)...)

	log.Debug().
		Str("company", md.CompanyName).
		Int("periods", tbl.Len()).
		Int("columns", len(tbl.Columns())).
		Int("warnings", len(res.Warnings)).
		Int("unparsable", res.Coercion.Unparsable).
		Msg("extraction complete")
	return res, nil
}

func (e *Extractor) withDefaults() *Extractor {
	if e == nil {
		return New()
	}
	cp := *e
	if cp.Aliases == nil {
		cp.Aliases = DefaultAliases
	}
	if cp.RowBudget <= 0 {
		cp.RowBudget = DefaultRowBudget
	}
	if cp.MetadataWindow <= 0 {
		cp.MetadataWindow = DefaultMetadataWindow
	}
	if cp.MinPeriods <= 0 {
		cp.MinPeriods = DefaultMinPeriods
	}
	if cp.RequiredMetrics == nil {
		cp.RequiredMetrics = DefaultRequiredMetrics
	}
	return &cp
}

func (e *Extractor) readSection(g *grid.Grid, spec sectionSpec, stats *CoercionStats) (Section, SectionInfo, []Warning, bool) {
	info := SectionInfo{Name: spec.name}

	row, ok := LocateSection(g, spec.keywords)
	if !ok {
		return Section{}, info, []Warning{warnf(WarnSectionMissing, spec.name, "section not present")}, false
	}
	info.Found = true
	info.Row = row
	info.HeaderRow = row + 1

	periods, cols := readPeriodColumns(g, row)
	info.Periods = len(periods)
	if len(periods) == 0 {
		return Section{}, info, []Warning{warnf(WarnNoPeriods, spec.name, "no parsable dates in row %d; section skipped", row+1)}, false
	}

	boundary := boundaryFor(spec.name)
	rows, rs := readRowsAt(g, info.HeaderRow, cols, e.RowBudget, boundary)
	stats.add(rs)
	info.Rows = len(rows)
	info.Stop = rs.Stop.String()

	var warns []Warning
	if rs.Stop == StopBudget {
		next := g.At(rs.StopRow+1, 0).Text()
		if next != "" && !boundary.Matches(next) {
			warns = append(warns, warnf(WarnRowBudget, spec.name, "stopped after %d rows; row %d (%q) not read", e.RowBudget, rs.StopRow+1, next))
		}
	}

	return Section{
		Name:      spec.name,
		HeaderRow: info.HeaderRow,
		Periods:   periods,
		Rows:      rows,
	}, info, warns, true
}

func (e *Extractor) completeness(tbl *table.Table) []Warning {
	var warns []Warning
	if tbl.Len() < e.MinPeriods {
		warns = append(warns, warnf(WarnShortHistory, "", "only %d periods available, at least %d expected", tbl.Len(), e.MinPeriods))
	}
	for _, m := range e.RequiredMetrics {
		if !tbl.Has(m) {
			warns = append(warns, warnf(WarnMetricMissing, "", "metric %q not found", m))
		}
	}
	return warns
}
