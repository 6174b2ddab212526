package extract

import (
	"screener_valuation/pkg/core/table"
)

// Section is one located statement block.
type Section struct {
	Name      string
	HeaderRow int
	Periods   []string
	Rows      []Row
}

// MergeSections builds the unified table over the sorted union of the sections'
// periods. Sections are applied in order and every label is canonicalized; the first
// non-missing value for a (period, metric) pair wins and later disagreeing values are
// dropped with a duplicate_metric warning.
func MergeSections(sections []Section, aliases *AliasTable) (*table.Table, []Warning) {
	if aliases == nil {
		aliases = DefaultAliases
	}

	axes := make([][]string, 0, len(sections))
	for _, s := range sections {
		axes = append(axes, s.Periods)
	}
	b := table.NewBuilder(axes...)

	var warnings []Warning
	unmatched := make(map[string]bool)
	conflicts := make(map[string]bool)

	for _, s := range sections {
		for _, row := range s.Rows {
			name, matched := aliases.Resolve(row.Label)
			if !matched && !unmatched[name] {
				unmatched[name] = true
				warnings = append(warnings, warnf(WarnAliasUnmatched, s.Name,
					"label %q has no alias; kept as %q", row.Label, name))
			}
			b.Ensure(name)

			for i, period := range s.Periods {
				if i >= len(row.Values) {
					break
				}
				if b.Set(period, name, row.Values[i]) != table.Conflict {
					continue
				}
				key := s.Name + "|" + name + "|" + period
				if conflicts[key] {
					continue
				}
				conflicts[key] = true
				warnings = append(warnings, warnf(WarnDuplicateMetric, s.Name,
					"%s for %s already set; %q value %g dropped", name, period, row.Label, row.Values[i]))
			}
		}
	}
	return b.Build(), warnings
}
