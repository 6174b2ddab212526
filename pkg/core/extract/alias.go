package extract

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// MatchMode selects how an alias is compared with a normalized label.
type MatchMode int

const (
	// MatchExact requires the folded label to equal the alias.
	MatchExact MatchMode = iota
	// MatchContains accepts any folded label containing the alias.
	MatchContains
)

func (m MatchMode) String() string {
	if m == MatchContains {
		return "contains"
	}
	return "exact"
}

// MarshalText implements encoding.TextMarshaler.
func (m MatchMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText accepts "exact" or "contains"; empty means exact.
func (m *MatchMode) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "", "exact":
		*m = MatchExact
	case "contains":
		*m = MatchContains
	default:
		return fmt.Errorf("unknown alias match mode %q", string(b))
	}
	return nil
}

// AliasEntry lists the source labels accepted for one canonical metric.
type AliasEntry struct {
	Canonical string    `json:"canonical"`
	Labels    []string  `json:"labels"`
	Mode      MatchMode `json:"mode,omitempty"`
}

type containsAlias struct {
	key       string
	canonical string
}

// AliasTable resolves source labels to canonical metric names. It is read-only
// once built and safe for concurrent use.
type AliasTable struct {
	entries  []AliasEntry
	exact    map[string]string
	contains []containsAlias
}

// NewAliasTable indexes entries in order. Every canonical name resolves to itself;
// when two entries claim the same exact label, the earlier entry keeps it.
func NewAliasTable(entries []AliasEntry) *AliasTable {
	t := &AliasTable{exact: make(map[string]string)}
	for _, e := range entries {
		if strings.TrimSpace(e.Canonical) == "" {
			continue
		}
		e.Labels = append([]string(nil), e.Labels...)
		t.entries = append(t.entries, e)
		t.addExact(e.Canonical, e.Canonical)
	}
	for _, e := range t.entries {
		for _, l := range e.Labels {
			switch e.Mode {
			case MatchContains:
				if k := foldKey(NormalizeLabel(l)); k != "" {
					t.contains = append(t.contains, containsAlias{key: k, canonical: e.Canonical})
				}
				t.addExact(l, e.Canonical)
			default:
				t.addExact(l, e.Canonical)
			}
		}
	}
	return t
}

func (t *AliasTable) addExact(label, canonical string) {
	k := foldKey(NormalizeLabel(label))
	if k == "" {
		return
	}
	if _, taken := t.exact[k]; !taken {
		t.exact[k] = canonical
	}
}

// Entries returns a copy of the table's entries.
func (t *AliasTable) Entries() []AliasEntry {
	out := make([]AliasEntry, len(t.entries))
	for i, e := range t.entries {
		e.Labels = append([]string(nil), e.Labels...)
		out[i] = e
	}
	return out
}

// Resolve returns the canonical name for label and whether an alias matched.
// Unmatched labels resolve to their normalized form.
func (t *AliasTable) Resolve(label string) (string, bool) {
	n := NormalizeLabel(label)
	k := foldKey(n)
	if k == "" {
		return n, false
	}
	if c, ok := t.exact[k]; ok {
		return c, true
	}
	for _, a := range t.contains {
		if strings.Contains(k, a.key) {
			return a.canonical, true
		}
	}
	return n, false
}

// Canonicalize returns the canonical metric name for a source label.
func (t *AliasTable) Canonicalize(label string) string {
	c, _ := t.Resolve(label)
	return c
}

// WithOverrides returns a new table where override entries take precedence over
// the receiver's entries. The receiver is not modified.
func (t *AliasTable) WithOverrides(overrides []AliasEntry) *AliasTable {
	merged := make([]AliasEntry, 0, len(overrides)+len(t.entries))
	merged = append(merged, overrides...)
	merged = append(merged, t.entries...)
	return NewAliasTable(merged)
}

// ValidateAliasEntries reports override entries that would make resolution ambiguous.
func ValidateAliasEntries(entries []AliasEntry) error {
	for i, e := range entries {
		if strings.TrimSpace(e.Canonical) == "" {
			return fmt.Errorf("alias entry %d: canonical name is empty", i)
		}
		if e.Mode != MatchExact && e.Mode != MatchContains {
			return fmt.Errorf("alias entry %q: unknown match mode %d", e.Canonical, e.Mode)
		}
		for _, l := range e.Labels {
			if foldKey(l) == "" {
				return fmt.Errorf("alias entry %q: blank label", e.Canonical)
			}
		}
	}
	return nil
}

// NormalizeLabel applies NFKC, strips currency marks and trailing expanders ("+"),
// collapses whitespace and title-cases the result. It is idempotent.
func NormalizeLabel(label string) string {
	s := label
	for i := 0; i < 8; i++ {
		next := normalizeOnce(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func normalizeOnce(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ReplaceAll(s, "₹", "")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimSpace(strings.TrimRight(s, "+ "))
	// Casers keep state, so each call gets its own.
	return cases.Title(language.Und).String(s)
}

func foldKey(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(norm.NFKC.String(s)), " "))
}
