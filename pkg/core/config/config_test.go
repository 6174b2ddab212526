package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screener_valuation/pkg/core/extract"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "analysis.yaml", `
server:
  port: "9090"
store:
  driver: file
  dsn: /tmp/reports
assumptions:
  growth: 0.2
  wacc: 0.11
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Server.MaxUploadMB)
	assert.Equal(t, "file", cfg.Store.Driver)
	assert.Equal(t, 0.2, cfg.Assumptions.Growth)
	assert.Equal(t, 0.11, cfg.Assumptions.WACC)
	// untouched fields keep defaults
	assert.Equal(t, 0.04, cfg.Assumptions.TerminalGrowth)
	assert.Equal(t, extract.DefaultRowBudget, cfg.Extract.RowBudget)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/reports")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(writeFile(t, "empty.yaml", "{}\n"))
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/reports", cfg.Store.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad driver", "store:\n  driver: mongo\n"},
		{"growth out of range", "assumptions:\n  growth: 3\n"},
		{"zero row budget", "extract:\n  row_budget: 0\n"},
		{"bad fcf source", "assumptions:\n  fcf_source: ebitda\n"},
		{"bad sensitivity", "assumptions:\n  sensitivity_wacc: [0.1, -0.2]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "bad.yaml", tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseAliasOverrides(t *testing.T) {
	entries, err := ParseAliasOverrides(`{
  # comment
  aliases: [
    { canonical: "Sales", labels: ["Turnover"] }
    { canonical: "Tax", labels: ["tax paid"], mode: "contains" }
  ]
}`)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, extract.MatchExact, entries[0].Mode)
	assert.Equal(t, extract.MatchContains, entries[1].Mode)

	_, err = ParseAliasOverrides(`{ aliases: [ { canonical: "", labels: ["x"] } ] }`)
	assert.Error(t, err)

	_, err = ParseAliasOverrides(`{ aliases: [ { canonical: "Sales", mode: "fuzzy" } ] }`)
	assert.Error(t, err)
}

func TestExtractorWithAliasFile(t *testing.T) {
	cfg := Default()
	cfg.Extract.RowBudget = 12
	cfg.Extract.AliasFile = writeFile(t, "aliases.hjson", `{ aliases: [ { canonical: "Sales", labels: ["Turnover"] } ] }`)

	ex, err := cfg.Extractor(zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 12, ex.RowBudget)

	name, ok := ex.Aliases.Resolve("Turnover")
	assert.True(t, ok)
	assert.Equal(t, extract.MetricSales, name)

	cfg.Extract.AliasFile = filepath.Join(t.TempDir(), "missing.hjson")
	_, err = cfg.Extractor(zerolog.Nop())
	assert.Error(t, err)
}
