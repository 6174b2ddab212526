package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"screener_valuation/pkg/core/extract"
	"screener_valuation/pkg/core/utils"
)

type aliasFile struct {
	Aliases []extract.AliasEntry `json:"aliases"`
}

// LoadAliasOverrides reads an Hjson alias file:
//
//	{
//	  aliases: [
//	    { canonical: "Sales", labels: ["Turnover"] }
//	    { canonical: "Tax", labels: ["tax paid"], mode: "contains" }
//	  ]
//	}
func LoadAliasOverrides(path string) ([]extract.AliasEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias file: %w", err)
	}
	return ParseAliasOverrides(string(data))
}

// ParseAliasOverrides parses the Hjson alias document.
func ParseAliasOverrides(src string) ([]extract.AliasEntry, error) {
	converted, err := utils.ParseHJSON(src)
	if err != nil {
		return nil, err
	}
	var f aliasFile
	if err := json.Unmarshal([]byte(converted), &f); err != nil {
		return nil, fmt.Errorf("failed to decode alias file: %w", err)
	}
	if err := extract.ValidateAliasEntries(f.Aliases); err != nil {
		return nil, err
	}
	return f.Aliases, nil
}

// Extractor builds the extractor described by the extract section, with alias
// overrides applied on top of the defaults.
func (c *Config) Extractor(logger zerolog.Logger) (*extract.Extractor, error) {
	ex := extract.New()
	ex.RowBudget = c.Extract.RowBudget
	ex.MetadataWindow = c.Extract.MetadataWindow
	ex.MinPeriods = c.Extract.MinPeriods
	ex.Logger = logger

	if c.Extract.AliasFile != "" {
		overrides, err := LoadAliasOverrides(c.Extract.AliasFile)
		if err != nil {
			return nil, err
		}
		ex.Aliases = extract.DefaultAliases.WithOverrides(overrides)
		logger.Info().Str("file", c.Extract.AliasFile).Int("entries", len(overrides)).Msg("alias overrides loaded")
	}
	return ex, nil
}
