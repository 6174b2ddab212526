package extract

import (
	"math"
	"strings"

	"screener_valuation/pkg/core/grid"
	"screener_valuation/pkg/core/table"
)

// DefaultMetadataWindow is how many cells right of a label are searched for a value.
const DefaultMetadataWindow = 3

// UnknownCompany is used when cell (0,1) holds no name.
const UnknownCompany = "Unknown Entity"

// shareMismatchTolerance is the relative gap between reported and implied shares
// that triggers a share_count_mismatch warning.
const shareMismatchTolerance = 0.05

// Metadata is the company header block. Zero values mean "not found".
type Metadata struct {
	CompanyName  string  `json:"company_name"`
	MarketCap    float64 `json:"market_cap"`
	CurrentPrice float64 `json:"current_price"`
	TotalShares  float64 `json:"total_shares"`
	FaceValue    float64 `json:"face_value"`
}

var (
	marketCapKeywords = KeywordSet{"MARKET CAPITALIZATION", "MARKET CAPITALISATION", "MARKET CAP"}
	priceKeywords     = KeywordSet{"CURRENT PRICE"}
	sharesKeywords    = KeywordSet{"NUMBER OF SHARES", "SHARES OUTSTANDING"}
	faceValueKeywords = KeywordSet{"FACE VALUE"}
)

// ExtractMetadata reads the header block from anywhere in column 0. It never fails;
// unresolved fields stay zero and are reported as warnings.
func ExtractMetadata(g *grid.Grid, window int) (Metadata, []Warning) {
	if window <= 0 {
		window = DefaultMetadataWindow
	}

	md := Metadata{CompanyName: companyName(g)}
	var warnings []Warning

	fields := []struct {
		name     string
		keywords KeywordSet
		dst      *float64
	}{
		{"market capitalization", marketCapKeywords, &md.MarketCap},
		{"current price", priceKeywords, &md.CurrentPrice},
		{"number of shares", sharesKeywords, &md.TotalShares},
		{"face value", faceValueKeywords, &md.FaceValue},
	}
	for _, f := range fields {
		v, ok := findLabeledValue(g, f.keywords, window)
		if !ok {
			warnings = append(warnings, warnf(WarnMetadataUnresolved, SectionMetadata, "%s not found", f.name))
			continue
		}
		*f.dst = v
	}

	if md.CompanyName == UnknownCompany {
		warnings = append(warnings, warnf(WarnMetadataUnresolved, SectionMetadata, "company name not found in cell (0,1)"))
	}
	if w, ok := checkShareCount(md); ok {
		warnings = append(warnings, w)
	}
	return md, warnings
}

func companyName(g *grid.Grid) string {
	name := strings.TrimSpace(g.At(0, 1).Text())
	if name == "" {
		return UnknownCompany
	}
	return name
}

// findLabeledValue returns the first numeric cell within window columns right of
// the first column-0 label matching keywords. Later matching labels are tried when
// the first has no value.
func findLabeledValue(g *grid.Grid, keywords KeywordSet, window int) (float64, bool) {
	for r := 0; r < g.Rows(); r++ {
		if !keywords.Matches(g.At(r, 0).Text()) {
			continue
		}
		for c := 1; c <= window; c++ {
			v := CoerceNumeric(g.At(r, c))
			if !table.IsMissing(v) {
				return v, true
			}
		}
	}
	return 0, false
}

// checkShareCount compares reported shares with market cap / price. Screener reports
// market cap in crore, so the implied count is accepted either in crore or in units.
func checkShareCount(md Metadata) (Warning, bool) {
	if md.MarketCap <= 0 || md.CurrentPrice <= 0 || md.TotalShares <= 0 {
		return Warning{}, false
	}
	implied := md.MarketCap / md.CurrentPrice
	for _, scale := range []float64{1, 1e7} {
		if math.Abs(implied*scale-md.TotalShares)/md.TotalShares <= shareMismatchTolerance {
			return Warning{}, false
		}
	}
	return warnf(WarnShareMismatch, SectionMetadata,
		"reported shares %.2f differ from market cap / price %.2f by more than %.0f%%",
		md.TotalShares, implied, shareMismatchTolerance*100), true
}
