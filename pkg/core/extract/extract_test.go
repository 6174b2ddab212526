package extract

import (
	"errors"
	"math"
	"testing"
	"testing/quick"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screener_valuation/pkg/core/grid"
	"screener_valuation/pkg/core/table"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// screenerGrid mimics the Data Sheet layout: company header, META block, then the
// statement blocks each followed by a "Report Date" row.
func screenerGrid() *grid.Grid {
	rows := [][]any{
		{"COMPANY NAME", "XYZ Corp"},
		{},
		{"META"},
		{"Number of shares", 10},
		{"Face Value", 2},
		{"Current Price", 500},
		{"Market Capitalization", 5000},
		{},
		{"PROFIT & LOSS"},
		{"Report Date", date(2021, 3, 31), date(2022, 3, 31), date(2023, 3, 31)},
		{"Sales", 100, 120, 150},
		{"Raw Material Cost", 40, 50, "--"},
		{"Interest", 5, 6, 7},
		{"Profit before tax", 20, 25, 30},
		{"Tax", 5, 6, 7},
		{"Net profit", 15, 19, 23},
		{},
		{"QUARTERS"},
		{"Report Date", date(2022, 12, 31), date(2023, 3, 31)},
		{"Sales", 35, 40},
		{"Net profit", 5, 6},
		{},
		{"BALANCE SHEET"},
		{"Report Date", date(2021, 3, 31), date(2022, 3, 31), date(2023, 3, 31)},
		{"Equity Share Capital", 10, 10, 10},
		{"Reserves", 90, 100, 115},
		{"Borrowings", 50, 40, 30},
		{"Total", 200, 210, 230},
		{"Receivables", 20, 25, 30},
		{},
		{"CASH FLOW:"},
		{"Report Date", date(2021, 3, 31), date(2022, 3, 31), date(2023, 3, 31)},
		{"Cash from Operating Activity", 18, 22, 26},
		{"Cash from Investing Activity", -8, -9, -10},
		{"Net Cash Flow", 2, 3, 4},
		{"PRICE:", 300, 400, 500},
	}
	return grid.FromValues(rows)
}

func TestLocateSection(t *testing.T) {
	g := grid.FromValues([][]any{
		{"x"},
		{"profit & loss statement"},
		{"P&L again"},
	})

	row, ok := LocateSection(g, ProfitLossKeywords)
	require.True(t, ok)
	assert.Equal(t, 1, row)

	_, ok = LocateSection(g, BalanceSheetKeywords)
	assert.False(t, ok)

	_, ok = LocateSection(g, KeywordSet{})
	assert.False(t, ok)
}

func TestReadPeriodHeader(t *testing.T) {
	g := grid.FromValues([][]any{
		{"PROFIT & LOSS"},
		{"Report Date", 44651.0, "2023-03-31", "garbage", date(2024, 3, 31), "Mar 2025", "31/03/2026", 2027, "Mar-28"},
	})

	assert.Equal(t, []string{
		"2022-03-31", "2023-03-31", "2024-03-31", "2025-03-31", "2026-03-31", "2028-03-31",
	}, ReadPeriodHeader(g, 0))
}

func TestReadPeriodHeaderNoDates(t *testing.T) {
	g := grid.FromValues([][]any{{"PROFIT & LOSS"}, {"Report Date", "a", "b"}})
	assert.Empty(t, ReadPeriodHeader(g, 0))
	assert.Empty(t, ReadPeriodHeader(g, 5))
}

func TestReadSectionRows(t *testing.T) {
	t.Run("stops at blank label and keeps missing", func(t *testing.T) {
		g := grid.FromValues([][]any{
			{"Report Date", "2022-03-31", "2023-03-31"},
			{"Sales", 100},
			{"Tax", "--", 4},
			{""},
			{"Ignored", 1, 2},
		})
		rows, stats := ReadSectionRows(g, 0, 2, 10, boundaryFor(SectionProfitLoss))
		require.Len(t, rows, 2)
		assert.Equal(t, 100.0, rows[0].Values[0])
		assert.True(t, math.IsNaN(rows[0].Values[1]))
		assert.True(t, math.IsNaN(rows[1].Values[0]))
		assert.Equal(t, StopBlankLabel, stats.Stop)
		assert.Equal(t, 4, stats.Cells)
		assert.Equal(t, 2, stats.Missing)
	})

	t.Run("stops at next section", func(t *testing.T) {
		g := grid.FromValues([][]any{
			{"Report Date"},
			{"Sales", 1},
			{"BALANCE SHEET"},
			{"Reserves", 1},
		})
		rows, stats := ReadSectionRows(g, 0, 1, 10, boundaryFor(SectionProfitLoss))
		assert.Len(t, rows, 1)
		assert.Equal(t, StopBoundary, stats.Stop)
	})

	t.Run("own keyword is not a boundary", func(t *testing.T) {
		g := grid.FromValues([][]any{
			{"Report Date"},
			{"Cash from Operating Activity", 1},
			{"Net Cash Flow", 2},
		})
		rows, stats := ReadSectionRows(g, 0, 1, 10, boundaryFor(SectionCashFlow))
		assert.Len(t, rows, 2)
		assert.Equal(t, StopEndOfGrid, stats.Stop)
	})

	t.Run("row budget bounds the scan", func(t *testing.T) {
		g := grid.FromValues([][]any{{"Report Date"}, {"a", 1}, {"b", 2}, {"c", 3}})
		rows, stats := ReadSectionRows(g, 0, 1, 2, nil)
		assert.Len(t, rows, 2)
		assert.Equal(t, StopBudget, stats.Stop)
	})
}

func TestCoerceNumeric(t *testing.T) {
	tests := []struct {
		name   string
		in     grid.Cell
		want   float64
		status CoerceStatus
	}{
		{"number", grid.Number(12.5), 12.5, Parsed},
		{"zero", grid.Number(0), 0, Parsed},
		{"blank", grid.Blank, math.NaN(), Empty},
		{"thousands", grid.String("1,234.50"), 1234.5, Parsed},
		{"rupee", grid.String("₹ 1,00,000"), 100000, Parsed},
		{"rs prefix", grid.String("Rs. 45"), 45, Parsed},
		{"inr prefix", grid.String("INR 7"), 7, Parsed},
		{"dollar", grid.String("$3"), 3, Parsed},
		{"parentheses", grid.String("(12)"), -12, Parsed},
		{"unicode minus", grid.String("−5"), -5, Parsed},
		{"percent", grid.String("12.5%"), 12.5, Parsed},
		{"nbsp", grid.String("1 000"), 1000, Parsed},
		{"dashes", grid.String("--"), math.NaN(), Empty},
		{"na", grid.String("N/A"), math.NaN(), Empty},
		{"text", grid.String("hello"), math.NaN(), Unparsable},
		{"inf text", grid.String("Inf"), math.NaN(), Unparsable},
		{"hex float", grid.String("0x1p4"), math.NaN(), Unparsable},
		{"negative hex", grid.String("-0X10"), math.NaN(), Unparsable},
		{"nan number", grid.Number(math.NaN()), math.NaN(), Unparsable},
		{"date cell", grid.Date(date(2023, 3, 31)), math.NaN(), Unparsable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, status := Coerce(tt.in)
			assert.Equal(t, tt.status, status)
			if math.IsNaN(tt.want) {
				assert.True(t, math.IsNaN(got), "want missing, got %v", got)
				return
			}
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCoerceIsTotal(t *testing.T) {
	f := func(s string, v float64) bool {
		a := CoerceNumeric(grid.String(s))
		b := CoerceNumeric(grid.FromText(s))
		c := CoerceNumeric(grid.Number(v))
		for _, x := range []float64{a, b, c} {
			if math.IsInf(x, 0) {
				return false
			}
		}
		return true
	}
	require.NoError(t, quick.Check(f, &quick.Config{MaxCount: 2000}))

	for _, s := range []string{"", "₹", "(", ")", "()", "Rs", "-", "1e400", "١٢٣", "\xff\xfe", "((1))"} {
		assert.NotPanics(t, func() { CoerceNumeric(grid.String(s)) }, s)
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Sales", MetricSales},
		{"  revenue   from operations ", MetricSales},
		{"Net profit", MetricNetProfit},
		{"PAT", MetricNetProfit},
		{"Profit After Tax", MetricNetProfit},
		{"Profit before tax", MetricPBT},
		{"Total", MetricTotalAssets},
		{"Receivables", MetricReceivables},
		{"Cash from Operating Activity", MetricCFO},
		{"Net cash from operating activities", MetricCFO},
		{"Expenses +", MetricExpenses},
		{"Depreciation and amortization expense", MetricDepreciation},
		{"some new metric", "Some New Metric"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonicalize(tt.in))
		})
	}
}

func TestCanonicalNamesResolveToThemselves(t *testing.T) {
	for _, e := range DefaultAliases.Entries() {
		got, ok := DefaultAliases.Resolve(e.Canonical)
		assert.True(t, ok, e.Canonical)
		assert.Equal(t, e.Canonical, got)
	}
}

func TestCanonicalizeIsIdempotent(t *testing.T) {
	f := func(s string) bool {
		once := Canonicalize(s)
		return Canonicalize(once) == once
	}
	require.NoError(t, quick.Check(f, &quick.Config{MaxCount: 2000}))

	for _, s := range []string{"ﬁnance costs", "NET   PROFIT", "₹ Sales", "ǆ", "Other Mfr. Exp", "x+ +"} {
		once := Canonicalize(s)
		assert.Equal(t, once, Canonicalize(once), s)
	}
}

func TestAliasOverrides(t *testing.T) {
	over := DefaultAliases.WithOverrides([]AliasEntry{
		{Canonical: "Operating Revenue", Labels: []string{"Revenue"}},
	})
	assert.Equal(t, "Operating Revenue", over.Canonicalize("revenue"))
	assert.Equal(t, MetricSales, DefaultAliases.Canonicalize("revenue"))
}

func TestMatchModeText(t *testing.T) {
	var m MatchMode
	require.NoError(t, m.UnmarshalText([]byte("contains")))
	assert.Equal(t, MatchContains, m)
	assert.Error(t, m.UnmarshalText([]byte("fuzzy")))
	assert.Error(t, ValidateAliasEntries([]AliasEntry{{Canonical: " "}}))
}

func TestMergeSectionsPeriodUniqueness(t *testing.T) {
	pl := Section{Name: SectionProfitLoss, Periods: []string{"2022-03-31", "2023-03-31"},
		Rows: []Row{{Label: "Sales", Values: []float64{100, 120}}}}
	bs := Section{Name: SectionBalanceSheet, Periods: []string{"2023-03-31", "2022-03-31", "2024-03-31"},
		Rows: []Row{{Label: "Reserves", Values: []float64{5, 4, 6}}}}

	tbl, _ := MergeSections([]Section{pl, bs}, nil)
	assert.Equal(t, []string{"2022-03-31", "2023-03-31", "2024-03-31"}, tbl.Periods())
	assert.Equal(t, 4.0, tbl.Value("2022-03-31", MetricReserves))
	assert.True(t, table.IsMissing(tbl.Value("2024-03-31", MetricSales)))
}

func TestMergeSectionsFirstWriterWins(t *testing.T) {
	first := Section{Name: SectionProfitLoss, Periods: []string{"2023-03-31"},
		Rows: []Row{
			{Label: "Net Profit", Values: []float64{10}},
			{Label: "Tax", Values: []float64{math.NaN()}},
		}}
	second := Section{Name: SectionCashFlow, Periods: []string{"2023-03-31"},
		Rows: []Row{
			{Label: "PAT", Values: []float64{99}},
			{Label: "Tax Expense", Values: []float64{3}},
		}}

	tbl, warns := MergeSections([]Section{first, second}, nil)
	assert.Equal(t, 10.0, tbl.Value("2023-03-31", MetricNetProfit))
	assert.Equal(t, 3.0, tbl.Value("2023-03-31", MetricTax))
	assert.Equal(t, []string{MetricNetProfit, MetricTax}, tbl.Columns())

	require.Len(t, warns, 1)
	assert.Equal(t, WarnDuplicateMetric, warns[0].Code)
	assert.Equal(t, SectionCashFlow, warns[0].Section)
}

func TestMergeSectionsWarnsPerSection(t *testing.T) {
	periods := []string{"2022-03-31", "2023-03-31"}
	pl := Section{Name: SectionProfitLoss, Periods: periods,
		Rows: []Row{
			{Label: "Net Profit", Values: []float64{10, 15}},
			{Label: "PAT", Values: []float64{11, 16}},
		}}
	bs := Section{Name: SectionBalanceSheet, Periods: periods,
		Rows: []Row{{Label: "Net profit", Values: []float64{77, 66}}}}

	tbl, warns := MergeSections([]Section{pl, bs}, nil)
	assert.Equal(t, 15.0, tbl.Value("2023-03-31", MetricNetProfit))

	bySection := map[string]int{}
	for _, w := range warns {
		require.Equal(t, WarnDuplicateMetric, w.Code)
		bySection[w.Section]++
	}
	assert.Equal(t, map[string]int{SectionProfitLoss: 2, SectionBalanceSheet: 2}, bySection)
}

func TestMergeSectionsUnmatchedLabel(t *testing.T) {
	s := Section{Name: SectionProfitLoss, Periods: []string{"2023-03-31"},
		Rows: []Row{{Label: "exceptional items", Values: []float64{1}}}}
	tbl, warns := MergeSections([]Section{s}, nil)
	assert.True(t, tbl.Has("Exceptional Items"))
	require.Len(t, warns, 1)
	assert.Equal(t, WarnAliasUnmatched, warns[0].Code)
}

func TestExtractMetadata(t *testing.T) {
	md, warns := ExtractMetadata(screenerGrid(), 3)
	assert.Equal(t, "XYZ Corp", md.CompanyName)
	assert.Equal(t, 5000.0, md.MarketCap)
	assert.Equal(t, 500.0, md.CurrentPrice)
	assert.Equal(t, 10.0, md.TotalShares)
	assert.Equal(t, 2.0, md.FaceValue)
	assert.Empty(t, warns)
}

func TestExtractMetadataDefaults(t *testing.T) {
	g := grid.FromValues([][]any{{"nothing here"}, {"Current Price", "", "", "", 42}})
	md, warns := ExtractMetadata(g, 3)
	assert.Equal(t, UnknownCompany, md.CompanyName)
	assert.Zero(t, md.CurrentPrice, "value outside the window is ignored")
	assert.Zero(t, md.MarketCap)
	assert.Len(t, warns, 5)
}

func TestExtractMetadataShareMismatch(t *testing.T) {
	g := grid.FromValues([][]any{
		{"COMPANY NAME", "ABC"},
		{"Number of shares", 30},
		{"Current Price", 100},
		{"Market Capitalization", 1000},
	})
	_, warns := ExtractMetadata(g, 3)
	require.NotEmpty(t, warns)
	assert.Equal(t, WarnShareMismatch, warns[len(warns)-1].Code)
}

func TestExtract(t *testing.T) {
	res, err := New().Extract(screenerGrid())
	require.NoError(t, err)

	tbl := res.Table
	assert.Equal(t, []string{"2021-03-31", "2022-03-31", "2023-03-31"}, tbl.Periods())

	sales, ok := tbl.Column(MetricSales)
	require.True(t, ok)
	assert.Equal(t, []float64{100, 120, 150}, sales)

	assert.Equal(t, 19.0, tbl.Value("2022-03-31", MetricNetProfit))
	assert.Equal(t, 230.0, tbl.Value("2023-03-31", MetricTotalAssets))
	assert.Equal(t, 26.0, tbl.Value("2023-03-31", MetricCFO))
	assert.Equal(t, 4.0, tbl.Value("2023-03-31", MetricNetCashFlow))
	assert.True(t, table.IsMissing(tbl.Value("2023-03-31", MetricRawMaterial)))
	assert.Equal(t, []string{MetricPrice}, tbl.Columns()[len(tbl.Columns())-1:], "PRICE row is appended after the sections")
	assert.Equal(t, 400.0, tbl.Value("2022-03-31", MetricPrice))

	assert.Equal(t, []string{"2022-12-31", "2023-03-31"}, res.Quarterly.Periods())
	assert.Equal(t, 40.0, res.Quarterly.Value("2023-03-31", MetricSales))
	assert.Equal(t, 150.0, tbl.Value("2023-03-31", MetricSales), "quarterly rows are not merged into annual data")

	assert.Equal(t, "XYZ Corp", res.Metadata.CompanyName)
	assert.Equal(t, 1, res.Coercion.Missing)
	assert.Len(t, res.Sections, 4)
	for _, w := range res.Warnings {
		assert.NotEqual(t, WarnSectionMissing, w.Code, w.String())
	}
}

func TestReadPriceTrailer(t *testing.T) {
	g := grid.FromValues([][]any{
		{"PROFIT & LOSS"},
		{"Report Date", date(2022, 3, 31), "", date(2023, 3, 31)},
		{"Sales", 1, 2, 3},
		{"PRICE:", 250, 999, "n/a"},
	})
	prices, stats, ok := ReadPriceTrailer(g, 0)
	require.True(t, ok)
	// the blank header cell drops its column, so 999 is never read
	assert.Equal(t, map[string]float64{"2022-03-31": 250}, prices)
	assert.Equal(t, 2, stats.Cells)
	assert.Equal(t, 1, stats.Missing)

	_, _, ok = ReadPriceTrailer(grid.FromValues([][]any{{"PROFIT & LOSS"}}), 0)
	assert.False(t, ok)
}

func TestExtractWithoutBalanceSheet(t *testing.T) {
	g := grid.FromValues([][]any{
		{"XYZ Corp", "XYZ Corp"},
		{"PROFIT & LOSS"},
		{"Report Date", "2022-03-31", "2023-03-31"},
		{"Sales", 100, 120},
		{"Net Profit", 10, 15},
	})

	res, err := New().Extract(g)
	require.NoError(t, err)
	assert.True(t, res.Table.Has(MetricSales))
	assert.True(t, res.Table.Has(MetricNetProfit))
	assert.False(t, res.Table.Has(MetricBorrowings))
	assert.False(t, res.Table.Has(MetricReserves))

	codes := map[string]int{}
	for _, w := range res.Warnings {
		codes[w.Code]++
	}
	assert.Equal(t, 3, codes[WarnSectionMissing])
	assert.Equal(t, 1, codes[WarnShortHistory])
	assert.Equal(t, 1, codes[WarnMetricMissing])
}

func TestExtractEndToEndScenario(t *testing.T) {
	rows := make([][]any, 18)
	rows[0] = []any{"XYZ Corp", "XYZ Corp"}
	rows[14] = []any{"PROFIT & LOSS"}
	rows[15] = []any{"Report Date", date(2022, 3, 31), date(2023, 3, 31)}
	rows[16] = []any{"Sales", 100, 120}
	rows[17] = []any{"Net Profit", 10, 15}

	res, err := New().Extract(grid.FromValues(rows))
	require.NoError(t, err)
	assert.Equal(t, []string{"2022-03-31", "2023-03-31"}, res.Table.Periods())

	sales, _ := res.Table.Column(MetricSales)
	profit, _ := res.Table.Column(MetricNetProfit)
	assert.Equal(t, []float64{100, 120}, sales)
	assert.Equal(t, []float64{10, 15}, profit)
	assert.Equal(t, "XYZ Corp", res.Metadata.CompanyName)
}

func TestExtractStructuralFailures(t *testing.T) {
	tests := []struct {
		name string
		g    *grid.Grid
	}{
		{"nil grid", nil},
		{"empty grid", grid.New(nil)},
		{"no p&l", grid.FromValues([][]any{{"BALANCE SHEET"}, {"Report Date", "2023-03-31"}})},
		{"p&l without dates", grid.FromValues([][]any{{"PROFIT & LOSS"}, {"Report Date", "FY23"}, {"Sales", 1}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New().Extract(tt.g)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, ErrStructural))

			var se *StructuralError
			assert.True(t, errors.As(err, &se))
			assert.NotEmpty(t, se.Reason)
		})
	}
}

func TestZeroExtractorUsesDefaults(t *testing.T) {
	var e Extractor
	res, err := e.Extract(screenerGrid())
	require.NoError(t, err)
	assert.True(t, res.Table.Has(MetricSales))
}

func TestInspect(t *testing.T) {
	ins := Inspect(screenerGrid(), 3)
	assert.Equal(t, "XYZ Corp", ins.Company)
	assert.Equal(t, []string{"2021-03-31", "2022-03-31", "2023-03-31"}, ins.Periods)

	var labels []string
	for _, m := range ins.Markers {
		labels = append(labels, m.Label)
	}
	assert.Equal(t, []string{"META", "PROFIT & LOSS", "QUARTERS", "BALANCE SHEET", "CASH FLOW:", "Net Cash Flow", "PRICE:"}, labels)
	assert.Len(t, ins.Metadata, 4)
}
