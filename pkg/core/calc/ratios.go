package calc

import (
	"screener_valuation/pkg/core/extract"
	"screener_valuation/pkg/core/table"
)

// Ratio column names.
const (
	NetMargin       = "Net Margin %"
	EBITMargin      = "EBIT Margin %"
	ROE             = "ROE %"
	ROA             = "ROA %"
	ROCE            = "ROCE %"
	DebtToEquity    = "Debt to Equity"
	InterestCover   = "Interest Coverage"
	Proprietary     = "Proprietary Ratio"
	AssetTurnover   = "Asset Turnover"
	InventoryTurns  = "Inventory Turnover"
	DebtorDays      = "Debtor Days"
	SalesGrowth     = "Sales Growth %"
	NetProfitGrowth = "Net Profit Growth %"
	PBTGrowth       = "PBT Growth %"
	EPS             = "EPS"
	BookValue       = "Book Value per Share"
	ShareChange     = "Share Count Change %"
)

// ebit is PBT plus interest, the operating profit before financing.
func ebit(t *table.Table) []float64 {
	return add(column(t, extract.MetricPBT), column(t, extract.MetricInterest))
}

// equity is share capital plus reserves.
func equity(t *table.Table) []float64 {
	return add(column(t, extract.MetricEquityCapital), column(t, extract.MetricReserves))
}

// Profitability computes margin and return ratios in percent.
func Profitability(t *table.Table) *table.Table {
	sales := column(t, extract.MetricSales)
	np := column(t, extract.MetricNetProfit)
	eq := equity(t)
	op := ebit(t)
	capital := add(eq, column(t, extract.MetricBorrowings))

	return table.FromColumns(t.Periods(), []string{NetMargin, EBITMargin, ROE, ROA, ROCE}, map[string][]float64{
		NetMargin:  scale(divide(np, sales), 100),
		EBITMargin: scale(divide(op, sales), 100),
		ROE:        scale(divide(np, eq), 100),
		ROA:        scale(divide(np, column(t, extract.MetricTotalAssets)), 100),
		ROCE:       scale(divide(op, capital), 100),
	})
}

// Solvency computes leverage and coverage ratios.
func Solvency(t *table.Table) *table.Table {
	eq := equity(t)

	return table.FromColumns(t.Periods(), []string{DebtToEquity, InterestCover, Proprietary}, map[string][]float64{
		DebtToEquity:  divide(column(t, extract.MetricBorrowings), eq),
		InterestCover: divide(ebit(t), column(t, extract.MetricInterest)),
		Proprietary:   divide(eq, column(t, extract.MetricTotalAssets)),
	})
}

// Efficiency computes turnover ratios. Inventory Turnover and Debtor Days are only
// produced when the table carries Inventory and Trade Receivables respectively.
func Efficiency(t *table.Table) *table.Table {
	sales := column(t, extract.MetricSales)

	order := []string{AssetTurnover}
	cols := map[string][]float64{
		AssetTurnover: divide(sales, column(t, extract.MetricTotalAssets)),
	}
	if t.Has(extract.MetricInventory) {
		order = append(order, InventoryTurns)
		cols[InventoryTurns] = divide(sales, column(t, extract.MetricInventory))
	}
	if t.Has(extract.MetricReceivables) {
		order = append(order, DebtorDays)
		cols[DebtorDays] = scale(divide(column(t, extract.MetricReceivables), sales), 365)
	}
	return table.FromColumns(t.Periods(), order, cols)
}

// Growth computes year-over-year growth in percent.
func Growth(t *table.Table) *table.Table {
	return table.FromColumns(t.Periods(), []string{SalesGrowth, NetProfitGrowth, PBTGrowth}, map[string][]float64{
		SalesGrowth:     pctChange(column(t, extract.MetricSales)),
		NetProfitGrowth: pctChange(column(t, extract.MetricNetProfit)),
		PBTGrowth:       pctChange(column(t, extract.MetricPBT)),
	})
}

// DilutionOptions controls per-share conversion.
type DilutionOptions struct {
	// UnitScale converts statement amounts to currency units (1e7 for crore).
	UnitScale float64
	// FallbackShares is used when the table has no share count column.
	FallbackShares float64
}

// Dilution computes per-share figures and the change in share count.
func Dilution(t *table.Table, opts DilutionOptions) *table.Table {
	if opts.UnitScale <= 0 {
		opts.UnitScale = 1
	}

	shares, ok := t.Column(extract.MetricShares)
	if !ok {
		shares = make([]float64, t.Len())
		for i := range shares {
			shares[i] = opts.FallbackShares
		}
	}

	return table.FromColumns(t.Periods(), []string{EPS, BookValue, ShareChange}, map[string][]float64{
		EPS:         divide(scale(column(t, extract.MetricNetProfit), opts.UnitScale), shares),
		BookValue:   divide(scale(equity(t), opts.UnitScale), shares),
		ShareChange: pctChange(shares),
	})
}
