package calc

import (
	"screener_valuation/pkg/core/extract"
	"screener_valuation/pkg/core/table"
)

// DuPont column names.
const (
	DuPontMargin     = "Net Margin"
	DuPontTurnover   = "Asset Turnover"
	EquityMultiplier = "Equity Multiplier"
	DuPontROE        = "ROE %"
)

// Common-size column suffixes.
const (
	OfSales  = " % of Sales"
	OfAssets = " % of Assets"
)

// commonSizeIncome are the P&L lines scaled by Sales.
var commonSizeIncome = []string{
	extract.MetricRawMaterial,
	extract.MetricPowerFuel,
	extract.MetricOtherMfr,
	extract.MetricEmployeeCost,
	extract.MetricSellingAdmin,
	extract.MetricOtherExpenses,
	extract.MetricExpenses,
	extract.MetricOperatingProfit,
	extract.MetricOtherIncome,
	extract.MetricDepreciation,
	extract.MetricInterest,
	extract.MetricPBT,
	extract.MetricTax,
	extract.MetricNetProfit,
	extract.MetricDividend,
}

// commonSizeBalance are the balance sheet lines scaled by Total Assets.
var commonSizeBalance = []string{
	extract.MetricEquityCapital,
	extract.MetricReserves,
	extract.MetricBorrowings,
	extract.MetricOtherLiabilities,
	extract.MetricNetBlock,
	extract.MetricCWIP,
	extract.MetricInvestments,
	extract.MetricOtherAssets,
	extract.MetricReceivables,
	extract.MetricInventory,
	extract.MetricCash,
}

// CommonSize expresses every extracted P&L line as a percentage of Sales and every
// balance sheet line as a percentage of Total Assets. Lines the workbook does not
// carry are left out rather than reported as zero.
func CommonSize(t *table.Table) *table.Table {
	cols := map[string][]float64{}
	var order []string

	sizeBy := func(lines []string, base, suffix string) {
		if !t.Has(base) {
			return
		}
		denom := column(t, base)
		for _, name := range lines {
			if !t.Has(name) {
				continue
			}
			key := name + suffix
			cols[key] = scale(divide(column(t, name), denom), 100)
			order = append(order, key)
		}
	}
	sizeBy(commonSizeIncome, extract.MetricSales, OfSales)
	sizeBy(commonSizeBalance, extract.MetricTotalAssets, OfAssets)

	return table.FromColumns(t.Periods(), order, cols)
}

// DuPont splits return on equity into margin, asset turnover and the equity
// multiplier, using closing balances. ROE % is their product, so it agrees with
// the Profitability ROE whenever all three factors are defined.
func DuPont(t *table.Table) *table.Table {
	sales := column(t, extract.MetricSales)
	assets := column(t, extract.MetricTotalAssets)

	margin := divide(column(t, extract.MetricNetProfit), sales)
	turnover := divide(sales, assets)
	multiplier := divide(assets, equity(t))

	return table.FromColumns(t.Periods(),
		[]string{DuPontMargin, DuPontTurnover, EquityMultiplier, DuPontROE},
		map[string][]float64{
			DuPontMargin:     margin,
			DuPontTurnover:   turnover,
			EquityMultiplier: multiplier,
			DuPontROE:        scale(mul(mul(margin, turnover), multiplier), 100),
		})
}
