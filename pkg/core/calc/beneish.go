package calc

import (
	"math"

	"screener_valuation/pkg/core/extract"
	"screener_valuation/pkg/core/table"
)

// Beneish column names.
const (
	DSRI   = "DSRI"
	GMI    = "GMI"
	AQI    = "AQI"
	SGI    = "SGI"
	DEPI   = "DEPI"
	SGAI   = "SGAI"
	LVGI   = "LVGI"
	TATA   = "TATA"
	MScore = "M-Score"
)

// MScoreThreshold separates likely manipulators (above) from non-manipulators.
const MScoreThreshold = -1.78

// BeneishMScore computes the 8-variable M-Score for every period against the one
// before it:
//
//	M = -4.84 + 0.92*DSRI + 0.528*GMI + 0.404*AQI + 0.892*SGI + 0.115*DEPI
//	    - 0.172*SGAI + 4.679*TATA - 0.327*LVGI
//
// The first period, and any period where an index is undefined, is NaN.
func BeneishMScore(t *table.Table) *table.Table {
	n := t.Len()
	sales := column(t, extract.MetricSales)
	receivables := column(t, extract.MetricReceivables)
	assets := column(t, extract.MetricTotalAssets)
	ppe := column(t, extract.MetricNetBlock)
	dep := column(t, extract.MetricDepreciation)
	sga := column(t, extract.MetricSellingAdmin)

	// cost of goods: manufacturing costs net of the inventory build
	cogs := sub(add(add(column(t, extract.MetricRawMaterial), column(t, extract.MetricPowerFuel)),
		column(t, extract.MetricOtherMfr)), column(t, extract.MetricInventoryChange))
	grossMargin := divide(sub(sales, cogs), sales)

	currentAssets := add(add(receivables, column(t, extract.MetricInventory)), column(t, extract.MetricCash))
	softAssets := make([]float64, n)
	for i := range softAssets {
		softAssets[i] = 1 - safeDiv(currentAssets[i]+ppe[i], assets[i])
	}

	receivableDays := divide(receivables, sales)
	depRate := divide(dep, add(ppe, dep))
	sgaRatio := divide(sga, sales)
	leverage := divide(add(column(t, extract.MetricBorrowings), column(t, extract.MetricOtherLiabilities)), assets)
	accruals := divide(sub(column(t, extract.MetricNetProfit), column(t, extract.MetricCFO)), assets)

	cols := map[string][]float64{}
	order := []string{DSRI, GMI, AQI, SGI, DEPI, SGAI, LVGI, TATA, MScore}
	for _, name := range order {
		cols[name] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		if i == 0 {
			for _, name := range order {
				cols[name][i] = math.NaN()
			}
			continue
		}
		// 1. Indices against the prior period
		dsri := safeDiv(receivableDays[i], receivableDays[i-1])
		gmi := safeDiv(grossMargin[i-1], grossMargin[i])
		aqi := safeDiv(softAssets[i], softAssets[i-1])
		sgi := safeDiv(sales[i], sales[i-1])
		depi := safeDiv(depRate[i-1], depRate[i])
		sgai := safeDiv(sgaRatio[i], sgaRatio[i-1])
		lvgi := safeDiv(leverage[i], leverage[i-1])
		tata := accruals[i]

		cols[DSRI][i] = dsri
		cols[GMI][i] = gmi
		cols[AQI][i] = aqi
		cols[SGI][i] = sgi
		cols[DEPI][i] = depi
		cols[SGAI][i] = sgai
		cols[LVGI][i] = lvgi
		cols[TATA][i] = tata

		// 2. Score; NaN in any index propagates
		cols[MScore][i] = -4.84 +
			0.920*dsri +
			0.528*gmi +
			0.404*aqi +
			0.892*sgi +
			0.115*depi -
			0.172*sgai +
			4.679*tata -
			0.327*lvgi
	}
	return table.FromColumns(t.Periods(), order, cols)
}
