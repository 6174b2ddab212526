package extract

// Canonical metric names used by the metric engine.
const (
	MetricSales            = "Sales"
	MetricRawMaterial      = "Raw Material Cost"
	MetricInventoryChange  = "Change in Inventory"
	MetricPowerFuel        = "Power and Fuel"
	MetricOtherMfr         = "Other Mfr. Exp"
	MetricEmployeeCost     = "Employee Cost"
	MetricSellingAdmin     = "Selling and admin"
	MetricOtherExpenses    = "Other Expenses"
	MetricOtherIncome      = "Other Income"
	MetricDepreciation     = "Depreciation"
	MetricInterest         = "Interest"
	MetricPBT              = "Profit Before Tax"
	MetricTax              = "Tax"
	MetricNetProfit        = "Net Profit"
	MetricDividend         = "Dividend Amount"
	MetricExpenses         = "Expenses"
	MetricOperatingProfit  = "Operating Profit"
	MetricEquityCapital    = "Equity Share Capital"
	MetricReserves         = "Reserves"
	MetricBorrowings       = "Borrowings"
	MetricOtherLiabilities = "Other Liabilities"
	MetricTotalAssets      = "Total Assets"
	MetricNetBlock         = "Net Block"
	MetricCWIP             = "Capital Work in Progress"
	MetricInvestments      = "Investments"
	MetricOtherAssets      = "Other Assets"
	MetricReceivables      = "Trade Receivables"
	MetricInventory        = "Inventory"
	MetricCash             = "Cash & Bank"
	MetricShares           = "No. of Equity Shares"
	MetricBonusShares      = "New Bonus Shares"
	MetricFaceValue        = "Face Value"
	MetricCFO              = "Cash From Operating Activity"
	MetricCFI              = "Cash From Investing Activity"
	MetricCFF              = "Cash From Financing Activity"
	MetricNetCashFlow      = "Net Cash Flow"
	MetricAdjustedShares   = "Adjusted Equity Shares In Cr"
	MetricPrice            = "Price"
)

// DefaultAliasEntries is the label vocabulary of Screener exports and common
// statement synonyms. Exact entries come first; contains entries are tried in order.
var DefaultAliasEntries = []AliasEntry{
	{Canonical: MetricSales, Labels: []string{"Revenue", "Revenue From Operations", "Net Sales", "Total Revenue", "Sales Turnover", "Revenue from Operations (net)"}},
	{Canonical: MetricRawMaterial, Labels: []string{"Raw Materials", "Cost of Materials Consumed", "Material Cost"}},
	{Canonical: MetricInventoryChange, Labels: []string{"Change in Inventories", "Changes in Inventories"}},
	{Canonical: MetricPowerFuel, Labels: []string{"Power & Fuel"}},
	{Canonical: MetricOtherMfr, Labels: []string{"Other Mfr Exp", "Other Manufacturing Expenses"}},
	{Canonical: MetricEmployeeCost, Labels: []string{"Employee Benefit Expenses", "Employee Benefits Expense", "Staff Cost"}},
	{Canonical: MetricSellingAdmin, Labels: []string{"Selling and Admin Expenses", "Selling & Admin", "SG&A"}},
	{Canonical: MetricOtherExpenses, Labels: []string{"Other Expense"}},
	{Canonical: MetricOtherIncome, Labels: []string{"Other Operating Income"}},
	{Canonical: MetricDepreciation, Labels: []string{"Depreciation & Amortization", "Depreciation and Amortisation", "D&A"}},
	{Canonical: MetricInterest, Labels: []string{"Finance Costs", "Finance Cost", "Interest Expense", "Interest Paid"}},
	{Canonical: MetricPBT, Labels: []string{"PBT", "Profit before tax", "Profit / (Loss) Before Tax"}},
	{Canonical: MetricTax, Labels: []string{"Tax Expense", "Total Tax Expense", "Income Tax"}},
	{Canonical: MetricNetProfit, Labels: []string{"Net profit", "Profit After Tax", "PAT", "Net Income", "Profit for the Year"}},
	{Canonical: MetricDividend, Labels: []string{"Dividend", "Dividend Paid"}},
	{Canonical: MetricExpenses, Labels: []string{"Total Expenses"}},
	{Canonical: MetricOperatingProfit, Labels: []string{"EBITDA", "Operating Profit (EBITDA)"}},
	{Canonical: MetricEquityCapital, Labels: []string{"Share Capital", "Equity Capital"}},
	{Canonical: MetricReserves, Labels: []string{"Reserves and Surplus", "Reserves & Surplus", "Other Equity"}},
	{Canonical: MetricBorrowings, Labels: []string{"Total Debt", "Debt", "Borrowing", "Total Borrowings"}},
	{Canonical: MetricOtherLiabilities, Labels: []string{"Other Liabilities & Provisions"}},
	{Canonical: MetricTotalAssets, Labels: []string{"Total", "Total Liabilities and Equity", "Total Liabilities & Equity", "Balance Sheet Total"}},
	{Canonical: MetricNetBlock, Labels: []string{"Fixed Assets", "Net Fixed Assets"}},
	{Canonical: MetricCWIP, Labels: []string{"CWIP", "Capital Work-in-Progress"}},
	{Canonical: MetricInvestments, Labels: []string{"Total Investments"}},
	{Canonical: MetricOtherAssets, Labels: []string{"Other Asset"}},
	{Canonical: MetricReceivables, Labels: []string{"Receivables", "Debtors", "Sundry Debtors", "Trade Receivable"}},
	{Canonical: MetricInventory, Labels: []string{"Inventories", "Stock"}},
	{Canonical: MetricCash, Labels: []string{"Cash and Bank", "Cash", "Cash & Equivalents", "Cash and Cash Equivalents"}},
	{Canonical: MetricShares, Labels: []string{"Number of Equity Shares", "No of Equity Shares"}},
	{Canonical: MetricBonusShares, Labels: []string{"Bonus Shares"}},
	{Canonical: MetricFaceValue, Labels: []string{"Face value"}},
	{Canonical: MetricAdjustedShares, Labels: []string{"Adjusted Equity Shares"}},

	{Canonical: MetricCFO, Labels: []string{"cash from operating", "operating activities"}, Mode: MatchContains},
	{Canonical: MetricCFI, Labels: []string{"cash from investing", "investing activities"}, Mode: MatchContains},
	{Canonical: MetricCFF, Labels: []string{"cash from financing", "financing activities"}, Mode: MatchContains},
	{Canonical: MetricPBT, Labels: []string{"before tax"}, Mode: MatchContains},
	{Canonical: MetricDepreciation, Labels: []string{"depreciation"}, Mode: MatchContains},
	{Canonical: MetricInterest, Labels: []string{"finance cost"}, Mode: MatchContains},
	{Canonical: MetricEmployeeCost, Labels: []string{"employee"}, Mode: MatchContains},
}

// DefaultAliases is built once at init and never mutated.
var DefaultAliases = NewAliasTable(DefaultAliasEntries)

// Canonicalize resolves a label against the default alias table.
func Canonicalize(label string) string {
	return DefaultAliases.Canonicalize(label)
}
