package model

import "github.com/shopspring/decimal"

// DisplayMode selects the currency each monetary field of a projected
// row is reported in: the holding's own purchase currency or the
// portfolio's display currency.
type DisplayMode string

const (
	DisplayOriginal  DisplayMode = "original"
	DisplayConverted DisplayMode = "converted"
)

type Holding struct {
	HoldingID        int64
	PortfolioID      int64
	Ticker           string
	Name             string
	Quantity         decimal.Decimal
	PurchasePrice    decimal.Decimal // average price per share
	PurchaseCurrency string
}

// ProjectedRow is the derived per-holding view: never persisted,
// recomputed from Holding x MarketQuote x RateTable on every request.
type ProjectedRow struct {
	Holding
	Currency      string // currency all monetary fields below are reported in
	CurrentPrice  decimal.Decimal
	TotalPurchase decimal.Decimal
	CurrentValue  decimal.Decimal
	DividendTotal decimal.Decimal
	DividendYield decimal.Decimal // percent
	TotalProfit   decimal.Decimal
	DailyProfit   decimal.Decimal
}

// AggregateTotals is the fold of a set of projected rows. Applicable is
// false when the rows span more than one original currency and the sum
// would be a meaningless cross-currency figure.
type AggregateTotals struct {
	Applicable    bool
	Currency      string
	Quantity      decimal.Decimal
	TotalPurchase decimal.Decimal
	CurrentValue  decimal.Decimal
	DividendTotal decimal.Decimal
	DividendYield decimal.Decimal
	TotalProfit   decimal.Decimal
	DailyProfit   decimal.Decimal
}

type HoldingsPage struct {
	PortfolioID     int64
	PortfolioName   string
	DisplayCurrency string
	Mode            DisplayMode
	Rows            []ProjectedRow
	Totals          AggregateTotals
	CurPage         int
	HasNextPage     bool
}
