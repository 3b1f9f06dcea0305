package model

import "github.com/shopspring/decimal"

// MarketQuote is the latest known price information for a ticker.
// The bulk fetch sets all fields; stream trade events overwrite
// CurrentPrice only.
type MarketQuote struct {
	Ticker           string          `json:"ticker"`
	CurrentPrice     decimal.Decimal `json:"currentPrice"`
	PreviousClose    decimal.Decimal `json:"previousClose"`
	DividendPerShare decimal.Decimal `json:"dividendPerShare"`
}

// Trade is a single trade event from the market-data stream.
type Trade struct {
	Symbol string
	Price  decimal.Decimal
}
