package dbModel

import "github.com/shopspring/decimal"

type Holding struct {
	HoldingID        int64           `db:"holding_id"`
	PortfolioID      int64           `db:"portfolio_id"`
	Ticker           string          `db:"ticker"`
	Name             string          `db:"name"`
	Quantity         decimal.Decimal `db:"quantity"`
	PurchasePrice    decimal.Decimal `db:"purchase_price"`
	PurchaseCurrency string          `db:"purchase_currency"`
}
