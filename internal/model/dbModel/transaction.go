package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	TransactionID int64           `db:"transaction_id"`
	PortfolioID   int64           `db:"portfolio_id"`
	Ticker        string          `db:"ticker"`
	Type          string          `db:"tx_type"`
	Quantity      decimal.Decimal `db:"quantity"`
	Price         decimal.Decimal `db:"price"`
	Currency      string          `db:"currency"`
	CreatedAt     time.Time       `db:"dt_create"`
}
