package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionBuy  TransactionType = "BUY"
	TransactionSell TransactionType = "SELL"
)

type Transaction struct {
	TransactionID int64
	PortfolioID   int64
	Ticker        string
	Type          TransactionType
	Quantity      decimal.Decimal
	Price         decimal.Decimal
	Currency      string
	CreatedAt     time.Time
}

type TransactionsPage struct {
	Transactions []Transaction
	CurPage      int
	HasNextPage  bool
}
