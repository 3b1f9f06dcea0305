package model

import "github.com/shopspring/decimal"

// RateTable maps currency codes to their rate relative to Base.
// Replaced wholesale on refresh, never partially mutated.
// Invariant: Rates[Base] == 1.
type RateTable struct {
	Base  string
	Rates map[string]decimal.Decimal
}

func (t RateTable) IsEmpty() bool {
	return len(t.Rates) == 0
}
