// Package valuation derives per-holding display rows and table totals
// from holdings, market quotes and the exchange-rate table. Everything
// in this package is pure: inputs are snapshots taken by the caller and
// no function touches shared state.
package valuation

import (
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

// Convert converts amount between currencies through the base currency
// implied by the rate table. When from == to the amount is returned
// exactly as given. When either code is missing from the table (or its
// rate is zero) the amount is also returned unchanged: conversion is
// fail-soft and callers fall back to unconverted figures. Note that an
// unconverted amount is indistinguishable from a converted one to the
// caller; this keeps compatibility with existing display behavior.
func Convert(amount decimal.Decimal, from, to string, rates model.RateTable) decimal.Decimal {
	if from == to {
		return amount
	}

	rateFrom, okFrom := rates.Rates[from]
	rateTo, okTo := rates.Rates[to]
	if !okFrom || !okTo || rateFrom.IsZero() {
		return amount
	}

	return amount.Div(rateFrom).Mul(rateTo)
}
