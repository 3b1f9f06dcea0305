package valuation

import (
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

// Aggregate folds projected rows into column totals. Rows are summed in
// whatever currency they were projected in: converted-mode rows all
// share the display currency; original-mode rows are only summable when
// every row carries the same purchase currency. A mixed-currency row
// set yields Applicable == false with quantity summed and all monetary
// totals zeroed, instead of a misleading cross-currency sum.
//
// The dividend yield total is not a sum of row yields: it is recomputed
// as sum(dividendTotal) / sum(totalPurchase) * 100, zero when the
// purchase total is zero. Decimal addition is exact, so the fold is
// order-independent.
func Aggregate(rows []model.ProjectedRow) model.AggregateTotals {
	totals := model.AggregateTotals{Applicable: true}

	for _, row := range rows {
		totals.Quantity = totals.Quantity.Add(row.Quantity)

		if totals.Currency == "" {
			totals.Currency = row.Currency
		} else if totals.Currency != row.Currency {
			totals.Applicable = false
		}
	}

	if !totals.Applicable {
		totals.Currency = ""
		return totals
	}

	for _, row := range rows {
		totals.TotalPurchase = totals.TotalPurchase.Add(row.TotalPurchase)
		totals.CurrentValue = totals.CurrentValue.Add(row.CurrentValue)
		totals.DividendTotal = totals.DividendTotal.Add(row.DividendTotal)
		totals.TotalProfit = totals.TotalProfit.Add(row.TotalProfit)
		totals.DailyProfit = totals.DailyProfit.Add(row.DailyProfit)
	}

	if totals.TotalPurchase.IsPositive() {
		totals.DividendYield = totals.DividendTotal.Div(totals.TotalPurchase).Mul(hundred)
	} else {
		totals.DividendYield = decimal.Zero
	}

	return totals
}
