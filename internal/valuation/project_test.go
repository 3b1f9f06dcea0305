package valuation

import (
	"testing"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func appleHolding() model.Holding {
	return model.Holding{
		HoldingID:        1,
		PortfolioID:      1,
		Ticker:           "AAPL",
		Name:             "Apple Inc",
		Quantity:         decimal.NewFromInt(10),
		PurchasePrice:    decimal.NewFromFloat(243.04),
		PurchaseCurrency: "USD",
	}
}

func appleQuote() *model.MarketQuote {
	return &model.MarketQuote{
		Ticker:        "AAPL",
		CurrentPrice:  decimal.NewFromFloat(242.84),
		PreviousClose: decimal.NewFromFloat(240.00),
	}
}

func TestProjectRow(t *testing.T) {
	rates := usdRates()

	t.Run("original mode derives row figures", func(t *testing.T) {
		row := ProjectRow(appleHolding(), appleQuote(), rates, "KRW", model.DisplayOriginal)

		assert.Equal(t, "USD", row.Currency)
		assert.True(t, decimal.NewFromFloat(2430.40).Equal(row.TotalPurchase), "totalPurchase %s", row.TotalPurchase)
		assert.True(t, decimal.NewFromFloat(2428.40).Equal(row.CurrentValue), "currentValue %s", row.CurrentValue)
		assert.True(t, decimal.NewFromFloat(-2.00).Equal(row.TotalProfit), "totalProfit %s", row.TotalProfit)
		assert.True(t, decimal.NewFromFloat(28.40).Equal(row.DailyProfit), "dailyProfit %s", row.DailyProfit)
		assert.True(t, row.DividendTotal.IsZero())
		assert.True(t, row.DividendYield.IsZero())
	})

	t.Run("converted mode converts every monetary field", func(t *testing.T) {
		row := ProjectRow(appleHolding(), appleQuote(), rates, "KRW", model.DisplayConverted)

		assert.Equal(t, "KRW", row.Currency)
		wantPurchase := decimal.NewFromFloat(2430.40).Mul(decimal.NewFromFloat(1344.5))
		assert.True(t, wantPurchase.Equal(row.TotalPurchase), "totalPurchase %s", row.TotalPurchase)
		wantDaily := decimal.NewFromFloat(28.40).Mul(decimal.NewFromFloat(1344.5))
		assert.True(t, wantDaily.Equal(row.DailyProfit), "dailyProfit %s", row.DailyProfit)
	})

	t.Run("missing quote falls back to purchase price", func(t *testing.T) {
		row := ProjectRow(appleHolding(), nil, rates, "USD", model.DisplayOriginal)

		assert.True(t, row.TotalPurchase.Equal(row.CurrentValue))
		assert.True(t, row.TotalProfit.IsZero())
		assert.True(t, row.DailyProfit.IsZero())
		assert.True(t, row.DividendTotal.IsZero())
	})

	t.Run("dividend yield from dividend per share", func(t *testing.T) {
		quote := appleQuote()
		quote.DividendPerShare = decimal.NewFromFloat(10.0)

		row := ProjectRow(appleHolding(), quote, rates, "USD", model.DisplayOriginal)

		assert.True(t, decimal.NewFromInt(100).Equal(row.DividendTotal))
		wantYield := decimal.NewFromInt(100).Div(decimal.NewFromFloat(2430.40)).Mul(decimal.NewFromInt(100))
		assert.True(t, wantYield.Equal(row.DividendYield), "dividendYield %s", row.DividendYield)
	})

	t.Run("zero quantity guards per share and yield", func(t *testing.T) {
		h := appleHolding()
		h.Quantity = decimal.Zero
		quote := appleQuote()
		quote.DividendPerShare = decimal.NewFromFloat(10.0)

		row := ProjectRow(h, quote, rates, "USD", model.DisplayOriginal)

		assert.True(t, row.CurrentPrice.IsZero())
		assert.True(t, row.DividendYield.IsZero())
		assert.True(t, row.TotalPurchase.IsZero())
	})

	t.Run("unknown display currency degrades to unconverted", func(t *testing.T) {
		row := ProjectRow(appleHolding(), appleQuote(), rates, "GBP", model.DisplayConverted)

		// fail-soft: amounts stay in purchase-currency magnitude
		assert.True(t, decimal.NewFromFloat(2430.40).Equal(row.TotalPurchase))
		assert.Equal(t, "GBP", row.Currency)
	})
}
