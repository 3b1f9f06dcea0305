package valuation

import (
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ProjectRow derives the display fields for one holding. A nil quote
// means the market feed has nothing for the ticker yet: the holding's
// own purchase price stands in as both current price and previous
// close, so profit and daily movement come out zero instead of
// garbage. mode selects whether monetary fields are reported in the
// holding's purchase currency or converted into displayCurrency.
// No rounding happens here; formatting is the caller's concern.
func ProjectRow(
	h model.Holding,
	quote *model.MarketQuote,
	rates model.RateTable,
	displayCurrency string,
	mode model.DisplayMode,
) model.ProjectedRow {
	currentPrice := h.PurchasePrice
	previousClose := h.PurchasePrice
	dividendPerShare := decimal.Zero

	if quote != nil {
		currentPrice = quote.CurrentPrice
		previousClose = quote.PreviousClose
		dividendPerShare = quote.DividendPerShare
	}

	totalPurchase := h.PurchasePrice.Mul(h.Quantity)
	currentValue := currentPrice.Mul(h.Quantity)
	dividendTotal := dividendPerShare.Mul(h.Quantity)
	totalProfit := currentPrice.Sub(h.PurchasePrice).Mul(h.Quantity)
	dailyProfit := currentPrice.Sub(previousClose).Mul(h.Quantity)

	// The yield is a ratio, so it is the same in any currency; computed
	// before conversion, guarded against a zero purchase total.
	dividendYield := decimal.Zero
	if dividendTotal.IsPositive() && totalPurchase.IsPositive() {
		dividendYield = dividendTotal.Div(totalPurchase).Mul(hundred)
	}

	// Per-share price is only meaningful for a non-empty position.
	perShare := decimal.Zero
	if h.Quantity.IsPositive() {
		perShare = currentPrice
	}

	row := model.ProjectedRow{
		Holding:       h,
		Currency:      h.PurchaseCurrency,
		CurrentPrice:  perShare,
		TotalPurchase: totalPurchase,
		CurrentValue:  currentValue,
		DividendTotal: dividendTotal,
		DividendYield: dividendYield,
		TotalProfit:   totalProfit,
		DailyProfit:   dailyProfit,
	}

	if mode == model.DisplayConverted {
		row.Currency = displayCurrency
		row.CurrentPrice = Convert(row.CurrentPrice, h.PurchaseCurrency, displayCurrency, rates)
		row.TotalPurchase = Convert(row.TotalPurchase, h.PurchaseCurrency, displayCurrency, rates)
		row.CurrentValue = Convert(row.CurrentValue, h.PurchaseCurrency, displayCurrency, rates)
		row.DividendTotal = Convert(row.DividendTotal, h.PurchaseCurrency, displayCurrency, rates)
		row.TotalProfit = Convert(row.TotalProfit, h.PurchaseCurrency, displayCurrency, rates)
		row.DailyProfit = Convert(row.DailyProfit, h.PurchaseCurrency, displayCurrency, rates)
	}

	return row
}
