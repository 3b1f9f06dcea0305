package portfolioService

import (
	"context"
	"sync"
	"testing"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeed struct {
	quotes map[string]model.MarketQuote
}

func (f *fakeFeed) SetTickers(ctx context.Context, tickers []string) {}

func (f *fakeFeed) Snapshot() map[string]model.MarketQuote { return f.quotes }

type fakeRates struct {
	table model.RateTable
}

func (f *fakeRates) Snapshot() model.RateTable { return f.table }

type fakeMarketApi struct {
	mu     sync.Mutex
	quotes map[string]model.MarketQuote
	calls  []string
}

func (f *fakeMarketApi) GetQuote(ctx context.Context, ticker string) (model.MarketQuote, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ticker)
	f.mu.Unlock()
	return f.quotes[ticker], nil
}

func TestGetPortfolioAssets(t *testing.T) {
	const userID = int64(1)
	const portfolioID = int64(100)

	usdRates := model.RateTable{
		Base: "USD",
		Rates: map[string]decimal.Decimal{
			"USD": decimal.NewFromInt(1),
			"KRW": decimal.NewFromFloat(1344.5),
		},
	}

	newHolding := func(ticker string, quantity, price int64) model.Holding {
		return model.Holding{
			PortfolioID:      portfolioID,
			Ticker:           ticker,
			Name:             ticker,
			Quantity:         decimal.NewFromInt(quantity),
			PurchasePrice:    decimal.NewFromInt(price),
			PurchaseCurrency: "USD",
		}
	}

	setup := func(feed *fakeFeed, api *fakeMarketApi) (*fakeRepo, *PortfolioService) {
		repo := newFakeRepo()
		repo.portfolios[portfolioID] = model.Portfolio{PortfolioID: portfolioID, UserID: userID, Name: "main", DisplayCurrency: "KRW"}

		cfg := &config.Config{HoldingsPerPage: 10, TransactionsPerPage: 10, PortfoliosPerPage: 10}
		srv := New(cfg, repo, &fakeCache{}, nil, api, feed, &fakeRates{table: usdRates}, nil, nil)
		return repo, srv
	}

	t.Run("feed quote wins over api", func(t *testing.T) {
		feed := &fakeFeed{quotes: map[string]model.MarketQuote{
			"AAPL": {Ticker: "AAPL", CurrentPrice: decimal.NewFromInt(250), PreviousClose: decimal.NewFromInt(240)},
		}}
		api := &fakeMarketApi{}
		repo, srv := setup(feed, api)
		repo.holdings[holdingKey{portfolioID, "AAPL"}] = newHolding("AAPL", 10, 200)

		assets, err := srv.GetPortfolioAssets(context.Background(), userID, portfolioID, 1, model.DisplayOriginal)
		require.NoError(t, err)
		require.Len(t, assets.Rows, 1)

		row := assets.Rows[0]
		assert.True(t, row.CurrentPrice.Equal(decimal.NewFromInt(250)))
		assert.True(t, row.TotalProfit.Equal(decimal.NewFromInt(500)))
		assert.True(t, row.DailyProfit.Equal(decimal.NewFromInt(100)))
		assert.Empty(t, api.calls, "feed hit must not reach the api")
	})

	t.Run("api fills tickers missing from feed", func(t *testing.T) {
		feed := &fakeFeed{quotes: map[string]model.MarketQuote{}}
		api := &fakeMarketApi{quotes: map[string]model.MarketQuote{
			"MSFT": {Ticker: "MSFT", CurrentPrice: decimal.NewFromInt(400), PreviousClose: decimal.NewFromInt(390)},
		}}
		repo, srv := setup(feed, api)
		repo.holdings[holdingKey{portfolioID, "MSFT"}] = newHolding("MSFT", 2, 300)

		assets, err := srv.GetPortfolioAssets(context.Background(), userID, portfolioID, 1, model.DisplayOriginal)
		require.NoError(t, err)
		require.Len(t, assets.Rows, 1)

		assert.Equal(t, []string{"MSFT"}, api.calls)
		assert.True(t, assets.Rows[0].CurrentPrice.Equal(decimal.NewFromInt(400)))
	})

	t.Run("converted mode reports display currency", func(t *testing.T) {
		feed := &fakeFeed{quotes: map[string]model.MarketQuote{
			"AAPL": {Ticker: "AAPL", CurrentPrice: decimal.NewFromInt(250), PreviousClose: decimal.NewFromInt(240)},
		}}
		repo, srv := setup(feed, &fakeMarketApi{})
		repo.holdings[holdingKey{portfolioID, "AAPL"}] = newHolding("AAPL", 10, 200)

		assets, err := srv.GetPortfolioAssets(context.Background(), userID, portfolioID, 1, model.DisplayConverted)
		require.NoError(t, err)
		require.Len(t, assets.Rows, 1)

		row := assets.Rows[0]
		assert.Equal(t, "KRW", row.Currency)
		wantValue := decimal.NewFromInt(2500).Mul(decimal.NewFromFloat(1344.5))
		assert.True(t, row.CurrentValue.Equal(wantValue), "got %s", row.CurrentValue)

		assert.True(t, assets.Totals.Applicable)
		assert.Equal(t, "KRW", assets.Totals.Currency)
	})

	t.Run("mixed currencies make totals not applicable", func(t *testing.T) {
		feed := &fakeFeed{quotes: map[string]model.MarketQuote{}}
		api := &fakeMarketApi{quotes: map[string]model.MarketQuote{
			"AAPL": {Ticker: "AAPL", CurrentPrice: decimal.NewFromInt(250)},
			"SMSN": {Ticker: "SMSN", CurrentPrice: decimal.NewFromInt(70000)},
		}}
		repo, srv := setup(feed, api)
		repo.holdings[holdingKey{portfolioID, "AAPL"}] = newHolding("AAPL", 10, 200)
		krw := newHolding("SMSN", 5, 60000)
		krw.PurchaseCurrency = "KRW"
		repo.holdings[holdingKey{portfolioID, "SMSN"}] = krw

		assets, err := srv.GetPortfolioAssets(context.Background(), userID, portfolioID, 1, model.DisplayOriginal)
		require.NoError(t, err)

		assert.False(t, assets.Totals.Applicable)
		assert.Empty(t, assets.Totals.Currency)
	})
}
