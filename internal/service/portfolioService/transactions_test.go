package portfolioService

import (
	"context"
	"sort"
	"testing"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/data/repository"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type holdingKey struct {
	portfolioID int64
	ticker      string
}

type fakeRepo struct {
	portfolios   map[int64]model.Portfolio
	holdings     map[holdingKey]model.Holding
	transactions map[int64]model.Transaction
	nextTxID     int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		portfolios:   make(map[int64]model.Portfolio),
		holdings:     make(map[holdingKey]model.Holding),
		transactions: make(map[int64]model.Transaction),
	}
}

func (r *fakeRepo) InsertUser(ctx context.Context, email, passwordHash string) (int64, error) {
	return 0, nil
}

func (r *fakeRepo) GetUserByEmail(ctx context.Context, email string) (model.User, string, error) {
	return model.User{}, "", repository.ErrNotFound
}

func (r *fakeRepo) CreatePortfolio(ctx context.Context, userID int64, name, displayCurrency string) (int64, error) {
	return 0, nil
}

func (r *fakeRepo) GetPortfolio(ctx context.Context, portfolioID int64) (model.Portfolio, error) {
	p, ok := r.portfolios[portfolioID]
	if !ok {
		return model.Portfolio{}, repository.ErrNotFound
	}
	return p, nil
}

func (r *fakeRepo) GetPortfolios(ctx context.Context, userID int64, limit, offset int) ([]model.Portfolio, bool, error) {
	return nil, false, nil
}

func (r *fakeRepo) UpdatePortfolio(ctx context.Context, portfolioID int64, name, displayCurrency *string) error {
	return nil
}

func (r *fakeRepo) DeletePortfolio(ctx context.Context, portfolioID int64) error {
	return nil
}

func (r *fakeRepo) GetHolding(ctx context.Context, portfolioID int64, ticker string) (model.Holding, error) {
	h, ok := r.holdings[holdingKey{portfolioID, ticker}]
	if !ok {
		return model.Holding{}, repository.ErrNotFound
	}
	return h, nil
}

func (r *fakeRepo) GetHoldingsPage(ctx context.Context, portfolioID int64, limit, offset int) ([]model.Holding, bool, error) {
	holdings, _ := r.GetHoldings(ctx, portfolioID)
	if offset >= len(holdings) {
		return nil, false, nil
	}
	holdings = holdings[offset:]
	hasNextPage := len(holdings) > limit
	if hasNextPage {
		holdings = holdings[:limit]
	}
	return holdings, hasNextPage, nil
}

func (r *fakeRepo) GetHoldings(ctx context.Context, portfolioID int64) ([]model.Holding, error) {
	holdings := make([]model.Holding, 0)
	for key, h := range r.holdings {
		if key.portfolioID == portfolioID {
			holdings = append(holdings, h)
		}
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Ticker < holdings[j].Ticker })
	return holdings, nil
}

func (r *fakeRepo) GetDistinctTickers(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (r *fakeRepo) UpsertHolding(ctx context.Context, holding model.Holding) error {
	r.holdings[holdingKey{holding.PortfolioID, holding.Ticker}] = holding
	return nil
}

func (r *fakeRepo) DeleteHolding(ctx context.Context, portfolioID int64, ticker string) error {
	key := holdingKey{portfolioID, ticker}
	if _, ok := r.holdings[key]; !ok {
		return repository.ErrNotFound
	}
	delete(r.holdings, key)
	return nil
}

func (r *fakeRepo) InsertTransaction(ctx context.Context, transaction model.Transaction) (int64, error) {
	r.nextTxID++
	transaction.TransactionID = r.nextTxID
	r.transactions[r.nextTxID] = transaction
	return r.nextTxID, nil
}

func (r *fakeRepo) GetTransaction(ctx context.Context, transactionID int64) (model.Transaction, error) {
	t, ok := r.transactions[transactionID]
	if !ok {
		return model.Transaction{}, repository.ErrNotFound
	}
	return t, nil
}

func (r *fakeRepo) GetTransactionsPage(ctx context.Context, portfolioID int64, limit, offset int) ([]model.Transaction, bool, error) {
	return nil, false, nil
}

func (r *fakeRepo) DeleteTransaction(ctx context.Context, transactionID int64) error {
	delete(r.transactions, transactionID)
	return nil
}

func (r *fakeRepo) WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error {
	return tFunc(ctx)
}

type fakeCache struct {
	flushed []int64
}

func (c *fakeCache) GetQuotes(ctx context.Context, tickers []string) (map[string]model.MarketQuote, []string, error) {
	return nil, tickers, nil
}

func (c *fakeCache) SetQuotes(ctx context.Context, quotes []model.MarketQuote) error { return nil }

func (c *fakeCache) GetAssetsPage(ctx context.Context, portfolioID int64, page int, mode model.DisplayMode) (model.HoldingsPage, error) {
	return model.HoldingsPage{}, service.ErrNotFound
}

func (c *fakeCache) SetAssetsPage(ctx context.Context, portfolioID int64, page int, mode model.DisplayMode, assets model.HoldingsPage) error {
	return nil
}

func (c *fakeCache) FlushPortfolio(ctx context.Context, portfolioID int64) error {
	c.flushed = append(c.flushed, portfolioID)
	return nil
}

func newTestService(repo *fakeRepo, cache *fakeCache) *PortfolioService {
	cfg := &config.Config{HoldingsPerPage: 10, TransactionsPerPage: 10, PortfoliosPerPage: 10}
	return New(cfg, repo, cache, nil, nil, nil, nil, nil, nil)
}

func TestCreateTransaction(t *testing.T) {
	const userID = int64(1)
	const portfolioID = int64(100)

	setup := func() (*fakeRepo, *fakeCache, *PortfolioService) {
		repo := newFakeRepo()
		repo.portfolios[portfolioID] = model.Portfolio{PortfolioID: portfolioID, UserID: userID, Name: "main", DisplayCurrency: "USD"}
		cache := &fakeCache{}
		return repo, cache, newTestService(repo, cache)
	}

	buy := func(quantity, price string) model.Transaction {
		return model.Transaction{
			PortfolioID: portfolioID,
			Ticker:      "AAPL",
			Type:        model.TransactionBuy,
			Quantity:    decimal.RequireFromString(quantity),
			Price:       decimal.RequireFromString(price),
			Currency:    "USD",
		}
	}

	t.Run("buy creates holding", func(t *testing.T) {
		repo, cache, srv := setup()

		created, err := srv.CreateTransaction(context.Background(), userID, buy("10", "100"), "Apple Inc")
		require.NoError(t, err)
		assert.NotZero(t, created.TransactionID)

		h := repo.holdings[holdingKey{portfolioID, "AAPL"}]
		assert.Equal(t, "Apple Inc", h.Name)
		assert.True(t, h.Quantity.Equal(decimal.NewFromInt(10)))
		assert.True(t, h.PurchasePrice.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, "USD", h.PurchaseCurrency)
		assert.Contains(t, cache.flushed, portfolioID)
	})

	t.Run("second buy folds into weighted average", func(t *testing.T) {
		repo, _, srv := setup()

		_, err := srv.CreateTransaction(context.Background(), userID, buy("10", "100"), "Apple Inc")
		require.NoError(t, err)
		_, err = srv.CreateTransaction(context.Background(), userID, buy("30", "120"), "Apple Inc")
		require.NoError(t, err)

		// (10*100 + 30*120) / 40 = 115
		h := repo.holdings[holdingKey{portfolioID, "AAPL"}]
		assert.True(t, h.Quantity.Equal(decimal.NewFromInt(40)))
		assert.True(t, h.PurchasePrice.Equal(decimal.NewFromInt(115)), "got %s", h.PurchasePrice)
	})

	t.Run("sell decrements and keeps average price", func(t *testing.T) {
		repo, _, srv := setup()

		_, err := srv.CreateTransaction(context.Background(), userID, buy("10", "100"), "Apple Inc")
		require.NoError(t, err)

		sell := buy("4", "150")
		sell.Type = model.TransactionSell
		_, err = srv.CreateTransaction(context.Background(), userID, sell, "")
		require.NoError(t, err)

		h := repo.holdings[holdingKey{portfolioID, "AAPL"}]
		assert.True(t, h.Quantity.Equal(decimal.NewFromInt(6)))
		assert.True(t, h.PurchasePrice.Equal(decimal.NewFromInt(100)))
	})

	t.Run("sell to zero removes holding", func(t *testing.T) {
		repo, _, srv := setup()

		_, err := srv.CreateTransaction(context.Background(), userID, buy("10", "100"), "Apple Inc")
		require.NoError(t, err)

		sell := buy("10", "150")
		sell.Type = model.TransactionSell
		_, err = srv.CreateTransaction(context.Background(), userID, sell, "")
		require.NoError(t, err)

		_, ok := repo.holdings[holdingKey{portfolioID, "AAPL"}]
		assert.False(t, ok)
	})

	t.Run("oversell rejected", func(t *testing.T) {
		repo, _, srv := setup()

		_, err := srv.CreateTransaction(context.Background(), userID, buy("10", "100"), "Apple Inc")
		require.NoError(t, err)

		sell := buy("11", "150")
		sell.Type = model.TransactionSell
		_, err = srv.CreateTransaction(context.Background(), userID, sell, "")
		assert.ErrorIs(t, err, service.ErrInsufficientQuantity)

		h := repo.holdings[holdingKey{portfolioID, "AAPL"}]
		assert.True(t, h.Quantity.Equal(decimal.NewFromInt(10)))
	})

	t.Run("currency mismatch rejected", func(t *testing.T) {
		_, _, srv := setup()

		_, err := srv.CreateTransaction(context.Background(), userID, buy("10", "100"), "Apple Inc")
		require.NoError(t, err)

		other := buy("5", "90000")
		other.Currency = "KRW"
		_, err = srv.CreateTransaction(context.Background(), userID, other, "Apple Inc")
		assert.ErrorIs(t, err, service.ErrCurrencyMismatch)
	})

	t.Run("sell without holding rejected", func(t *testing.T) {
		_, _, srv := setup()

		sell := buy("1", "100")
		sell.Type = model.TransactionSell
		_, err := srv.CreateTransaction(context.Background(), userID, sell, "")
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("foreign portfolio rejected", func(t *testing.T) {
		_, _, srv := setup()

		_, err := srv.CreateTransaction(context.Background(), int64(2), buy("10", "100"), "Apple Inc")
		assert.ErrorIs(t, err, service.ErrAccessDenied)
	})
}

func TestTransferHolding(t *testing.T) {
	const userID = int64(1)
	const fromID = int64(100)
	const toID = int64(200)

	setup := func() (*fakeRepo, *PortfolioService) {
		repo := newFakeRepo()
		repo.portfolios[fromID] = model.Portfolio{PortfolioID: fromID, UserID: userID, Name: "a", DisplayCurrency: "USD"}
		repo.portfolios[toID] = model.Portfolio{PortfolioID: toID, UserID: userID, Name: "b", DisplayCurrency: "USD"}
		return repo, newTestService(repo, &fakeCache{})
	}

	t.Run("moves holding to empty target", func(t *testing.T) {
		repo, srv := setup()
		repo.holdings[holdingKey{fromID, "AAPL"}] = model.Holding{
			PortfolioID:      fromID,
			Ticker:           "AAPL",
			Quantity:         decimal.NewFromInt(10),
			PurchasePrice:    decimal.NewFromInt(100),
			PurchaseCurrency: "USD",
		}

		err := srv.TransferHolding(context.Background(), userID, fromID, toID, "AAPL")
		require.NoError(t, err)

		_, ok := repo.holdings[holdingKey{fromID, "AAPL"}]
		assert.False(t, ok)

		moved := repo.holdings[holdingKey{toID, "AAPL"}]
		assert.Equal(t, toID, moved.PortfolioID)
		assert.True(t, moved.Quantity.Equal(decimal.NewFromInt(10)))
	})

	t.Run("merges with existing target position", func(t *testing.T) {
		repo, srv := setup()
		repo.holdings[holdingKey{fromID, "AAPL"}] = model.Holding{
			PortfolioID:      fromID,
			Ticker:           "AAPL",
			Quantity:         decimal.NewFromInt(10),
			PurchasePrice:    decimal.NewFromInt(100),
			PurchaseCurrency: "USD",
		}
		repo.holdings[holdingKey{toID, "AAPL"}] = model.Holding{
			PortfolioID:      toID,
			Ticker:           "AAPL",
			Quantity:         decimal.NewFromInt(30),
			PurchasePrice:    decimal.NewFromInt(120),
			PurchaseCurrency: "USD",
		}

		err := srv.TransferHolding(context.Background(), userID, fromID, toID, "AAPL")
		require.NoError(t, err)

		merged := repo.holdings[holdingKey{toID, "AAPL"}]
		assert.True(t, merged.Quantity.Equal(decimal.NewFromInt(40)))
		assert.True(t, merged.PurchasePrice.Equal(decimal.NewFromInt(115)), "got %s", merged.PurchasePrice)
	})

	t.Run("currency mismatch rejected", func(t *testing.T) {
		repo, srv := setup()
		repo.holdings[holdingKey{fromID, "AAPL"}] = model.Holding{
			PortfolioID:      fromID,
			Ticker:           "AAPL",
			Quantity:         decimal.NewFromInt(10),
			PurchasePrice:    decimal.NewFromInt(100),
			PurchaseCurrency: "USD",
		}
		repo.holdings[holdingKey{toID, "AAPL"}] = model.Holding{
			PortfolioID:      toID,
			Ticker:           "AAPL",
			Quantity:         decimal.NewFromInt(5),
			PurchasePrice:    decimal.NewFromInt(130000),
			PurchaseCurrency: "KRW",
		}

		err := srv.TransferHolding(context.Background(), userID, fromID, toID, "AAPL")
		assert.ErrorIs(t, err, service.ErrCurrencyMismatch)
	})

	t.Run("missing source rejected", func(t *testing.T) {
		_, srv := setup()

		err := srv.TransferHolding(context.Background(), userID, fromID, toID, "AAPL")
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}
