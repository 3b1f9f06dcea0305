package portfolioService

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/KotFed0t/portfolio_tracker/data/repository"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/KotFed0t/portfolio_tracker/internal/valuation"
	"github.com/KotFed0t/portfolio_tracker/utils"
)

// GetPortfolioAssets returns one page of the portfolio's holdings
// projected against current market prices and exchange rates.
func (s *PortfolioService) GetPortfolioAssets(ctx context.Context, userID, portfolioID int64, page int, mode model.DisplayMode) (model.HoldingsPage, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetPortfolioAssets"

	slog.Debug("GetPortfolioAssets start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID), slog.Int("page", page))
	defer func() {
		slog.Debug("GetPortfolioAssets finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID), slog.Int("page", page))
	}()

	portfolio, err := s.getOwnedPortfolio(ctx, userID, portfolioID)
	if err != nil {
		return model.HoldingsPage{}, err
	}

	assets, err := s.cache.GetAssetsPage(ctx, portfolioID, page, mode)
	if err == nil {
		return assets, nil
	}

	limit := s.cfg.HoldingsPerPage
	offset := (page - 1) * limit

	holdings, hasNextPage, err := s.repo.GetHoldingsPage(ctx, portfolioID, limit, offset)
	if err != nil {
		slog.Error("got error from repo.GetHoldingsPage", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.HoldingsPage{}, err
	}

	assets, err = s.projectHoldings(ctx, portfolio, holdings, mode)
	if err != nil {
		return model.HoldingsPage{}, err
	}
	assets.CurPage = page
	assets.HasNextPage = hasNextPage

	go s.cache.SetAssetsPage(context.WithoutCancel(ctx), portfolioID, page, mode, assets)

	return assets, nil
}

// DeleteHolding removes a position outright, without recording a SELL.
func (s *PortfolioService) DeleteHolding(ctx context.Context, userID, portfolioID int64, ticker string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.DeleteHolding"

	slog.Debug("DeleteHolding start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
	defer func() {
		slog.Debug("DeleteHolding finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
	}()

	_, err := s.getOwnedPortfolio(ctx, userID, portfolioID)
	if err != nil {
		return err
	}

	err = s.repo.DeleteHolding(ctx, portfolioID, ticker)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.DeleteHolding", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	err = s.cache.FlushPortfolio(ctx, portfolioID)
	if err != nil {
		slog.Error("got error from cache.FlushPortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	return nil
}

// projectHoldings values each holding against current quotes and rates
// and folds the rows into totals.
func (s *PortfolioService) projectHoldings(ctx context.Context, portfolio model.Portfolio, holdings []model.Holding, mode model.DisplayMode) (model.HoldingsPage, error) {
	tickers := make([]string, 0, len(holdings))
	seen := make(map[string]struct{}, len(holdings))
	for _, h := range holdings {
		if _, ok := seen[h.Ticker]; ok {
			continue
		}
		seen[h.Ticker] = struct{}{}
		tickers = append(tickers, h.Ticker)
	}

	quotes := s.collectQuotes(ctx, tickers)
	rates := s.rates.Snapshot()

	rows := make([]model.ProjectedRow, 0, len(holdings))
	for _, h := range holdings {
		var quote *model.MarketQuote
		if q, ok := quotes[h.Ticker]; ok {
			quote = &q
		}
		rows = append(rows, valuation.ProjectRow(h, quote, rates, portfolio.DisplayCurrency, mode))
	}

	return model.HoldingsPage{
		PortfolioID:     portfolio.PortfolioID,
		PortfolioName:   portfolio.Name,
		DisplayCurrency: portfolio.DisplayCurrency,
		Mode:            mode,
		Rows:            rows,
		Totals:          valuation.Aggregate(rows),
	}, nil
}

// collectQuotes assembles quotes for tickers from three layers: the
// live market feed, the redis cache, and finally the market data API.
// API fetches run concurrently and a failed ticker is simply absent
// from the result; projection falls back to purchase price for it.
func (s *PortfolioService) collectQuotes(ctx context.Context, tickers []string) map[string]model.MarketQuote {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.collectQuotes"

	quotes := make(map[string]model.MarketQuote, len(tickers))

	feedQuotes := s.feed.Snapshot()
	missing := make([]string, 0)
	for _, ticker := range tickers {
		if q, ok := feedQuotes[ticker]; ok {
			quotes[ticker] = q
		} else {
			missing = append(missing, ticker)
		}
	}

	if len(missing) == 0 {
		return quotes
	}

	cached, stillMissing, err := s.cache.GetQuotes(ctx, missing)
	if err != nil {
		slog.Warn("can't get quotes from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		stillMissing = missing
	} else {
		for ticker, q := range cached {
			quotes[ticker] = q
		}
	}

	if len(stillMissing) == 0 {
		return quotes
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	fetched := make([]model.MarketQuote, 0, len(stillMissing))

	for _, ticker := range stillMissing {
		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()
			quote, err := s.marketDataApi.GetQuote(ctx, ticker)
			if err != nil {
				slog.Warn("can't get quote from marketDataApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("err", err.Error()))
				return
			}
			mu.Lock()
			quotes[ticker] = quote
			fetched = append(fetched, quote)
			mu.Unlock()
		}(ticker)
	}
	wg.Wait()

	if len(fetched) > 0 {
		go s.cache.SetQuotes(context.WithoutCancel(ctx), fetched)
	}

	return quotes
}
