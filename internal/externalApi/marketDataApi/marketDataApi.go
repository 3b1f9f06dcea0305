package marketDataApi

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

type MarketDataApi struct {
	client *resty.Client
	cfg    *config.Config
}

func New(cfg *config.Config) *MarketDataApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.MarketDataApi.Url)
	return &MarketDataApi{client: client, cfg: cfg}
}

type rawQuote struct {
	CurrentPrice  float64 `json:"c"`
	PreviousClose float64 `json:"pc"`
}

// GetQuote fetches the current price and previous close for one ticker.
// The quote endpoint has no dividend data, so DividendPerShare stays zero.
func (a *MarketDataApi) GetQuote(ctx context.Context, ticker string) (model.MarketQuote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MarketDataApi.GetQuote"
	params := map[string]string{
		"symbol": ticker,
		"token":  a.cfg.API.MarketDataApi.Token,
	}

	slog.Debug("GetQuote start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))

	resp, err := a.client.R().
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get("/quote")

	if err != nil {
		slog.Error("error while dialing MarketDataApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.MarketQuote{}, err
	}

	raw := rawQuote{}
	err = json.Unmarshal(resp.Body(), &raw)
	if err != nil {
		slog.Error("can't unmarshall response into rawQuote", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.MarketQuote{}, err
	}

	// the API answers zeros for unknown symbols
	if raw.CurrentPrice == 0 && raw.PreviousClose == 0 {
		slog.Warn("no quote data for ticker", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
		return model.MarketQuote{}, externalApi.ErrNotFound
	}

	quote := model.MarketQuote{
		Ticker:           ticker,
		CurrentPrice:     decimal.NewFromFloat(raw.CurrentPrice),
		PreviousClose:    decimal.NewFromFloat(raw.PreviousClose),
		DividendPerShare: decimal.Zero,
	}

	slog.Debug("GetQuote request complete", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))

	return quote, nil
}
