package ratesApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

type RatesApi struct {
	client *resty.Client
	cfg    *config.Config
}

func New(cfg *config.Config) *RatesApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.RatesApi.Url)
	return &RatesApi{client: client, cfg: cfg}
}

type rawRates struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// GetRates fetches the full rate table relative to the configured base
// currency. One attempt, no retries: the caller keeps its previous
// table on failure.
func (a *RatesApi) GetRates(ctx context.Context) (model.RateTable, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RatesApi.GetRates"
	url := fmt.Sprintf("/latest/%s", a.cfg.API.RatesApi.BaseCurrency)

	slog.Debug("GetRates start", slog.String("rqID", rqID), slog.String("op", op))

	resp, err := a.client.R().
		SetHeader("Accept", "application/json").
		Get(url)

	if err != nil {
		slog.Error("error while dialing RatesApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.RateTable{}, err
	}

	raw := rawRates{}
	err = json.Unmarshal(resp.Body(), &raw)
	if err != nil {
		slog.Error("can't unmarshall response into rawRates", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.RateTable{}, err
	}

	if len(raw.Rates) == 0 {
		return model.RateTable{}, fmt.Errorf("empty rates in response for base %s", raw.Base)
	}

	table := model.RateTable{
		Base:  raw.Base,
		Rates: make(map[string]decimal.Decimal, len(raw.Rates)),
	}
	for code, rate := range raw.Rates {
		table.Rates[code] = decimal.NewFromFloat(rate)
	}

	// the table is relative to its own base, so the base rate is 1
	table.Rates[table.Base] = decimal.NewFromInt(1)

	slog.Debug("GetRates request complete", slog.String("rqID", rqID), slog.String("op", op), slog.Int("rates", len(table.Rates)))

	return table, nil
}
