package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("cache entry not found")

type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func quoteKey(ticker string) string {
	return "quote:" + ticker
}

func assetsPageKey(portfolioID int64, page int, mode model.DisplayMode) string {
	return fmt.Sprintf("portfolio:%d:assets:%d:%s", portfolioID, page, mode)
}

func (r *RedisCache) SetQuotes(ctx context.Context, quotes []model.MarketQuote) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetQuotes start", slog.String("rqID", rqID))

	pipe := r.redis.Pipeline()
	for _, quote := range quotes {
		quoteJson, err := json.Marshal(quote)
		if err != nil {
			slog.Error(
				"can't marshall quote in SetQuotes",
				slog.String("rqID", rqID),
				slog.String("err", err.Error()),
				slog.Any("quote", quote),
			)
			return errors.New("can't marshall quote")
		}

		pipe.Set(ctx, quoteKey(quote.Ticker), quoteJson, r.cfg.Cache.QuotesExpiration)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Error("failed on pipe.Exec", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetQuotes completed", slog.String("rqID", rqID))

	return nil
}

// GetQuotes returns the cached quotes for tickers along with the tickers
// that had no cache entry.
func (r *RedisCache) GetQuotes(ctx context.Context, tickers []string) (quotes map[string]model.MarketQuote, missing []string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetQuotes start", slog.String("rqID", rqID))

	keys := make([]string, 0, len(tickers))
	for _, ticker := range tickers {
		keys = append(keys, quoteKey(ticker))
	}

	if len(keys) == 0 {
		return map[string]model.MarketQuote{}, nil, nil
	}

	res, err := r.redis.MGet(ctx, keys...).Result()
	if err != nil {
		slog.Error("failed on redis.MGet", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return nil, nil, err
	}

	quotes = make(map[string]model.MarketQuote, len(tickers))
	for i, raw := range res {
		rawStr, ok := raw.(string)
		if !ok {
			missing = append(missing, tickers[i])
			continue
		}

		quote := model.MarketQuote{}
		err = json.Unmarshal([]byte(rawStr), &quote)
		if err != nil {
			slog.Error(
				"can't unmarshall quote in GetQuotes",
				slog.String("rqID", rqID),
				slog.String("err", err.Error()),
				slog.String("resultFromRedis", rawStr),
			)
			missing = append(missing, tickers[i])
			continue
		}

		quotes[tickers[i]] = quote
	}

	slog.Debug("GetQuotes finished", slog.String("rqID", rqID))

	return quotes, missing, nil
}

func (r *RedisCache) SetAssetsPage(ctx context.Context, portfolioID int64, page int, mode model.DisplayMode, assets model.HoldingsPage) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetAssetsPage start", slog.String("rqID", rqID))

	assetsJson, err := json.Marshal(assets)
	if err != nil {
		slog.Error(
			"can't marshall assets page in SetAssetsPage",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
		)
		return errors.New("can't marshall assets page")
	}

	err = r.redis.Set(ctx, assetsPageKey(portfolioID, page, mode), assetsJson, r.cfg.Cache.SummaryExpiration).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetAssetsPage completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetAssetsPage(ctx context.Context, portfolioID int64, page int, mode model.DisplayMode) (model.HoldingsPage, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetAssetsPage start", slog.String("rqID", rqID))

	key := assetsPageKey(portfolioID, page, mode)
	res, err := r.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.HoldingsPage{}, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", key))
		return model.HoldingsPage{}, err
	}

	assets := model.HoldingsPage{}
	err = json.Unmarshal([]byte(res), &assets)
	if err != nil {
		slog.Error(
			"can't unmarshall assets page in GetAssetsPage",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return model.HoldingsPage{}, errors.New("can't unmarshall assets page")
	}

	slog.Debug("GetAssetsPage finished", slog.String("rqID", rqID))

	return assets, nil
}

// FlushPortfolio removes every cached assets page for the portfolio.
// Called after any mutation that changes the portfolio's holdings.
func (r *RedisCache) FlushPortfolio(ctx context.Context, portfolioID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("FlushPortfolio start", slog.String("rqID", rqID))

	pattern := fmt.Sprintf("portfolio:%d:*", portfolioID)
	iter := r.redis.Scan(ctx, 0, pattern, 0).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Error("failed on redis.Scan", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	if len(keys) > 0 {
		if err := r.redis.Del(ctx, keys...).Err(); err != nil {
			slog.Error("failed on redis.Del", slog.String("rqID", rqID), slog.String("err", err.Error()))
			return err
		}
	}

	slog.Debug("FlushPortfolio completed", slog.String("rqID", rqID))

	return nil
}
