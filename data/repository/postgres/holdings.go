package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/KotFed0t/portfolio_tracker/data/repository"
	"github.com/KotFed0t/portfolio_tracker/internal/converter/dbConverter"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/dbModel"
	"github.com/KotFed0t/portfolio_tracker/utils"
)

func (r *Postgres) GetHolding(ctx context.Context, portfolioID int64, ticker string) (holding model.Holding, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT holding_id, portfolio_id, ticker, name, quantity, purchase_price, purchase_currency
		FROM holdings
		WHERE portfolio_id = $1 AND ticker = $2`

	slog.Debug("GetHolding start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetHolding failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetHolding completed", slog.String("rqID", rqID))
		}
	}()

	dbHolding := dbModel.Holding{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, portfolioID, ticker).StructScan(&dbHolding)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Holding{}, repository.ErrNotFound
		}
		return model.Holding{}, err
	}

	return dbConverter.ConvertHolding(dbHolding), nil
}

func (r *Postgres) GetHoldingsPage(ctx context.Context, portfolioID int64, limit, offset int) (holdings []model.Holding, hasNextPage bool, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT holding_id, portfolio_id, ticker, name, quantity, purchase_price, purchase_currency
		FROM holdings
		WHERE portfolio_id = $1
		ORDER BY ticker
		LIMIT $2 OFFSET $3`

	slog.Debug("GetHoldingsPage start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetHoldingsPage failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetHoldingsPage completed", slog.String("rqID", rqID))
		}
	}()

	dbHoldings := make([]dbModel.Holding, 0, limit+1)
	err = r.txOrDb(ctx).SelectContext(ctx, &dbHoldings, query, portfolioID, limit+1, offset)
	if err != nil {
		return nil, false, err
	}

	if len(dbHoldings) > limit {
		hasNextPage = true
		dbHoldings = dbHoldings[:limit]
	}

	holdings = make([]model.Holding, 0, len(dbHoldings))
	for _, h := range dbHoldings {
		holdings = append(holdings, dbConverter.ConvertHolding(h))
	}

	return holdings, hasNextPage, nil
}

func (r *Postgres) GetHoldings(ctx context.Context, portfolioID int64) (holdings []model.Holding, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT holding_id, portfolio_id, ticker, name, quantity, purchase_price, purchase_currency
		FROM holdings
		WHERE portfolio_id = $1
		ORDER BY ticker`

	slog.Debug("GetHoldings start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetHoldings failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetHoldings completed", slog.String("rqID", rqID))
		}
	}()

	dbHoldings := make([]dbModel.Holding, 0)
	err = r.txOrDb(ctx).SelectContext(ctx, &dbHoldings, query, portfolioID)
	if err != nil {
		return nil, err
	}

	holdings = make([]model.Holding, 0, len(dbHoldings))
	for _, h := range dbHoldings {
		holdings = append(holdings, dbConverter.ConvertHolding(h))
	}

	return holdings, nil
}

// GetDistinctTickers returns every ticker held across all portfolios.
func (r *Postgres) GetDistinctTickers(ctx context.Context) (tickers []string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT DISTINCT ticker FROM holdings ORDER BY ticker`

	slog.Debug("GetDistinctTickers start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetDistinctTickers failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetDistinctTickers completed", slog.String("rqID", rqID))
		}
	}()

	tickers = make([]string, 0)
	err = r.txOrDb(ctx).SelectContext(ctx, &tickers, query)
	if err != nil {
		return nil, err
	}

	return tickers, nil
}

// UpsertHolding inserts the holding or, when the portfolio already has the
// ticker, overwrites quantity, purchase price and name with the given values.
func (r *Postgres) UpsertHolding(ctx context.Context, holding model.Holding) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO holdings(portfolio_id, ticker, name, quantity, purchase_price, purchase_currency)
		VALUES($1, $2, $3, $4, $5, $6)
		ON CONFLICT (portfolio_id, ticker)
		DO UPDATE SET name = EXCLUDED.name, quantity = EXCLUDED.quantity, purchase_price = EXCLUDED.purchase_price`

	slog.Debug("UpsertHolding start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpsertHolding failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpsertHolding completed", slog.String("rqID", rqID))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(
		ctx,
		query,
		holding.PortfolioID,
		holding.Ticker,
		holding.Name,
		holding.Quantity,
		holding.PurchasePrice,
		holding.PurchaseCurrency,
	)
	if err != nil {
		return err
	}

	return nil
}

func (r *Postgres) DeleteHolding(ctx context.Context, portfolioID int64, ticker string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `DELETE FROM holdings WHERE portfolio_id = $1 AND ticker = $2`

	slog.Debug("DeleteHolding start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("DeleteHolding failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteHolding completed", slog.String("rqID", rqID))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, portfolioID, ticker)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
