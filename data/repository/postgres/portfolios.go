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

func (r *Postgres) CreatePortfolio(ctx context.Context, userID int64, name, displayCurrency string) (portfolioID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `INSERT INTO portfolios(user_id, name, display_currency) VALUES($1, $2, $3) RETURNING portfolio_id`

	slog.Debug("CreatePortfolio start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("CreatePortfolio failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("CreatePortfolio completed", slog.String("rqID", rqID))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(ctx, query, userID, name, displayCurrency).Scan(&portfolioID)
	if err != nil {
		return 0, err
	}

	return portfolioID, nil
}

func (r *Postgres) GetPortfolio(ctx context.Context, portfolioID int64) (portfolio model.Portfolio, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT portfolio_id, user_id, name, display_currency FROM portfolios WHERE portfolio_id = $1`

	slog.Debug("GetPortfolio start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetPortfolio failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPortfolio completed", slog.String("rqID", rqID))
		}
	}()

	dbPortfolio := dbModel.Portfolio{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, portfolioID).StructScan(&dbPortfolio)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Portfolio{}, repository.ErrNotFound
		}
		return model.Portfolio{}, err
	}

	return dbConverter.ConvertPortfolio(dbPortfolio), nil
}

func (r *Postgres) GetPortfolios(ctx context.Context, userID int64, limit, offset int) (portfolios []model.Portfolio, hasNextPage bool, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT portfolio_id, user_id, name, display_currency
		FROM portfolios
		WHERE user_id = $1
		ORDER BY portfolio_id
		LIMIT $2 OFFSET $3`

	slog.Debug("GetPortfolios start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetPortfolios failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPortfolios completed", slog.String("rqID", rqID))
		}
	}()

	// request one extra row to detect the next page
	dbPortfolios := make([]dbModel.Portfolio, 0, limit+1)
	err = r.txOrDb(ctx).SelectContext(ctx, &dbPortfolios, query, userID, limit+1, offset)
	if err != nil {
		return nil, false, err
	}

	if len(dbPortfolios) > limit {
		hasNextPage = true
		dbPortfolios = dbPortfolios[:limit]
	}

	portfolios = make([]model.Portfolio, 0, len(dbPortfolios))
	for _, p := range dbPortfolios {
		portfolios = append(portfolios, dbConverter.ConvertPortfolio(p))
	}

	return portfolios, hasNextPage, nil
}

func (r *Postgres) UpdatePortfolio(ctx context.Context, portfolioID int64, name, displayCurrency *string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		UPDATE portfolios
		SET name = COALESCE($2, name), display_currency = COALESCE($3, display_currency)
		WHERE portfolio_id = $1`

	slog.Debug("UpdatePortfolio start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpdatePortfolio failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdatePortfolio completed", slog.String("rqID", rqID))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, portfolioID, name, displayCurrency)
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

func (r *Postgres) DeletePortfolio(ctx context.Context, portfolioID int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `DELETE FROM portfolios WHERE portfolio_id = $1`

	slog.Debug("DeletePortfolio start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("DeletePortfolio failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeletePortfolio completed", slog.String("rqID", rqID))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, portfolioID)
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
