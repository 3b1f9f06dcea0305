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

func (r *Postgres) InsertTransaction(ctx context.Context, transaction model.Transaction) (transactionID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO transactions(portfolio_id, ticker, tx_type, quantity, price, currency)
		VALUES($1, $2, $3, $4, $5, $6)
		RETURNING transaction_id`

	slog.Debug("InsertTransaction start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertTransaction failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertTransaction completed", slog.String("rqID", rqID))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(
		ctx,
		query,
		transaction.PortfolioID,
		transaction.Ticker,
		string(transaction.Type),
		transaction.Quantity,
		transaction.Price,
		transaction.Currency,
	).Scan(&transactionID)
	if err != nil {
		return 0, err
	}

	return transactionID, nil
}

func (r *Postgres) GetTransaction(ctx context.Context, transactionID int64) (transaction model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT transaction_id, portfolio_id, ticker, tx_type, quantity, price, currency, dt_create
		FROM transactions
		WHERE transaction_id = $1`

	slog.Debug("GetTransaction start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetTransaction failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTransaction completed", slog.String("rqID", rqID))
		}
	}()

	dbTransaction := dbModel.Transaction{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, transactionID).StructScan(&dbTransaction)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Transaction{}, repository.ErrNotFound
		}
		return model.Transaction{}, err
	}

	return dbConverter.ConvertTransaction(dbTransaction), nil
}

func (r *Postgres) GetTransactionsPage(ctx context.Context, portfolioID int64, limit, offset int) (transactions []model.Transaction, hasNextPage bool, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT transaction_id, portfolio_id, ticker, tx_type, quantity, price, currency, dt_create
		FROM transactions
		WHERE portfolio_id = $1
		ORDER BY dt_create DESC, transaction_id DESC
		LIMIT $2 OFFSET $3`

	slog.Debug("GetTransactionsPage start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetTransactionsPage failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTransactionsPage completed", slog.String("rqID", rqID))
		}
	}()

	dbTransactions := make([]dbModel.Transaction, 0, limit+1)
	err = r.txOrDb(ctx).SelectContext(ctx, &dbTransactions, query, portfolioID, limit+1, offset)
	if err != nil {
		return nil, false, err
	}

	if len(dbTransactions) > limit {
		hasNextPage = true
		dbTransactions = dbTransactions[:limit]
	}

	transactions = make([]model.Transaction, 0, len(dbTransactions))
	for _, t := range dbTransactions {
		transactions = append(transactions, dbConverter.ConvertTransaction(t))
	}

	return transactions, hasNextPage, nil
}

func (r *Postgres) DeleteTransaction(ctx context.Context, transactionID int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `DELETE FROM transactions WHERE transaction_id = $1`

	slog.Debug("DeleteTransaction start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("DeleteTransaction failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteTransaction completed", slog.String("rqID", rqID))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, transactionID)
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
