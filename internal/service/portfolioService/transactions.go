package portfolioService

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/portfolio_tracker/data/repository"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/KotFed0t/portfolio_tracker/utils"
)

// CreateTransaction records a BUY or SELL and applies it to the
// portfolio's holding for the ticker in one database transaction.
// A BUY folds into the weighted average purchase price; a SELL
// decrements quantity and removes the holding when it reaches zero.
func (s *PortfolioService) CreateTransaction(ctx context.Context, userID int64, transaction model.Transaction, name string) (model.Transaction, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.CreateTransaction"

	slog.Debug("CreateTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", transaction.Ticker))
	defer func() {
		slog.Debug("CreateTransaction finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", transaction.Ticker))
	}()

	_, err := s.getOwnedPortfolio(ctx, userID, transaction.PortfolioID)
	if err != nil {
		return model.Transaction{}, err
	}

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		switch transaction.Type {
		case model.TransactionBuy:
			if err := s.applyBuy(ctx, transaction, name); err != nil {
				return err
			}
		case model.TransactionSell:
			if err := s.applySell(ctx, transaction); err != nil {
				return err
			}
		default:
			return errors.New("unknown transaction type")
		}

		transactionID, err := s.repo.InsertTransaction(ctx, transaction)
		if err != nil {
			slog.Error("got error from repo.InsertTransaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return err
		}
		transaction.TransactionID = transactionID

		return nil
	})
	if err != nil {
		return model.Transaction{}, err
	}

	// flushed synchronously so the next read can't hit a stale page
	err = s.cache.FlushPortfolio(ctx, transaction.PortfolioID)
	if err != nil {
		slog.Error("got error from cache.FlushPortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	return transaction, nil
}

func (s *PortfolioService) applyBuy(ctx context.Context, transaction model.Transaction, name string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.applyBuy"

	holding, err := s.repo.GetHolding(ctx, transaction.PortfolioID, transaction.Ticker)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.repo.UpsertHolding(ctx, model.Holding{
				PortfolioID:      transaction.PortfolioID,
				Ticker:           transaction.Ticker,
				Name:             name,
				Quantity:         transaction.Quantity,
				PurchasePrice:    transaction.Price,
				PurchaseCurrency: transaction.Currency,
			})
		}
		slog.Error("got error from repo.GetHolding", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if holding.PurchaseCurrency != transaction.Currency {
		return service.ErrCurrencyMismatch
	}

	newQuantity := holding.Quantity.Add(transaction.Quantity)
	oldCost := holding.PurchasePrice.Mul(holding.Quantity)
	newCost := transaction.Price.Mul(transaction.Quantity)
	holding.PurchasePrice = oldCost.Add(newCost).Div(newQuantity)
	holding.Quantity = newQuantity

	return s.repo.UpsertHolding(ctx, holding)
}

func (s *PortfolioService) applySell(ctx context.Context, transaction model.Transaction) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.applySell"

	holding, err := s.repo.GetHolding(ctx, transaction.PortfolioID, transaction.Ticker)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.GetHolding", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if holding.PurchaseCurrency != transaction.Currency {
		return service.ErrCurrencyMismatch
	}

	if transaction.Quantity.GreaterThan(holding.Quantity) {
		return service.ErrInsufficientQuantity
	}

	holding.Quantity = holding.Quantity.Sub(transaction.Quantity)
	if holding.Quantity.IsZero() {
		return s.repo.DeleteHolding(ctx, transaction.PortfolioID, transaction.Ticker)
	}

	// average purchase price is unchanged by a sale
	return s.repo.UpsertHolding(ctx, holding)
}

func (s *PortfolioService) GetTransactions(ctx context.Context, userID, portfolioID int64, page int) (model.TransactionsPage, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetTransactions"

	slog.Debug("GetTransactions start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID), slog.Int("page", page))
	defer func() {
		slog.Debug("GetTransactions finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID), slog.Int("page", page))
	}()

	_, err := s.getOwnedPortfolio(ctx, userID, portfolioID)
	if err != nil {
		return model.TransactionsPage{}, err
	}

	limit := s.cfg.TransactionsPerPage
	offset := (page - 1) * limit

	transactions, hasNextPage, err := s.repo.GetTransactionsPage(ctx, portfolioID, limit, offset)
	if err != nil {
		slog.Error("got error from repo.GetTransactionsPage", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.TransactionsPage{}, err
	}

	return model.TransactionsPage{
		Transactions: transactions,
		CurPage:      page,
		HasNextPage:  hasNextPage,
	}, nil
}

// DeleteTransaction removes a ledger record without rewinding the
// holding it produced. Corrections go through a compensating BUY or
// SELL instead.
func (s *PortfolioService) DeleteTransaction(ctx context.Context, userID, transactionID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.DeleteTransaction"

	slog.Debug("DeleteTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("transactionID", transactionID))
	defer func() {
		slog.Debug("DeleteTransaction finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("transactionID", transactionID))
	}()

	transaction, err := s.repo.GetTransaction(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.GetTransaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	_, err = s.getOwnedPortfolio(ctx, userID, transaction.PortfolioID)
	if err != nil {
		return err
	}

	err = s.repo.DeleteTransaction(ctx, transactionID)
	if err != nil {
		slog.Error("got error from repo.DeleteTransaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

// TransferHolding moves a ticker position between two portfolios of the
// same user. When the target already holds the ticker the positions
// merge under a weighted average purchase price.
func (s *PortfolioService) TransferHolding(ctx context.Context, userID, fromPortfolioID, toPortfolioID int64, ticker string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.TransferHolding"

	slog.Debug("TransferHolding start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
	defer func() {
		slog.Debug("TransferHolding finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
	}()

	_, err := s.getOwnedPortfolio(ctx, userID, fromPortfolioID)
	if err != nil {
		return err
	}
	_, err = s.getOwnedPortfolio(ctx, userID, toPortfolioID)
	if err != nil {
		return err
	}

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		source, err := s.repo.GetHolding(ctx, fromPortfolioID, ticker)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return service.ErrNotFound
			}
			return err
		}

		target, err := s.repo.GetHolding(ctx, toPortfolioID, ticker)
		if err == nil {
			if target.PurchaseCurrency != source.PurchaseCurrency {
				return service.ErrCurrencyMismatch
			}
			newQuantity := target.Quantity.Add(source.Quantity)
			targetCost := target.PurchasePrice.Mul(target.Quantity)
			sourceCost := source.PurchasePrice.Mul(source.Quantity)
			target.PurchasePrice = targetCost.Add(sourceCost).Div(newQuantity)
			target.Quantity = newQuantity
		} else if errors.Is(err, repository.ErrNotFound) {
			target = source
			target.HoldingID = 0
			target.PortfolioID = toPortfolioID
		} else {
			return err
		}

		if err := s.repo.DeleteHolding(ctx, fromPortfolioID, ticker); err != nil {
			return err
		}

		return s.repo.UpsertHolding(ctx, target)
	})
	if err != nil {
		if !errors.Is(err, service.ErrNotFound) && !errors.Is(err, service.ErrCurrencyMismatch) {
			slog.Error("got error from repo.WithinTransaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
		return err
	}

	for _, portfolioID := range []int64{fromPortfolioID, toPortfolioID} {
		if err := s.cache.FlushPortfolio(ctx, portfolioID); err != nil {
			slog.Error("got error from cache.FlushPortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}

	return nil
}
