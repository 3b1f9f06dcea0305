package portfolioService

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/utils"
)

func (s *PortfolioService) CreatePortfolio(ctx context.Context, userID int64, name, displayCurrency string) (model.Portfolio, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.CreatePortfolio"

	slog.Debug("CreatePortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.String("name", name))
	defer func() {
		slog.Debug("CreatePortfolio finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("name", name))
	}()

	portfolioID, err := s.repo.CreatePortfolio(ctx, userID, name, displayCurrency)
	if err != nil {
		slog.Error("got error from repo.CreatePortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Portfolio{}, err
	}

	return model.Portfolio{
		PortfolioID:     portfolioID,
		UserID:          userID,
		Name:            name,
		DisplayCurrency: displayCurrency,
	}, nil
}

func (s *PortfolioService) GetPortfolio(ctx context.Context, userID, portfolioID int64) (model.Portfolio, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetPortfolio"

	slog.Debug("GetPortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	defer func() {
		slog.Debug("GetPortfolio finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	}()

	return s.getOwnedPortfolio(ctx, userID, portfolioID)
}

func (s *PortfolioService) GetPortfolios(ctx context.Context, userID int64, page int) (model.PortfoliosPage, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetPortfolios"

	slog.Debug("GetPortfolios start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("page", page))
	defer func() {
		slog.Debug("GetPortfolios finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("page", page))
	}()

	limit := s.cfg.PortfoliosPerPage
	offset := (page - 1) * limit

	portfolios, hasNextPage, err := s.repo.GetPortfolios(ctx, userID, limit, offset)
	if err != nil {
		slog.Error("got error from repo.GetPortfolios", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfoliosPage{}, err
	}

	return model.PortfoliosPage{
		Portfolios:  portfolios,
		CurPage:     page,
		HasNextPage: hasNextPage,
	}, nil
}

func (s *PortfolioService) UpdatePortfolio(ctx context.Context, userID, portfolioID int64, name, displayCurrency *string) (model.Portfolio, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.UpdatePortfolio"

	slog.Debug("UpdatePortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	defer func() {
		slog.Debug("UpdatePortfolio finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	}()

	_, err := s.getOwnedPortfolio(ctx, userID, portfolioID)
	if err != nil {
		return model.Portfolio{}, err
	}

	err = s.repo.UpdatePortfolio(ctx, portfolioID, name, displayCurrency)
	if err != nil {
		slog.Error("got error from repo.UpdatePortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Portfolio{}, err
	}

	// display currency change invalidates converted projections
	err = s.cache.FlushPortfolio(ctx, portfolioID)
	if err != nil {
		slog.Error("got error from cache.FlushPortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	return s.repo.GetPortfolio(ctx, portfolioID)
}

func (s *PortfolioService) DeletePortfolio(ctx context.Context, userID, portfolioID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.DeletePortfolio"

	slog.Debug("DeletePortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	defer func() {
		slog.Debug("DeletePortfolio finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	}()

	_, err := s.getOwnedPortfolio(ctx, userID, portfolioID)
	if err != nil {
		return err
	}

	err = s.repo.DeletePortfolio(ctx, portfolioID)
	if err != nil {
		slog.Error("got error from repo.DeletePortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	err = s.cache.FlushPortfolio(ctx, portfolioID)
	if err != nil {
		slog.Error("got error from cache.FlushPortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	return nil
}
