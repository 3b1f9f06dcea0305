package portfolioService

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/utils"
)

// how much history goes into a report
const reportTransactionsLimit = 1000

// GeneratePortfolioReport builds a spreadsheet with every holding of
// the portfolio projected at current prices plus the transaction
// history, uploads it to cloud storage and returns the download link.
func (s *PortfolioService) GeneratePortfolioReport(ctx context.Context, userID, portfolioID int64, mode model.DisplayMode) (downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GeneratePortfolioReport"

	slog.Debug("GeneratePortfolioReport start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	defer func() {
		slog.Debug("GeneratePortfolioReport finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	}()

	portfolio, err := s.getOwnedPortfolio(ctx, userID, portfolioID)
	if err != nil {
		return "", err
	}

	holdings, err := s.repo.GetHoldings(ctx, portfolioID)
	if err != nil {
		slog.Error("got error from repo.GetHoldings", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	assets, err := s.projectHoldings(ctx, portfolio, holdings, mode)
	if err != nil {
		return "", err
	}

	transactions, _, err := s.repo.GetTransactionsPage(ctx, portfolioID, reportTransactionsLimit, 0)
	if err != nil {
		slog.Error("got error from repo.GetTransactionsPage", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	fileBytes, fileExtension, err := s.reportGen.Generate(ctx, assets, transactions)
	if err != nil {
		slog.Error("got error from reportGen.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	filename := fmt.Sprintf("%s_%s%s", portfolio.Name, time.Now().Format("2006-01-02_15-04-05"), fileExtension)

	downloadLink, err = s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
	if err != nil {
		slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	return downloadLink, nil
}
