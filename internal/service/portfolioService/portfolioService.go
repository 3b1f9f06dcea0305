package portfolioService

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/data/repository"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/KotFed0t/portfolio_tracker/utils"
)

type Repository interface {
	InsertUser(ctx context.Context, email, passwordHash string) (userID int64, err error)
	GetUserByEmail(ctx context.Context, email string) (user model.User, passwordHash string, err error)
	CreatePortfolio(ctx context.Context, userID int64, name, displayCurrency string) (portfolioID int64, err error)
	GetPortfolio(ctx context.Context, portfolioID int64) (model.Portfolio, error)
	GetPortfolios(ctx context.Context, userID int64, limit, offset int) (portfolios []model.Portfolio, hasNextPage bool, err error)
	UpdatePortfolio(ctx context.Context, portfolioID int64, name, displayCurrency *string) error
	DeletePortfolio(ctx context.Context, portfolioID int64) error
	GetHolding(ctx context.Context, portfolioID int64, ticker string) (model.Holding, error)
	GetHoldingsPage(ctx context.Context, portfolioID int64, limit, offset int) (holdings []model.Holding, hasNextPage bool, err error)
	GetHoldings(ctx context.Context, portfolioID int64) ([]model.Holding, error)
	GetDistinctTickers(ctx context.Context) ([]string, error)
	UpsertHolding(ctx context.Context, holding model.Holding) error
	DeleteHolding(ctx context.Context, portfolioID int64, ticker string) error
	InsertTransaction(ctx context.Context, transaction model.Transaction) (transactionID int64, err error)
	GetTransaction(ctx context.Context, transactionID int64) (model.Transaction, error)
	GetTransactionsPage(ctx context.Context, portfolioID int64, limit, offset int) (transactions []model.Transaction, hasNextPage bool, err error)
	DeleteTransaction(ctx context.Context, transactionID int64) error
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error
}

type Cache interface {
	GetQuotes(ctx context.Context, tickers []string) (quotes map[string]model.MarketQuote, missing []string, err error)
	SetQuotes(ctx context.Context, quotes []model.MarketQuote) error
	GetAssetsPage(ctx context.Context, portfolioID int64, page int, mode model.DisplayMode) (model.HoldingsPage, error)
	SetAssetsPage(ctx context.Context, portfolioID int64, page int, mode model.DisplayMode, assets model.HoldingsPage) error
	FlushPortfolio(ctx context.Context, portfolioID int64) error
}

type Session interface {
	SetSession(ctx context.Context, token string, session model.Session) error
	GetSession(ctx context.Context, token string) (model.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

type MarketDataApi interface {
	GetQuote(ctx context.Context, ticker string) (model.MarketQuote, error)
}

type MarketFeed interface {
	SetTickers(ctx context.Context, tickers []string)
	Snapshot() map[string]model.MarketQuote
}

type RatesSource interface {
	Snapshot() model.RateTable
}

type ReportGenerator interface {
	Generate(ctx context.Context, assets model.HoldingsPage, transactions []model.Transaction) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

type PortfolioService struct {
	cfg           *config.Config
	repo          Repository
	cache         Cache
	session       Session
	marketDataApi MarketDataApi
	feed          MarketFeed
	rates         RatesSource
	reportGen     ReportGenerator
	cloudStorage  CloudStorage
}

func New(
	cfg *config.Config,
	repo Repository,
	cache Cache,
	session Session,
	marketDataApi MarketDataApi,
	feed MarketFeed,
	rates RatesSource,
	reportGen ReportGenerator,
	cloudStorage CloudStorage,
) *PortfolioService {
	return &PortfolioService{
		cfg:           cfg,
		repo:          repo,
		cache:         cache,
		session:       session,
		marketDataApi: marketDataApi,
		feed:          feed,
		rates:         rates,
		reportGen:     reportGen,
		cloudStorage:  cloudStorage,
	}
}

// getOwnedPortfolio loads the portfolio and checks it belongs to userID.
func (s *PortfolioService) getOwnedPortfolio(ctx context.Context, userID, portfolioID int64) (model.Portfolio, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.getOwnedPortfolio"

	portfolio, err := s.repo.GetPortfolio(ctx, portfolioID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Portfolio{}, service.ErrNotFound
		}
		slog.Error("got error from repo.GetPortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Portfolio{}, err
	}

	if portfolio.UserID != userID {
		slog.Warn("portfolio belongs to another user", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
		return model.Portfolio{}, service.ErrAccessDenied
	}

	return portfolio, nil
}

// SyncFeedTickers retunes the market feed to the set of tickers
// currently held across all portfolios. Runs on a schedule.
func (s *PortfolioService) SyncFeedTickers(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.SyncFeedTickers"

	slog.Debug("SyncFeedTickers start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("SyncFeedTickers finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	tickers, err := s.repo.GetDistinctTickers(ctx)
	if err != nil {
		slog.Error("got error from repo.GetDistinctTickers", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	s.feed.SetTickers(ctx, tickers)

	return nil
}
