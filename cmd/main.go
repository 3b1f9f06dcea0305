package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/data"
	"github.com/KotFed0t/portfolio_tracker/data/cache"
	pgRepository "github.com/KotFed0t/portfolio_tracker/data/repository/postgres"
	"github.com/KotFed0t/portfolio_tracker/data/session"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi/marketDataApi"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi/ratesApi"
	"github.com/KotFed0t/portfolio_tracker/internal/marketfeed"
	"github.com/KotFed0t/portfolio_tracker/internal/rates"
	"github.com/KotFed0t/portfolio_tracker/internal/reportGenerator/xlsxGenerator"
	"github.com/KotFed0t/portfolio_tracker/internal/scheduler"
	"github.com/KotFed0t/portfolio_tracker/internal/service/portfolioService"
	"github.com/KotFed0t/portfolio_tracker/internal/transport/rest"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := pgRepository.NewPostgres(cfg, pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)
	redisSession := session.NewRedisSession(redisClient, cfg)

	ratesApiClient := ratesApi.New(cfg)
	marketDataApiClient := marketDataApi.New(cfg)

	ratesProvider := rates.NewProvider(ratesApiClient)
	if err := ratesProvider.Refresh(ctx); err != nil {
		slog.Warn("initial rates refresh failed, conversion degrades until next refresh", slog.String("err", err.Error()))
	}

	feed := marketfeed.New(marketDataApiClient, marketfeed.DialerFunc(func(ctx context.Context) (marketfeed.Stream, error) {
		return marketDataApiClient.DialStream(ctx)
	}))
	defer feed.Close(context.WithoutCancel(ctx))

	reportGenerator := xlsxGenerator.New()

	googleCloudStorage := googleDriveApi.New(ctx, cfg)

	portfolioSrv := portfolioService.New(
		cfg,
		pgRepo,
		redisCache,
		redisSession,
		marketDataApiClient,
		feed,
		ratesProvider,
		reportGenerator,
		googleCloudStorage,
	)

	sched := scheduler.New()
	sched.NewIntervalJob("refresh exchange rates", ratesProvider.Refresh, cfg.Jobs.RefreshRatesInterval, false)
	sched.NewIntervalJob("sync feed tickers", portfolioSrv.SyncFeedTickers, cfg.Jobs.SyncFeedTickersInterval, true)
	sched.NewIntervalJob("delete old report files", googleCloudStorage.DeleteOldFiles, cfg.Jobs.DeleteOldReportsInterval, false)
	sched.Start()
	defer sched.Stop()

	controller := rest.NewController(portfolioSrv)
	router := rest.SetupRoutes(controller, portfolioSrv)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		slog.Info("http server started", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", slog.String("err", err.Error()))
			cancel()
		}
	}()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	select {
	case <-interrupt:
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown failed", slog.String("err", err.Error()))
	}
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
