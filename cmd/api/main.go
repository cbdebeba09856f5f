package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/octobees/pharmacy-leads/internal/config"
	"github.com/octobees/pharmacy-leads/internal/database"
	"github.com/octobees/pharmacy-leads/internal/discovery"
	"github.com/octobees/pharmacy-leads/internal/discovery/directory"
	"github.com/octobees/pharmacy-leads/internal/discovery/places"
	"github.com/octobees/pharmacy-leads/internal/handler"
	middlewarepkg "github.com/octobees/pharmacy-leads/internal/middleware"
	"github.com/octobees/pharmacy-leads/internal/repository"
	"github.com/octobees/pharmacy-leads/internal/router"
	"github.com/octobees/pharmacy-leads/internal/scanner"
	"github.com/octobees/pharmacy-leads/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := config.InitLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	leadsRepo := repository.NewPGXLeadsRepository(pool)
	surveysRepo := repository.NewPGXSurveysRepository(pool)

	fetcher := scanner.NewFetcher(cfg.Scan.Timeout, cfg.Scan.UserAgent)
	websiteScanner := scanner.New(fetcher)

	placesClient := places.NewClient(cfg.Places.APIKey,
		places.WithBaseURL(cfg.Places.BaseURL),
		places.WithQPS(cfg.Places.QPS),
	)
	directoryClient := directory.NewClient(nil, cfg.Directory.BaseURL, directory.WithTimeout(cfg.Directory.Timeout))
	aggregator := discovery.NewAggregator(placesClient, directoryClient)

	scanService := service.NewScanService(aggregator, websiteScanner, service.NewReconciler(leadsRepo))
	leadsService := service.NewLeadsService(leadsRepo)
	surveysService := service.NewSurveysService(surveysRepo, leadsRepo)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(logger))
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, router.Handlers{
		Scan:    handler.NewScanHandler(scanService),
		Leads:   handler.NewLeadsHandler(leadsService),
		Surveys: handler.NewSurveysHandler(surveysService),
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("api listening", zap.String("port", cfg.Port))
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
