package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/unidash/internal/config"
	"github.com/kailas-cloud/unidash/internal/db/connect"
	logpkg "github.com/kailas-cloud/unidash/internal/logger"
	"github.com/kailas-cloud/unidash/internal/metrics"
	"github.com/kailas-cloud/unidash/internal/repository/records"
	chiTransport "github.com/kailas-cloud/unidash/internal/transport/chi"
	healthuc "github.com/kailas-cloud/unidash/internal/usecase/health"
	listinguc "github.com/kailas-cloud/unidash/internal/usecase/listing"
	"github.com/kailas-cloud/unidash/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting unidash API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Int("pages", len(cfg.Pages)),
	)

	store, err := connect.Open(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register listing metrics explicitly (no init())
	metrics.RegisterListingMetrics()

	repo := records.New(store, cfg.Storage.KeyPrefix)

	// The memory driver starts empty: load the fixtures so pages have data.
	if cfg.Database.Driver == config.DriverMemory && cfg.Storage.FixturesDir != "" {
		seedFixtures(ctx, repo, cfg, logger)
	}

	defs, err := cfg.Definitions()
	if err != nil {
		logger.Fatal("Invalid page definitions", zap.Error(err))
	}

	fetcher := listinguc.NewInstrumentedFetcher(repo, logger)
	listingSvc, err := listinguc.New(defs, fetcher, time.Duration(cfg.Listing.SnapshotTTLSec)*time.Second, logger)
	if err != nil {
		logger.Fatal("Failed to create listing service", zap.Error(err))
	}
	warmUp(ctx, listingSvc, logger)

	healthSvc := healthuc.New(store, repo, cfg.Sources())

	server := chiTransport.NewServer(listingSvc, healthSvc, logger)
	handler := chiTransport.NewRouter(server, cfg.Auth.APIKeys)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func seedFixtures(ctx context.Context, repo *records.Repo, cfg config.Config, logger *zap.Logger) {
	res, err := repo.Seed(ctx, os.DirFS(cfg.Storage.FixturesDir), cfg.Sources(), records.DefaultSeedWorkers)
	if err != nil {
		logger.Fatal("Failed to load fixtures", zap.String("dir", cfg.Storage.FixturesDir), zap.Error(err))
	}
	logger.Info("Fixtures loaded",
		zap.String("dir", cfg.Storage.FixturesDir),
		zap.Strings("loaded", res.Loaded),
		zap.Strings("missing", res.Missing),
	)
}

// warmUp fetches every page once so the first request hits a snapshot.
// Failures are logged only; pages retry on their next open.
func warmUp(ctx context.Context, svc *listinguc.Service, logger *zap.Logger) {
	for _, def := range svc.Definitions() {
		if err := svc.Refresh(ctx, def.Name()); err != nil {
			logger.Warn("Page warm-up failed", zap.String("page", def.Name()), zap.Error(err))
		}
	}
}
