package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamesales/internal/api"
	"gamesales/internal/config"
	"gamesales/internal/engine"
	"gamesales/internal/etl"
	"gamesales/internal/logging"
	"gamesales/internal/metrics"
	"gamesales/internal/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging, os.Stdout)
	slog.SetDefault(logger)

	shutdownTracing, err := tracing.Setup(cfg.Tracing, os.Stdout, logger)
	if err != nil {
		logger.Error("tracing setup failed", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. The API is live immediately and answers 503 until a dataset is published.
	store := engine.NewStore()
	m := metrics.New()
	runner := etl.NewRunner(store, cfg.Data, logger, m)
	e := api.NewServer(cfg.Server, cfg.Data.MaxBytes, api.Deps{
		Store:   store,
		Loader:  runner,
		Metrics: m,
		Logger:  logger,
	})

	// 2. Initial load runs in the background.
	go func() {
		logger.Info("BACKGROUND: starting initial load", slog.String("source", runner.DefaultSource()))
		t0 := time.Now()
		ds, err := runner.Reload(ctx, "")
		if err != nil {
			logger.Error("BACKGROUND: initial load failed", slog.Any("error", err))
			return
		}
		logger.Info("BACKGROUND: dataset ready",
			slog.Int("records", len(ds.Records)),
			slog.Duration("took", time.Since(t0)))
	}()

	// 3. Serve until signalled.
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Server.Addr))
		if err := e.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", slog.Any("error", err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown", slog.Any("error", err))
	}
}
