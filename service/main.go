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

	alpaca "github.com/Arushi-290602/Captial-Asset-Price-Management/service/api/alpaca"
	av "github.com/Arushi-290602/Captial-Asset-Price-Management/service/api/alpha_vantage"
	cfg "github.com/Arushi-290602/Captial-Asset-Price-Management/service/config"
	c "github.com/Arushi-290602/Captial-Asset-Price-Management/service/core"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "capm service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// listen for interrupt and term signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := cfg.Load(".env")
	if err != nil {
		return err
	}

	logger, err := cfg.NewLogger(config.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	provider, err := getPriceProvider(config, logger)
	if err != nil {
		return err
	}

	sc := c.ServiceContext{
		Context:         ctx,
		Logger:          logger,
		PriceProvider:   provider,
		BenchmarkSymbol: config.BenchmarkSymbol,
		FetchWorkers:    config.FetchWorkers,
	}

	s := c.GetHttpServer(sc, config.HttpAddr)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting capm server",
			zap.String("addr", s.Addr),
			zap.String("provider", config.PriceProvider),
			zap.String("benchmark", config.BenchmarkSymbol))
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// wait here until ctrl+C or the server dies
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal, shutting down gracefully")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server stopped successfully")
	return nil
}

func getPriceProvider(config *cfg.Config, logger *zap.Logger) (c.PriceProvider, error) {
	switch config.PriceProvider {
	case cfg.ProviderAlpaca:
		client := alpaca.GetClient(config.AlpacaApiKey, config.AlpacaApiSecret, logger)
		return &client, nil
	case cfg.ProviderAlphaVantage:
		client := av.GetClient(config.AlphaVantageApiKey, config.AlphaVantageRequestsPerMinute, config.AlphaVantageAdjusted, logger)
		return &client, nil
	default:
		return nil, fmt.Errorf("%w: unknown price provider %q", cfg.ErrInvalidConfig, config.PriceProvider)
	}
}
