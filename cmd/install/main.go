package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kevin07696/ctechpay-connector/internal/app"
	"github.com/kevin07696/ctechpay-connector/internal/config"
)

// install runs the token bootstrap once across every partition.
// It exits non-zero when any partition fails.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "install: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := app.NewLogger(cfg.Logger, cfg.Server.Environment)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	partitions, err := app.OpenPartitions(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open database partitions: %w", err)
	}
	defer partitions.Close()

	bootstrapper, err := app.NewTokenBootstrapper(ctx, cfg, partitions, logger)
	if err != nil {
		return err
	}

	if err := bootstrapper.ApplyAll(ctx); err != nil {
		return err
	}

	logger.Info("CTechPay install hook finished", zap.Strings("partitions", partitions.Partitions()))
	return nil
}
