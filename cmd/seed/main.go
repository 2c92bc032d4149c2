package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kevin07696/ctechpay-connector/internal/adapters/database"
	"github.com/kevin07696/ctechpay-connector/internal/adapters/postgres"
	"github.com/kevin07696/ctechpay-connector/internal/app"
	"github.com/kevin07696/ctechpay-connector/internal/config"
	"github.com/kevin07696/ctechpay-connector/internal/domain"
	checkoutHandler "github.com/kevin07696/ctechpay-connector/internal/handlers/checkout"
)

// seed creates a pending CTechPay transaction for local end-to-end testing,
// as the host platform would before sending the shopper to the process endpoint.

const insertTransactionSQL = `
INSERT INTO payment_transactions (id, reference, amount, currency, provider_code, provider_id, state, created_at)
VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8)`

func main() {
	partition := flag.String("partition", "", "data partition (default: DB_DEFAULT_PARTITION)")
	amount := flag.String("amount", "1500.00", "transaction amount")
	currency := flag.String("currency", "MWK", "transaction currency")
	reference := flag.String("reference", "", "transaction reference (default: generated)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}

	logger, err := app.NewLogger(cfg.Logger, cfg.Server.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if *partition == "" {
		*partition = cfg.Database.DefaultPartition
	}
	if *reference == "" {
		*reference = "CTP-" + strings.ToUpper(uuid.NewString()[:8])
	}

	value, err := decimal.NewFromString(*amount)
	if err != nil || !value.IsPositive() {
		logger.Fatal("Amount must be a positive decimal", zap.String("amount", *amount))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	adapter, err := database.NewPostgreSQLAdapter(ctx, database.DefaultPostgreSQLConfig(*partition, cfg.Database.URL(*partition)), logger)
	if err != nil {
		logger.Fatal("Failed to connect", zap.String("partition", *partition), zap.Error(err))
	}
	defer adapter.Close()

	repo := postgres.NewProviderRepository(adapter.Pool())
	if err := repo.CreateProvider(ctx, domain.NewProvider(uuid.NewString())); err != nil {
		logger.Fatal("Failed to ensure provider", zap.Error(err))
	}
	provider, err := repo.GetProvider(ctx, domain.ProviderCode)
	if err != nil {
		logger.Fatal("Failed to load provider", zap.Error(err))
	}

	_, err = adapter.Pool().Exec(ctx, insertTransactionSQL,
		uuid.NewString(), *reference, value.String(), *currency,
		domain.ProviderCode, provider.ID, string(domain.TransactionStatePending), time.Now().UTC(),
	)
	if err != nil {
		logger.Fatal("Failed to insert transaction", zap.String("reference", *reference), zap.Error(err))
	}

	logger.Info("Seeded pending transaction",
		zap.String("partition", *partition),
		zap.String("reference", *reference),
		zap.String("amount", value.String()),
		zap.Bool("provider_has_token", provider.HasToken()),
	)
	fmt.Printf("Open http://localhost:%d%s?db=%s&reference=%s\n", cfg.Server.HTTPPort, checkoutHandler.FormPath, *partition, *reference)
}
