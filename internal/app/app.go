// Package app wires configuration into the adapters and services shared by the commands.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kevin07696/ctechpay-connector/internal/adapters/ctechpay"
	"github.com/kevin07696/ctechpay-connector/internal/adapters/database"
	"github.com/kevin07696/ctechpay-connector/internal/adapters/ports"
	"github.com/kevin07696/ctechpay-connector/internal/adapters/secrets"
	"github.com/kevin07696/ctechpay-connector/internal/config"
	"github.com/kevin07696/ctechpay-connector/internal/services/bootstrap"
	"github.com/kevin07696/ctechpay-connector/internal/services/checkout"
	serviceports "github.com/kevin07696/ctechpay-connector/internal/services/ports"
	pkghttp "github.com/kevin07696/ctechpay-connector/pkg/http"
)

// NewLogger builds the production JSON logger in production and the console logger elsewhere
func NewLogger(cfg config.LoggerConfig, environment string) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zapCfg := zap.NewProductionConfig()
	if environment != "production" || cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}

// PostgreSQLConfigs returns one pool configuration per configured partition
func PostgreSQLConfigs(cfg config.DatabaseConfig) []*database.PostgreSQLConfig {
	configs := make([]*database.PostgreSQLConfig, 0, len(cfg.Partitions))
	for _, partition := range cfg.Partitions {
		pc := database.DefaultPostgreSQLConfig(partition, cfg.URL(partition))
		pc.MaxConns = cfg.MaxConns
		pc.MinConns = cfg.MinConns
		pc.QueryTimeout = cfg.QueryTimeout
		configs = append(configs, pc)
	}
	return configs
}

// OpenPartitions connects to every configured data partition
func OpenPartitions(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*database.Partitions, error) {
	return database.OpenPartitions(ctx, PostgreSQLConfigs(cfg.Database), cfg.Database.DefaultPartition, logger)
}

// SecretsConfig maps the environment settings onto the secret backend factory
func SecretsConfig(cfg config.SecretsConfig) secrets.Config {
	return secrets.Config{
		Backend:         cfg.Backend,
		CacheTTL:        cfg.CacheTTL,
		AWSRegion:       cfg.AWSRegion,
		AWSProfile:      cfg.AWSProfile,
		AWSEndpoint:     cfg.AWSEndpoint,
		VaultAddress:    cfg.VaultAddress,
		VaultAuthMethod: cfg.VaultAuthMethod,
		VaultToken:      cfg.VaultToken,
		VaultRoleID:     cfg.VaultRoleID,
		VaultSecretID:   cfg.VaultSecretID,
		VaultNamespace:  cfg.VaultNamespace,
		VaultMountPath:  cfg.VaultMountPath,
		VaultKVVersion:  cfg.VaultKVVersion,
		LocalDir:        cfg.LocalDir,
	}
}

// NewTokenBootstrapper builds the bootstrapper with the env, secret store and default token sources
func NewTokenBootstrapper(ctx context.Context, cfg *config.Config, partitions *database.Partitions, logger *zap.Logger) (serviceports.TokenBootstrapper, error) {
	sm, err := secrets.NewSecretManager(ctx, SecretsConfig(cfg.Secrets), logger)
	if err != nil {
		return nil, fmt.Errorf("secret manager: %w", err)
	}

	source := &bootstrap.TokenSource{
		EnvToken:     cfg.CTechPay.APIToken,
		DefaultToken: cfg.CTechPay.DefaultToken,
		SecretPath:   cfg.CTechPay.SecretPath,
		Secrets:      sm, // nil for the "none" backend
	}

	return bootstrap.NewTokenBootstrapper(partitions, source, logger), nil
}

// GatewayConfig maps the environment settings onto the order adapter configuration
func GatewayConfig(cfg config.GatewayConfig) *ctechpay.Config {
	gc := ctechpay.DefaultConfig()
	gc.BaseURL = cfg.BaseURL
	gc.Timeout = cfg.Timeout
	gc.BreakerMaxFailures = cfg.BreakerMaxFailures
	gc.BreakerOpenTimeout = cfg.BreakerOpenTimeout
	return gc
}

// NewOrderGateway builds the CTechPay order adapter over the tuned outbound client
func NewOrderGateway(cfg config.GatewayConfig, logger *zap.Logger) ports.OrderGateway {
	clientCfg := pkghttp.GatewayClientConfig()
	clientCfg.InsecureSkipVerify = cfg.InsecureSkipVerify
	if cfg.InsecureSkipVerify {
		logger.Warn("TLS verification disabled for the CTechPay gateway")
	}

	// The adapter applies the per-attempt timeout through the request context
	httpClient := pkghttp.NewHTTPClient(clientCfg, 0)
	return ctechpay.NewOrderAdapter(GatewayConfig(cfg), httpClient, logger)
}

// NewCheckoutService builds the process/form service
func NewCheckoutService(cfg *config.Config, partitions *database.Partitions, gateway ports.OrderGateway, logger *zap.Logger) serviceports.CheckoutService {
	return checkout.NewCheckoutService(partitions, gateway, checkout.Config{
		EnvToken:     cfg.CTechPay.APIToken,
		WebBaseURL:   cfg.CTechPay.WebBaseURL,
		NgrokBaseURL: cfg.CTechPay.NgrokBaseURL,
	}, logger)
}
