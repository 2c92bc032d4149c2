package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kevin07696/ctechpay-connector/internal/adapters/database"
	"github.com/kevin07696/ctechpay-connector/internal/config"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "warn"}, "production")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))

	_, err = NewLogger(config.LoggerConfig{Level: "loud"}, "development")
	assert.Error(t, err)
}

func TestPostgreSQLConfigs(t *testing.T) {
	configs := PostgreSQLConfigs(config.DatabaseConfig{
		Host:         "db",
		Port:         5432,
		User:         "odoo",
		SSLMode:      "disable",
		Partitions:   []string{"main", "shop"},
		MaxConns:     8,
		MinConns:     2,
		QueryTimeout: 3 * time.Second,
	})

	require.Len(t, configs, 2)
	assert.Equal(t, "shop", configs[1].Partition)
	assert.Equal(t, "postgres://odoo@db:5432/shop?sslmode=disable", configs[1].DatabaseURL)
	assert.Equal(t, int32(8), configs[0].MaxConns)
	assert.Equal(t, int32(2), configs[0].MinConns)
	assert.Equal(t, 3*time.Second, configs[0].QueryTimeout)
}

func TestGatewayConfig(t *testing.T) {
	gc := GatewayConfig(config.GatewayConfig{
		BaseURL:            "https://sandbox.example.com/",
		Timeout:            5 * time.Second,
		BreakerMaxFailures: 3,
		BreakerOpenTimeout: time.Minute,
	})

	assert.Equal(t, "https://sandbox.example.com/", gc.BaseURL)
	assert.Equal(t, "order", gc.Endpoint)
	assert.Equal(t, 5*time.Second, gc.Timeout)
	assert.Equal(t, uint32(3), gc.BreakerMaxFailures)

	orderURL, err := gc.OrderURL()
	require.NoError(t, err)
	assert.Equal(t, "https://sandbox.example.com/?endpoint=order", orderURL)
}

func TestNewTokenBootstrapper_NoSecretBackend(t *testing.T) {
	cfg := &config.Config{
		Secrets:  config.SecretsConfig{Backend: "none"},
		CTechPay: config.CTechPayConfig{APIToken: "tok"},
	}

	b, err := NewTokenBootstrapper(context.Background(), cfg, database.NewPartitions("main"), zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, b)
	assert.NoError(t, b.ApplyAll(context.Background()), "no partitions registered")
}

func TestNewTokenBootstrapper_BadBackend(t *testing.T) {
	cfg := &config.Config{Secrets: config.SecretsConfig{Backend: "vault", VaultAuthMethod: "token"}}

	_, err := NewTokenBootstrapper(context.Background(), cfg, database.NewPartitions("main"), zap.NewNop())
	assert.Error(t, err)
}
