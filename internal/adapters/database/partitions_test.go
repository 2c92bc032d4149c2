package database

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kevin07696/ctechpay-connector/internal/adapters/postgres"
	"github.com/kevin07696/ctechpay-connector/internal/domain"
)

func TestPartitions_Repository(t *testing.T) {
	mainPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mainPool.Close()
	shopPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer shopPool.Close()

	mainRepo := postgres.NewProviderRepository(mainPool)
	shopRepo := postgres.NewProviderRepository(shopPool)

	p := NewPartitions("")
	p.Add("main", mainRepo, mainPool)
	p.Add("shop", shopRepo, shopPool)

	repo, err := p.Repository("")
	require.NoError(t, err)
	assert.Same(t, mainRepo, repo)

	repo, err = p.Repository("shop")
	require.NoError(t, err)
	assert.Same(t, shopRepo, repo)

	_, err = p.Repository("unknown")
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeUnknownPartition))

	assert.Equal(t, []string{"main", "shop"}, p.Partitions())
	assert.Len(t, p.Pingers(), 2)
	assert.Equal(t, "main", p.Default())
}

func TestPartitions_ExplicitDefault(t *testing.T) {
	p := NewPartitions("shop")
	p.Add("main", nil, nil)
	p.Add("shop", nil, nil)

	assert.Equal(t, "shop", p.Default())
	assert.Empty(t, p.Pingers())
}

func TestOpenPartitions_Errors(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	_, err := OpenPartitions(ctx, nil, "", logger)
	assert.ErrorContains(t, err, "no database partitions configured")

	_, err = OpenPartitions(ctx, []*PostgreSQLConfig{
		DefaultPostgreSQLConfig("main", "not-a-valid-url"),
	}, "main", logger)
	assert.ErrorContains(t, err, "partition main")
	assert.ErrorContains(t, err, "failed to parse database URL")
}

func TestDefaultPostgreSQLConfig(t *testing.T) {
	cfg := DefaultPostgreSQLConfig("main", "postgres://localhost/main")

	assert.Equal(t, "main", cfg.Partition)
	assert.Equal(t, int32(5), cfg.MaxConns)
	assert.Positive(t, cfg.QueryTimeout)
}
