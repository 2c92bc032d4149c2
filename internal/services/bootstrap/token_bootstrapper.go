package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kevin07696/ctechpay-connector/internal/domain"
	domainports "github.com/kevin07696/ctechpay-connector/internal/domain/ports"
	"github.com/kevin07696/ctechpay-connector/internal/services/ports"
	"github.com/kevin07696/ctechpay-connector/pkg/observability"
)

// tokenBootstrapper implements ports.TokenBootstrapper
type tokenBootstrapper struct {
	partitions domainports.PartitionResolver
	source     *TokenSource
	logger     *zap.Logger
}

// NewTokenBootstrapper creates a new token bootstrapper
func NewTokenBootstrapper(partitions domainports.PartitionResolver, source *TokenSource, logger *zap.Logger) ports.TokenBootstrapper {
	return &tokenBootstrapper{
		partitions: partitions,
		source:     source,
		logger:     logger,
	}
}

// Apply ensures the CTechPay provider exists in a partition and seeds its token.
// A token that is already set is never overwritten.
func (b *tokenBootstrapper) Apply(ctx context.Context, partition string) (ports.BootstrapResult, error) {
	result, err := b.apply(ctx, partition)
	observability.RecordTokenBootstrap(partition, string(result))
	return result, err
}

func (b *tokenBootstrapper) apply(ctx context.Context, partition string) (ports.BootstrapResult, error) {
	logger := b.logger.With(zap.String("partition", partition))

	repo, err := b.partitions.Repository(partition)
	if err != nil {
		return ports.BootstrapResultFailed, err
	}

	exists, err := repo.ProviderExists(ctx, domain.ProviderCode)
	if err != nil {
		return ports.BootstrapResultFailed, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to check provider", err)
	}
	if !exists {
		logger.Info("CTechPay provider not found, creating it")
		if err := repo.CreateProvider(ctx, domain.NewProvider(uuid.NewString())); err != nil {
			return ports.BootstrapResultFailed, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to create provider", err)
		}
	}

	current, err := repo.GetProviderToken(ctx, domain.ProviderCode)
	if err != nil {
		return ports.BootstrapResultFailed, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to read provider token", err)
	}
	if strings.TrimSpace(current) != "" {
		logger.Info("CTechPay provider already has a token, not overwriting")
		return ports.BootstrapResultKept, nil
	}

	token, source := b.source.Resolve(ctx, logger)
	if token == "" {
		logger.Warn("No CTechPay token available from environment, secret store or default")
		return ports.BootstrapResultNoToken, nil
	}

	applied, err := repo.SetProviderToken(ctx, domain.ProviderCode, token)
	if err != nil {
		return ports.BootstrapResultFailed, domain.WrapError(domain.ErrorCodeDatabaseError, "failed to write provider token", err)
	}
	if !applied {
		logger.Info("CTechPay token was set concurrently, keeping it")
		return ports.BootstrapResultRaceLost, nil
	}

	logger.Info("CTechPay token bootstrapped",
		zap.String("source", source),
		zap.String("token", domain.TokenFingerprint(token)),
	)
	return ports.BootstrapResultApplied, nil
}

// ApplyAll runs Apply on every partition and joins the failures
func (b *tokenBootstrapper) ApplyAll(ctx context.Context) error {
	var errs []error
	for _, partition := range b.partitions.Partitions() {
		if _, err := b.Apply(ctx, partition); err != nil {
			b.logger.Error("Token bootstrap failed",
				zap.String("partition", partition),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("partition %s: %w", partition, err))
		}
	}
	return errors.Join(errs...)
}
