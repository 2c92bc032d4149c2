package ports

import (
	"context"

	"github.com/kevin07696/ctechpay-connector/internal/domain"
)

// ProviderRepository is the capability-scoped view of the host platform's records.
// It runs with elevated privileges, so it only exposes what the connector needs.
type ProviderRepository interface {
	// FindTransactionByReference returns the transaction with the given reference.
	// Returns domain.ErrTransactionNotFound when no row matches.
	FindTransactionByReference(ctx context.Context, reference string) (*domain.Transaction, error)

	// GetProvider returns the provider record for a provider code.
	// Returns domain.ErrProviderNotFound when no row matches.
	GetProvider(ctx context.Context, code string) (*domain.Provider, error)

	// GetProviderToken returns the stored API token, or "" when unset
	GetProviderToken(ctx context.Context, code string) (string, error)

	// SetProviderToken stores the token only if the current value is empty.
	// Returns false when a non-empty token was already present.
	SetProviderToken(ctx context.Context, code, token string) (bool, error)

	// ProviderExists reports whether a provider record with this code exists
	ProviderExists(ctx context.Context, code string) (bool, error)

	// CreateProvider inserts a provider record; an existing record with the same code is left untouched
	CreateProvider(ctx context.Context, provider *domain.Provider) error
}

// PartitionResolver maps a data partition (host database) name to its repository
type PartitionResolver interface {
	// Repository returns the repository for a partition; "" selects the default partition
	Repository(partition string) (ProviderRepository, error)

	// Partitions lists every configured partition name
	Partitions() []string
}
