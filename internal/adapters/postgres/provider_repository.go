package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kevin07696/ctechpay-connector/internal/domain"
	"github.com/kevin07696/ctechpay-connector/internal/domain/ports"
)

const (
	findTransactionByReferenceSQL = `
SELECT id::text, reference, amount::text, COALESCE(currency, ''), provider_code, COALESCE(provider_id::text, ''), state, created_at
FROM payment_transactions
WHERE reference = $1
LIMIT 1`

	getProviderSQL = `
SELECT id::text, name, code, state, COALESCE(ctechpay_api_token, ''), COALESCE(base_url, ''), created_at, updated_at
FROM payment_providers
WHERE code = $1
LIMIT 1`

	getProviderTokenSQL = `
SELECT COALESCE(ctechpay_api_token, '')
FROM payment_providers
WHERE code = $1
LIMIT 1`

	// Only fills a blank token (NULL or whitespace, as Provider.HasToken sees it);
	// concurrent starters cannot overwrite each other.
	setProviderTokenSQL = `
UPDATE payment_providers
SET ctechpay_api_token = $2, updated_at = NOW()
WHERE code = $1 AND btrim(COALESCE(ctechpay_api_token, '')) = ''`

	providerExistsSQL = `SELECT EXISTS (SELECT 1 FROM payment_providers WHERE code = $1)`

	createProviderSQL = `
INSERT INTO payment_providers (id, name, code, state, base_url, payment_method_codes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (code) DO NOTHING`
)

// ProviderRepository implements ports.ProviderRepository over the host's tables
type ProviderRepository struct {
	db ports.DBTX
}

// NewProviderRepository creates a new provider repository
func NewProviderRepository(db ports.DBTX) *ProviderRepository {
	return &ProviderRepository{db: db}
}

var _ ports.ProviderRepository = (*ProviderRepository)(nil)

// FindTransactionByReference returns the transaction with the given reference
func (r *ProviderRepository) FindTransactionByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	var (
		tx     domain.Transaction
		amount string
		state  string
	)

	err := r.db.QueryRow(ctx, findTransactionByReferenceSQL, reference).Scan(
		&tx.ID, &tx.Reference, &amount, &tx.Currency, &tx.ProviderCode, &tx.ProviderID, &state, &tx.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("get transaction by reference: %w", err)
	}

	if tx.Amount, err = parseAmount(amount); err != nil {
		return nil, err
	}
	tx.State = domain.TransactionState(state)

	return &tx, nil
}

// GetProvider returns the provider record for a provider code
func (r *ProviderRepository) GetProvider(ctx context.Context, code string) (*domain.Provider, error) {
	var (
		p     domain.Provider
		state string
	)

	err := r.db.QueryRow(ctx, getProviderSQL, code).Scan(
		&p.ID, &p.Name, &p.Code, &state, &p.APIToken, &p.BaseURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProviderNotFound
		}
		return nil, fmt.Errorf("get provider: %w", err)
	}
	p.State = domain.ProviderState(state)

	return &p, nil
}

// GetProviderToken returns the stored API token, or "" when unset
func (r *ProviderRepository) GetProviderToken(ctx context.Context, code string) (string, error) {
	var token string
	if err := r.db.QueryRow(ctx, getProviderTokenSQL, code).Scan(&token); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrProviderNotFound
		}
		return "", fmt.Errorf("get provider token: %w", err)
	}
	return token, nil
}

// SetProviderToken stores the token only if none is present
func (r *ProviderRepository) SetProviderToken(ctx context.Context, code, token string) (bool, error) {
	tag, err := r.db.Exec(ctx, setProviderTokenSQL, code, token)
	if err != nil {
		return false, fmt.Errorf("set provider token: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ProviderExists reports whether a provider record with this code exists
func (r *ProviderRepository) ProviderExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, providerExistsSQL, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("check provider exists: %w", err)
	}
	return exists, nil
}

// CreateProvider inserts a provider record; an existing record with the same code is left untouched
func (r *ProviderRepository) CreateProvider(ctx context.Context, p *domain.Provider) error {
	_, err := r.db.Exec(ctx, createProviderSQL,
		p.ID, p.Name, p.Code, string(p.State), nullText(p.BaseURL), p.DefaultPaymentMethodCodes(), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create provider: %w", err)
	}
	return nil
}
