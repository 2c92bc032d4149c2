package bootstrap

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	adapterports "github.com/kevin07696/ctechpay-connector/internal/adapters/ports"
	"github.com/kevin07696/ctechpay-connector/internal/domain"
	domainports "github.com/kevin07696/ctechpay-connector/internal/domain/ports"
	"github.com/kevin07696/ctechpay-connector/internal/services/ports"
)

// memoryRepository is a stateful provider store with the same conditional-write semantics as postgres
type memoryRepository struct {
	mu        sync.Mutex
	providers map[string]*domain.Provider
	failWith  error
	creates   int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{providers: make(map[string]*domain.Provider)}
}

func (r *memoryRepository) FindTransactionByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	return nil, domain.ErrTransactionNotFound
}

func (r *memoryRepository) GetProvider(ctx context.Context, code string) (*domain.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.providers[code]
	if !ok {
		return nil, domain.ErrProviderNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryRepository) GetProviderToken(ctx context.Context, code string) (string, error) {
	p, err := r.GetProvider(ctx, code)
	if err != nil {
		return "", err
	}
	return p.APIToken, nil
}

func (r *memoryRepository) SetProviderToken(ctx context.Context, code, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return false, r.failWith
	}
	p, ok := r.providers[code]
	if !ok || p.HasToken() {
		return false, nil
	}
	p.APIToken = token
	return true, nil
}

func (r *memoryRepository) ProviderExists(ctx context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return false, r.failWith
	}
	_, ok := r.providers[code]
	return ok, nil
}

func (r *memoryRepository) CreateProvider(ctx context.Context, provider *domain.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[provider.Code]; !ok {
		cp := *provider
		r.providers[provider.Code] = &cp
		r.creates++
	}
	return nil
}

func (r *memoryRepository) token() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[domain.ProviderCode]; ok {
		return p.APIToken
	}
	return ""
}

// memoryPartitions resolves partition names to in-memory repositories
type memoryPartitions map[string]*memoryRepository

func (m memoryPartitions) Repository(partition string) (domainports.ProviderRepository, error) {
	repo, ok := m[partition]
	if !ok {
		return nil, domain.NewDomainError(domain.ErrorCodeUnknownPartition, "unknown partition")
	}
	return repo, nil
}

func (m memoryPartitions) Partitions() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	return names
}

// stubSecrets returns a fixed secret or error
type stubSecrets struct {
	value string
	err   error
	calls int
}

func (s *stubSecrets) GetSecret(ctx context.Context, path string) (*adapterports.Secret, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &adapterports.Secret{Value: s.value}, nil
}

func TestApply_CreatesProviderAndSeedsToken(t *testing.T) {
	repo := newMemoryRepository()
	b := NewTokenBootstrapper(memoryPartitions{"main": repo}, &TokenSource{EnvToken: " env-token-0001 "}, zap.NewNop())

	result, err := b.Apply(context.Background(), "main")
	require.NoError(t, err)

	assert.Equal(t, ports.BootstrapResultApplied, result)
	assert.Equal(t, "env-token-0001", repo.token())

	provider, err := repo.GetProvider(context.Background(), domain.ProviderCode)
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderName, provider.Name)
	assert.Equal(t, domain.ProviderStateDisabled, provider.State)
	assert.NotEmpty(t, provider.ID)
}

func TestApply_NeverOverwritesAcrossRuns(t *testing.T) {
	repo := newMemoryRepository()
	partitions := memoryPartitions{"main": repo}
	ctx := context.Background()

	first := NewTokenBootstrapper(partitions, &TokenSource{EnvToken: "first-token-1111"}, zap.NewNop())
	result, err := first.Apply(ctx, "main")
	require.NoError(t, err)
	require.Equal(t, ports.BootstrapResultApplied, result)

	for i, token := range []string{"second-token-2222", "third-token-3333", "first-token-1111"} {
		next := NewTokenBootstrapper(partitions, &TokenSource{EnvToken: token}, zap.NewNop())
		result, err := next.Apply(ctx, "main")
		require.NoError(t, err, "run %d", i)
		assert.Equal(t, ports.BootstrapResultKept, result)
	}

	assert.Equal(t, "first-token-1111", repo.token())
	assert.Equal(t, 1, repo.creates)
}

func TestApply_FillsWhitespaceToken(t *testing.T) {
	repo := newMemoryRepository()
	provider := domain.NewProvider("prov-1")
	provider.APIToken = "   "
	repo.providers[domain.ProviderCode] = provider
	partitions := memoryPartitions{"main": repo}

	b := NewTokenBootstrapper(partitions, &TokenSource{EnvToken: "fresh-token-4444"}, zap.NewNop())
	result, err := b.Apply(context.Background(), "main")
	require.NoError(t, err)

	assert.Equal(t, ports.BootstrapResultApplied, result)
	assert.Equal(t, "fresh-token-4444", repo.token())
}

func TestApply_ConcurrentStartersWriteOnce(t *testing.T) {
	repo := newMemoryRepository()
	partitions := memoryPartitions{"main": repo}
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan ports.BootstrapResult, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b := NewTokenBootstrapper(partitions, &TokenSource{EnvToken: strings.Repeat("t", i+9)}, zap.NewNop())
			result, err := b.Apply(ctx, "main")
			assert.NoError(t, err)
			results <- result
		}(i)
	}
	wg.Wait()
	close(results)

	applied := 0
	for r := range results {
		if r == ports.BootstrapResultApplied {
			applied++
		}
	}
	assert.Equal(t, 1, applied)
	assert.NotEmpty(t, repo.token())
}

func TestApply_TokenSourceOrder(t *testing.T) {
	tests := []struct {
		name      string
		source    *TokenSource
		wantToken string
		wantRes   ports.BootstrapResult
	}{
		{
			name:      "environment first",
			source:    &TokenSource{EnvToken: "env", DefaultToken: "default", SecretPath: "p", Secrets: &stubSecrets{value: "secret"}},
			wantToken: "env",
			wantRes:   ports.BootstrapResultApplied,
		},
		{
			name:      "secret store second",
			source:    &TokenSource{DefaultToken: "default", SecretPath: "p", Secrets: &stubSecrets{value: " secret "}},
			wantToken: "secret",
			wantRes:   ports.BootstrapResultApplied,
		},
		{
			name:      "failing secret store falls back to default",
			source:    &TokenSource{DefaultToken: "default", SecretPath: "p", Secrets: &stubSecrets{err: errors.New("access denied")}},
			wantToken: "default",
			wantRes:   ports.BootstrapResultApplied,
		},
		{
			name:      "nothing configured",
			source:    &TokenSource{},
			wantToken: "",
			wantRes:   ports.BootstrapResultNoToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryRepository()
			b := NewTokenBootstrapper(memoryPartitions{"main": repo}, tt.source, zap.NewNop())

			result, err := b.Apply(context.Background(), "main")
			require.NoError(t, err)
			assert.Equal(t, tt.wantRes, result)
			assert.Equal(t, tt.wantToken, repo.token())
		})
	}
}

func TestApply_LogsFingerprintOnly(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	repo := newMemoryRepository()
	b := NewTokenBootstrapper(memoryPartitions{"main": repo}, &TokenSource{DefaultToken: "very-secret-token-abcd"}, zap.New(core))

	_, err := b.Apply(context.Background(), "main")
	require.NoError(t, err)

	entries := logs.FilterMessage("CTechPay token bootstrapped").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "****abcd", entries[0].ContextMap()["token"])
	assert.Equal(t, SourceDefault, entries[0].ContextMap()["source"])
}

func TestApplyAll_ContinuesPastFailures(t *testing.T) {
	healthy := newMemoryRepository()
	broken := newMemoryRepository()
	broken.failWith = errors.New("relation payment_providers does not exist")

	b := NewTokenBootstrapper(memoryPartitions{"healthy": healthy, "broken": broken}, &TokenSource{EnvToken: "tok"}, zap.NewNop())

	err := b.ApplyAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "partition broken")
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeDatabaseError))
	assert.Equal(t, "tok", healthy.token())
}

func TestApply_UnknownPartition(t *testing.T) {
	b := NewTokenBootstrapper(memoryPartitions{}, &TokenSource{EnvToken: "tok"}, zap.NewNop())

	result, err := b.Apply(context.Background(), "missing")
	assert.Equal(t, ports.BootstrapResultFailed, result)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeUnknownPartition))
}
