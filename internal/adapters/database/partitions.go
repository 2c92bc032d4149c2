package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kevin07696/ctechpay-connector/internal/adapters/postgres"
	"github.com/kevin07696/ctechpay-connector/internal/domain"
	"github.com/kevin07696/ctechpay-connector/internal/domain/ports"
)

// Partitions maps host database names to their repositories.
// It implements ports.PartitionResolver.
type Partitions struct {
	repos            map[string]ports.ProviderRepository
	pingers          map[string]ports.Pinger
	adapters         []*PostgreSQLAdapter
	defaultPartition string
}

var _ ports.PartitionResolver = (*Partitions)(nil)

// NewPartitions creates an empty registry; the first partition added becomes the default
// unless defaultPartition names another one.
func NewPartitions(defaultPartition string) *Partitions {
	return &Partitions{
		repos:            make(map[string]ports.ProviderRepository),
		pingers:          make(map[string]ports.Pinger),
		defaultPartition: defaultPartition,
	}
}

// Add registers a repository for a partition
func (p *Partitions) Add(name string, repo ports.ProviderRepository, pinger ports.Pinger) {
	p.repos[name] = repo
	if pinger != nil {
		p.pingers[name] = pinger
	}
	if p.defaultPartition == "" {
		p.defaultPartition = name
	}
}

// OpenPartitions opens one pool per configuration. On failure every pool already opened is closed.
func OpenPartitions(ctx context.Context, configs []*PostgreSQLConfig, defaultPartition string, logger *zap.Logger) (*Partitions, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("no database partitions configured")
	}

	p := NewPartitions(defaultPartition)
	for _, cfg := range configs {
		adapter, err := NewPostgreSQLAdapter(ctx, cfg, logger)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("partition %s: %w", cfg.Partition, err)
		}
		p.adapters = append(p.adapters, adapter)
		p.Add(cfg.Partition, postgres.NewProviderRepository(adapter.Pool()), adapter)
	}

	if _, ok := p.repos[p.defaultPartition]; !ok {
		p.Close()
		return nil, fmt.Errorf("default partition %q is not configured", p.defaultPartition)
	}
	return p, nil
}

// Repository returns the repository for a partition; "" selects the default
func (p *Partitions) Repository(partition string) (ports.ProviderRepository, error) {
	if partition == "" {
		partition = p.defaultPartition
	}
	repo, ok := p.repos[partition]
	if !ok {
		return nil, domain.NewDomainError(domain.ErrorCodeUnknownPartition, "unknown data partition").
			WithDetail("partition", partition)
	}
	return repo, nil
}

// Partitions lists every configured partition name, sorted
func (p *Partitions) Partitions() []string {
	names := make([]string, 0, len(p.repos))
	for name := range p.repos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns the default partition name
func (p *Partitions) Default() string {
	return p.defaultPartition
}

// Pingers returns the liveness check of every partition that has one
func (p *Partitions) Pingers() map[string]ports.Pinger {
	out := make(map[string]ports.Pinger, len(p.pingers))
	for name, pinger := range p.pingers {
		out[name] = pinger
	}
	return out
}

// StartPoolMonitoring starts pool monitoring on every opened partition
func (p *Partitions) StartPoolMonitoring(ctx context.Context, interval time.Duration) {
	for _, adapter := range p.adapters {
		adapter.StartPoolMonitoring(ctx, interval)
	}
}

// Close closes every pool opened by OpenPartitions
func (p *Partitions) Close() {
	for _, adapter := range p.adapters {
		adapter.Close()
	}
	p.adapters = nil
}
