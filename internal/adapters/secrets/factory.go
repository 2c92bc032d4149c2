package secrets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kevin07696/ctechpay-connector/internal/adapters/ports"
)

// Supported secret backends
const (
	BackendNone  = "none"
	BackendAWS   = "aws"
	BackendVault = "vault"
	BackendLocal = "local"
)

// Config selects and configures a secret backend
type Config struct {
	Backend  string
	CacheTTL time.Duration

	AWSRegion   string
	AWSProfile  string
	AWSEndpoint string

	VaultAddress    string
	VaultAuthMethod string
	VaultToken      string
	VaultRoleID     string
	VaultSecretID   string
	VaultNamespace  string
	VaultMountPath  string
	VaultKVVersion  string

	LocalDir string
}

// NewSecretManager builds the configured backend. The "none" backend returns a nil adapter.
func NewSecretManager(ctx context.Context, cfg Config, logger *zap.Logger) (ports.SecretManagerAdapter, error) {
	switch cfg.Backend {
	case "", BackendNone:
		return nil, nil

	case BackendAWS:
		awsCfg := DefaultAWSSecretsManagerConfig(cfg.AWSRegion)
		awsCfg.Profile = cfg.AWSProfile
		awsCfg.Endpoint = cfg.AWSEndpoint
		if cfg.CacheTTL > 0 {
			awsCfg.CacheTTL = cfg.CacheTTL
		}
		return NewAWSSecretsManagerAdapter(ctx, awsCfg, logger)

	case BackendVault:
		vaultCfg := DefaultVaultConfig(cfg.VaultAddress)
		vaultCfg.Token = cfg.VaultToken
		vaultCfg.RoleID = cfg.VaultRoleID
		vaultCfg.SecretID = cfg.VaultSecretID
		vaultCfg.Namespace = cfg.VaultNamespace
		if cfg.VaultAuthMethod != "" {
			vaultCfg.AuthMethod = cfg.VaultAuthMethod
		}
		if cfg.VaultMountPath != "" {
			vaultCfg.MountPath = cfg.VaultMountPath
		}
		if cfg.VaultKVVersion != "" {
			vaultCfg.KVVersion = cfg.VaultKVVersion
		}
		if cfg.CacheTTL > 0 {
			vaultCfg.CacheTTL = cfg.CacheTTL
		}
		return NewVaultAdapter(ctx, vaultCfg, logger)

	case BackendLocal:
		logger.Warn("Using local filesystem secret manager - NOT for production use!",
			zap.String("dir", cfg.LocalDir),
		)
		return NewLocalSecretManager(cfg.LocalDir, logger), nil

	default:
		return nil, fmt.Errorf("unsupported secret backend: %s", cfg.Backend)
	}
}
