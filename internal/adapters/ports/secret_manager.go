package ports

import (
	"context"
)

// Secret represents a retrieved secret with metadata
type Secret struct {
	Value     string            // The secret value (e.g., the CTechPay API token)
	Version   string            // Secret version identifier
	Metadata  map[string]string // Additional secret metadata
	CreatedAt string            // When this version was created
}

// SecretManagerAdapter defines the port for reading secrets from a secret management service.
// Supported backends: AWS Secrets Manager, HashiCorp Vault, local filesystem (development).
type SecretManagerAdapter interface {
	// GetSecret retrieves a secret by its path/name
	// Path format depends on implementation:
	//   - AWS: "ctechpay/api-token" or a full ARN
	//   - Vault: "ctechpay/api-token" under the configured KV mount
	//   - Local: file path relative to the base directory
	// Returns an error if the secret does not exist, access is denied, or the service is unavailable.
	GetSecret(ctx context.Context, path string) (*Secret, error)
}
