package bootstrap

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kevin07696/ctechpay-connector/internal/adapters/ports"
)

// Token source names reported in logs
const (
	SourceEnv     = "env"
	SourceSecrets = "secret_store"
	SourceDefault = "default"
)

// TokenSource resolves the API token to seed, in order:
// environment, secret store, configured default.
type TokenSource struct {
	EnvToken     string
	DefaultToken string
	SecretPath   string
	Secrets      ports.SecretManagerAdapter // nil when no secret backend is configured
}

// Resolve returns the first non-empty token and where it came from.
// A failing secret store is logged and skipped.
func (s *TokenSource) Resolve(ctx context.Context, logger *zap.Logger) (token, source string) {
	if token := strings.TrimSpace(s.EnvToken); token != "" {
		return token, SourceEnv
	}

	if s.Secrets != nil && s.SecretPath != "" {
		secret, err := s.Secrets.GetSecret(ctx, s.SecretPath)
		if err != nil {
			logger.Warn("Secret store lookup failed, trying default token",
				zap.String("secret_path", s.SecretPath),
				zap.Error(err),
			)
		} else if token := strings.TrimSpace(secret.Value); token != "" {
			return token, SourceSecrets
		}
	}

	if token := strings.TrimSpace(s.DefaultToken); token != "" {
		return token, SourceDefault
	}
	return "", ""
}
