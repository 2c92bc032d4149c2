package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strconv"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Gateway  GatewayConfig
	CTechPay CTechPayConfig
	Secrets  SecretsConfig
	Logger   LoggerConfig
}

// ServerConfig holds HTTP, metrics and health server configuration
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080" validate:"min=1,max=65535"`
	MetricsPort     int           `env:"METRICS_PORT" envDefault:"9090" validate:"min=1,max=65535"`
	GRPCHealthPort  int           `env:"GRPC_HEALTH_PORT" envDefault:"50051" validate:"min=1,max=65535"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development" validate:"oneof=development staging production"`
	StatusPagePath  string        `env:"STATUS_PAGE_PATH" envDefault:"/payment/status" validate:"startswith=/"`
	RateLimitRPS    float64       `env:"RATE_LIMIT_RPS" envDefault:"10" validate:"gt=0"`
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST" envDefault:"20" validate:"min=1"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	TrustProxy      bool          `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
}

// DatabaseConfig holds PostgreSQL configuration shared by every partition
type DatabaseConfig struct {
	Host             string        `env:"DB_HOST" envDefault:"localhost" validate:"required"`
	Port             int           `env:"DB_PORT" envDefault:"5432" validate:"min=1,max=65535"`
	User             string        `env:"DB_USER" envDefault:"postgres" validate:"required"`
	Password         string        `env:"DB_PASSWORD"`
	SSLMode          string        `env:"DB_SSL_MODE" envDefault:"disable" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	Partitions       []string      `env:"DB_PARTITIONS" envSeparator:"," envDefault:"odoo" validate:"min=1,dive,required"`
	DefaultPartition string        `env:"DB_DEFAULT_PARTITION"`
	MaxConns         int32         `env:"DB_MAX_CONNS" envDefault:"5" validate:"min=1"`
	MinConns         int32         `env:"DB_MIN_CONNS" envDefault:"1" validate:"min=0"`
	QueryTimeout     time.Duration `env:"DB_QUERY_TIMEOUT" envDefault:"2s"`
}

// GatewayConfig holds CTechPay API configuration
type GatewayConfig struct {
	BaseURL            string        `env:"CTECHPAY_GATEWAY_URL" envDefault:"https://api-gateway.ctechpay.com/" validate:"required,url"`
	Timeout            time.Duration `env:"CTECHPAY_TIMEOUT" envDefault:"30s"`
	InsecureSkipVerify bool          `env:"CTECHPAY_INSECURE_SKIP_VERIFY" envDefault:"false"`
	BreakerMaxFailures uint32        `env:"CTECHPAY_BREAKER_MAX_FAILURES" envDefault:"5" validate:"min=1"`
	BreakerOpenTimeout time.Duration `env:"CTECHPAY_BREAKER_OPEN_TIMEOUT" envDefault:"30s"`
}

// CTechPayConfig holds token and callback settings
type CTechPayConfig struct {
	APIToken     string `env:"CTECHPAY_API_TOKEN"`
	DefaultToken string `env:"CTECHPAY_DEFAULT_TOKEN"`
	SecretPath   string `env:"CTECHPAY_TOKEN_SECRET_PATH" envDefault:"ctechpay/api-token"`
	WebBaseURL   string `env:"WEB_BASE_URL" validate:"omitempty,url"`
	NgrokBaseURL string `env:"NGROK_BASE_URL" validate:"omitempty,url"`
}

// SecretsConfig selects the secret backend used by token bootstrap
type SecretsConfig struct {
	Backend         string        `env:"SECRET_MANAGER" envDefault:"none" validate:"oneof=none aws vault local"`
	CacheTTL        time.Duration `env:"SECRET_CACHE_TTL" envDefault:"5m"`
	AWSRegion       string        `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSProfile      string        `env:"AWS_PROFILE"`
	AWSEndpoint     string        `env:"AWS_SECRETS_ENDPOINT"`
	VaultAddress    string        `env:"VAULT_ADDR" validate:"required_if=Backend vault"`
	VaultAuthMethod string        `env:"VAULT_AUTH_METHOD" envDefault:"token" validate:"oneof=token approle"`
	VaultToken      string        `env:"VAULT_TOKEN"`
	VaultRoleID     string        `env:"VAULT_ROLE_ID"`
	VaultSecretID   string        `env:"VAULT_SECRET_ID"`
	VaultNamespace  string        `env:"VAULT_NAMESPACE"`
	VaultMountPath  string        `env:"VAULT_MOUNT_PATH" envDefault:"secret"`
	VaultKVVersion  string        `env:"VAULT_KV_VERSION" envDefault:"v2" validate:"oneof=v1 v2"`
	LocalDir        string        `env:"SECRETS_LOCAL_DIR" envDefault:"./secrets"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	Development bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`
}

// Load reads .env when present, then parses and validates the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse parses and validates configuration from environment variables only
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Database.DefaultPartition == "" {
		cfg.Database.DefaultPartition = cfg.Database.Partitions[0]
	}
	if !cfg.Database.HasPartition(cfg.Database.DefaultPartition) {
		return nil, fmt.Errorf("invalid config: DB_DEFAULT_PARTITION %q is not listed in DB_PARTITIONS", cfg.Database.DefaultPartition)
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// HasPartition reports whether a partition name is configured
func (c *DatabaseConfig) HasPartition(name string) bool {
	for _, p := range c.Partitions {
		if p == name {
			return true
		}
	}
	return false
}

// URL returns the connection URL for one partition (database name)
func (c *DatabaseConfig) URL(partition string) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   c.Host + ":" + strconv.Itoa(c.Port),
		Path:   "/" + partition,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else {
		u.User = url.User(c.User)
	}

	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
