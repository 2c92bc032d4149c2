package ctechpay

import (
	"fmt"
	"net/url"
	"time"
)

// Config contains configuration for the CTechPay order adapter
type Config struct {
	// Gateway base URL; the order endpoint is selected with ?endpoint=order
	// Production: https://api-gateway.ctechpay.com/
	BaseURL string

	// Endpoint name sent both as query parameter and as the "endpoint" header
	Endpoint string

	// Per-attempt timeout (the gateway is given 30 seconds per attempt)
	Timeout time.Duration

	// User agent for the primary attempt; the gateway rejects some default agents
	UserAgent string

	// Maximum response body size read from the gateway
	MaxBodyBytes int64

	// Consecutive network failures before the circuit breaker opens
	BreakerMaxFailures uint32

	// How long the circuit breaker stays open before letting one request through
	BreakerOpenTimeout time.Duration
}

// DefaultConfig returns default configuration for the CTechPay order adapter
func DefaultConfig() *Config {
	return &Config{
		BaseURL:            "https://api-gateway.ctechpay.com/",
		Endpoint:           "order",
		Timeout:            30 * time.Second,
		UserAgent:          "curl/8.5.0",
		MaxBodyBytes:       1 << 20,
		BreakerMaxFailures: 5,
		BreakerOpenTimeout: 30 * time.Second,
	}
}

// OrderURL returns the full order endpoint URL
func (c *Config) OrderURL() (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid gateway base URL %q: %w", c.BaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid gateway base URL %q: scheme and host required", c.BaseURL)
	}
	if u.Path == "" {
		u.Path = "/"
	}

	q := u.Query()
	q.Set("endpoint", c.Endpoint)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
