package domain

import (
	"strings"
	"time"
)

// ProviderCode is the stable code selecting the CTechPay integration
const ProviderCode = "ctechpay"

// ProviderName is the display name used when the provider record is created
const ProviderName = "CTechPay"

// ProviderState represents the activation state of a provider record
type ProviderState string

const (
	ProviderStateDisabled ProviderState = "disabled"
	ProviderStateEnabled  ProviderState = "enabled"
	ProviderStateTest     ProviderState = "test"
)

// PaymentMethodCard is the only payment method offered through the hosted page
const PaymentMethodCard = "card"

// Provider is the host platform's configuration record for one payment integration.
// APIToken is access-restricted and must never be logged in full.
type Provider struct {
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Code      string        `json:"code"`
	State     ProviderState `json:"state"`
	APIToken  string        `json:"-"`
	BaseURL   string        `json:"base_url"`
}

// NewProvider returns a disabled CTechPay provider record ready to be inserted
func NewProvider(id string) *Provider {
	now := time.Now().UTC()
	return &Provider{
		ID:        id,
		Name:      ProviderName,
		Code:      ProviderCode,
		State:     ProviderStateDisabled,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasToken returns true if a non-blank API token is stored
func (p *Provider) HasToken() bool {
	return strings.TrimSpace(p.APIToken) != ""
}

// IsActive returns true if the provider accepts payments
func (p *Provider) IsActive() bool {
	return p.State == ProviderStateEnabled || p.State == ProviderStateTest
}

// DefaultPaymentMethodCodes lists the payment methods enabled for a new provider
func (p *Provider) DefaultPaymentMethodCodes() []string {
	return []string{PaymentMethodCard}
}

// TokenFingerprint returns a log-safe description of a secret token
func TokenFingerprint(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return "<empty>"
	}
	if len(token) <= 8 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}
