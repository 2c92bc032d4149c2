package ports

import (
	"context"

	"github.com/kevin07696/ctechpay-connector/internal/domain"
)

// BeginCheckoutRequest contains parameters for starting a hosted checkout
type BeginCheckoutRequest struct {
	Partition     string // Data partition (host database); "" selects the default
	Reference     string // Transaction reference posted by the host form
	RequestOrigin string // scheme://host the shopper's browser used to reach us
}

// CheckoutRedirect is the outcome of a successful checkout start
type CheckoutRedirect struct {
	RedirectURL string // Hosted payment page
	Reference   string
	Amount      string // Integer amount sent to the gateway
	ReturnURL   string
	CancelURL   string
}

// FormRequest asks for the rendering values of a transaction
type FormRequest struct {
	Partition string
	Reference string
}

// CheckoutService defines the business operations behind the process and form endpoints
type CheckoutService interface {
	// BeginCheckout creates a gateway order for a pending transaction and returns the hosted page URL.
	// The transaction record is never modified.
	BeginCheckout(ctx context.Context, req *BeginCheckoutRequest) (*CheckoutRedirect, error)

	// RenderingValues returns the auto-submit form values for a CTechPay transaction
	RenderingValues(ctx context.Context, req *FormRequest) (*domain.RenderingValues, error)
}

// BootstrapResult describes what token bootstrap did for one partition
type BootstrapResult string

const (
	BootstrapResultApplied  BootstrapResult = "applied"   // Token written
	BootstrapResultKept     BootstrapResult = "kept"      // Existing token left untouched
	BootstrapResultNoToken  BootstrapResult = "no_token"  // No token source configured
	BootstrapResultFailed   BootstrapResult = "failed"    // Storage or secret store error
	BootstrapResultRaceLost BootstrapResult = "race_lost" // Another starter wrote first
)

// TokenBootstrapper seeds the provider API token without ever overwriting one
type TokenBootstrapper interface {
	// Apply ensures the provider exists in a partition and seeds its token if empty
	Apply(ctx context.Context, partition string) (BootstrapResult, error)

	// ApplyAll runs Apply on every configured partition; one failure does not stop the others
	ApplyAll(ctx context.Context) error
}
