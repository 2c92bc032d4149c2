package ports

import (
	"context"
)

// OrderAttempt identifies how an order request body was encoded
type OrderAttempt string

const (
	OrderAttemptMultipart  OrderAttempt = "multipart"  // Primary attempt: multipart/form-data with callback URLs
	OrderAttemptURLEncoded OrderAttempt = "urlencoded" // Fallback after HTTP 403: token and amount only
)

// OrderRequest contains the fields sent to the CTechPay order endpoint
type OrderRequest struct {
	Token     string // API token, trimmed before sending
	Amount    string // Integer amount, already rounded (e.g., "124")
	ReturnURL string // Success callback (redirectUrl field)
	CancelURL string // Cancel callback (cancelUrl field)
}

// OrderResponse contains the outcome of an order request after parsing
type OrderResponse struct {
	// HTTP status of the last attempt
	StatusCode int

	// Attempts lists the attempts made, in order
	Attempts []OrderAttempt

	// RedirectURL is the normalized hosted checkout URL, empty when none was found
	RedirectURL string

	// GatewayMessage is the gateway's own error text when present
	GatewayMessage string

	// Sample is a log-safe excerpt of the response body
	Sample string
}

// HasRedirect returns true if a hosted checkout URL was extracted
func (r *OrderResponse) HasRedirect() bool {
	return r.RedirectURL != ""
}

// OrderGateway defines the port for creating hosted checkout orders at CTechPay.
// Network failures are returned as errors; a response without a usable URL is not an error.
type OrderGateway interface {
	CreateOrder(ctx context.Context, req *OrderRequest) (*OrderResponse, error)
}
