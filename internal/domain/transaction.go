package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionState represents the host platform's lifecycle state of a payment attempt
type TransactionState string

const (
	TransactionStateDraft   TransactionState = "draft"
	TransactionStatePending TransactionState = "pending"
	TransactionStateDone    TransactionState = "done"
	TransactionStateCancel  TransactionState = "cancel"
	TransactionStateError   TransactionState = "error"
)

// Transaction is one payment attempt created by the host platform.
// This service reads transactions and never writes them.
type Transaction struct {
	CreatedAt    time.Time        `json:"created_at"`
	Amount       decimal.Decimal  `json:"amount"`
	ID           string           `json:"id"`
	Reference    string           `json:"reference"`
	Currency     string           `json:"currency"`
	ProviderCode string           `json:"provider_code"`
	ProviderID   string           `json:"provider_id"`
	State        TransactionState `json:"state"`
}

// IsHandledBy returns true if the transaction is tagged with the given provider code
func (t *Transaction) IsHandledBy(providerCode string) bool {
	return t.ProviderCode == providerCode
}

// RenderingValues are the values the host uses to render the redirect form for a transaction
type RenderingValues struct {
	APIURL    string
	Reference string
}

// RenderingValues returns the form values posting this transaction to the process endpoint
func (t *Transaction) RenderingValues(processPath string) RenderingValues {
	return RenderingValues{
		APIURL:    processPath,
		Reference: t.Reference,
	}
}
