package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Transaction Errors (TXN_*)
	ErrorCodeTxnNotFound      ErrorCode = "TXN_NOT_FOUND"
	ErrorCodeProviderMismatch ErrorCode = "TXN_PROVIDER_MISMATCH"

	// Provider Errors (PROVIDER_*)
	ErrorCodeProviderNotFound ErrorCode = "PROVIDER_NOT_FOUND"
	ErrorCodeTokenMissing     ErrorCode = "PROVIDER_TOKEN_MISSING"
	ErrorCodeTokenPresent     ErrorCode = "PROVIDER_TOKEN_PRESENT"

	// Validation Errors (VALIDATION_*)
	ErrorCodeValidationAmountInvalid ErrorCode = "VALIDATION_AMOUNT_INVALID"
	ErrorCodeValidationMissingField  ErrorCode = "VALIDATION_MISSING_FIELD"
	ErrorCodeUnknownPartition        ErrorCode = "VALIDATION_UNKNOWN_PARTITION"

	// Payment Gateway Errors (GATEWAY_*)
	ErrorCodeGatewayError     ErrorCode = "GATEWAY_ERROR"
	ErrorCodeGatewayTimeout   ErrorCode = "GATEWAY_TIMEOUT"
	ErrorCodeRedirectNotFound ErrorCode = "GATEWAY_REDIRECT_NOT_FOUND"

	// Internal Errors (INTERNAL_*)
	ErrorCodeDatabaseError ErrorCode = "INTERNAL_DATABASE_ERROR"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsNotFoundError checks if an error represents a "not found" condition
func IsNotFoundError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeTxnNotFound ||
		code == ErrorCodeProviderNotFound
}

// IsLookupError reports failures that happen before the gateway is contacted
func IsLookupError(err error) bool {
	code := GetErrorCode(err)
	return IsNotFoundError(err) ||
		code == ErrorCodeProviderMismatch ||
		code == ErrorCodeTokenMissing ||
		code == ErrorCodeUnknownPartition ||
		code == ErrorCodeValidationMissingField
}

// IsGatewayError checks if an error is a payment gateway error
func IsGatewayError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeGatewayError ||
		code == ErrorCodeGatewayTimeout ||
		code == ErrorCodeRedirectNotFound
}

// Sentinel errors returned by repositories; callers wrap them into DomainErrors.
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrProviderNotFound    = errors.New("payment provider not found")
)

// NewTxnNotFoundError builds the lookup error for an unknown reference
func NewTxnNotFoundError(reference string) *DomainError {
	return WrapError(ErrorCodeTxnNotFound, "transaction not found", ErrTransactionNotFound).
		WithDetail("reference", reference)
}

// NewProviderMismatchError builds the lookup error for a transaction owned by another provider
func NewProviderMismatchError(reference, providerCode string) *DomainError {
	return NewDomainError(ErrorCodeProviderMismatch, "transaction is not handled by this provider").
		WithDetail("reference", reference).
		WithDetail("provider_code", providerCode)
}

// NewTokenMissingError builds the lookup error for a provider without an API token
func NewTokenMissingError(providerID string) *DomainError {
	return NewDomainError(ErrorCodeTokenMissing, "provider API token is not configured").
		WithDetail("provider_id", providerID)
}
