package domain

import (
	"github.com/shopspring/decimal"
)

// GatewayAmount converts a transaction amount into the integer string the gateway accepts.
// Fractions are rounded half away from zero: 123.40 -> "123", 123.50 -> "124".
func GatewayAmount(amount decimal.Decimal) (string, error) {
	if !amount.IsPositive() {
		return "", NewDomainError(ErrorCodeValidationAmountInvalid, "amount must be positive").
			WithDetail("amount", amount.String())
	}

	rounded := amount.Round(0)
	if rounded.IsZero() {
		return "", NewDomainError(ErrorCodeValidationAmountInvalid, "amount rounds to zero").
			WithDetail("amount", amount.String())
	}

	return rounded.StringFixed(0), nil
}
