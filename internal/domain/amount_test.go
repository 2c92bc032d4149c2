package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{name: "whole amount", amount: "100", want: "100"},
		{name: "fraction below half rounds down", amount: "123.40", want: "123"},
		{name: "exact half rounds up", amount: "123.50", want: "124"},
		{name: "fraction above half rounds up", amount: "123.51", want: "124"},
		{name: "even integer half still rounds up", amount: "122.50", want: "123"},
		{name: "small half rounds to one", amount: "0.5", want: "1"},
		{name: "many decimals", amount: "9999.4999", want: "9999"},
		{name: "trailing zeros", amount: "2500.00", want: "2500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GatewayAmount(decimal.RequireFromString(tt.amount))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGatewayAmount_Deterministic(t *testing.T) {
	amount := decimal.RequireFromString("77.5")

	first, err := GatewayAmount(amount)
	require.NoError(t, err)
	second, err := GatewayAmount(amount)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGatewayAmount_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		amount string
	}{
		{name: "zero", amount: "0"},
		{name: "negative", amount: "-10"},
		{name: "rounds to zero", amount: "0.49"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GatewayAmount(decimal.RequireFromString(tt.amount))
			require.Error(t, err)
			assert.True(t, IsDomainError(err, ErrorCodeValidationAmountInvalid))
		})
	}
}
