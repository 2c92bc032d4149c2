package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_IsHandledBy(t *testing.T) {
	tx := &Transaction{Reference: "S00042", ProviderCode: ProviderCode}

	assert.True(t, tx.IsHandledBy("ctechpay"))
	assert.False(t, tx.IsHandledBy("stripe"))
	assert.False(t, (&Transaction{Reference: "S00043"}).IsHandledBy(ProviderCode))
}

func TestTransaction_RenderingValues(t *testing.T) {
	tx := &Transaction{
		Reference:    "S00042-1",
		Amount:       decimal.RequireFromString("1500.00"),
		ProviderCode: ProviderCode,
		State:        TransactionStatePending,
	}

	values := tx.RenderingValues("/payment/ctechpay/process")

	assert.Equal(t, "/payment/ctechpay/process", values.APIURL)
	assert.Equal(t, "S00042-1", values.Reference)
}

func TestProvider_Defaults(t *testing.T) {
	p := NewProvider("prov-1")

	assert.Equal(t, "prov-1", p.ID)
	assert.Equal(t, ProviderCode, p.Code)
	assert.Equal(t, ProviderName, p.Name)
	assert.Equal(t, ProviderStateDisabled, p.State)
	assert.False(t, p.IsActive())
	assert.False(t, p.HasToken())
	assert.Equal(t, []string{"card"}, p.DefaultPaymentMethodCodes())
}

func TestProvider_HasToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "empty", token: "", want: false},
		{name: "whitespace only", token: "   ", want: false},
		{name: "set", token: "abc123", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Provider{APIToken: tt.token}
			assert.Equal(t, tt.want, p.HasToken())
		})
	}
}

func TestTokenFingerprint(t *testing.T) {
	assert.Equal(t, "<empty>", TokenFingerprint("  "))
	assert.Equal(t, "****", TokenFingerprint("short"))
	assert.Equal(t, "****wxyz", TokenFingerprint(" abcdefghijklmnopqrstuvwxyz "))
}
