package checkout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name string
		in   BaseURLInputs
		want string
	}{
		{
			name: "explicit override wins",
			in: BaseURLInputs{
				ExplicitOverride: "https://shop.example.com/",
				RequestOrigin:    "https://other.example.com",
				ProviderOrigin:   "https://provider.example.com",
			},
			want: "https://shop.example.com",
		},
		{
			name: "request origin before provider origin",
			in: BaseURLInputs{
				RequestOrigin:  "https://req.example.com/",
				ProviderOrigin: "https://provider.example.com",
			},
			want: "https://req.example.com",
		},
		{
			name: "provider origin as last resort",
			in:   BaseURLInputs{ProviderOrigin: " https://provider.example.com// "},
			want: "https://provider.example.com",
		},
		{
			name: "ngrok http upgraded to https",
			in:   BaseURLInputs{RequestOrigin: "http://abc.ngrok-free.app/"},
			want: "https://abc.ngrok-free.app",
		},
		{
			name: "ngrok.io upgraded to https",
			in:   BaseURLInputs{RequestOrigin: "http://abc.ngrok.io"},
			want: "https://abc.ngrok.io",
		},
		{
			name: "plain http host left alone",
			in:   BaseURLInputs{RequestOrigin: "http://shop.example.com"},
			want: "http://shop.example.com",
		},
		{
			name: "loopback replaced by tunnel override",
			in: BaseURLInputs{
				RequestOrigin:  "http://localhost:8069/",
				TunnelOverride: "https://x.ngrok.app/",
			},
			want: "https://x.ngrok.app",
		},
		{
			name: "loopback IP replaced by tunnel override",
			in: BaseURLInputs{
				RequestOrigin:  "http://127.0.0.1:8069",
				TunnelOverride: "https://x.ngrok.app",
			},
			want: "https://x.ngrok.app",
		},
		{
			name: "explicit loopback override replaced by tunnel override",
			in: BaseURLInputs{
				ExplicitOverride: "http://localhost:8080",
				TunnelOverride:   "https://tunnel.ngrok.app",
			},
			want: "https://tunnel.ngrok.app",
		},
		{
			name: "loopback kept without overrides",
			in:   BaseURLInputs{RequestOrigin: "http://localhost:8069/"},
			want: "http://localhost:8069",
		},
		{
			name: "nothing configured",
			in:   BaseURLInputs{RequestOrigin: "   "},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveBaseURL(tt.in))
		})
	}
}

func TestResolveBaseURL_Idempotent(t *testing.T) {
	inputs := []BaseURLInputs{
		{RequestOrigin: "http://abc.ngrok-free.app/"},
		{RequestOrigin: "http://localhost:8069", TunnelOverride: "https://x.ngrok.app/"},
		{ExplicitOverride: " https://shop.example.com/ "},
		{ProviderOrigin: "http://127.0.0.1:8069//"},
	}

	for _, in := range inputs {
		first := ResolveBaseURL(in)
		again := in
		again.ExplicitOverride = ""
		again.RequestOrigin = first
		assert.Equal(t, first, ResolveBaseURL(again), "inputs %+v", in)
		assert.False(t, strings.HasSuffix(first, "/"))
	}
}

func TestCallbackURLs(t *testing.T) {
	base := ResolveBaseURL(BaseURLInputs{RequestOrigin: "https://shop.example.com/"})

	assert.Equal(t, "https://shop.example.com/payment/ctechpay/return", ReturnURL(base))
	assert.Equal(t, "https://shop.example.com/payment/ctechpay/return?status=cancel", CancelURL(base))
}

func TestDefaultOriginRules_Order(t *testing.T) {
	names := make([]string, 0, len(DefaultOriginRules))
	for _, rule := range DefaultOriginRules {
		names = append(names, rule.Name)
	}

	assert.Equal(t, []string{"tunnel-https", "loopback-override"}, names)
}
