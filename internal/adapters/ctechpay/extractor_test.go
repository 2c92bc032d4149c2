package ctechpay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractRedirectURL(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		wantURL string
		wantOK  bool
	}{
		{
			name:    "documented primary key",
			payload: ParseBody([]byte(`{"payment_page_URL": "https://pay.example.com/x"}`)),
			wantURL: "https://pay.example.com/x",
			wantOK:  true,
		},
		{
			name:    "lower-cased primary key",
			payload: ParseBody([]byte(`{"payment_page_url": "https://pay.example.com/lower"}`)),
			wantURL: "https://pay.example.com/lower",
			wantOK:  true,
		},
		{
			name:    "nested data mapping",
			payload: ParseBody([]byte(`{"data": {"checkout_url": "https://pay.example.com/y"}}`)),
			wantURL: "https://pay.example.com/y",
			wantOK:  true,
		},
		{
			name:    "deeply nested data mapping",
			payload: ParseBody([]byte(`{"data": {"data": {"link": "https://pay.example.com/deep"}}}`)),
			wantURL: "https://pay.example.com/deep",
			wantOK:  true,
		},
		{
			name:    "primary key wins over fallback keys",
			payload: ParseBody([]byte(`{"url": "https://pay.example.com/fallback", "payment_page_URL": "https://pay.example.com/primary"}`)),
			wantURL: "https://pay.example.com/primary",
			wantOK:  true,
		},
		{
			name:    "fallback keys checked in order",
			payload: ParseBody([]byte(`{"link": "https://pay.example.com/link", "redirect_url": "https://pay.example.com/redirect"}`)),
			wantURL: "https://pay.example.com/redirect",
			wantOK:  true,
		},
		{
			name:    "top level key wins over nested data",
			payload: ParseBody([]byte(`{"payment_url": "https://pay.example.com/top", "data": {"payment_page_URL": "https://pay.example.com/nested"}}`)),
			wantURL: "https://pay.example.com/top",
			wantOK:  true,
		},
		{
			name:    "non-string values are skipped",
			payload: ParseBody([]byte(`{"url": 42, "link": "https://pay.example.com/link"}`)),
			wantURL: "https://pay.example.com/link",
			wantOK:  true,
		},
		{
			name:    "plain string URL body",
			payload: ParseBody([]byte(`https://pay.example.com/plain`)),
			wantURL: "https://pay.example.com/plain",
			wantOK:  true,
		},
		{
			name:    "JSON string URL body",
			payload: ParseBody([]byte(`"https://pay.example.com/quoted"`)),
			wantURL: "https://pay.example.com/quoted",
			wantOK:  true,
		},
		{
			name:    "bare query repaired with payment page host",
			payload: ParseBody([]byte(`{"redirectUrl": "?code=abc"}`)),
			wantURL: "https://paypage.standardbank.co.mw/?code=abc",
			wantOK:  true,
		},
		{
			name:    "absolute URL preferred over repairable value",
			payload: ParseBody([]byte(`{"payment_page_URL": "?code=abc", "url": "https://pay.example.com/absolute"}`)),
			wantURL: "https://pay.example.com/absolute",
			wantOK:  true,
		},
		{
			name:    "whitespace inside payment page domain collapsed",
			payload: ParseBody([]byte(`{"payment_page_URL": "https://paypage.    standardbank.co.mw/?code=xyz"}`)),
			wantURL: "https://paypage.standardbank.co.mw/?code=xyz",
			wantOK:  true,
		},
		{
			name:    "surrounding whitespace trimmed",
			payload: ParseBody([]byte(`{"payment_page_URL": "https://pay.example.com/x  "}`)),
			wantURL: "https://pay.example.com/x",
			wantOK:  true,
		},
		{
			name:    "string that is not a URL",
			payload: ParseBody([]byte(`not-a-url`)),
			wantOK:  false,
		},
		{
			name:    "empty mapping",
			payload: ParseBody([]byte(`{}`)),
			wantOK:  false,
		},
		{
			name:    "null body",
			payload: ParseBody([]byte(`null`)),
			wantOK:  false,
		},
		{
			name:    "absent body",
			payload: ParseBody(nil),
			wantOK:  false,
		},
		{
			name:    "mapping without URL fields",
			payload: ParseBody([]byte(`{"status": {"message": "Invalid token"}}`)),
			wantOK:  false,
		},
		{
			name:    "array body",
			payload: ParseBody([]byte(`["https://pay.example.com/x"]`)),
			wantOK:  false,
		},
		{
			name:    "non-mapping data is not followed",
			payload: ParseBody([]byte(`{"data": "https://pay.example.com/x"}`)),
			wantOK:  false,
		},
		{
			name:    "HTML error page",
			payload: ParseBody([]byte(`<html><body>403 Forbidden</body></html>`)),
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractRedirectURL(tt.payload)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantURL, got)
		})
	}
}

func TestExtractRedirectURL_NilPayloadValue(t *testing.T) {
	got, ok := ExtractRedirectURL(FromValue(nil))

	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestGatewayErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "status message",
			body: `{"status": {"message": "Invalid token", "error": "E01"}, "message": "top"}`,
			want: "Invalid token",
		},
		{
			name: "status error",
			body: `{"status": {"error": "E01"}}`,
			want: "E01",
		},
		{
			name: "top level message",
			body: `{"status": "failed", "message": "Amount is required"}`,
			want: "Amount is required",
		},
		{
			name: "top level error",
			body: `{"error": "Unauthorized"}`,
			want: "Unauthorized",
		},
		{
			name: "no message",
			body: `{"code": 500}`,
			want: "",
		},
		{
			name: "text body",
			body: `Forbidden`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GatewayErrorMessage(ParseBody([]byte(tt.body))))
		})
	}
}
