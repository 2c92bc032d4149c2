package middleware

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
)

type nonceKey struct{}

// CSPNonce returns the script nonce generated for this request, or "" outside SecurityHeaders
func CSPNonce(ctx context.Context) string {
	nonce, _ := ctx.Value(nonceKey{}).(string)
	return nonce
}

// SecurityHeaders adds security-related HTTP headers to shopper-facing pages
type SecurityHeaders struct {
	isDevelopment bool
}

// NewSecurityHeaders creates a new security headers middleware
func NewSecurityHeaders(isDevelopment bool) *SecurityHeaders {
	return &SecurityHeaders{
		isDevelopment: isDevelopment,
	}
}

// Middleware wraps an HTTP handler with security headers.
// Pages may run one inline script carrying the request nonce (the auto-submit form),
// and forms may post to this origin and be redirected to any https origin (the hosted payment page).
func (sh *SecurityHeaders) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonce := newNonce()

		h := w.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")

		// HSTS breaks plain-http local development
		if !sh.isDevelopment {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		}

		formAction := "form-action 'self' https:"
		if sh.isDevelopment {
			formAction += " http:"
		}
		h.Set("Content-Security-Policy",
			"default-src 'none'; "+
				"script-src 'nonce-"+nonce+"'; "+
				"style-src 'unsafe-inline'; "+
				"frame-ancestors 'none'; "+
				"base-uri 'none'; "+
				formAction)

		// The gateway must not learn the shop's internal URLs
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), usb=()")
		h.Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), nonceKey{}, nonce)))
	})
}

func newNonce() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(b)
}
