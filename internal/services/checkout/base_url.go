package checkout

import (
	"strings"
)

const (
	// ReturnPath is where the gateway sends the shopper back after payment
	ReturnPath = "/payment/ctechpay/return"

	// cancelQuery marks a return caused by the shopper abandoning the hosted page
	cancelQuery = "?status=cancel"
)

// BaseURLInputs holds every candidate origin, gathered once per request
type BaseURLInputs struct {
	ExplicitOverride string // WEB_BASE_URL
	TunnelOverride   string // NGROK_BASE_URL
	RequestOrigin    string // scheme://host of the incoming request
	ProviderOrigin   string // origin stored on the provider record
}

// OriginRule rewrites a candidate origin. Rules run in table order.
type OriginRule struct {
	Name  string
	Apply func(origin string, in BaseURLInputs) string
}

// DefaultOriginRules is the ordered rule table applied to the selected origin
var DefaultOriginRules = []OriginRule{
	{Name: "tunnel-https", Apply: upgradeTunnelScheme},
	{Name: "loopback-override", Apply: overrideLoopback},
}

// ResolveBaseURL picks the public origin used to build callback URLs.
// Selection order is explicit override, request origin, then provider origin.
// The result has no trailing slash and resolving it again yields the same value.
func ResolveBaseURL(in BaseURLInputs) string {
	return resolveWith(in, DefaultOriginRules)
}

func resolveWith(in BaseURLInputs, rules []OriginRule) string {
	origin := firstNonEmpty(in.ExplicitOverride, in.RequestOrigin, in.ProviderOrigin)
	origin = cleanOrigin(origin)
	if origin == "" {
		return ""
	}

	for _, rule := range rules {
		origin = rule.Apply(origin, in)
	}
	return origin
}

// ReturnURL returns the success callback for a resolved base
func ReturnURL(base string) string {
	return base + ReturnPath
}

// CancelURL returns the cancel callback for a resolved base
func CancelURL(base string) string {
	return base + ReturnPath + cancelQuery
}

// upgradeTunnelScheme forces https for plain-http tunnel hosts (ngrok.io, ngrok-free.app, ngrok.app)
func upgradeTunnelScheme(origin string, _ BaseURLInputs) string {
	const plain = "http://"
	if strings.HasPrefix(origin, plain) && strings.Contains(origin, ".ngrok") {
		return "https://" + origin[len(plain):]
	}
	return origin
}

// overrideLoopback swaps a loopback origin for a configured public one
func overrideLoopback(origin string, in BaseURLInputs) string {
	if !strings.Contains(origin, "127.0.0.1") && !strings.Contains(origin, "localhost") {
		return origin
	}
	if fallback := cleanOrigin(firstNonEmpty(in.TunnelOverride, in.ExplicitOverride)); fallback != "" {
		return fallback
	}
	return origin
}

func cleanOrigin(origin string) string {
	return strings.TrimRight(strings.TrimSpace(origin), "/")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
