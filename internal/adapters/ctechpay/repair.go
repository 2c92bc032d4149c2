package ctechpay

import (
	"regexp"
	"strings"
)

// PaymentPageHost is the host serving CTechPay's hosted checkout pages
const PaymentPageHost = "paypage.standardbank.co.mw"

// RepairRule rewrites a redirect value returned by the gateway. Rules run in order
// and each one receives the output of the previous rule.
type RepairRule struct {
	Name  string
	Apply func(raw string) string
}

var paypageWhitespace = regexp.MustCompile(`paypage\.\s+standardbank`)

// DefaultRepairRules are the known formatting problems in gateway responses.
// Whitespace inside the domain is collapsed first so the scheme rules can see the host.
var DefaultRepairRules = []RepairRule{
	{
		Name: "domain-whitespace",
		Apply: func(raw string) string {
			return paypageWhitespace.ReplaceAllString(raw, "paypage.standardbank")
		},
	},
	{
		Name: "paypage-scheme",
		Apply: func(raw string) string {
			if hasScheme(raw) || !strings.Contains(raw, PaymentPageHost) {
				return raw
			}
			return "https://" + strings.TrimLeft(raw, "/")
		},
	},
	{
		Name: "bare-query",
		Apply: func(raw string) string {
			if hasScheme(raw) || !strings.HasPrefix(raw, "?code=") {
				return raw
			}
			return "https://" + PaymentPageHost + "/" + raw
		},
	},
}

// NormalizeRedirectURL trims the value and applies the repair rules.
// Returns "" when the result is still not an absolute http(s) URL.
func NormalizeRedirectURL(raw string) string {
	return normalizeWith(raw, DefaultRepairRules)
}

func normalizeWith(raw string, rules []RepairRule) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	for _, rule := range rules {
		value = rule.Apply(value)
	}
	if !hasScheme(value) {
		return ""
	}
	return value
}

func hasScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
