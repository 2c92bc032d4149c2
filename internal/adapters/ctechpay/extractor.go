package ctechpay

import (
	"strings"
)

// primaryKeys hold the documented hosted page field
var primaryKeys = []string{"payment_page_URL", "payment_page_url"}

// fallbackKeys are checked in order when no primary key matches
var fallbackKeys = []string{"checkout_url", "redirectUrl", "redirect_url", "url", "payment_url", "link"}

// nestedKey holds a wrapped response object
const nestedKey = "data"

// ExtractRedirectURL finds the hosted checkout URL in a gateway response and normalizes it.
//
// Values that already start with "http" win. Only when none exists anywhere in the
// response is a second pass made over values the repair rules can turn into an absolute
// URL (for example a bare "?code=..." query).
func ExtractRedirectURL(p Payload) (string, bool) {
	if raw, ok := findRedirect(p, acceptHTTP); ok {
		if normalized := NormalizeRedirectURL(raw); normalized != "" {
			return normalized, true
		}
	}
	if repaired, ok := findRedirect(p, acceptRepairable); ok {
		return repaired, true
	}
	return "", false
}

type acceptFunc func(value string) (string, bool)

func acceptHTTP(value string) (string, bool) {
	return value, strings.HasPrefix(value, "http")
}

func acceptRepairable(value string) (string, bool) {
	normalized := NormalizeRedirectURL(value)
	return normalized, normalized != ""
}

func findRedirect(p Payload, accept acceptFunc) (string, bool) {
	switch p.Kind {
	case PayloadString:
		return accept(p.Text)

	case PayloadMapping:
		for _, keys := range [][]string{primaryKeys, fallbackKeys} {
			for _, key := range keys {
				s, isString := p.Fields[key].(string)
				if !isString {
					continue
				}
				if v, ok := accept(s); ok {
					return v, true
				}
			}
		}
		if nested, isMap := p.Fields[nestedKey].(map[string]interface{}); isMap {
			return findRedirect(FromValue(nested), accept)
		}
		return "", false

	default:
		return "", false
	}
}

// GatewayErrorMessage returns the gateway's own error text from a response, if any.
// Checked in order: status.message, status.error, message, error.
func GatewayErrorMessage(p Payload) string {
	if p.Kind != PayloadMapping {
		return ""
	}
	if status, ok := p.Fields["status"].(map[string]interface{}); ok {
		if msg := nonEmptyString(status["message"]); msg != "" {
			return msg
		}
		if msg := nonEmptyString(status["error"]); msg != "" {
			return msg
		}
	}
	if msg := nonEmptyString(p.Fields["message"]); msg != "" {
		return msg
	}
	return nonEmptyString(p.Fields["error"])
}

func nonEmptyString(v interface{}) string {
	s, _ := v.(string)
	return s
}
