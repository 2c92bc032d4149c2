package ctechpay

import (
	"bytes"
	"encoding/json"
	"strings"
)

// PayloadKind tags the shape of a gateway response
type PayloadKind int

const (
	// PayloadEmpty is an absent or empty response (nil, "", {}, [])
	PayloadEmpty PayloadKind = iota
	// PayloadString is a bare string, either a JSON string or a non-JSON body
	PayloadString
	// PayloadMapping is a JSON object
	PayloadMapping
	// PayloadOpaque is any other JSON value (arrays, numbers, booleans)
	PayloadOpaque
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadEmpty:
		return "empty"
	case PayloadString:
		return "string"
	case PayloadMapping:
		return "mapping"
	case PayloadOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Payload is the loosely-typed gateway response. Exactly one of Text, Fields or Value
// is meaningful, selected by Kind.
type Payload struct {
	Fields map[string]interface{}
	Value  interface{}
	Text   string
	Kind   PayloadKind
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseBody parses a response body. JSON is tried first, then a lenient JSON pass
// (BOM and surrounding whitespace removed, double-encoded JSON unwrapped); anything
// else is kept as an opaque string.
func ParseBody(body []byte) Payload {
	if v, ok := decodeJSON(body); ok {
		return FromValue(unwrapEncoded(v))
	}

	lenient := bytes.TrimSpace(bytes.TrimPrefix(bytes.TrimSpace(body), utf8BOM))
	if v, ok := decodeJSON(lenient); ok {
		return FromValue(unwrapEncoded(v))
	}

	return FromValue(string(body))
}

// FromValue tags a decoded JSON value
func FromValue(v interface{}) Payload {
	switch val := v.(type) {
	case nil:
		return Payload{Kind: PayloadEmpty}
	case string:
		if val == "" {
			return Payload{Kind: PayloadEmpty}
		}
		return Payload{Kind: PayloadString, Text: val}
	case map[string]interface{}:
		if len(val) == 0 {
			return Payload{Kind: PayloadEmpty}
		}
		return Payload{Kind: PayloadMapping, Fields: val}
	case []interface{}:
		if len(val) == 0 {
			return Payload{Kind: PayloadEmpty}
		}
		return Payload{Kind: PayloadOpaque, Value: val}
	default:
		return Payload{Kind: PayloadOpaque, Value: val}
	}
}

// Sample returns a log-safe excerpt of the payload
func (p Payload) Sample() string {
	switch p.Kind {
	case PayloadMapping:
		return compactJSON(p.Fields)
	case PayloadOpaque:
		return compactJSON(p.Value)
	case PayloadString:
		if len(p.Text) > 400 {
			return p.Text[:400] + "..."
		}
		return p.Text
	default:
		return ""
	}
}

func decodeJSON(body []byte) (interface{}, bool) {
	if len(body) == 0 {
		return nil, false
	}
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, false
	}
	return v, true
}

// unwrapEncoded decodes a JSON string that itself holds a JSON object or array
func unwrapEncoded(v interface{}) interface{} {
	s, ok := v.(string)
	if !ok {
		return v
	}
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return v
	}
	if inner, ok := decodeJSON([]byte(trimmed)); ok {
		return inner
	}
	return v
}

func compactJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	if len(b) > 2000 {
		return string(b[:2000]) + "..."
	}
	return string(b)
}
