package auditlog

import "strings"

// RedactedValue replaces the value of every sensitive key.
const RedactedValue = "[REDACTED]"

var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"token":         {},
	"secret":        {},
	"key":           {},
	"authorization": {},
}

// IsSensitiveKey reports whether a top-level payload key must never be stored in clear.
func IsSensitiveKey(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

// Redact returns a shallow copy of payload with sensitive top-level keys masked. Only key
// presence matters, so redacting an already redacted payload yields an identical result. Nested
// objects are copied as-is.
func Redact(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	out := make(map[string]any, len(payload))
	for key, value := range payload {
		if IsSensitiveKey(key) {
			out[key] = RedactedValue
			continue
		}
		out[key] = value
	}
	return out
}
