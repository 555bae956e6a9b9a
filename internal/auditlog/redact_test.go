package auditlog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedactMasksSensitiveTopLevelKeys(t *testing.T) {
	payload := map[string]any{
		"name":          "Asha",
		"password":      "hunter2",
		"token":         "abc",
		"secret":        nil,
		"key":           42,
		"Authorization": "Bearer x",
		"profile":       map[string]any{"password": "nested"},
	}

	redacted := Redact(payload)

	require.Equal(t, "Asha", redacted["name"])
	for _, key := range []string{"password", "token", "secret", "key", "Authorization"} {
		require.Equal(t, RedactedValue, redacted[key], key)
	}
	require.Equal(t, map[string]any{"password": "nested"}, redacted["profile"])
	require.Equal(t, "hunter2", payload["password"], "input must not be mutated")
}

func TestRedactIsIdempotent(t *testing.T) {
	payload := map[string]any{"password": "x", "email": "a@b.c", "token": RedactedValue}

	once := Redact(payload)
	twice := Redact(once)

	require.Equal(t, once, twice)
}

func TestRedactNil(t *testing.T) {
	require.Nil(t, Redact(nil))
}
