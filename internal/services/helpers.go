package services

import (
	"context"
	"strings"
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func normaliseIDs(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

// ClampPage normalises pagination input: page defaults to 1, size to fallback, capped at max.
func ClampPage(page, size, fallback, max int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = fallback
	}
	if size > max {
		size = max
	}
	return page, size
}
