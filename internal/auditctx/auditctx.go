package auditctx

import (
	"context"
	"strings"
)

// Gin context keys under which authentication middleware stores identities. The bearer (unified
// token) identity takes precedence over the cookie session identity when both are present.
const (
	UserKey    = "auth.user"
	SessionKey = "auth.session"
)

// Identity describes the authenticated principal behind a request.
type Identity struct {
	UserID    string
	StaffID   string
	Roles     []string
	Email     string
	LoginType string
}

// PrimaryRole returns the first non-empty role, or an empty string.
func (i Identity) PrimaryRole() string {
	for _, role := range i.Roles {
		if role = strings.TrimSpace(role); role != "" {
			return role
		}
	}
	return ""
}

// HasRole reports whether the identity carries the supplied role (case-insensitive).
func (i Identity) HasRole(role string) bool {
	for _, candidate := range i.Roles {
		if strings.EqualFold(strings.TrimSpace(candidate), role) {
			return true
		}
	}
	return false
}

type identityContextKey struct{}

// WithIdentity injects the identity into ctx so service layers can attribute work to it.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// FromContext extracts a previously stored identity.
func FromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	identity, ok := ctx.Value(identityContextKey{}).(Identity)
	return identity, ok
}
