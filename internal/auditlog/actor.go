package auditlog

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clubsphere/clubsphere/internal/auditctx"
)

// FallbackIP is recorded when no client address can be determined.
const FallbackIP = "127.0.0.1"

// Actor is the principal an audit entry is attributed to.
type Actor struct {
	ID        string
	StaffID   string
	Role      string
	Email     string
	LoginType string
}

// ResolveActor returns the acting principal of the request. The unified token identity wins over
// the cookie session identity. ok is false when neither yields a user id.
func ResolveActor(c *gin.Context) (Actor, bool) {
	if c == nil {
		return Actor{}, false
	}
	for _, key := range []string{auditctx.UserKey, auditctx.SessionKey} {
		identity, found := identityFromContext(c, key)
		if !found || strings.TrimSpace(identity.UserID) == "" {
			continue
		}
		return Actor{
			ID:        strings.TrimSpace(identity.UserID),
			StaffID:   strings.TrimSpace(identity.StaffID),
			Role:      identity.PrimaryRole(),
			Email:     identity.Email,
			LoginType: identity.LoginType,
		}, true
	}
	return Actor{}, false
}

func identityFromContext(c *gin.Context, key string) (auditctx.Identity, bool) {
	value, exists := c.Get(key)
	if !exists || value == nil {
		return auditctx.Identity{}, false
	}
	switch identity := value.(type) {
	case auditctx.Identity:
		return identity, true
	case *auditctx.Identity:
		if identity == nil {
			return auditctx.Identity{}, false
		}
		return *identity, true
	default:
		return auditctx.Identity{}, false
	}
}

// ClientIP resolves the originating address: X-Forwarded-For (verbatim), X-Real-IP, the socket
// peer, gin's own resolution, then FallbackIP.
func ClientIP(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return FallbackIP
	}
	if forwarded := strings.TrimSpace(c.GetHeader("X-Forwarded-For")); forwarded != "" {
		return forwarded
	}
	if realIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); realIP != "" {
		return realIP
	}
	if remote := strings.TrimSpace(c.Request.RemoteAddr); remote != "" {
		if host, _, err := net.SplitHostPort(remote); err == nil && host != "" {
			return host
		}
		return remote
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return FallbackIP
}
