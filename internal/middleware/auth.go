package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clubsphere/clubsphere/internal/auditctx"
	iauth "github.com/clubsphere/clubsphere/internal/auth"
	"github.com/clubsphere/clubsphere/pkg/errors"
	"github.com/clubsphere/clubsphere/pkg/response"
)

const (
	CtxUserKey    = auditctx.UserKey
	CtxSessionKey = auditctx.SessionKey

	// SessionCookie carries the portal session token.
	SessionCookie = "session"
)

// Identify attaches the bearer identity (CtxUserKey) and the session cookie identity
// (CtxSessionKey) when their tokens validate. It never rejects a request; RequireAuth does.
func Identify(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var primary *auditctx.Identity

		if token := bearerToken(c.GetHeader("Authorization")); token != "" {
			if claims, err := jwt.ValidateAccessToken(token); err == nil {
				identity := claims.Identity()
				c.Set(CtxUserKey, identity)
				primary = &identity
			}
		}

		if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
			if claims, err := jwt.ValidateAccessToken(cookie); err == nil {
				identity := claims.Identity()
				c.Set(CtxSessionKey, identity)
				if primary == nil {
					primary = &identity
				}
			}
		}

		if primary != nil {
			c.Request = c.Request.WithContext(auditctx.WithIdentity(c.Request.Context(), *primary))
		}
		c.Next()
	}
}

// RequireAuth rejects requests without a validated identity.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); !ok {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the request identity, preferring the bearer token over the session.
func CurrentIdentity(c *gin.Context) (auditctx.Identity, bool) {
	for _, key := range []string{CtxUserKey, CtxSessionKey} {
		if value, ok := c.Get(key); ok {
			if identity, ok := value.(auditctx.Identity); ok && identity.UserID != "" {
				return identity, true
			}
		}
	}
	return auditctx.Identity{}, false
}

func bearerToken(header string) string {
	if len(header) < 8 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
