package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/clubsphere/clubsphere/internal/auditctx"
)

// requestContext returns the request context carrying the caller identity. Identities set on the
// gin context only (bearer first, then session) are copied into the returned context.
func requestContext(c *gin.Context) context.Context {
	if c == nil || c.Request == nil {
		return context.Background()
	}

	ctx := c.Request.Context()
	if _, ok := auditctx.FromContext(ctx); ok {
		return ctx
	}
	for _, key := range []string{auditctx.UserKey, auditctx.SessionKey} {
		if identity, ok := c.Value(key).(auditctx.Identity); ok && identity.UserID != "" {
			return auditctx.WithIdentity(ctx, identity)
		}
	}
	return ctx
}
