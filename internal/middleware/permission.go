package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clubsphere/clubsphere/pkg/errors"
	"github.com/clubsphere/clubsphere/pkg/metrics"
	"github.com/clubsphere/clubsphere/pkg/response"
)

// RequireRole allows the request when the identity holds any of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	label := strings.Join(roles, "|")
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			metrics.AccessChecks.WithLabelValues(label, "unauthenticated").Inc()
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		for _, role := range roles {
			if identity.HasRole(role) {
				metrics.AccessChecks.WithLabelValues(label, "allowed").Inc()
				c.Next()
				return
			}
		}
		metrics.AccessChecks.WithLabelValues(label, "denied").Inc()
		response.Error(c, errors.ErrForbidden)
		c.Abort()
	}
}
