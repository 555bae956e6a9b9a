package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clubsphere/clubsphere/internal/auditlog"
	"github.com/clubsphere/clubsphere/pkg/logger"
)

// Logger writes one structured access line per request. Requests under basePath carry the club
// module they touched. Server errors log at error level and client errors at warn.
func Logger(basePath string) gin.HandlerFunc {
	basePath = strings.TrimRight(strings.TrimSpace(basePath), "/")

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if basePath != "" && strings.HasPrefix(path, basePath+"/") {
			fields = append(fields, zap.String("club_module", auditlog.ModuleFromPath(auditlog.TrimBasePath(path, basePath))))
		}
		if identity, ok := CurrentIdentity(c); ok {
			fields = append(fields, zap.String("actor_id", identity.UserID), zap.String("role", identity.PrimaryRole()))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		log := logger.WithModule("http")
		switch {
		case status >= 500:
			log.Error("request", fields...)
		case status >= 400:
			log.Warn("request", fields...)
		default:
			log.Debug("request", fields...)
		}
	}
}
