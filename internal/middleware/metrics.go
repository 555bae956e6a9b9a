package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clubsphere/clubsphere/internal/auditlog"
	"github.com/clubsphere/clubsphere/pkg/metrics"
)

const unmatchedRoute = "unmatched"

// Metrics observes latency per route template and counts requests under basePath per club module.
func Metrics(basePath string) gin.HandlerFunc {
	basePath = strings.TrimRight(strings.TrimSpace(basePath), "/")

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := c.Writer.Status()
		metrics.APILatency.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())

		if route == unmatchedRoute || basePath == "" || !strings.HasPrefix(route, basePath+"/") {
			return
		}
		module := auditlog.ModuleFromPath(auditlog.TrimBasePath(route, basePath))
		metrics.ModuleRequests.WithLabelValues(module, auditlog.ActionFromMethod(c.Request.Method), outcomeLabel(status)).Inc()
	}
}

func outcomeLabel(status int) string {
	switch {
	case status >= 500:
		return "server_error"
	case status >= 400:
		return "client_error"
	default:
		return "ok"
	}
}
