package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/clubsphere/clubsphere/internal/auditctx"
	"github.com/clubsphere/clubsphere/pkg/logger"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Replace(zap.New(core))
	t.Cleanup(func() { logger.Replace(nil) })
	return logs
}

func TestLoggerMiddlewareAnnotatesClubRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := observeLogs(t)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(CtxUserKey, auditctx.Identity{UserID: "u-7", Roles: []string{"staff"}})
		c.Next()
	})
	r.Use(Logger("/api"))
	r.GET("/api/masters/batch/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/masters/batch/9", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	entries := logs.All()
	require.Len(t, entries, 2)

	batch := entries[0]
	require.Equal(t, zapcore.WarnLevel, batch.Level)
	fields := batch.ContextMap()
	require.Equal(t, "batch", fields["club_module"])
	require.Equal(t, "u-7", fields["actor_id"])
	require.Equal(t, "staff", fields["role"])
	require.EqualValues(t, http.StatusNotFound, fields["status"])

	ping := entries[1]
	require.Equal(t, zapcore.DebugLevel, ping.Level)
	require.NotContains(t, ping.ContextMap(), "club_module")
}
