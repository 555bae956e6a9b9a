package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/clubsphere/clubsphere/internal/app"
	"github.com/clubsphere/clubsphere/internal/auditlog"
	iauth "github.com/clubsphere/clubsphere/internal/auth"
	"github.com/clubsphere/clubsphere/internal/database/testutil"
	"github.com/clubsphere/clubsphere/internal/services"
)

type routerDeps struct {
	jwt        *iauth.JWTService
	audit      *services.AuditService
	dispatcher *auditlog.Dispatcher
}

func newRouterDeps(t *testing.T) (routerDeps, func(cfg *app.Config) *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithSeedAdmin("admin@club.test"))

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret", Issuer: "test", AccessTokenTTL: 15 * time.Minute})
	require.NoError(t, err)
	store, err := services.NewGormAuditStore(db)
	require.NoError(t, err)
	auditSvc, err := services.NewAuditService(store)
	require.NoError(t, err)

	deps := routerDeps{jwt: jwtSvc, audit: auditSvc, dispatcher: auditlog.NewDispatcher(auditSvc, time.Second)}
	t.Cleanup(func() { _ = deps.dispatcher.Drain(context.Background()) })

	build := func(cfg *app.Config) *gin.Engine {
		router, err := NewRouter(db, jwtSvc, cfg, auditSvc, deps.dispatcher)
		require.NoError(t, err)
		return router
	}
	return deps, build
}

func TestNewRouterRequiresDependencies(t *testing.T) {
	deps, _ := newRouterDeps(t)
	db := testutil.MustOpenTestDB(t)
	cfg := &app.Config{}

	_, err := NewRouter(nil, deps.jwt, cfg, deps.audit, deps.dispatcher)
	require.Error(t, err)
	_, err = NewRouter(db, nil, cfg, deps.audit, deps.dispatcher)
	require.Error(t, err)
	_, err = NewRouter(db, deps.jwt, nil, deps.audit, deps.dispatcher)
	require.Error(t, err)
	_, err = NewRouter(db, deps.jwt, cfg, nil, deps.dispatcher)
	require.Error(t, err)
}

func TestRouter_PublicAndProtectedRoutes(t *testing.T) {
	_, build := newRouterDeps(t)
	router := build(&app.Config{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	for _, path := range []string{"/api/members", "/api/audit-logs", "/api/masters/batch"} {
		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	// metrics disabled in an empty config
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_CustomBasePathAndMetricsEndpoint(t *testing.T) {
	deps, build := newRouterDeps(t)
	router := build(&app.Config{
		Server:     app.ServerConfig{BasePath: "/club/v1/"},
		Monitoring: app.MonitoringConfig{Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/internal/metrics"}},
	})

	token, err := deps.jwt.GenerateAccessToken(iauth.AccessTokenInput{UserID: "4b1c7b8e-2d7e-4d5a-9a0e-0d3b4b2d9a11", Roles: []string{"admin"}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/club/v1/members", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, deps.dispatcher.Drain(context.Background()))
	page, err := deps.audit.Search(context.Background(), services.SearchCriteria{})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	require.Equal(t, "members", page.Logs[0].Module)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/internal/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.Contains(w.Body.String(), "clubsphere_audit_writes_total"))
}
