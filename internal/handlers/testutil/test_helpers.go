package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/clubsphere/clubsphere/internal/api"
	"github.com/clubsphere/clubsphere/internal/app"
	"github.com/clubsphere/clubsphere/internal/auditlog"
	iauth "github.com/clubsphere/clubsphere/internal/auth"
	sharedtestutil "github.com/clubsphere/clubsphere/internal/database/testutil"
	"github.com/clubsphere/clubsphere/internal/models"
	"github.com/clubsphere/clubsphere/internal/services"
	"github.com/clubsphere/clubsphere/pkg/response"
)

// AdminEmail is the administrator seeded into every test environment.
const AdminEmail = "admin@club.test"

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T          *testing.T
	DB         *gorm.DB
	Router     *gin.Engine
	JWT        *iauth.JWTService
	Audit      *services.AuditService
	Dispatcher *auditlog.Dispatcher
	Admin      *models.User
}

// NewEnv provisions a fresh handler test environment with migrations and the admin seed applied.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithSeedAdmin(AdminEmail))

	cfg := &app.Config{
		Server: app.ServerConfig{BasePath: "/api"},
		Auth: app.AuthConfig{
			JWT: app.JWTSettings{
				Secret: "test-suite-super-secret-key-32-bytes!!",
				Issuer: "test-suite",
				TTL:    time.Hour,
			},
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
		},
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	require.NoError(t, err)

	store, err := services.NewGormAuditStore(db)
	require.NoError(t, err)
	auditSvc, err := services.NewAuditService(store)
	require.NoError(t, err)

	dispatcher := auditlog.NewDispatcher(auditSvc, time.Second)
	t.Cleanup(func() { _ = dispatcher.Drain(context.Background()) })

	router, err := api.NewRouter(db, jwtSvc, cfg, auditSvc, dispatcher)
	require.NoError(t, err)

	return &Env{
		T:          t,
		DB:         db,
		Router:     router,
		JWT:        jwtSvc,
		Audit:      auditSvc,
		Dispatcher: dispatcher,
		Admin:      sharedtestutil.MustFindUser(t, db, AdminEmail),
	}
}

// AdminToken issues a bearer token for the seeded administrator.
func (e *Env) AdminToken() string {
	e.T.Helper()
	return e.Token(e.Admin, "")
}

// CreateUser inserts an active user with role and returns it.
func (e *Env) CreateUser(name, role string) *models.User {
	e.T.Helper()

	user := &models.User{
		Name:     name,
		Email:    "user-" + uuid.NewString() + "@club.test",
		Role:     role,
		IsActive: true,
	}
	require.NoError(e.T, e.DB.Create(user).Error)
	return user
}

// Token issues a bearer token for user, optionally acting as staffID.
func (e *Env) Token(user *models.User, staffID string) string {
	e.T.Helper()

	token, err := e.JWT.GenerateAccessToken(iauth.AccessTokenInput{
		UserID:    user.ID,
		StaffID:   staffID,
		Roles:     []string{user.Role},
		Email:     user.Email,
		LoginType: "password",
	})
	require.NoError(e.T, err)
	return token
}

// Drain waits for detached audit writes so tests can read them back.
func (e *Env) Drain() {
	e.T.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(e.T, e.Dispatcher.Drain(ctx))
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router, applying JSON encoding and auth
// headers automatically. Audit writes triggered by the request are drained before returning.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("User-Agent", "clubsphere-tests")

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)

	e.Drain()
	return w
}
