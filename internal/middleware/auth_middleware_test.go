package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/clubsphere/clubsphere/internal/auditctx"
	iauth "github.com/clubsphere/clubsphere/internal/auth"
)

func newTestJWT(t *testing.T) *iauth.JWTService {
	t.Helper()
	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "secret",
		Issuer:         "test-suite",
		AccessTokenTTL: time.Minute,
	})
	require.NoError(t, err)
	return jwtSvc
}

func TestIdentifyAndRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtSvc := newTestJWT(t)

	bearer, err := jwtSvc.GenerateAccessToken(iauth.AccessTokenInput{UserID: "user-123", Roles: []string{"admin"}})
	require.NoError(t, err)
	session, err := jwtSvc.GenerateAccessToken(iauth.AccessTokenInput{UserID: "member-9", Roles: []string{"member"}})
	require.NoError(t, err)

	r := gin.New()
	r.Use(Identify(jwtSvc))
	r.GET("/secure", RequireAuth(), func(c *gin.Context) {
		identity, _ := CurrentIdentity(c)
		fromCtx, _ := auditctx.FromContext(c.Request.Context())
		_, hasSession := c.Get(CtxSessionKey)
		c.JSON(http.StatusOK, gin.H{
			"user_id":     identity.UserID,
			"ctx_user_id": fromCtx.UserID,
			"has_session": hasSession,
		})
	})

	// Missing credentials -> 401
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/secure", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	// Invalid token -> 401
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Session cookie only
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session})
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, "member-9", payload["user_id"])
	require.Equal(t, "member-9", payload["ctx_user_id"])

	// Bearer wins over the session cookie
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session})
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, "user-123", payload["user_id"])
	require.Equal(t, "user-123", payload["ctx_user_id"])
	require.Equal(t, true, payload["has_session"])
}
