// README: Tests for Firebase auth, role checks, request logging and recovery middleware.
package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"shuttle/internal/http/middleware"
	"shuttle/internal/infra"
)

// stubVerifier is a test double for infra.TokenVerifier.
type stubVerifier struct {
	token *infra.FirebaseToken
	err   error
}

func (s *stubVerifier) VerifyIDToken(_ context.Context, _ string) (*infra.FirebaseToken, error) {
	return s.token, s.err
}

func newTestRouter(t *testing.T, verifier infra.TokenVerifier, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Auth(verifier, zaptest.NewLogger(t)))
	r.Use(extra...)
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": middleware.CallerUID(c), "role": middleware.CallerRole(c)})
	})
	return r
}

func do(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_Rejections(t *testing.T) {
	ok := &stubVerifier{token: &infra.FirebaseToken{UID: "user1"}}
	tests := []struct {
		name     string
		verifier infra.TokenVerifier
		header   string
	}{
		{name: "missing header", verifier: ok},
		{name: "wrong scheme", verifier: ok, header: "Token sometoken"},
		{name: "empty bearer", verifier: ok, header: "Bearer   "},
		{name: "verifier error", verifier: &stubVerifier{err: errors.New("bad token")}, header: "Bearer invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(newTestRouter(t, tt.verifier), tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestAuth_ValidToken_UIDAndRolePopulated(t *testing.T) {
	token := &infra.FirebaseToken{UID: "ops123", Claims: map[string]interface{}{"role": "admin"}}
	w := do(newTestRouter(t, &stubVerifier{token: token}), "Bearer validtoken")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":"ops123","role":"admin"}`, w.Body.String())
}

func TestAuth_ValidToken_NoRoleClaim(t *testing.T) {
	token := &infra.FirebaseToken{UID: "passenger456", Claims: map[string]interface{}{}}
	w := do(newTestRouter(t, &stubVerifier{token: token}), "Bearer validtoken")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":"passenger456","role":""}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	admin := &infra.FirebaseToken{UID: "a", Claims: map[string]interface{}{"role": "admin"}}
	rider := &infra.FirebaseToken{UID: "p", Claims: map[string]interface{}{"role": "passenger"}}

	w := do(newTestRouter(t, &stubVerifier{token: admin}, middleware.RequireRole(middleware.RoleAdmin)), "Bearer x")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(newTestRouter(t, &stubVerifier{token: rider}, middleware.RequireRole(middleware.RoleAdmin)), "Bearer x")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogging_RequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Logging(zaptest.NewLogger(t)))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.HeaderRequestID, "req-42")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(middleware.HeaderRequestID))
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Recovery(zaptest.NewLogger(t)))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())
}
