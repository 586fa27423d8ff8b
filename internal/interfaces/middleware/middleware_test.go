package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appcanvas/builder/internal/domain/models"
	"github.com/appcanvas/builder/internal/domain/ports"
	"github.com/appcanvas/builder/pkg/constants"
	"github.com/appcanvas/builder/pkg/errors"
)

type stubProvider struct {
	sessions map[string]*models.AuthSession
	touched  []string
}

func (p *stubProvider) GetSession(_ context.Context, token string) (*models.AuthSession, error) {
	if s, ok := p.sessions[token]; ok {
		return s, nil
	}
	return nil, errors.NewUnauthorizedError("Session expired")
}

func (p *stubProvider) SignInAnonymously(context.Context) (*models.AuthSession, error) {
	return nil, nil
}

func (p *stubProvider) SignInWithPassword(context.Context, string, string) (*models.AuthSession, error) {
	return nil, nil
}

func (p *stubProvider) SignOut(context.Context, string) error { return nil }

func (p *stubProvider) OnSessionChange(func(ports.SessionChange)) func() { return func() {} }

func (p *stubProvider) TouchSession(sessionID string) {
	p.touched = append(p.touched, sessionID)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequireAuth(t *testing.T) {
	provider := &stubProvider{sessions: map[string]*models.AuthSession{
		"good": {ID: "sess-1", User: models.UserSession{ID: "user-1", Name: "Owner"}},
	}}

	router := gin.New()
	router.GET("/me", RequireAuth(provider), func(c *gin.Context) {
		user := c.MustGet(constants.ContextKeyUser).(*models.UserSession)
		c.JSON(http.StatusOK, gin.H{"id": user.ID, "token": c.GetString(constants.ContextKeyToken)})
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(constants.HeaderAuthorization, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"id":"user-1","token":"good"}`, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"code":"UNAUTHORIZED"`)
			}
		})
	}
	assert.Equal(t, []string{"sess-1"}, provider.touched)
}

func TestCors_AllowsConfiguredOrigin(t *testing.T) {
	router := gin.New()
	router.Use(Cors([]string{"http://builder.local"}))
	router.GET("/api/projects", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "http://builder.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", constants.HeaderAuthorization)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://builder.local", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCors_AnyOriginWhenUnconfigured(t *testing.T) {
	router := gin.New()
	router.Use(Cors(nil))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestMetrics_UsesRouteTemplate(t *testing.T) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_requests_total"}, []string{"method", "route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "test_request_seconds"}, []string{"method", "route"})

	router := gin.New()
	router.Use(RequestMetrics(requests, latency))
	router.GET("/api/projects/:projectId", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/projects/a", "/api/projects/b", "/nowhere"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Equal(t, 2.0, testutil.ToFloat64(requests.WithLabelValues("GET", "/api/projects/:projectId", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(requests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(latency))
}
