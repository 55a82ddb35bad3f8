package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"drug-graph/config"
	"drug-graph/services"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{DataDir: t.TempDir(), IfExists: "append", APISecretKey: "secret"}
	etl, err := services.NewETLService(cfg, zap.NewNop(), nil, nil)
	require.NoError(t, err)
	return setupRouter(cfg, etl, nil, zap.NewNop())
}

func TestRouterMiddlewareChain(t *testing.T) {
	// Logger, Recovery, API-Key: Recovery genau einmal.
	assert.Len(t, testRouter(t).Handlers, 3)
}

func TestRouterAuth(t *testing.T) {
	router := testRouter(t)

	tests := []struct {
		path   string
		key    string
		status int
	}{
		{"/health", "", http.StatusOK},
		{"/pipeline/last", "", http.StatusUnauthorized},
		{"/pipeline/last", "secret", http.StatusNotFound},
		{"/graph/links", "secret", http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.path+"/"+tc.key, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.key != "" {
				req.Header.Set("X-API-KEY", tc.key)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}
