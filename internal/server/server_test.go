package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"inventory-api/internal/config"
	"inventory-api/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:         "0",
			Env:          "development",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			IdleTimeout:  time.Second,
		},
		RateLimit: config.RateLimitConfig{Enabled: false, Requests: 2, Window: time.Minute},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

func seededStore(t *testing.T) repository.Store {
	t.Helper()

	store := repository.NewMemoryStore()
	_, err := repository.Seed(context.Background(), store, zap.NewNop())
	require.NoError(t, err)
	return store
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_ProductLifecycle(t *testing.T) {
	router := NewRouter(testConfig(), zap.NewNop(), repository.NewMemoryStore(), nil)

	w := serve(router, httptest.NewRequest(http.MethodPost, "/products/", strings.NewReader(`{"name":"Keyboard","price":49.5,"quantity":3}`)))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":1,"name":"Keyboard","description":null,"price":49.5,"quantity":3}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("Content-Type"))

	w = serve(router, httptest.NewRequest(http.MethodPatch, "/products/1", strings.NewReader(`{"quantity":4}`)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1,"name":"Keyboard","description":null,"price":49.5,"quantity":4}`, w.Body.String())

	w = serve(router, httptest.NewRequest(http.MethodDelete, "/products/1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/products/1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_RootAndHealth(t *testing.T) {
	router := NewRouter(testConfig(), zap.NewNop(), seededStore(t), nil)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `"Welcome to Inventory Management System"`, w.Body.String())

	w = serve(router, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"products":"4"`)
}

func TestRouter_CORS(t *testing.T) {
	router := NewRouter(testConfig(), zap.NewNop(), seededStore(t), nil)

	req := httptest.NewRequest(http.MethodOptions, "/products/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := serve(router, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/products/", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w = serve(router, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_Metrics(t *testing.T) {
	router := NewRouter(testConfig(), zap.NewNop(), seededStore(t), nil)

	serve(router, httptest.NewRequest(http.MethodGet, "/products/2", nil))

	w := serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `inventory_http_requests_total{method="GET",route="/products/{id}",status="200"} 1`)
}

func TestRouter_RateLimit(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer redisClient.Close()

	cfg := testConfig()
	cfg.RateLimit.Enabled = true
	router := NewRouter(cfg, zap.NewNop(), seededStore(t), redisClient)

	for i := 0; i < cfg.RateLimit.Requests; i++ {
		require.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/products", nil)).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(router, httptest.NewRequest(http.MethodGet, "/products", nil)).Code)

	// Root routes are not rate limited
	assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
}

func TestServer_Close(t *testing.T) {
	srv := NewServer(testConfig(), zap.NewNop(), repository.NewMemoryStore(), nil)

	assert.Equal(t, ":0", srv.Addr)
	assert.Equal(t, time.Second, srv.ReadTimeout)
	assert.NoError(t, srv.Close())
}
