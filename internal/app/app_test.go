package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenleaf-garden/storefront/internal/config"
	"github.com/greenleaf-garden/storefront/pkg/middleware"
	"github.com/greenleaf-garden/storefront/pkg/tracing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadConfig(t *testing.T, environ map[string]string) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(environ)
	require.NoError(t, err)
	return cfg
}

func newTestApp(t *testing.T, environ map[string]string) *App {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	a, err := NewApp(ctx, loadConfig(t, environ), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown() })
	return a
}

func addJalapenos(t *testing.T, h http.Handler, user string) *httptest.ResponseRecorder {
	t.Helper()
	body := bytes.NewBufferString(`{"product_id":"3f6c1a52-8f0e-4d1b-9a37-1c2e5d7b9a01","quantity":2}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.UserIDHeader, user)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewApp_MemoryDefaults(t *testing.T) {
	a := newTestApp(t, map[string]string{})

	assert.Nil(t, a.rdb)
	assert.Nil(t, a.producer)
	assert.Equal(t, ":8080", a.httpServer.Addr)

	rec := addJalapenos(t, a.Handler(), "u1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":"6.98"`)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", http.NoBody)
	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewApp_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	a := newTestApp(t, map[string]string{
		"STORE_BACKEND": "redis",
		"REDIS_ADDR":    mr.Addr(),
	})
	require.NotNil(t, a.rdb)

	rec := addJalapenos(t, a.Handler(), "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, mr.Exists("cart:user:u1"))

	req := httptest.NewRequest(http.MethodGet, "/health/ready", http.NoBody)
	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis")
}

func TestNewApp_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewApp(context.Background(), loadConfig(t, map[string]string{
		"STORE_BACKEND": "redis",
		"REDIS_ADDR":    addr,
	}), testLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
}

func TestNewApp_MissingCatalogFile(t *testing.T) {
	_, err := NewApp(context.Background(), loadConfig(t, map[string]string{
		"CATALOG_PATH": filepath.Join(t.TempDir(), "missing.json"),
	}), testLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load catalog")
}

// countTracerShutdowns swaps in a tracer whose shutdown calls are counted.
func countTracerShutdowns(t *testing.T) *atomic.Int32 {
	t.Helper()
	var calls atomic.Int32
	orig := initTracing
	initTracing = func(context.Context, tracing.Config) (func(context.Context) error, error) {
		return func(context.Context) error {
			calls.Add(1)
			return nil
		}, nil
	}
	t.Cleanup(func() { initTracing = orig })
	return &calls
}

func TestNewApp_FailureShutsDownTracer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	tests := map[string]map[string]string{
		"redis unreachable": {"STORE_BACKEND": "redis", "REDIS_ADDR": addr},
		"missing catalog":   {"CATALOG_PATH": filepath.Join(t.TempDir(), "missing.json")},
	}
	for name, environ := range tests {
		t.Run(name, func(t *testing.T) {
			calls := countTracerShutdowns(t)

			_, err := NewApp(context.Background(), loadConfig(t, environ), testLogger())

			require.Error(t, err)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestNewApp_SuccessKeepsTracer(t *testing.T) {
	calls := countTracerShutdowns(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	a, err := NewApp(ctx, loadConfig(t, map[string]string{}), testLogger())
	require.NoError(t, err)
	assert.Zero(t, calls.Load())

	require.NoError(t, a.Shutdown())
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewApp_PaymentsDisabled(t *testing.T) {
	a := newTestApp(t, map[string]string{"PAYMENT_PROVIDER": "none"})
	h := a.Handler()
	require.Equal(t, http.StatusOK, addJalapenos(t, h, "u1").Code)

	send := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.UserIDHeader, "u1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := send("/api/v1/orders", `{"fulfillment":"pickup","email":"ann@example.com","contact_name":"Ann"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var placed struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&placed))

	rec = send("/api/v1/payments", `{"order_id":"`+placed.Data.ID+`","token":"tok_visa"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRun_StopsOnCancel(t *testing.T) {
	a := newTestApp(t, map[string]string{"HTTP_PORT": "18089"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	assert.NoError(t, <-done)
}
