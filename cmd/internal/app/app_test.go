package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"corecms/cmd/internal/auth/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, mutate func(*Config)) *App {
	t.Helper()
	t.Setenv("CORECMS_ARGON2_MEMORY_KIB", "8192")
	t.Setenv("CORECMS_ARGON2_ITERATIONS", "1")
	t.Setenv("CORECMS_ARGON2_PARALLELISM", "1")

	cfg := Config{
		HTTPAddr:             "127.0.0.1:0",
		LogLevel:             "error",
		LogFormat:            "text",
		MetricsEnabled:       true,
		BootstrapUsername:    "admin",
		BootstrapPassword:    "bootstrap-password",
		BootstrapAccessLevel: 100,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	a, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.store.Close(context.Background()) })
	return a
}

func serve(h http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func loginCookie(t *testing.T, h http.Handler, username, pw string) *http.Cookie {
	t.Helper()
	rr := serve(h, http.MethodPost, "/auth/login", `{"username":"`+username+`","password":"`+pw+`"}`)
	require.Equal(t, http.StatusNoContent, rr.Code)

	for _, c := range rr.Result().Cookies() {
		if c.Name == session.DefaultCookieName {
			return c
		}
	}
	t.Fatalf("login did not set %s", session.DefaultCookieName)
	return nil
}

func TestApp_HealthAndReadiness(t *testing.T) {
	a := newTestApp(t, nil)
	h := a.Handler()

	rr := serve(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(RequestIDHeader))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	rr = serve(h, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestApp_ReadinessRequiresDatabase(t *testing.T) {
	a := newTestApp(t, func(c *Config) { c.ReadinessRequireDB = true })

	rr := serve(a.Handler(), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestApp_BootstrapLoginAndMetrics(t *testing.T) {
	a := newTestApp(t, nil)
	h := a.Handler()

	c := loginCookie(t, h, "admin", "bootstrap-password")

	rr := serve(h, http.MethodGet, "/me", "", c)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"username":"admin"`)
	assert.Contains(t, rr.Body.String(), `"access_level":100`)

	rr = serve(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `corecms_auth_logins_total{result="success"} 1`)
	assert.Contains(t, rr.Body.String(), `corecms_auth_resolutions_total{result="ok"} 1`)
}

func TestApp_MetricsDisabled(t *testing.T) {
	a := newTestApp(t, func(c *Config) { c.MetricsEnabled = false })

	rr := serve(a.Handler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestApp_BootstrapIsIdempotent(t *testing.T) {
	a := newTestApp(t, nil)

	cfg := a.cfg
	require.NoError(t, bootstrapUser(context.Background(), a.engine, cfg, a.log))
}

func TestApp_RedisTokenStore(t *testing.T) {
	mr := miniredis.RunT(t)
	a := newTestApp(t, func(c *Config) { c.RedisAddr = mr.Addr() })
	h := a.Handler()

	c := loginCookie(t, h, "admin", "bootstrap-password")

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], session.RedisKeyPrefix))

	rr := serve(h, http.MethodGet, "/me", "", c)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serve(h, http.MethodPost, "/auth/logout", "", c)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, mr.Keys())

	rr = serve(h, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestApp_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	t.Setenv("CORECMS_ARGON2_MEMORY_KIB", "8192")
	_, err := New(Config{RedisAddr: addr, LogLevel: "error"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	a := newTestApp(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	require.NoError(t, <-done)
}
