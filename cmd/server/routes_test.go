package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authsvc/pkg/auth"
	"github.com/dmitrymomot/authsvc/pkg/jwt"
	"github.com/dmitrymomot/authsvc/pkg/logger"
	"github.com/dmitrymomot/authsvc/svc/userstore"
)

func newTestApp(t *testing.T, cfg appConfig, prepare ...func(*userstore.Backend)) *httptest.Server {
	t.Helper()
	backend, err := userstore.Open(context.Background(), "memory://", userstore.Options{})
	require.NoError(t, err)
	for _, fn := range prepare {
		fn(backend)
	}

	svc := auth.NewService(backend.Users, jwt.NewFromString("secret"), nil,
		auth.WithPasswordHasher(auth.NewBcryptHasher(auth.WithCost(bcrypt.MinCost))),
	)
	if cfg.CORSAllowedOrigins == nil {
		cfg.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.ReadyTimeout == 0 {
		cfg.ReadyTimeout = time.Second
	}
	srv := httptest.NewServer(newRouter(cfg, logger.Discard(), svc, backend))
	t.Cleanup(srv.Close)
	return srv
}

func TestRouter(t *testing.T) {
	t.Parallel()

	t.Run("auth routes are mounted under /api/auth", func(t *testing.T) {
		t.Parallel()
		srv := newTestApp(t, appConfig{})

		resp, err := srv.Client().Post(srv.URL+"/api/auth/register", "application/json",
			strings.NewReader(`{"name":"Ana","email":"ana@example.com","password":"pw","authProvider":"email"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()
		srv := newTestApp(t, appConfig{})

		resp, err := srv.Client().Get(srv.URL + "/health/live")
		require.NoError(t, err)
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "ok", string(body))
	})

	t.Run("readiness reports a failing store", func(t *testing.T) {
		t.Parallel()
		srv := newTestApp(t, appConfig{}, func(b *userstore.Backend) {
			b.Check = func(context.Context) error { return errors.New("down") }
		})

		resp, err := srv.Client().Get(srv.URL + "/health/ready")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("cors preflight", func(t *testing.T) {
		t.Parallel()
		srv := newTestApp(t, appConfig{CORSAllowedOrigins: []string{"https://app.example.com"}})

		req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/auth/login", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("client errors carry no detail in development", func(t *testing.T) {
		t.Parallel()
		srv := newTestApp(t, appConfig{Env: "development"})

		resp, err := srv.Client().Get(srv.URL + "/api/auth/verify")
		require.NoError(t, err)
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.NotContains(t, string(body), `"error"`)
	})
}
