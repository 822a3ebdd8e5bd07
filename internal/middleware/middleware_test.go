package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/iliyamo/contact-book/internal/authz"
	"github.com/iliyamo/contact-book/internal/config"
	"github.com/iliyamo/contact-book/internal/model"
	"github.com/iliyamo/contact-book/internal/response"
	"github.com/iliyamo/contact-book/internal/utils"
)

const secret = "middleware-secret"

func newEcho(t *testing.T) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = response.ErrorHandler(zaptest.NewLogger(t))
	return e
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func bearer(t *testing.T, role model.Role, ttl time.Duration) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, "u1", "u1@example.com", string(role), ttl)
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJWTAuth(t *testing.T) {
	e := newEcho(t)
	var seen authz.Identity
	e.GET("/me", func(c echo.Context) error {
		seen, _ = IdentityFrom(c)
		return c.NoContent(http.StatusOK)
	}, JWTAuth(secret))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic dTpw", http.StatusUnauthorized},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"expired", bearer(t, model.RoleUser, -time.Minute), http.StatusUnauthorized},
		{"valid", bearer(t, model.RoleAdmin, time.Hour), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = authz.Identity{}
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			rec := serve(e, req)
			require.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusUnauthorized {
				assert.Equal(t, 401, errorBody(t, rec).StatusCode)
				assert.Empty(t, seen.UserID, "handler must not run")
				return
			}
			assert.Equal(t, authz.Identity{UserID: "u1", Email: "u1@example.com", Role: model.RoleAdmin}, seen)
		})
	}
}

func TestRequireRole(t *testing.T) {
	e := newEcho(t)
	e.GET("/admin", func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		JWTAuth(secret), RequireRole(model.RoleAdmin))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(echo.HeaderAuthorization, bearer(t, model.RoleUser, time.Hour))
	rec := serve(e, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, errorBody(t, rec).Success)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(echo.HeaderAuthorization, bearer(t, model.RoleAdmin, time.Hour))
	assert.Equal(t, http.StatusOK, serve(e, req).Code)
}

func TestRequireRole_WithoutIdentity(t *testing.T) {
	e := newEcho(t)
	e.GET("/admin", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RequireRole(model.RoleAdmin))

	assert.Equal(t, http.StatusUnauthorized, serve(e, httptest.NewRequest(http.MethodGet, "/admin", nil)).Code)
}

// fakeScripter answers EvalSha with a canned token bucket result.
type fakeScripter struct {
	redis.Scripter
	result []any
	err    error
	keys   []string
}

func (f *fakeScripter) EvalSha(_ context.Context, _ string, keys []string, _ ...any) *redis.Cmd {
	f.keys = append(f.keys, keys...)
	return redis.NewCmdResult(f.result, f.err)
}

func rateLimitConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled: true, Capacity: 20, RefillTokens: 1, RefillInterval: 3 * time.Second,
		TTL: 10 * time.Minute, KeyStrategy: "ip_route", Prefix: "rl",
	}
}

func TestTokenBucket(t *testing.T) {
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	t.Run("allowed sets headers", func(t *testing.T) {
		f := &fakeScripter{result: []any{int64(1), int64(19), int64(0)}}
		e := newEcho(t)
		e.POST("/auth/login", ok, newTokenBucket(rateLimitConfig(), f, zaptest.NewLogger(t)))

		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.7:5555"
		rec := serve(e, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "20", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "19", rec.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, []string{"rl:ip:10.0.0.7:route:POST /auth/login"}, f.keys)
	})

	t.Run("exhausted returns 429 envelope", func(t *testing.T) {
		f := &fakeScripter{result: []any{int64(0), int64(0), int64(2500)}}
		e := newEcho(t)
		e.POST("/auth/login", ok, newTokenBucket(rateLimitConfig(), f, zaptest.NewLogger(t)))

		rec := serve(e, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "3", rec.Header().Get("Retry-After"))
		assert.Equal(t, 429, errorBody(t, rec).StatusCode)
	})

	t.Run("redis error fails open", func(t *testing.T) {
		f := &fakeScripter{err: errors.New("connection refused")}
		e := newEcho(t)
		e.POST("/auth/login", ok, newTokenBucket(rateLimitConfig(), f, zaptest.NewLogger(t)))

		assert.Equal(t, http.StatusOK, serve(e, httptest.NewRequest(http.MethodPost, "/auth/login", nil)).Code)
	})

	t.Run("no redis passes through", func(t *testing.T) {
		e := newEcho(t)
		e.POST("/auth/login", ok, NewTokenBucket(rateLimitConfig(), nil, zaptest.NewLogger(t)))

		rec := serve(e, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	})
}

func TestRateKey_Strategies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/register", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/auth/register")

	cfg := rateLimitConfig()
	cfg.KeyStrategy = "ip"
	assert.Equal(t, "rl:ip:192.0.2.1", rateKey(cfg, c))
	cfg.KeyStrategy = "route"
	assert.Equal(t, "rl:route:POST /auth/register", rateKey(cfg, c))
	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:anon", rateKey(cfg, c))
}

func TestRecover_ReturnsEnvelope(t *testing.T) {
	e := newEcho(t)
	log := zaptest.NewLogger(t)
	e.Use(RequestLogger(log), Recover(log))
	e.GET("/boom", func(echo.Context) error { panic("kaboom") })

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := errorBody(t, rec)
	assert.Equal(t, "Internal server error", body.Error)
	assert.NotContains(t, rec.Body.String(), "kaboom")
}

func TestTracing_PassesErrorsToHandler(t *testing.T) {
	e := newEcho(t)
	e.Use(Tracing("contact-book"))
	e.GET("/missing", func(echo.Context) error { return echo.ErrNotFound })

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 404, errorBody(t, rec).StatusCode)
}
