package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		Enabled:          true,
		WindowDuration:   time.Minute,
		DefaultRequests:  5,
		SplitRequests:    4,
		SplitWrites:      2,
		InternalRequests: 10,
		HealthRequests:   10,
	}
}

func setupLimiter(t *testing.T, cfg *Config) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRateLimiter(client, cfg), mr
}

func TestIsAllowedSlidingWindow(t *testing.T) {
	limiter, mr := setupLimiter(t, testConfig())
	ctx := context.Background()

	first, err := limiter.IsAllowed(ctx, "10.0.0.1", RateLimitTypeSplitWrite)
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, 2, first.Limit)
	assert.Equal(t, 1, first.Remaining)

	second, err := limiter.IsAllowed(ctx, "10.0.0.1", RateLimitTypeSplitWrite)
	require.NoError(t, err)
	assert.True(t, second.Allowed)
	assert.Equal(t, 0, second.Remaining)

	third, err := limiter.IsAllowed(ctx, "10.0.0.1", RateLimitTypeSplitWrite)
	require.NoError(t, err)
	assert.False(t, third.Allowed)
	assert.Equal(t, 0, third.Remaining)

	assert.True(t, mr.Exists("organizer:ratelimit:10.0.0.1:split_write"))

	// other types and clients keep their own windows
	other, err := limiter.IsAllowed(ctx, "10.0.0.1", RateLimitTypeSplit)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
	otherIP, err := limiter.IsAllowed(ctx, "10.0.0.2", RateLimitTypeSplitWrite)
	require.NoError(t, err)
	assert.True(t, otherIP.Allowed)
}

func TestIsAllowedBypass(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.Enabled = false
		limiter, mr := setupLimiter(t, cfg)
		for i := 0; i < 5; i++ {
			res, err := limiter.IsAllowed(context.Background(), "10.0.0.1", RateLimitTypeSplitWrite)
			require.NoError(t, err)
			assert.True(t, res.Allowed)
		}
		assert.Empty(t, mr.Keys())
	})

	t.Run("whitelisted ip", func(t *testing.T) {
		cfg := testConfig()
		cfg.WhitelistedIPs = []string{"10.0.0.9"}
		limiter, _ := setupLimiter(t, cfg)
		for i := 0; i < 5; i++ {
			res, err := limiter.IsAllowed(context.Background(), "10.0.0.9", RateLimitTypeSplitWrite)
			require.NoError(t, err)
			assert.True(t, res.Allowed)
		}
	})
}

func TestGetRateLimitType(t *testing.T) {
	cases := []struct {
		method string
		path   string
		want   RateLimitType
	}{
		{http.MethodGet, "/health", RateLimitTypeHealth},
		{http.MethodGet, "/status", RateLimitTypeHealth},
		{http.MethodPost, "/api/v1/internal/splits/payments", RateLimitTypeInternal},
		{http.MethodPost, "/api/v1/org/:orgId/bookings/:id/split", RateLimitTypeSplitWrite},
		{http.MethodPost, "/api/v1/invites/:token/split/checkout", RateLimitTypeSplitWrite},
		{http.MethodGet, "/api/v1/org/:orgId/bookings/:id/split", RateLimitTypeSplit},
		{http.MethodGet, "/swagger/index.html", RateLimitTypeDefault},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, getRateLimitType(tc.method, tc.path), "%s %s", tc.method, tc.path)
	}
}

func newEngine(limiter *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Middleware(limiter))
	engine.POST("/api/v1/org/:orgId/bookings/:id/split", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return engine
}

func TestMiddleware(t *testing.T) {
	limiter, mr := setupLimiter(t, testConfig())
	engine := newEngine(limiter)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/org/1/bookings/2/split", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	w := send()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, send().Code)

	w = send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"errorCode":"RATE_LIMITED"`)
	assert.Contains(t, w.Body.String(), `"retryable":true`)
	assert.True(t, mr.Exists("organizer:ratelimit:203.0.113.7:split_write"))
}

func TestMiddlewareRedisDown(t *testing.T) {
	limiter, mr := setupLimiter(t, testConfig())
	engine := newEngine(limiter)
	mr.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/org/1/bookings/2/split", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"errorCode":"INTERNAL_ERROR"`)
}

func TestGetClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", getClientIP(c))

	c.Request.Header.Set("X-Real-IP", "198.51.100.4")
	assert.Equal(t, "198.51.100.4", getClientIP(c))

	c.Request.Header.Set("X-Forwarded-For", "not-an-ip")
	assert.Equal(t, "198.51.100.4", getClientIP(c))
}
