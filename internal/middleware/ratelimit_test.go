package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squadup/event-reporting/internal/config"
)

func runBucket(t *testing.T, cfg config.RateLimitConfig, vals interface{}) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/sql", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	next := func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	}
	require.NoError(t, enforceBucket(c, cfg, "rl:test", vals, next))
	return rec, called
}

func TestEnforceBucketAllows(t *testing.T) {
	cfg := config.RateLimitConfig{Capacity: 30}
	rec, called := runBucket(t, cfg, []interface{}{int64(1), int64(5), int64(0)})

	assert.True(t, called)
	assert.Equal(t, "30", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Empty(t, rec.Header().Get("Retry-After"))
	assert.Empty(t, rec.Header().Get("X-RateLimit-Key"))
}

func TestEnforceBucketRejectsWhenEmpty(t *testing.T) {
	cfg := config.RateLimitConfig{Capacity: 30}
	rec, called := runBucket(t, cfg, []interface{}{int64(0), int64(0), int64(1500)})

	assert.False(t, called)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	// 1500ms rounds up to a whole 2 seconds
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"too_many_requests"`)
	assert.Contains(t, rec.Body.String(), `"retry_after":2`)
}

func TestEnforceBucketZeroRetryFloor(t *testing.T) {
	cfg := config.RateLimitConfig{Capacity: 1}
	rec, called := runBucket(t, cfg, []interface{}{int64(0), int64(0), int64(-50)})

	assert.False(t, called)
	assert.Equal(t, "0", rec.Header().Get("Retry-After"))
}

func TestEnforceBucketDebugHeader(t *testing.T) {
	cfg := config.RateLimitConfig{Capacity: 30, Debug: true}
	rec, called := runBucket(t, cfg, []interface{}{int64(1), int64(29), int64(0)})

	assert.True(t, called)
	assert.Equal(t, "rl:test", rec.Header().Get("X-RateLimit-Key"))
}

func TestEnforceBucketUnrecognizedReplyAllows(t *testing.T) {
	cfg := config.RateLimitConfig{Capacity: 30}

	rec, called := runBucket(t, cfg, "bogus")
	assert.True(t, called)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))

	_, called = runBucket(t, cfg, []interface{}{int64(1)})
	assert.True(t, called)
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	mw := RateLimit(config.RateLimitConfig{Enabled: false}, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/sql", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	next := func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	}
	require.NoError(t, mw(next)(c))
	assert.True(t, called)
}

func TestRateKeyStrategies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/sql", nil)
	req.RemoteAddr = "203.0.113.9:4412"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/sql")

	cfg := config.RateLimitConfig{Prefix: "rl"}
	assert.Equal(t, "rl:ip:203.0.113.9:route:POST /sql", rateKey(cfg, c))

	cfg.KeyStrategy = "route"
	assert.Equal(t, "rl:route:POST /sql", rateKey(cfg, c))

	cfg.KeyStrategy = "ip"
	assert.Equal(t, "rl:ip:203.0.113.9", rateKey(cfg, c))
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(7), asInt64(int64(7)))
	assert.Equal(t, int64(7), asInt64(7))
	assert.Equal(t, int64(7), asInt64(7.0))
	assert.Equal(t, int64(7), asInt64("7"))
	assert.Equal(t, int64(0), asInt64("x"))
}
