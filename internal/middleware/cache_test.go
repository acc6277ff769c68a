package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squadup/event-reporting/internal/config"
)

func TestEntryRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}, "X-Custom": {"a", "b"}}
	entry, err := encodeEntry(http.StatusOK, hdr, []byte(`{"ok":true}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodeEntry(entry)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, hdr, gotHdr)
	assert.Equal(t, `{"ok":true}`, string(body))
}

func TestDecodeEntryRejectsGarbage(t *testing.T) {
	_, _, _, ok := decodeEntry([]byte("short"))
	assert.False(t, ok)

	// header length pointing past the payload
	entry, err := encodeEntry(200, http.Header{}, nil)
	require.NoError(t, err)
	entry[7] = 0xFF
	_, _, _, ok = decodeEntry(entry)
	assert.False(t, ok)
}

func TestCacheKeyStrategies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/recipients?active=true", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/recipients")

	base := config.CacheConfig{Prefix: "cache"}

	byRoute := base
	byRoute.KeyStrategy = "route"
	withQuery := base // route_query default

	k1 := cacheKey(byRoute, c, nil)
	k2 := cacheKey(withQuery, c, nil)
	assert.NotEqual(t, k1, k2)

	// same strategy and request hashes identically
	assert.Equal(t, k2, cacheKey(withQuery, c, nil))
}

func TestCacheKeySeparatesPostBodies(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "cache"}

	makeCtx := func() echo.Context {
		req := httptest.NewRequest(http.MethodPost, "/reports/events", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath("/reports/events")
		return c
	}

	byHost := cacheKey(cfg, makeCtx(), []byte(`{"hostUserId":1,"dateFrom":"2026-08-01","dateTo":"2026-08-31"}`))
	byTier := cacheKey(cfg, makeCtx(), []byte(`{"hostUserId":2,"includePriceTiers":true}`))
	assert.NotEqual(t, byHost, byTier)

	// identical bodies still collapse onto one entry
	again := cacheKey(cfg, makeCtx(), []byte(`{"hostUserId":1,"dateFrom":"2026-08-01","dateTo":"2026-08-31"}`))
	assert.Equal(t, byHost, again)

	// an empty body and no body hash the same
	assert.Equal(t, cacheKey(cfg, makeCtx(), nil), cacheKey(cfg, makeCtx(), []byte{}))
}

func TestResponseCacheDisabledPassesThrough(t *testing.T) {
	mw := ResponseCache(config.CacheConfig{Enabled: true, TTL: time.Minute}, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/recipients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	next := func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	}
	require.NoError(t, mw(next)(c))
	assert.True(t, called)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

