package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/astroadvisor/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(r http.Handler, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(&config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 2})

	router := gin.New()
	router.GET("/limited", rl.Handler(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, do(router, "/limited", "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, do(router, "/limited", "10.0.0.1:1234").Code)

	w := do(router, "/limited", "10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"detail":"Too many requests"}`, w.Body.String())

	// other clients have their own budget
	assert.Equal(t, http.StatusOK, do(router, "/limited", "10.0.0.2:1234").Code)
}

func TestRateLimiter_FullTableKeepsBudgets(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(&config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1})
	rl.capacity = 2
	rl.now = func() time.Time { return now }

	require.True(t, rl.Allow("a"))
	require.False(t, rl.Allow("a"))
	require.True(t, rl.Allow("b"))

	// the table is full and no bucket has refilled, new clients share the overflow bucket
	assert.True(t, rl.Allow("c"))
	assert.False(t, rl.Allow("d"))
	assert.False(t, rl.Allow("a"), "a tracked client must not get its budget back")
	assert.Len(t, rl.limiters, 2)

	// refilled buckets are dropped to make room
	now = now.Add(2 * time.Minute)
	assert.True(t, rl.Allow("e"))
	assert.Contains(t, rl.limiters, "e")
	assert.NotContains(t, rl.limiters, "a")
	assert.NotContains(t, rl.limiters, "b")
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	router := gin.New()
	router.Use(m.Instrument())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	require.Equal(t, http.StatusOK, do(router, "/ping", "").Code)
	require.Equal(t, http.StatusNotFound, do(router, "/missing", "").Code)

	w := do(router, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `astroadvisor_http_requests_total{method="GET",path="/ping",status="200"} 1`)
	assert.Contains(t, body, `astroadvisor_http_requests_total{method="GET",path="unmatched",status="404"} 1`)
	assert.False(t, strings.Contains(body, `path="/metrics"`))
}

func TestLogger(t *testing.T) {
	router := gin.New()
	router.Use(Logger())
	router.GET("/fail", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	assert.Equal(t, http.StatusInternalServerError, do(router, "/fail", "").Code)
}
