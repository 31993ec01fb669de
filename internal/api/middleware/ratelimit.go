package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/astroadvisor/internal/api/models"
	"github.com/jon4hz/astroadvisor/internal/config"
	"golang.org/x/time/rate"
)

const (
	// maxLimiters bounds the number of tracked clients.
	maxLimiters = 10000
	// sweepInterval is the minimum time between two sweeps of idle clients.
	sweepInterval = 10 * time.Second
)

// RateLimiter limits requests per client. Clients are identified by their IP.
// When the table is full, clients whose bucket has refilled are dropped. New
// clients that still do not fit share a single overflow bucket.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	overflow  *rate.Limiter
	rate      rate.Limit
	burst     int
	capacity  int
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter creates a limiter allowing cfg.RequestsPerMinute sustained requests per client.
// A non-positive rate disables the limit.
func NewRateLimiter(cfg *config.RateLimitConfig) *RateLimiter {
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		overflow: rate.NewLimiter(limit, cfg.Burst),
		rate:     limit,
		burst:    cfg.Burst,
		capacity: maxLimiters,
		now:      time.Now,
	}
}

// Allow reports whether the client identified by key may make a request now.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	l, ok := rl.limiters[key]
	if !ok {
		if len(rl.limiters) >= rl.capacity {
			rl.sweep(now)
		}
		if len(rl.limiters) >= rl.capacity {
			return rl.overflow.AllowN(now, 1)
		}
		l = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = l
	}
	return l.AllowN(now, 1)
}

// sweep drops clients with a full bucket. A fresh limiter would behave the same.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < sweepInterval {
		return
	}
	rl.lastSweep = now
	for key, l := range rl.limiters {
		if l.TokensAt(now) >= float64(rl.burst) {
			delete(rl.limiters, key)
		}
	}
}

// Handler rejects requests of clients that exceeded their budget with 429.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !rl.Allow(key) {
			log.Warn("Rate limit exceeded", "client", key, "path", c.FullPath())
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{Detail: "Too many requests"})
			return
		}
		c.Next()
	}
}
