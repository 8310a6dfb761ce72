package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/serendigo/serendigo-backend-go/internal/logger"
)

// RateLimiter keeps one token bucket per client. Idle buckets expire.
type RateLimiter struct {
	clients *cache.Cache
	limit   rate.Limit
	burst   int
}

// NewRateLimiter allows limit requests per window per client, with bursts
// up to limit.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: cache.New(2*window, 4*window),
		limit:   rate.Limit(float64(limit) / window.Seconds()),
		burst:   limit,
	}
}

// Allow checks if a request from the given client is allowed
func (rl *RateLimiter) Allow(key string) bool {
	lim := rate.NewLimiter(rl.limit, rl.burst)
	if err := rl.clients.Add(key, lim, cache.DefaultExpiration); err != nil {
		// Known client: keep its bucket and push back its expiry.
		if v, ok := rl.clients.Get(key); ok {
			lim = v.(*rate.Limiter)
		}
		rl.clients.SetDefault(key, lim)
	}
	return lim.Allow()
}

// RateLimit middleware limits requests per client IP
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	limiter := NewRateLimiter(limit, window)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		if !limiter.Allow(ip) {
			logger.Log.Warn("rate limit exceeded", zap.String("client_ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
