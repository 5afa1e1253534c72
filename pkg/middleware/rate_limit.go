package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/groupchat/groupchat/pkg/metrics"
	"github.com/groupchat/groupchat/pkg/response"
)

// limiters holds one token bucket per client key.
var limiters sync.Map // map[string]*rate.Limiter

func limiterFor(key string, rps float64, burst int) *rate.Limiter {
	if v, ok := limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(rate.Limit(rps), burst)
	actual, _ := limiters.LoadOrStore(key, lim)
	return actual.(*rate.Limiter)
}

// clientKey prefers the authenticated user id over the client IP, so a NAT
// full of users is not throttled as one client.
func clientKey(c *gin.Context) string {
	if id, ok := CurrentIdentity(c); ok && id.ID != "" {
		return "user:" + id.ID
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

// RateLimit enforces an in-memory token-bucket limit per client key.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiterFor(clientKey(c), rps, burst).Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			response.Abort(c, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}
