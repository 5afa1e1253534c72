package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/groupchat/groupchat/pkg/metrics"
	"github.com/groupchat/groupchat/pkg/response"
)

// RedisRateLimit is a fixed-window limiter shared across processes. Each
// window gets an INCR'd counter key; requests beyond rps*window+burst within
// one window are rejected. Falls back to the in-memory limiter when no Redis
// client is available.
func RedisRateLimit(client *redis.Client, rps float64, burst int, window time.Duration) gin.HandlerFunc {
	if client == nil {
		return RateLimit(rps, burst)
	}
	windowSeconds := int(window.Seconds())
	if windowSeconds <= 0 {
		windowSeconds = 1
	}
	allowed := int(rps*float64(windowSeconds)) + burst
	return func(c *gin.Context) {
		bucket := time.Now().Unix() / int64(windowSeconds)
		key := fmt.Sprintf("rl:%s:%d", clientKey(c), bucket)

		n, err := client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			response.Abort(c, http.StatusInternalServerError, "rate limit check failed")
			return
		}
		if n == 1 {
			_ = client.Expire(c.Request.Context(), key, time.Duration(windowSeconds+1)*time.Second).Err()
		}
		if int(n) > allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", windowSeconds))
			metrics.RateLimitRejected.WithLabelValues("redis").Inc()
			response.Abort(c, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("redis").Inc()
		c.Next()
	}
}
