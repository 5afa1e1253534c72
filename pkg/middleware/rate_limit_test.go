package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func limitedRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func hit(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ip + ":12345"
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)
	return rw.Code
}

func TestRateLimit_BurstThenReject(t *testing.T) {
	r := limitedRouter(RateLimit(1, 3))

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, hit(r, "10.1.1.1"))
	}
	require.Equal(t, http.StatusTooManyRequests, hit(r, "10.1.1.1"))

	// a different client key has its own bucket
	require.Equal(t, http.StatusOK, hit(r, "10.1.1.2"))
}

func TestRedisRateLimit_FixedWindow(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})

	// a wide window keeps the test off bucket boundaries: burst 3 allowed
	r := limitedRouter(RedisRateLimit(client, 0, 3, time.Hour))

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, hit(r, "10.2.2.2"))
	}
	require.Equal(t, http.StatusTooManyRequests, hit(r, "10.2.2.2"))
}

func TestRedisRateLimit_NilClientFallsBack(t *testing.T) {
	r := limitedRouter(RedisRateLimit(nil, 1, 2, time.Second))
	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, hit(r, "10.3.3.3"))
	}
	require.Equal(t, http.StatusTooManyRequests, hit(r, "10.3.3.3"))
}
