package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRedis connects to REDIS_ADDR or skips the test.
func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis at %s unreachable: %v", addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func rateLimitedRouter(client redis.UniversalClient, prefix string, limit int, window time.Duration) *gin.Engine {
	r := gin.New()
	r.GET("/ping", RateLimit(client, prefix, limit, window), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func hit(r *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_FixedWindow(t *testing.T) {
	client := testRedis(t)
	ctx := context.Background()
	prefix := fmt.Sprintf("test:%d:", time.Now().UnixNano())
	key := prefix + "ratelimit:10.0.0.1"
	t.Cleanup(func() { client.Del(ctx, key) })

	window := 2 * time.Second
	r := rateLimitedRouter(client, prefix, 2, window)

	w := hit(r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, hit(r).Code)

	time.Sleep(700 * time.Millisecond)
	for i := 0; i < 3; i++ {
		w = hit(r)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	}

	ttl, err := client.PTTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, window-600*time.Millisecond, "retries must not extend the window")

	time.Sleep(ttl + 100*time.Millisecond)
	assert.Equal(t, http.StatusOK, hit(r).Code, "a new window opens once the old one expires")
}

func TestRateLimit_ExpiryRestoredWhenMissing(t *testing.T) {
	client := testRedis(t)
	ctx := context.Background()
	prefix := fmt.Sprintf("test:%d:", time.Now().UnixNano())
	key := prefix + "ratelimit:10.0.0.1"
	t.Cleanup(func() { client.Del(ctx, key) })

	// A counter left without a TTL would block the client forever.
	require.NoError(t, client.Set(ctx, key, 5, 0).Err())
	r := rateLimitedRouter(client, prefix, 2, time.Second)

	assert.Equal(t, http.StatusTooManyRequests, hit(r).Code)
	ttl, err := client.PTTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Second)
}
