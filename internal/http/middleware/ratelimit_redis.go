package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/KoshmareG/KHSM/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedis sets up the client shared by the rate limiters and the account
// lock. With an empty addr or a failed ping the client stays nil and the
// middleware fails open.
func InitRedis(addr, password string, db int) *redis.Client {
	redisClient = nil
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, rate limits disabled", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}

	redisClient = client
	logger.Info("redis connected", "addr", addr)
	return client
}

// SetRedisClient replaces the shared client. Tests use it to switch redis off.
func SetRedisClient(c *redis.Client) {
	redisClient = c
}

// RedisRateLimit implements a simple fixed-window rate limiter using Redis INCR/EXPIRE.
// key format: rl:<window_seconds>:<ip>
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		allowed, err := hitWindow(c.Request.Context(), key, maxRequests, window)
		if err != nil {
			// fail-open
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if !allowed {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}

// hitWindow counts one request against key and reports whether it is
// within limit for the current window.
func hitWindow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	val, err := redisClient.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if val == 1 {
		redisClient.Expire(ctx, key, window)
	}
	return val <= int64(limit), nil
}
