package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/KoshmareG/KHSM/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// снимаем лок только если он всё ещё наш
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AccountLock lets one mutating request per user run at a time across all
// instances. A second request while the lock is held gets 409. The lock
// expires after ttl if the holder dies.
func AccountLock(ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		userID, ok := userIDFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		key := "lock:account:" + strconv.FormatInt(userID, 10)
		token := uuid.NewString()

		acquired, err := redisClient.SetNX(c.Request.Context(), key, token, ttl).Result()
		if err != nil {
			c.Header("X-AccountLock-Error", "redis-error")
			c.Next()
			return
		}
		if !acquired {
			LocksContended.Inc()
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "another request for this account is in progress"})
			return
		}

		defer func() {
			// контекст запроса может быть уже отменён
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := unlockScript.Run(ctx, redisClient, []string{key}, token).Err(); err != nil {
				logger.Warn("account unlock failed", "user_id", userID, "error", err)
			}
		}()

		c.Next()
	}
}
