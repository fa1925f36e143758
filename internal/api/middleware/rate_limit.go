package middleware

import (
	"Atheneum/internal/api/config"
	"Atheneum/internal/pkg/consts"
	"Atheneum/internal/pkg/redis"
	"Atheneum/internal/pkg/response"
	log "log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const rateLimitWindow = time.Minute

// ViewRateLimitMiddleware 计数接口的固定窗口限流。
// 已识别身份的客户端各占一个桶；匿名客户端共享一个更紧的桶，
// 这样刷量者无法靠换 IP 绕开限制。Redis 不可用时放行。
func ViewRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !redis.Enabled() {
			c.Next()
			return
		}

		userID := c.GetString("user_id")
		key := consts.ViewRateLimitAnonKey
		limit := config.Cfg.Views.AnonRateLimitPerMinute
		if userID != "" {
			key = consts.ViewRateLimitPrefix + userID
			limit = config.Cfg.Views.RateLimitPerMinute
		}
		if limit <= 0 {
			c.Next()
			return
		}

		count, err := redis.IncrWithWindow(c.Request.Context(), key, rateLimitWindow)
		if err != nil {
			// 限流器故障放行，计数服务不应因此不可用
			log.WarnContext(c.Request.Context(), "rate limiter unavailable", "err", err)
			c.Next()
			return
		}

		if count > int64(limit) {
			retryAfter := int64(rateLimitWindow / time.Second)
			if ttl, err := redis.TTL(c.Request.Context(), key); err == nil && ttl > 0 {
				retryAfter = int64(ttl / time.Second)
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			response.Fail(c, response.TooManyRequests, "too many requests")
			c.Abort()
			return
		}

		c.Next()
	}
}
