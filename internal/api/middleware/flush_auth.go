package middleware

import (
	"Atheneum/internal/api/config"
	"Atheneum/internal/pkg/response"
	"crypto/sha256"
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
)

// FlushAuthMiddleware 冲账触发接口的口令校验。
// 两侧先做 sha256 再常量时间比较，口令长度不同也不泄露时序。
// 生产环境未配置口令时整个接口拒绝，而不是放开。
// ?token= 兜底只在非生产环境可用，方便本地联调。
func FlushAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := config.Cfg.Views.FlushSecret
		if secret == "" {
			if config.IsProduction() {
				response.Fail(c, response.Unauthorized, "flush trigger disabled")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		supplied := ""
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			supplied = strings.TrimPrefix(authHeader, "Bearer ")
		} else if !config.IsProduction() {
			supplied = c.Query("token")
		}

		if !secretMatches(supplied, secret) {
			response.Fail(c, response.Unauthorized, "flush trigger unauthorized")
			c.Abort()
			return
		}

		c.Next()
	}
}

func secretMatches(supplied, secret string) bool {
	if supplied == "" {
		return false
	}
	a := sha256.Sum256([]byte(supplied))
	b := sha256.Sum256([]byte(secret))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}
