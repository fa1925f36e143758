package middleware

import (
	"Atheneum/internal/pkg/consts"
	"Atheneum/internal/pkg/redis"
	"Atheneum/internal/pkg/response"
	"Atheneum/internal/pkg/security"
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 验证 JWT 并把用户身份注入 Context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			response.Fail(c, response.Unauthorized, "missing or malformed token")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		// 吊销名单只在 Redis 可用时检查，内存部署没有跨实例登出
		if redis.Enabled() {
			signature, err := security.ExtractSignature(tokenString)
			if err != nil {
				response.Fail(c, response.Unauthorized, "missing or malformed token")
				c.Abort()
				return
			}

			value, err := redis.GetValue(c.Request.Context(), consts.TokenBlacklistPrefix+signature)
			if err != nil {
				response.Fail(c, response.InternalServerError, "internal error")
				c.Abort()
				return
			}
			if value != "" {
				response.Fail(c, response.Unauthorized, "token revoked or expired")
				c.Abort()
				return
			}
		}

		claims, err := security.ValidateToken(tokenString)
		if err != nil {
			response.Fail(c, response.Unauthorized, "token invalid or expired")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("pubkey", claims.Pubkey)
		c.Set("roles", claims.Roles)

		newCtx := context.WithValue(c.Request.Context(), "user_id", claims.UserID)
		c.Request = c.Request.WithContext(newCtx)

		c.Next()
	}
}
