package middleware

import (
	"net/http"
	"strings"

	"Anon_Board/internal/pkg"

	"github.com/gin-gonic/gin"
)

const ContextUserIDKey = "user_id"

// AuthMiddleware 校验 Bearer access token，把登录ID写入上下文
func AuthMiddleware(tokens *pkg.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "invalid authorization format"})
			c.Abort()
			return
		}

		claims, err := tokens.ParseAccess(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "invalid or expired token"})
			c.Abort()
			return
		}

		// 注入 user_id
		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}
