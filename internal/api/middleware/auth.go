package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/myhometown/missionary-import/internal/api/response"
	"github.com/myhometown/missionary-import/internal/config"
	"github.com/myhometown/missionary-import/pkg/auth"
)

// AuthMiddleware validates JWT tokens from the Authorization header and
// stores user_id and role on the context.
func AuthMiddleware(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(strings.TrimPrefix(authHeader, bearerPrefix), cfg.Secret)
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("logger", Logger(c).With("user_id", claims.UserID.String()))

		c.Next()
	}
}
