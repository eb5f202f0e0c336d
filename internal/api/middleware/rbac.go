package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/myhometown/missionary-import/internal/api/response"
)

// RequireRole returns middleware that enforces role-based access control.
// It must run after AuthMiddleware.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get("role")
		if !ok {
			response.Forbidden(c, "user role not found in context")
			c.Abort()
			return
		}

		userRole, ok := role.(string)
		if !ok {
			response.Forbidden(c, "invalid role format")
			c.Abort()
			return
		}

		for _, allowed := range allowedRoles {
			if userRole == allowed {
				c.Next()
				return
			}
		}

		response.Forbidden(c, "insufficient permissions")
		c.Abort()
	}
}
