package middleware

import (
	"net/http"

	"user_manager/internal/model"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware creates a middleware to check for specific user roles.
// It assumes RequireAuth already ran and attached the role.
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(AuthRoleKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		userRole, ok := roleVal.(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		for _, allowedRole := range allowedRoles {
			if userRole == allowedRole {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	}
}

// AdminOnly permits admins only
func AdminOnly() gin.HandlerFunc {
	return RoleMiddleware(model.RoleAdmin)
}

// SelfOrAdmin permits the owner of the targeted record or any admin. The
// target is the :id path parameter.
func SelfOrAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, _ := c.Get(AuthRoleKey)
		if role, ok := roleVal.(string); ok && role == model.RoleAdmin {
			c.Next()
			return
		}

		userVal, _ := c.Get(AuthUserKey)
		if userID, ok := userVal.(string); ok && userID != "" && userID == c.Param("id") {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	}
}
