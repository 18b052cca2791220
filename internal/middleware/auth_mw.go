package middleware

import (
	"net/http"

	"user_manager/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	AuthUserKey = "authUserID"
	AuthRoleKey = "authRole"
)

// RequireAuth creates the authentication gate. It reads the session token
// from the HTTP-only cookie, validates it and attaches {id, role} to the
// request context. It must run before any authorization gate.
func RequireAuth(jwtUtil *utils.JWTUtil, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(cookieName)
		if err != nil || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		claims, err := jwtUtil.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(AuthUserKey, claims.UserID)
		c.Set(AuthRoleKey, claims.Role)

		c.Next()
	}
}
