package middleware

import (
	"net/http"
	"strings"

	"delegation-api/internal/auth"

	"github.com/gin-gonic/gin"
)

// Context keys set by JWTAuthMiddleware
const (
	StaffIDKey   = "staff_id"
	StaffNameKey = "staff_name"
)

// JWTAuthMiddleware validates JWT token in Authorization header
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		// Browsers cannot set headers on WebSocket upgrades
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is required",
			})
			return
		}

		claims, err := auth.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		c.Set(StaffIDKey, claims.StaffID)
		c.Set(StaffNameKey, claims.Name)
		c.Next()
	}
}

// StaffID returns the authenticated staff id, or 0 outside JWTAuthMiddleware.
func StaffID(c *gin.Context) uint {
	return c.GetUint(StaffIDKey)
}
