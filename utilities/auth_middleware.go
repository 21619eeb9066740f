package utilities

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxRole     = "role"
)

// AuthMiddleware ensures each request carries a valid bearer access token.
func AuthMiddleware(tm *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if authHeader == "" || !ok || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Autenticación requerida", "error": "unauthorized"})
			return
		}

		claims, err := tm.ValidateToken(tokenStr, false)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Sesión inválida o expirada", "error": "unauthorized"})
			return
		}

		// Store claims in context for later use
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUsername, claims.Username)
		c.Set(CtxRole, claims.Role)

		c.Next()
	}
}

// RequireRole rejects authenticated callers whose role is not listed.
// It must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(roles, c.GetString(CtxRole)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Permisos insuficientes", "error": "forbidden"})
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated account id, or 0.
func CurrentUserID(c *gin.Context) uint {
	return c.GetUint(CtxUserID)
}
