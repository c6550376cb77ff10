package auth

import (
	"net/http"
	"slices"
	"strings"

	"github.com/KevinKickass/OpenLaundryCore/internal/types"
	"github.com/gin-gonic/gin"
)

const (
	ContextPermissions = "permissions"
	ContextUsername    = "username"
	ContextRole        = "role"
)

// AuthMiddleware validates bearer tokens and stores the caller's permissions.
func (a *AuthService) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				types.NewErrorResponse(types.CodeUnauthorized, "missing authorization header", nil))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				types.NewErrorResponse(types.CodeUnauthorized, "invalid authorization header format", nil))
			return
		}

		claims, permissions, err := a.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				types.NewErrorResponse(types.CodeUnauthorized, "invalid or expired token", nil))
			return
		}

		c.Set(ContextPermissions, permissions)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequirePermission checks if user has required permission
func RequirePermission(required Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		perms, exists := c.Get(ContextPermissions)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden,
				types.NewErrorResponse(types.CodeForbidden, "no permissions found", nil))
			return
		}

		permissions, _ := perms.([]Permission)
		if !slices.Contains(permissions, required) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				types.NewErrorResponse(types.CodeForbidden, "insufficient permissions", gin.H{"required": string(required)}))
			return
		}

		c.Next()
	}
}
