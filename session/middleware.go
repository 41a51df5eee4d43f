package session

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careerverse/backend/auth"
	"github.com/careerverse/backend/models"
)

// ContextKey is the gin context key holding the *Session
const ContextKey = "session"

// IdentityFromClaims maps token claims to an Identity
func IdentityFromClaims(claims *auth.Claims) Identity {
	return Identity{UserID: claims.UserID, Email: claims.Email, Name: claims.Name}
}

// RequireRole resolves the caller's session and rejects roles outside
// roles. With no roles given, any resolved role is accepted. Must run
// after auth.AuthMiddleware.
func RequireRole(m *Manager, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := auth.GetAuthClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error: "Authentication required",
				Code:  http.StatusUnauthorized,
			})
			return
		}

		s, err := m.Get(c.Request.Context(), IdentityFromClaims(claims))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Error: "Failed to resolve session",
				Code:  http.StatusServiceUnavailable,
			})
			return
		}

		if !allowed(s.Role, roles) {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
				Error:   "Access Denied",
				Code:    http.StatusForbidden,
				Details: "You do not have permission to view this page.",
			})
			return
		}

		c.Set(ContextKey, s)
		c.Next()
	}
}

func allowed(role models.Role, roles []models.Role) bool {
	if role == models.RoleNone {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// FromContext returns the session set by RequireRole
func FromContext(c *gin.Context) *Session {
	v, ok := c.Get(ContextKey)
	if !ok {
		return nil
	}
	s, _ := v.(*Session)
	return s
}
