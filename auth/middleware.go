package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/careerverse/backend/models"
)

// Gin context keys set by the middlewares
const (
	ClaimsKey = "auth_claims"
	TokenKey  = "auth_token"
)

// AuthMiddleware rejects requests without a valid bearer token
func AuthMiddleware(jwtService *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, "Authorization header required")
			return
		}
		if !authenticate(c, jwtService, token) {
			unauthorized(c, "Invalid or expired token")
			return
		}
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the caller's claims when the token is
// valid. Anonymous and badly authenticated requests pass through unchanged.
func OptionalAuthMiddleware(jwtService *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
			authenticate(c, jwtService, token)
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, jwtService *JWTService, token string) bool {
	claims, err := jwtService.ValidateToken(token)
	if err != nil {
		return false
	}
	c.Set(ClaimsKey, claims)
	c.Set(TokenKey, token)
	return true
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Error: message,
		Code:  http.StatusUnauthorized,
	})
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", false
	}
	return token, true
}

// GetAuthClaims returns the claims of an authenticated request, or nil
func GetAuthClaims(c *gin.Context) *Claims {
	claims, _ := c.Get(ClaimsKey)
	typed, _ := claims.(*Claims)
	return typed
}

// GetToken returns the raw bearer token the claims were read from
func GetToken(c *gin.Context) string {
	return c.GetString(TokenKey)
}
