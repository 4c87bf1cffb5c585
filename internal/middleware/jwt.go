package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/learnhub-backend/internal/response"
	"github.com/stemsi/learnhub-backend/internal/service"
)

const (
	// ContextKeyClaims is the Gin context key for JWT claims.
	ContextKeyClaims = "claims"
)

// RequireLearnerJWT validates a learner JWT from the Authorization header.
func RequireLearnerJWT(authService *service.AuthService) gin.HandlerFunc {
	return requireTokenType(authService, service.TokenTypeLearner, response.ErrLearnerAccessOnly)
}

// RequireAdminJWT validates an admin JWT from the Authorization header.
func RequireAdminJWT(authService *service.AuthService) gin.HandlerFunc {
	return requireTokenType(authService, service.TokenTypeAdmin, response.ErrAdminAccessOnly)
}

// RequireLearnerWSAuth validates a learner JWT from the query param ?token=...
// Used for WebSocket upgrade requests.
func RequireLearnerWSAuth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("token")
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims, err := authService.ValidateToken(tokenStr)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		if claims.TokenType != service.TokenTypeLearner {
			response.AbortFail(c, http.StatusForbidden, response.ErrLearnerAccessOnly)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

func requireTokenType(authService *service.AuthService, want service.TokenType, denied response.ErrCode) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := extractAndValidateClaims(c, authService)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		if claims.TokenType != want {
			response.AbortFail(c, http.StatusForbidden, denied)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetClaims retrieves the JWT claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

func extractAndValidateClaims(c *gin.Context, authService *service.AuthService) (*service.Claims, error) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return nil, fmt.Errorf("bearer token required")
	}

	return authService.ValidateToken(parts[1])
}
