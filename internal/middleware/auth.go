package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"groupchat/internal/auth"
	"groupchat/internal/authz"
	"groupchat/internal/repository"
)

// Context keys for the claims AuthMiddleware stores per request.
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUsername = "username"
	ContextKeyClaims   = "claims"
)

// AuthMiddleware validates the bearer token and stores its claims in
// the request context. A missing or malformed Authorization header and
// an invalid token both abort with 401; the handler never runs.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing Token Header",
			})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing Token Header",
			})
			return
		}

		claims, err := auth.ParseToken(parts[1], secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyUsername, claims.Username)
		c.Set(ContextKeyClaims, claims)

		c.Next()
	}
}

// RequireRoles gates a route on the caller's role and active flag.
//
// It runs after AuthMiddleware and re-reads the user row: role and
// active enforcement always act on fresh DB state, never on the
// login-time snapshot in the token. The order is fixed — role first
// (403), active second (401) — and membership/ownership checks further
// down the chain still compare against the token's embedded id.
func RequireRoles(userRepo repository.UserRepository, logger *zap.Logger, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)

		user, err := userRepo.GetByID(c.Request.Context(), userID)
		if err != nil {
			logger.Error("failed to load user for role check", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "authorization check failed",
			})
			return
		}
		if user == nil {
			// The token outlived its account.
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "User not found",
			})
			return
		}

		if !authz.RoleAllowed(user, roles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "You do not have the required role",
			})
			return
		}

		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "User is disabled",
			})
			return
		}

		c.Next()
	}
}

// GetUserID returns the caller's id from the token claims, or
// uuid.Nil if the middleware never ran. Nil fails any DB lookup, so a
// misconfigured route degrades to not-found rather than leaking data.
func GetUserID(c *gin.Context) uuid.UUID {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return uuid.Nil
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

// GetClaims returns the full claims payload, or nil.
func GetClaims(c *gin.Context) *auth.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}
