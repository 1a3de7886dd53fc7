package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hustlr/utils"
)

// Context keys set by the auth middleware.
const (
	CtxActorID   = "actorID"
	CtxActorRole = "actorRole"
)

// JWTAuthMiddleware validates the bearer token and stores the identity
// assertion (actor id + role) on the request context.
func JWTAuthMiddleware(tokens *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		actorID, role, err := tokens.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		c.Set(CtxActorID, actorID)
		c.Set(CtxActorRole, role)
		c.Next()
	}
}

// Actor reads the identity assertion set by JWTAuthMiddleware.
func Actor(c *gin.Context) (string, string) {
	return c.GetString(CtxActorID), c.GetString(CtxActorRole)
}
