package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"repairdesk/models"
	"repairdesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const actorKey = "actor"

// IdentityResolver looks up the account behind a token subject.
type IdentityResolver interface {
	GetByID(ctx context.Context, id string) (*models.Identity, error)
}

// JWTAuthMiddleware validates the bearer token, resolves its subject and stores the
// resulting models.Actor in the context.
func JWTAuthMiddleware(users IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := utils.ExtractClaims(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		identity, err := users.GetByID(c.Request.Context(), claims.Subject)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				zap.L().Error("Identity lookup failed", zap.String("sub", claims.Subject), zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account not found"})
			return
		}
		// A token minted for one role cannot act as another.
		if claims.Role != "" && claims.Role != identity.Role {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token role mismatch"})
			return
		}

		c.Set(actorKey, models.Actor{ID: identity.ID, Name: identity.Name, Role: identity.Role})
		c.Next()
	}
}

// ActorFrom returns the caller stored by JWTAuthMiddleware.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}

// SetActor is used by tests and internal callers that authenticate another way.
func SetActor(c *gin.Context, actor models.Actor) {
	c.Set(actorKey, actor)
}
