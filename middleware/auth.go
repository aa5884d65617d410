package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"finsight/api/auth"
	"finsight/api/db"
	"finsight/api/logger"
	"finsight/api/models"
)

// IdentityKey is where Auth stores the enriched principal on the request
// context.
const IdentityKey = "user"

// AccountLookup fetches the account's live state for the per-request
// re-check. Injected so tests run without a database.
type AccountLookup func(ctx context.Context, userID string) (*db.AccountState, error)

// Auth gates requests on a bearer token. The token's signature and expiry
// are checked statelessly, then the account's live active flag and token
// version are re-read: an inactive account or a stale version fails even
// when the signature is fine. That double-check is what makes logout and
// deactivation take effect instantly without a server-side token store.
func Auth(tokens *auth.TokenService, lookup AccountLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := auth.ExtractBearer(c.GetHeader("Authorization"))
		if err != nil {
			abort(c, "unauthenticated")
			return
		}
		authenticate(c, tokens, lookup, raw)
	}
}

// AuthFromQuery is the SSE variant: EventSource cannot set headers, so the
// token rides a query parameter.
func AuthFromQuery(tokens *auth.TokenService, lookup AccountLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("token")
		if raw == "" {
			abort(c, "unauthenticated")
			return
		}
		authenticate(c, tokens, lookup, raw)
	}
}

func authenticate(c *gin.Context, tokens *auth.TokenService, lookup AccountLookup, raw string) {
	claims, err := tokens.Verify(raw)
	if err != nil {
		abort(c, "invalid token")
		return
	}

	state, err := lookup(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			abort(c, "token no longer valid")
			return
		}
		logger.Get().Error("account state lookup failed",
			zap.String("user_id", claims.UserID),
			zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "internal error",
		})
		return
	}

	if !state.IsActive || state.TokenVersion != claims.TokenVersion {
		abort(c, "token no longer valid")
		return
	}

	c.Set(IdentityKey, &models.Identity{
		UserID:         claims.UserID,
		Email:          claims.Email,
		Name:           claims.Name,
		OrganizationID: claims.OrganizationID,
		Role:           claims.Role,
	})
	c.Next()
}

func abort(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   message,
	})
}

// CurrentIdentity returns the principal set by Auth.
func CurrentIdentity(c *gin.Context) (*models.Identity, bool) {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*models.Identity)
	return identity, ok
}
