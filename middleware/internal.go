package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// InternalAPIKey guards service-to-service routes (the analysis callback).
// The external analyzer authenticates with a shared key, not a user token.
func InternalAPIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		supplied := c.GetHeader("X-API-Key")
		if key == "" || subtle.ConstantTimeCompare([]byte(supplied), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "unauthenticated",
			})
			return
		}
		c.Next()
	}
}
