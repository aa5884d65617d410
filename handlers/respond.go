package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"finsight/api/ai"
	"finsight/api/auth"
	"finsight/api/db"
	"finsight/api/logger"
	"finsight/api/models"
	"finsight/api/mongodb"
	"finsight/api/news"
	"finsight/api/sse"
	"finsight/api/storage"
)

// Shared handler dependencies, wired once in main.
var (
	Tokens  *auth.TokenService
	AI      *ai.Gateway
	News    *news.Service
	Files   *storage.FileStore
	Events  *sse.Hub
	Produce func(*models.AnalysisTask) error
)

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": true, "message": message})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// respondStoreError maps data-layer errors to the envelope without leaking
// internal detail. Unexpected errors are logged server-side and surface as a
// bare 500.
func respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound), errors.Is(err, mongodb.ErrNotFound):
		respondError(c, http.StatusNotFound, "not found")
	case errors.Is(err, db.ErrDuplicate):
		respondError(c, http.StatusConflict, "already exists")
	default:
		logger.Get().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}

// identity fetches the authenticated principal; the auth middleware
// guarantees it exists on protected routes.
func identity(c *gin.Context) (*models.Identity, bool) {
	v, exists := c.Get("user")
	if !exists {
		respondError(c, http.StatusUnauthorized, "unauthenticated")
		return nil, false
	}
	id, ok := v.(*models.Identity)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthenticated")
		return nil, false
	}
	return id, true
}

// requireOrg rejects principals without an organization context.
func requireOrg(c *gin.Context) (*models.Identity, bool) {
	id, ok := identity(c)
	if !ok {
		return nil, false
	}
	if id.OrganizationID == "" {
		respondError(c, http.StatusForbidden, "organization membership required")
		return nil, false
	}
	return id, true
}

// requireAdmin rejects non-admin principals.
func requireAdmin(c *gin.Context) (*models.Identity, bool) {
	id, ok := requireOrg(c)
	if !ok {
		return nil, false
	}
	if !id.IsAdmin() {
		respondError(c, http.StatusForbidden, "admin role required")
		return nil, false
	}
	return id, true
}
