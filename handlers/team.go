package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"finsight/api/db"
	"finsight/api/logger"
	"finsight/api/models"
)

func HandleListTeam(c *gin.Context) {
	id, ok := requireOrg(c)
	if !ok {
		return
	}
	members, err := db.ListTeamMembers(c.Request.Context(), id.OrganizationID)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusOK, members)
}

type AddMemberRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// HandleAddMember creates the invited account with a random temporary
// password and its membership in one transaction.
func HandleAddMember(c *gin.Context) {
	id, ok := requireAdmin(c)
	if !ok {
		return
	}
	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "name, email and role are required")
		return
	}
	role := models.Role(strings.ToUpper(req.Role))
	if !role.Valid() {
		respondError(c, http.StatusBadRequest, "unknown role")
		return
	}

	tempPassword, err := randomSecret()
	if err != nil {
		logger.Get().Error("failed to generate temp password", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Get().Error("failed to hash temp password", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := db.AddTeamMember(c.Request.Context(), id.OrganizationID, req.Name, email, string(hash), role)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			respondError(c, http.StatusConflict, "email already registered")
			return
		}
		respondStoreError(c, err)
		return
	}

	logger.Get().Info("team member added",
		zap.String("organization_id", id.OrganizationID),
		zap.String("user_id", user.ID),
		zap.String("role", string(role)))
	respondData(c, http.StatusCreated, gin.H{"user": user, "temporary_password": tempPassword})
}

type UpdateMemberRequest struct {
	Role     string `json:"role"`
	IsActive *bool  `json:"is_active"`
}

func HandleUpdateMember(c *gin.Context) {
	id, ok := requireAdmin(c)
	if !ok {
		return
	}
	targetID := c.Param("userId")
	if targetID == id.UserID {
		respondError(c, http.StatusBadRequest, "cannot modify your own membership")
		return
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role == "" && req.IsActive == nil {
		respondError(c, http.StatusBadRequest, "role or is_active is required")
		return
	}

	ctx := c.Request.Context()
	if req.Role != "" {
		role := models.Role(strings.ToUpper(req.Role))
		if !role.Valid() {
			respondError(c, http.StatusBadRequest, "unknown role")
			return
		}
		if err := db.UpdateTeamMemberRole(ctx, id.OrganizationID, targetID, role); err != nil {
			respondStoreError(c, err)
			return
		}
	}
	if req.IsActive != nil {
		if err := db.SetMemberActivation(ctx, id.OrganizationID, targetID, *req.IsActive); err != nil {
			respondStoreError(c, err)
			return
		}
	}
	respondMessage(c, http.StatusOK, "member updated")
}

func HandleRemoveMember(c *gin.Context) {
	id, ok := requireAdmin(c)
	if !ok {
		return
	}
	targetID := c.Param("userId")
	if targetID == id.UserID {
		respondError(c, http.StatusBadRequest, "cannot remove yourself")
		return
	}
	if err := db.RemoveTeamMember(c.Request.Context(), id.OrganizationID, targetID); err != nil {
		respondStoreError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "member removed")
}

func randomSecret() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
