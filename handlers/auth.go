package handlers

import (
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

type SignupRequest struct {
	Name             string `json:"name" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required"`
	Role             string `json:"role"`
	OrganizationName string `json:"organization_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// HandleSignup creates an account. When an organization name is supplied the
// account, the organization and an ADMIN membership are created in one
// transaction; a failure at any step persists nothing.
func HandleSignup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "name, email and password are required")
		return
	}
	if len(req.Password) < 8 {
		respondError(c, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Get().Error("failed to hash password", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	var (
		user *models.User
		org  *models.Organization
	)
	// The role supplied at signup is recorded as a descriptive label; the
	// organization founder's membership is always ADMIN.
	if req.OrganizationName != "" {
		user, org, err = db.CreateUserWithOrganization(c.Request.Context(), req.Name, email, string(hash), req.Role, req.OrganizationName)
	} else {
		user, err = db.CreateUser(c.Request.Context(), req.Name, email, string(hash), req.Role)
	}
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			respondError(c, http.StatusConflict, "email already registered")
			return
		}
		respondStoreError(c, err)
		return
	}

	orgID := ""
	role := models.Role("")
	if org != nil {
		orgID = org.ID
		role = models.RoleAdmin
	}
	token, err := Tokens.Issue(user, orgID, role)
	if err != nil {
		logger.Get().Error("failed to issue token", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	logger.Get().Info("account created",
		zap.String("user_id", user.ID),
		zap.Bool("with_organization", org != nil))
	data := gin.H{"token": token, "user": user}
	if org != nil {
		data["organization"] = org
	}
	respondData(c, http.StatusCreated, data)
}

func HandleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "email and password are required")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := db.GetUserByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondStoreError(c, err)
		return
	}
	if !user.IsActive {
		respondError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		logger.Get().Info("login failed", zap.String("email", email))
		respondError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	orgID := ""
	role := models.Role("")
	if m, err := db.GetMembership(c.Request.Context(), user.ID); err == nil {
		orgID = m.OrganizationID
		role = m.Role
	} else if !errors.Is(err, db.ErrNotFound) {
		respondStoreError(c, err)
		return
	}

	token, err := Tokens.Issue(user, orgID, role)
	if err != nil {
		logger.Get().Error("failed to issue token", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	if err := db.TouchLastSeen(c.Request.Context(), user.ID); err != nil {
		logger.Get().Warn("failed to update last seen",
			zap.String("user_id", user.ID),
			zap.Error(err))
	}

	respondData(c, http.StatusOK, gin.H{"token": token, "user": user})
}

// HandleLogout bumps the account's token version, killing every outstanding
// token at once.
func HandleLogout(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	if err := db.BumpTokenVersion(c.Request.Context(), id.UserID); err != nil {
		respondStoreError(c, err)
		return
	}
	logger.Get().Info("user logged out", zap.String("user_id", id.UserID))
	respondMessage(c, http.StatusOK, "logged out")
}

func HandleMe(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	respondData(c, http.StatusOK, id)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// HandleChangePassword also bumps the token version, so the caller must log
// in again with the new password.
func HandleChangePassword(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "current and new password are required")
		return
	}
	if len(req.NewPassword) < 8 {
		respondError(c, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	user, err := db.GetUserByID(c.Request.Context(), id.UserID)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		respondError(c, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Get().Error("failed to hash password", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if err := db.UpdatePassword(c.Request.Context(), id.UserID, string(hash)); err != nil {
		respondStoreError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "password changed")
}
