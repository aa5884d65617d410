package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"finsight/api/ai"
	"finsight/api/logger"
	"finsight/api/models"
	"finsight/api/mongodb"
)

type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
}

// HandleChat appends the user message, calls the analysis service, and
// appends its reply. A missing session id opens a new session titled from
// the first message. The gateway never errors: on upstream failure the
// assistant reply is the canned fallback with confidence zero.
func HandleChat(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "message is required")
		return
	}

	ctx := c.Request.Context()
	sessionID := req.SessionID
	var title string
	if sessionID == "" {
		session, err := mongodb.CreateSession(ctx, id.UserID, id.OrganizationID, "", req.Message)
		if err != nil {
			respondStoreError(c, err)
			return
		}
		sessionID = session.SessionID
		title = session.Title
	}

	userMsg := &models.ChatMessage{Sender: models.SenderUser, Text: req.Message}
	if err := mongodb.AppendMessage(ctx, sessionID, id.UserID, userMsg); err != nil {
		respondStoreError(c, err)
		return
	}

	reply := AI.Chat(ctx, &ai.ChatRequest{
		Message:        req.Message,
		SessionID:      sessionID,
		UserID:         id.UserID,
		OrganizationID: id.OrganizationID,
	})

	assistantMsg := &models.ChatMessage{
		Sender:    models.SenderAssistant,
		Text:      reply.Response,
		Citations: reply.Citations,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := mongodb.AppendMessage(ctx, sessionID, id.UserID, assistantMsg); err != nil {
		logger.Get().Error("failed to persist assistant reply",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}

	data := gin.H{
		"session_id":         sessionID,
		"response":           reply.Response,
		"citations":          reply.Citations,
		"confidence":         reply.Confidence,
		"processing_time_ms": reply.ProcessingTimeMs,
	}
	if title != "" {
		data["session_title"] = title
	}
	respondData(c, http.StatusOK, data)
}

func HandleListSessions(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	sessions, err := mongodb.ListSessions(c.Request.Context(), id.UserID, page)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusOK, sessions)
}

func HandleGetSession(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	sessionID := c.Param("id")

	session, err := mongodb.GetSession(ctx, sessionID, id.UserID)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	messages, err := mongodb.GetMessages(ctx, sessionID, id.UserID)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"session": session, "messages": messages})
}

type RenameSessionRequest struct {
	Title string `json:"title" binding:"required"`
}

func HandleRenameSession(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req RenameSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "title is required")
		return
	}
	err := mongodb.RenameSession(c.Request.Context(), c.Param("id"), id.UserID, req.Title)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "session renamed")
}

func HandleDeleteSession(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	err := mongodb.DeleteSession(c.Request.Context(), c.Param("id"), id.UserID)
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			respondError(c, http.StatusNotFound, "not found")
			return
		}
		respondStoreError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "session deleted")
}
