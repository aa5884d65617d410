package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finsight/api/db"
	"finsight/api/models"
)

type KnowledgeRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
	Category string `json:"category"`
}

func HandleListKnowledge(c *gin.Context) {
	id, ok := requireOrg(c)
	if !ok {
		return
	}
	entries, err := db.ListKnowledgeEntries(c.Request.Context(), id.OrganizationID, c.Query("category"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusOK, entries)
}

func HandleCreateKnowledge(c *gin.Context) {
	id, ok := requireOrg(c)
	if !ok {
		return
	}
	var req KnowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "title and content are required")
		return
	}
	if req.Category == "" {
		req.Category = "general"
	}
	if !models.ValidKnowledgeCategory(req.Category) {
		respondError(c, http.StatusBadRequest, "unknown category")
		return
	}

	entry, err := db.CreateKnowledgeEntry(c.Request.Context(), id.OrganizationID, id.UserID, req.Title, req.Content, req.Category)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusCreated, entry)
}

// HandleDeleteKnowledge allows deletion by the entry's author or an org
// admin.
func HandleDeleteKnowledge(c *gin.Context) {
	id, ok := requireOrg(c)
	if !ok {
		return
	}
	entry, err := db.GetKnowledgeEntry(c.Request.Context(), c.Param("id"), id.OrganizationID)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	if entry.AuthorID != id.UserID && !id.IsAdmin() {
		respondError(c, http.StatusForbidden, "only the author or an admin can delete this entry")
		return
	}
	if err := db.DeleteKnowledgeEntry(c.Request.Context(), entry.ID, id.OrganizationID); err != nil {
		respondStoreError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "entry deleted")
}
