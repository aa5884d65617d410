package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"finsight/api/db"
	"finsight/api/logger"
	"finsight/api/models"
	"finsight/api/mongodb"
	"finsight/api/worker"
)

const maxUploadBytes = 25 << 20 // 25 MiB

// HandleUploadDocument stores the file first, then the row; if the insert
// fails the file is removed best-effort so no orphan bytes linger.
func HandleUploadDocument(c *gin.Context) {
	id, ok := requireOrg(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "file is required")
		return
	}
	if header.Size > maxUploadBytes {
		respondError(c, http.StatusBadRequest, "file exceeds the 25MB limit")
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "unreadable upload")
		return
	}
	defer file.Close()

	key, err := Files.Save(file, header.Filename)
	if err != nil {
		logger.Get().Error("failed to store upload", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	contentType := header.Header.Get("Content-Type")
	doc, err := db.CreateDocument(c.Request.Context(), id.OrganizationID, id.UserID, header.Filename, key, contentType, header.Size)
	if err != nil {
		Files.Remove(key)
		respondStoreError(c, err)
		return
	}

	logger.Get().Info("document uploaded",
		zap.String("document_id", doc.ID),
		zap.String("organization_id", id.OrganizationID))
	respondData(c, http.StatusCreated, doc)
}

func HandleListDocuments(c *gin.Context) {
	id, ok := requireOrg(c)
	if !ok {
		return
	}
	docs, err := db.ListDocuments(c.Request.Context(), id.OrganizationID)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusOK, docs)
}

func HandleGetDocument(c *gin.Context) {
	id, ok := requireOrg(c)
	if !ok {
		return
	}
	doc, err := db.GetDocument(c.Request.Context(), c.Param("id"), id.OrganizationID)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusOK, doc)
}

// HandleTriggerAnalysis queues the document for the external analyzer and
// returns 202 immediately. A terminal document must be re-triggered
// explicitly, which resets it to PENDING first.
func HandleTriggerAnalysis(c *gin.Context) {
	id, ok := requireOrg(c)
	if !ok {
		return
	}
	doc, err := db.GetDocument(c.Request.Context(), c.Param("id"), id.OrganizationID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	if doc.Status == models.DocumentProcessing {
		respondError(c, http.StatusConflict, "analysis already in progress")
		return
	}
	if doc.Status.Terminal() {
		if err := db.SetDocumentStatus(c.Request.Context(), doc.ID, models.DocumentPending,
			models.DocumentAnalyzed, models.DocumentError); err != nil {
			respondStoreError(c, err)
			return
		}
	}

	task := &models.AnalysisTask{
		DocumentID:     doc.ID,
		OrganizationID: doc.OrganizationID,
		RequestedBy:    id.UserID,
		StorageKey:     doc.StorageKey,
		ContentType:    doc.ContentType,
	}
	if err := Produce(task); err != nil {
		logger.Get().Error("failed to queue analysis task",
			zap.String("document_id", doc.ID),
			zap.Error(err))
		respondError(c, http.StatusServiceUnavailable, "analysis service unavailable")
		return
	}

	if err := db.SetDocumentStatus(c.Request.Context(), doc.ID, models.DocumentProcessing,
		models.DocumentPending); err != nil && !errors.Is(err, db.ErrNotFound) {
		respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusAccepted, gin.H{"document_id": doc.ID, "status": models.DocumentProcessing.Public()})
}

// HandleAnalysisStatus reports the document's analysis state; a completed
// analysis includes its result record, an errored one carries no payload.
func HandleAnalysisStatus(c *gin.Context) {
	id, ok := requireOrg(c)
	if !ok {
		return
	}
	doc, err := db.GetDocument(c.Request.Context(), c.Param("id"), id.OrganizationID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	data := gin.H{"document_id": doc.ID, "status": doc.Status.Public()}
	if doc.Status == models.DocumentAnalyzed {
		result, err := mongodb.GetAnalysisResult(c.Request.Context(), doc.ID)
		if err != nil && !errors.Is(err, mongodb.ErrNotFound) {
			respondStoreError(c, err)
			return
		}
		if result != nil {
			data["result"] = result
		}
	}
	respondData(c, http.StatusOK, data)
}

// HandleAnalysisCallback is the internal route the external analyzer posts
// results to; it shares the apply path with the Kafka consumer.
func HandleAnalysisCallback(c *gin.Context) {
	var outcome models.AnalysisOutcome
	if err := c.ShouldBindJSON(&outcome); err != nil || outcome.DocumentID == "" {
		respondError(c, http.StatusBadRequest, "document_id is required")
		return
	}
	if err := worker.ApplyOutcome(c.Request.Context(), &outcome, Events); err != nil {
		respondStoreError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "result recorded")
}

// HandleDownloadDocument re-checks org ownership, then streams the bytes.
func HandleDownloadDocument(c *gin.Context) {
	id, ok := requireOrg(c)
	if !ok {
		return
	}
	doc, err := db.GetDocument(c.Request.Context(), c.Param("id"), id.OrganizationID)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	path, err := Files.Path(doc.StorageKey)
	if err != nil {
		respondError(c, http.StatusNotFound, "not found")
		return
	}
	c.FileAttachment(path, doc.Filename)
}

func HandleDeleteDocument(c *gin.Context) {
	id, ok := requireOrg(c)
	if !ok {
		return
	}
	doc, err := db.DeleteDocument(c.Request.Context(), c.Param("id"), id.OrganizationID)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	Files.Remove(doc.StorageKey)
	if err := mongodb.DeleteAnalysisResult(c.Request.Context(), doc.ID); err != nil {
		logger.Get().Warn("failed to delete analysis result",
			zap.String("document_id", doc.ID),
			zap.Error(err))
	}
	respondMessage(c, http.StatusOK, "document deleted")
}

// HandleDocumentEvents streams status updates for one document over SSE.
func HandleDocumentEvents(c *gin.Context) {
	id, ok := requireOrg(c)
	if !ok {
		return
	}
	flusher, ok2 := c.Writer.(http.Flusher)
	if !ok2 {
		respondError(c, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Subscribe before reading the snapshot so a status change landing
	// between the read and the subscription is not lost.
	events, unsubscribe := Events.Subscribe(c.Param("id"))
	defer unsubscribe()

	doc, err := db.GetDocument(c.Request.Context(), c.Param("id"), id.OrganizationID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	// Send the current state first so late subscribers see something
	// immediately.
	c.SSEvent("status", gin.H{"document_id": doc.ID, "status": doc.Status.Public()})
	flusher.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, open := <-events:
			if !open {
				return false
			}
			c.SSEvent("status", event)
			return !event.Final
		case <-c.Request.Context().Done():
			return false
		}
	})
}
