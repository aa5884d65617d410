//go:build integration

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/api/db"
	"finsight/api/models"
	"finsight/api/sse"
	"finsight/api/storage"
	"finsight/api/worker"
)

func setupDocumentsRouter(t *testing.T) (*gin.Engine, *models.Identity) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, db.InitDB(dsn))

	email := uuid.NewString() + "@integration.test"
	user, org, err := db.CreateUserWithOrganization(context.Background(), "Doc Tester", email, "x", "", "Doc Org "+uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() {
		db.DB.Exec("DELETE FROM organizations WHERE id = $1", org.ID)
		db.DB.Exec("DELETE FROM users WHERE id = $1", user.ID)
	})

	Files, err = storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	Events = sse.NewHub()

	principal := &models.Identity{UserID: user.ID, OrganizationID: org.ID, Role: models.RoleAdmin}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	docs := router.Group("/api/documents", func(c *gin.Context) {
		c.Set("user", principal)
		c.Next()
	})
	docs.POST("", HandleUploadDocument)
	docs.POST("/:id/analyze", HandleTriggerAnalysis)
	docs.GET("/:id/analysis", HandleAnalysisStatus)
	docs.GET("/:id/events", HandleDocumentEvents)
	return router, principal
}

func TestDocumentAnalysisLifecycle(t *testing.T) {
	router, _ := setupDocumentsRouter(t)

	// Upload: a fresh document starts PENDING.
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "statement.pdf")
	require.NoError(t, err)
	fw.Write([]byte("statement body"))
	require.NoError(t, mw.Close())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Data models.Document `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, models.DocumentPending, created.Data.Status)
	docID := created.Data.ID

	// A queue failure returns 503 and leaves the document PENDING.
	Produce = func(*models.AnalysisTask) error { return errors.New("broker down") }
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/documents/"+docID+"/analyze", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// A successful trigger moves it to PROCESSING.
	Produce = func(*models.AnalysisTask) error { return nil }
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/documents/"+docID+"/analyze", nil))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	// An upstream failure lands as ERROR with no analysis record attached.
	outcome := &models.AnalysisOutcome{DocumentID: docID, Success: false, Error: "unreadable scan"}
	require.NoError(t, worker.ApplyOutcome(context.Background(), outcome, Events))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents/"+docID+"/analysis", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ERROR", status.Data["status"])
	_, hasResult := status.Data["result"]
	assert.False(t, hasResult, "a failed analysis carries no result payload")
}

// The events route subscribes before it reads the snapshot, so an update
// published as soon as the stream registers is delivered alongside the
// initial state.
func TestDocumentEventsStreamDeliversSnapshotAndFinal(t *testing.T) {
	router, principal := setupDocumentsRouter(t)

	doc, err := db.CreateDocument(context.Background(), principal.OrganizationID, principal.UserID,
		"report.pdf", "report-key.pdf", "application/pdf", 4)
	require.NoError(t, err)

	go func() {
		for Events.Subscribers(doc.ID) == 0 {
			time.Sleep(5 * time.Millisecond)
		}
		Events.Publish(sse.StatusEvent{DocumentID: doc.ID, Status: "COMPLETED", Final: true})
	}()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents/"+doc.ID+"/events", nil))

	body := rec.Body.String()
	assert.Contains(t, body, "PENDING", "initial snapshot event")
	assert.Contains(t, body, "COMPLETED", "published final event")
}
