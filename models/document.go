package models

import "time"

// DocumentStatus is the stored analysis state of a document.
type DocumentStatus string

const (
	DocumentPending    DocumentStatus = "PENDING"
	DocumentProcessing DocumentStatus = "PROCESSING"
	DocumentAnalyzed   DocumentStatus = "ANALYZED"
	DocumentError      DocumentStatus = "ERROR"
)

// Public maps the stored status to the API vocabulary, where a finished
// analysis reads COMPLETED.
func (s DocumentStatus) Public() string {
	if s == DocumentAnalyzed {
		return "COMPLETED"
	}
	return string(s)
}

// Terminal reports whether no further transition happens without an explicit
// re-trigger.
func (s DocumentStatus) Terminal() bool {
	return s == DocumentAnalyzed || s == DocumentError
}

type Document struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id"`
	UploaderID     string         `json:"uploader_id"`
	Filename       string         `json:"filename"`
	StorageKey     string         `json:"-"`
	ContentType    string         `json:"content_type"`
	SizeBytes      int64          `json:"size_bytes"`
	Status         DocumentStatus `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// AnalysisResult is the document-analysis record kept in Mongo, keyed by
// document id.
type AnalysisResult struct {
	DocumentID       string   `json:"document_id" bson:"document_id"`
	Summary          string   `json:"summary" bson:"summary"`
	Insights         []string `json:"insights,omitempty" bson:"insights,omitempty"`
	Confidence       float64  `json:"confidence" bson:"confidence"`
	ProcessingTimeMs int64    `json:"processing_time_ms" bson:"processing_time_ms"`
	CompletedAt      int64    `json:"completed_at" bson:"completed_at"`
}

// AnalysisTask is the payload produced to the analysis request topic.
type AnalysisTask struct {
	DocumentID     string `json:"document_id"`
	OrganizationID string `json:"organization_id"`
	RequestedBy    string `json:"requested_by"`
	StorageKey     string `json:"storage_key"`
	ContentType    string `json:"content_type"`
}

// AnalysisOutcome is the payload consumed from the analysis result topic.
type AnalysisOutcome struct {
	DocumentID       string   `json:"document_id"`
	Success          bool     `json:"success"`
	Summary          string   `json:"summary,omitempty"`
	Insights         []string `json:"insights,omitempty"`
	Confidence       float64  `json:"confidence,omitempty"`
	ProcessingTimeMs int64    `json:"processing_time_ms,omitempty"`
	Error            string   `json:"error,omitempty"`
}
