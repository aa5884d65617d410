package db

import (
	"context"

	"github.com/lib/pq"

	"finsight/api/models"
)

const documentColumns = "id, organization_id, uploader_id, filename, storage_key, content_type, size_bytes, status, created_at, updated_at"

func scanDocument(row interface{ Scan(...any) error }) (*models.Document, error) {
	d := &models.Document{}
	err := row.Scan(&d.ID, &d.OrganizationID, &d.UploaderID, &d.Filename, &d.StorageKey, &d.ContentType, &d.SizeBytes, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return d, nil
}

func CreateDocument(ctx context.Context, orgID, uploaderID, filename, storageKey, contentType string, sizeBytes int64) (*models.Document, error) {
	query := `
		INSERT INTO documents (organization_id, uploader_id, filename, storage_key, content_type, size_bytes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + documentColumns + `
	`
	return scanDocument(DB.QueryRowContext(ctx, query, orgID, uploaderID, filename, storageKey, contentType, sizeBytes, models.DocumentPending))
}

// GetDocument is org-scoped; documents of other organizations read as missing.
func GetDocument(ctx context.Context, id, orgID string) (*models.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1 AND organization_id = $2
	`
	return scanDocument(DB.QueryRowContext(ctx, query, id, orgID))
}

func ListDocuments(ctx context.Context, orgID string) ([]models.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE organization_id = $1
		ORDER BY created_at DESC
	`
	rows, err := DB.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

// SetDocumentStatus transitions a document only when it is currently in one
// of the allowed source states, keeping the status machine honest under
// concurrent updates.
func SetDocumentStatus(ctx context.Context, id string, to models.DocumentStatus, from ...models.DocumentStatus) error {
	if len(from) == 0 {
		res, err := DB.ExecContext(ctx, `
			UPDATE documents
			SET status = $2, updated_at = now()
			WHERE id = $1
		`, id, to)
		if err != nil {
			return translate(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	}

	states := make([]string, len(from))
	for i, s := range from {
		states[i] = string(s)
	}
	res, err := DB.ExecContext(ctx, `
		UPDATE documents
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = ANY($3)
	`, id, to, pq.Array(states))
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func DeleteDocument(ctx context.Context, id, orgID string) (*models.Document, error) {
	query := `
		DELETE FROM documents
		WHERE id = $1 AND organization_id = $2
		RETURNING ` + documentColumns + `
	`
	return scanDocument(DB.QueryRowContext(ctx, query, id, orgID))
}
