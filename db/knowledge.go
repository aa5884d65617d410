package db

import (
	"context"

	"finsight/api/models"
)

const knowledgeColumns = "id, organization_id, author_id, title, content, category, created_at"

func scanKnowledgeEntry(row interface{ Scan(...any) error }) (*models.KnowledgeEntry, error) {
	e := &models.KnowledgeEntry{}
	err := row.Scan(&e.ID, &e.OrganizationID, &e.AuthorID, &e.Title, &e.Content, &e.Category, &e.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return e, nil
}

func CreateKnowledgeEntry(ctx context.Context, orgID, authorID, title, content, category string) (*models.KnowledgeEntry, error) {
	query := `
		INSERT INTO knowledge_entries (organization_id, author_id, title, content, category)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + knowledgeColumns + `
	`
	return scanKnowledgeEntry(DB.QueryRowContext(ctx, query, orgID, authorID, title, content, category))
}

func ListKnowledgeEntries(ctx context.Context, orgID, category string) ([]models.KnowledgeEntry, error) {
	query := `
		SELECT ` + knowledgeColumns + `
		FROM knowledge_entries
		WHERE organization_id = $1 AND ($2 = '' OR category = $2)
		ORDER BY created_at DESC
	`
	rows, err := DB.QueryContext(ctx, query, orgID, category)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	entries := []models.KnowledgeEntry{}
	for rows.Next() {
		e, err := scanKnowledgeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func GetKnowledgeEntry(ctx context.Context, id, orgID string) (*models.KnowledgeEntry, error) {
	query := `
		SELECT ` + knowledgeColumns + `
		FROM knowledge_entries
		WHERE id = $1 AND organization_id = $2
	`
	return scanKnowledgeEntry(DB.QueryRowContext(ctx, query, id, orgID))
}

func DeleteKnowledgeEntry(ctx context.Context, id, orgID string) error {
	res, err := DB.ExecContext(ctx, `
		DELETE FROM knowledge_entries
		WHERE id = $1 AND organization_id = $2
	`, id, orgID)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
