package models

import "time"

// KnowledgeEntry is an org-scoped knowledge-base article.
type KnowledgeEntry struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	AuthorID       string    `json:"author_id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Category       string    `json:"category"`
	CreatedAt      time.Time `json:"created_at"`
}

var knowledgeCategories = map[string]bool{
	"general":    true,
	"investing":  true,
	"tax":        true,
	"compliance": true,
	"process":    true,
}

func ValidKnowledgeCategory(category string) bool {
	return knowledgeCategories[category]
}
