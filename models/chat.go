package models

import (
	"strings"
	"unicode/utf8"
)

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"

	// Auto-derived session titles are cut at this many runes.
	titleMaxLen = 48
)

// ChatSession lives in Mongo, one record per conversation. Messages are held
// separately as an append-only log keyed by session id.
type ChatSession struct {
	SessionID      string `json:"session_id" bson:"session_id"`
	OwnerID        string `json:"owner_id" bson:"owner_id"`
	OrganizationID string `json:"organization_id,omitempty" bson:"organization_id,omitempty"`
	Title          string `json:"title" bson:"title"`
	CreatedAt      int64  `json:"created_at" bson:"created_at"`
	UpdatedAt      int64  `json:"updated_at" bson:"updated_at"`
}

// SessionSummary is a list row: the session plus a preview of its last message.
type SessionSummary struct {
	ChatSession `bson:",inline"`
	LastMessage string `json:"last_message,omitempty" bson:"last_message,omitempty"`
}

type ChatMessage struct {
	SessionID string   `json:"session_id" bson:"session_id"`
	OwnerID   string   `json:"owner_id" bson:"owner_id"`
	Sender    string   `json:"sender" bson:"sender"`
	Text      string   `json:"text" bson:"text"`
	Citations []string `json:"citations,omitempty" bson:"citations,omitempty"`
	Timestamp int64    `json:"timestamp" bson:"timestamp"`
}

// DeriveTitle builds a session title from the first user message: collapsed
// whitespace, truncated with an ellipsis marker.
func DeriveTitle(firstMessage string) string {
	title := strings.Join(strings.Fields(firstMessage), " ")
	if title == "" {
		return "New Conversation"
	}
	if utf8.RuneCountInString(title) <= titleMaxLen {
		return title
	}
	runes := []rune(title)
	return strings.TrimSpace(string(runes[:titleMaxLen])) + "..."
}
