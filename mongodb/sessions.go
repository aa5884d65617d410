package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"finsight/api/models"
)

const sessionPageSize = 20

// CreateSession inserts a new chat session. When title is empty it is derived
// from the first user message.
func CreateSession(ctx context.Context, ownerID, orgID, title, firstMessage string) (*models.ChatSession, error) {
	if title == "" {
		title = models.DeriveTitle(firstMessage)
	}
	now := time.Now().Unix()
	session := &models.ChatSession{
		SessionID:      uuid.NewString(),
		OwnerID:        ownerID,
		OrganizationID: orgID,
		Title:          title,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := collection(SessionCollection).InsertOne(ctx, session); err != nil {
		return nil, fmt.Errorf("error creating session: %w", err)
	}
	return session, nil
}

// GetSession loads a session by id, filtered by owner. A foreign session is
// indistinguishable from a missing one.
func GetSession(ctx context.Context, sessionID, ownerID string) (*models.ChatSession, error) {
	filter := bson.M{"session_id": sessionID, "owner_id": ownerID}
	var session models.ChatSession
	if err := collection(SessionCollection).FindOne(ctx, filter).Decode(&session); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching session: %w", err)
	}
	return &session, nil
}

// ListSessions returns one page of the owner's sessions, most recently
// updated first, each with a preview of its last message.
func ListSessions(ctx context.Context, ownerID string, page int) ([]models.SessionSummary, error) {
	if page < 1 {
		page = 1
	}
	filter := bson.M{"owner_id": ownerID}
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(int64((page - 1) * sessionPageSize)).
		SetLimit(sessionPageSize)

	cursor, err := collection(SessionCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing sessions: %w", err)
	}
	defer cursor.Close(ctx)

	summaries := []models.SessionSummary{}
	for cursor.Next(ctx) {
		var session models.ChatSession
		if err := cursor.Decode(&session); err != nil {
			return nil, fmt.Errorf("error decoding session: %w", err)
		}
		summary := models.SessionSummary{ChatSession: session}
		if last, err := lastMessage(ctx, session.SessionID); err == nil && last != nil {
			summary.LastMessage = preview(last.Text)
		}
		summaries = append(summaries, summary)
	}
	return summaries, cursor.Err()
}

// RenameSession is ownership-gated the same way as GetSession.
func RenameSession(ctx context.Context, sessionID, ownerID, title string) error {
	filter := bson.M{"session_id": sessionID, "owner_id": ownerID}
	update := bson.M{"$set": bson.M{"title": title, "updated_at": time.Now().Unix()}}
	res, err := collection(SessionCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error renaming session: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSession removes the session and its message log.
func DeleteSession(ctx context.Context, sessionID, ownerID string) error {
	filter := bson.M{"session_id": sessionID, "owner_id": ownerID}
	res, err := collection(SessionCollection).DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	if _, err := collection(MessageCollection).DeleteMany(ctx, bson.M{"session_id": sessionID}); err != nil {
		return fmt.Errorf("error deleting session messages: %w", err)
	}
	return nil
}

// AppendMessage adds one message to the owner's session log. The session
// ownership check runs first; a non-owner gets ErrNotFound, never a
// permission error.
func AppendMessage(ctx context.Context, sessionID, ownerID string, message *models.ChatMessage) error {
	if _, err := GetSession(ctx, sessionID, ownerID); err != nil {
		return err
	}

	message.SessionID = sessionID
	message.OwnerID = ownerID
	if message.Timestamp == 0 {
		message.Timestamp = time.Now().UnixMilli()
	}
	if _, err := collection(MessageCollection).InsertOne(ctx, message); err != nil {
		return fmt.Errorf("error appending message: %w", err)
	}

	update := bson.M{"$set": bson.M{"updated_at": time.Now().Unix()}}
	if _, err := collection(SessionCollection).UpdateOne(ctx, bson.M{"session_id": sessionID}, update); err != nil {
		return fmt.Errorf("error touching session: %w", err)
	}
	return nil
}

// GetMessages returns the full ordered history of the owner's session.
func GetMessages(ctx context.Context, sessionID, ownerID string) ([]models.ChatMessage, error) {
	if _, err := GetSession(ctx, sessionID, ownerID); err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := collection(MessageCollection).Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching messages: %w", err)
	}
	defer cursor.Close(ctx)

	messages := []models.ChatMessage{}
	for cursor.Next(ctx) {
		var message models.ChatMessage
		if err := cursor.Decode(&message); err != nil {
			return nil, fmt.Errorf("error decoding message: %w", err)
		}
		messages = append(messages, message)
	}
	return messages, cursor.Err()
}

func lastMessage(ctx context.Context, sessionID string) (*models.ChatMessage, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	var message models.ChatMessage
	err := collection(MessageCollection).FindOne(ctx, bson.M{"session_id": sessionID}, opts).Decode(&message)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

func preview(text string) string {
	const max = 80
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
