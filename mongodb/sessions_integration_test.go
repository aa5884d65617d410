//go:build integration

package mongodb

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/api/models"
)

func requireMongo(t *testing.T) {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	require.NoError(t, InitMongoDB(uri))
	t.Cleanup(CloseMongoDB)
}

func TestAppendMessageNonOwnerIndistinguishable(t *testing.T) {
	requireMongo(t)
	ctx := context.Background()

	owner := uuid.NewString()
	other := uuid.NewString()
	session, err := CreateSession(ctx, owner, "", "", "What is my utilization?")
	require.NoError(t, err)
	t.Cleanup(func() { DeleteSession(ctx, session.SessionID, owner) })

	require.NoError(t, AppendMessage(ctx, session.SessionID, owner,
		&models.ChatMessage{Sender: models.SenderUser, Text: "hello"}))

	// A non-owner must fail exactly like a caller naming a session that
	// does not exist.
	foreignErr := AppendMessage(ctx, session.SessionID, other,
		&models.ChatMessage{Sender: models.SenderUser, Text: "hi"})
	missingErr := AppendMessage(ctx, uuid.NewString(), other,
		&models.ChatMessage{Sender: models.SenderUser, Text: "hi"})

	require.Error(t, foreignErr)
	require.Error(t, missingErr)
	assert.True(t, errors.Is(foreignErr, ErrNotFound))
	assert.True(t, errors.Is(missingErr, ErrNotFound))
	assert.Equal(t, missingErr.Error(), foreignErr.Error())

	// The rejected append left no trace in the owner's log.
	messages, err := GetMessages(ctx, session.SessionID, owner)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hello", messages[0].Text)
}
