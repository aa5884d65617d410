package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveTitle(t *testing.T) {
	assert.Equal(t, "How do I budget?", DeriveTitle("How do I budget?"))
	assert.Equal(t, "New Conversation", DeriveTitle(""))
	assert.Equal(t, "New Conversation", DeriveTitle("   \n\t "))
	// Internal whitespace collapses.
	assert.Equal(t, "a b c", DeriveTitle("a\n b\t\tc"))
}

func TestDeriveTitleTruncates(t *testing.T) {
	long := strings.Repeat("budget ", 20)
	title := DeriveTitle(long)
	assert.True(t, strings.HasSuffix(title, "..."), "title %q should end with ellipsis", title)
	assert.LessOrEqual(t, len([]rune(title)), titleMaxLen+3)
}

func TestDocumentStatusPublic(t *testing.T) {
	assert.Equal(t, "COMPLETED", DocumentAnalyzed.Public())
	assert.Equal(t, "PENDING", DocumentPending.Public())
	assert.Equal(t, "PROCESSING", DocumentProcessing.Public())
	assert.Equal(t, "ERROR", DocumentError.Public())
}

func TestDocumentStatusTerminal(t *testing.T) {
	assert.True(t, DocumentAnalyzed.Terminal())
	assert.True(t, DocumentError.Terminal())
	assert.False(t, DocumentPending.Terminal())
	assert.False(t, DocumentProcessing.Terminal())
}
