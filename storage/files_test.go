package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func uploadFixture(t *testing.T, content string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.pdf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestSaveGeneratesKeyAndWritesContent(t *testing.T) {
	store := newTestStore(t)

	key, err := store.Save(uploadFixture(t, "statement body"), "Q3 statement.pdf")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(key, ".pdf"))
	assert.NotContains(t, key, "statement", "original filename must not leak into the key")

	path, err := store.Path(key)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "statement body", string(data))
}

func TestPathRejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	for _, key := range []string{"", "../secrets.txt", "a/b.pdf", "..", "dir/../file.pdf"} {
		_, err := store.Path(key)
		assert.Error(t, err, "key %q should be rejected", key)
	}
}

func TestRemoveIsBestEffort(t *testing.T) {
	store := newTestStore(t)

	key, err := store.Save(uploadFixture(t, "x"), "doc.pdf")
	require.NoError(t, err)

	store.Remove(key)
	path, err := store.Path(key)
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Removing a missing or invalid key must not panic.
	store.Remove(key)
	store.Remove("../nope")
}
