package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"finsight/api/logger"
)

// FileStore writes uploaded documents to a local directory. Keys are
// generated ids plus the original extension; the original filename never
// touches the filesystem.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save streams the upload to disk and returns the storage key.
func (s *FileStore) Save(file multipart.File, originalName string) (string, error) {
	key := uuid.NewString() + filepath.Ext(originalName)
	dst, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		s.Remove(key)
		return "", fmt.Errorf("writing file: %w", err)
	}
	return key, nil
}

// Path resolves a storage key inside the upload dir, rejecting traversal.
func (s *FileStore) Path(key string) (string, error) {
	if key == "" || filepath.Base(key) != key {
		return "", fmt.Errorf("invalid storage key")
	}
	return filepath.Join(s.dir, key), nil
}

// Remove deletes a stored file best-effort: a failure is logged, never
// escalated.
func (s *FileStore) Remove(key string) {
	path, err := s.Path(key)
	if err != nil {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Get().Warn("failed to remove stored file",
			zap.String("key", key),
			zap.Error(err))
	}
}
