package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DocumentStore keeps uploaded tenant documents on the local filesystem.
// It sits outside any database transaction, so callers that save a document
// and then fail their transaction must call Remove as a compensating action.
type DocumentStore struct {
	dir string
	log *logrus.Logger
}

func NewDocumentStore(dir string, log *logrus.Logger) (*DocumentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create document dir: %w", err)
	}
	return &DocumentStore{dir: dir, log: log}, nil
}

// Save writes the document under a fresh uuid name, preserving the original
// extension, and returns the stored path.
func (s *DocumentStore) Save(originalName string, src io.Reader) (string, error) {
	name := uuid.NewString() + filepath.Ext(originalName)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create document file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write document file: %w", err)
	}

	return path, nil
}

// Remove deletes a stored document. Best effort: failures are logged, never
// returned, since this runs on rollback paths that already carry an error.
func (s *DocumentStore) Remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.WithFields(logrus.Fields{
			"path": path,
		}).WithError(err).Warn("failed to remove orphaned document")
	}
}
