package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage keeps the original uploads of each batch
type Storage interface {
	// Save stores a file under a batch and returns its path
	Save(batchID, filename string, data []byte) (string, error)

	// Get retrieves a file by path
	Get(path string) ([]byte, error)

	// DeleteBatch removes every file of a batch
	DeleteBatch(batchID string) error
}

// LocalStorage implements Storage with one directory per batch
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Save writes a file into the batch directory
func (l *LocalStorage) Save(batchID, filename string, data []byte) (string, error) {
	if !isPlainName(batchID) || !isPlainName(filename) {
		return "", fmt.Errorf("invalid storage name %q/%q", batchID, filename)
	}
	dir := filepath.Join(l.basePath, batchID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating batch directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return batchID + "/" + filename, nil
}

// Get reads a file saved by Save
func (l *LocalStorage) Get(path string) ([]byte, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return nil, fmt.Errorf("invalid storage path %q", path)
	}
	data, err := os.ReadFile(filepath.Join(l.basePath, clean))
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// DeleteBatch removes the batch directory
func (l *LocalStorage) DeleteBatch(batchID string) error {
	if !isPlainName(batchID) {
		return fmt.Errorf("invalid batch id %q", batchID)
	}
	if err := os.RemoveAll(filepath.Join(l.basePath, batchID)); err != nil {
		return fmt.Errorf("deleting batch files: %w", err)
	}
	return nil
}

// isPlainName reports whether name is a single path element
func isPlainName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
