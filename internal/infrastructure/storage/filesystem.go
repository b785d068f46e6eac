package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/projectsync/projectsync/internal/domain/service"
)

// FilesystemStorage implements the StorageService interface for local
// artifact storage. All artifacts live flat under the base directory.
type FilesystemStorage struct {
	basePath string
}

// NewFilesystemStorage creates a new filesystem storage instance
func NewFilesystemStorage(basePath string) (*FilesystemStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	return &FilesystemStorage{
		basePath: absPath,
	}, nil
}

// GetBasePath returns the base storage path
func (s *FilesystemStorage) GetBasePath() string {
	return s.basePath
}

// Store writes the content under a name prefixed with a fresh UUID so
// repeated uploads of the same original name never collide
func (s *FilesystemStorage) Store(ctx context.Context, originalName string, content io.Reader) (string, error) {
	storedName := uuid.New().String() + "-" + filepath.Base(originalName)
	fullPath := filepath.Join(s.basePath, storedName)

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file content: %w", err)
	}

	return storedName, nil
}

// Open opens a stored artifact for reading
func (s *FilesystemStorage) Open(ctx context.Context, storedName string) (io.ReadCloser, error) {
	fullPath, err := s.resolvePath(storedName)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", storedName)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Exists checks whether a stored artifact is present
func (s *FilesystemStorage) Exists(ctx context.Context, storedName string) (bool, error) {
	fullPath, err := s.resolvePath(storedName)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check file existence: %w", err)
	}
	return true, nil
}

// Delete removes a stored artifact. A missing file counts as deleted.
func (s *FilesystemStorage) Delete(ctx context.Context, storedName string) error {
	fullPath, err := s.resolvePath(storedName)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// List returns the names of all stored artifacts
func (s *FilesystemStorage) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// resolvePath maps a stored name to its on-disk path, rejecting names
// that would escape the base directory
func (s *FilesystemStorage) resolvePath(storedName string) (string, error) {
	if storedName == "" || storedName != filepath.Base(storedName) {
		return "", fmt.Errorf("invalid stored name: %s", storedName)
	}
	return filepath.Join(s.basePath, storedName), nil
}

// Verify interface compliance at compile time
var _ service.StorageService = (*FilesystemStorage)(nil)
