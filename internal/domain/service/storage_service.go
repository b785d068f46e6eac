package service

import (
	"context"
	"io"
)

// StorageService defines the interface for artifact storage operations.
// This abstraction allows for different storage backends (filesystem, S3, etc.)
type StorageService interface {
	// Store writes the content under a collision-resistant name derived
	// from originalName and returns the stored name. The original name is
	// not required to be recoverable from the stored name alone.
	Store(ctx context.Context, originalName string, content io.Reader) (string, error)

	// Open opens a stored artifact for reading
	Open(ctx context.Context, storedName string) (io.ReadCloser, error)

	// Exists checks whether a stored artifact is present
	Exists(ctx context.Context, storedName string) (bool, error)

	// Delete removes a stored artifact
	Delete(ctx context.Context, storedName string) error

	// List returns the names of all stored artifacts
	List(ctx context.Context) ([]string, error)
}
