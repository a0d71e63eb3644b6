package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidPath  = errors.New("invalid file path")
)

type FileStorage interface {
	// Upload stores content under key and returns the normalized key
	Upload(ctx context.Context, content io.Reader, key string, contentType string) (string, error)

	// Download opens a stored file. Missing files yield ErrFileNotFound.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a file. Deleting a missing file is not an error.
	Delete(ctx context.Context, key string) error

	// Exists checks if file exists
	Exists(ctx context.Context, key string) (bool, error)
}
