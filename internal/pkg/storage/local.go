package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{basePath: abs}, nil
}

// resolve maps key onto a path inside basePath, rejecting traversal.
func (s *LocalStorage) resolve(key string) (string, string, error) {
	cleanKey := filepath.ToSlash(filepath.Clean("/" + key))[1:]
	if cleanKey == "" || cleanKey == "." {
		return "", "", ErrInvalidPath
	}

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	rel, err := filepath.Rel(s.basePath, fullPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", ErrInvalidPath
	}

	return cleanKey, fullPath, nil
}

func (s *LocalStorage) Upload(ctx context.Context, content io.Reader, key string, contentType string) (string, error) {
	cleanKey, fullPath, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(dst, content); err != nil {
		dst.Close()
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return cleanKey, nil
}

func (s *LocalStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	_, fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	_, fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, fullPath, err := s.resolve(key)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
