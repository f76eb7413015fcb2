package blobstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FileStore persists the blob to a single local file. Writes go through a
// temp file and rename so concurrent readers never see a torn document.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed blob store at the given path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("blob file path not set")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		slog.Error("FileStore failed to create directory", "error", err, "path", path)
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Read returns the blob contents, or (nil, nil) when the file does not exist.
func (s *FileStore) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("FileStore Read: blob not present", "path", s.path)
			return nil, nil
		}
		slog.Error("FileStore Read failed", "error", err, "path", s.path)
		return nil, fmt.Errorf("failed to read blob %s: %w", s.path, err)
	}
	return data, nil
}

// Write replaces the blob contents atomically.
func (s *FileStore) Write(ctx context.Context, data []byte) error {
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		slog.Error("FileStore Write failed", "error", err, "path", s.path)
		return fmt.Errorf("failed to write blob %s: %w", s.path, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		slog.Error("FileStore rename failed", "error", err, "path", s.path)
		return fmt.Errorf("failed to replace blob %s: %w", s.path, err)
	}
	slog.Debug("FileStore Write succeeded", "path", s.path, "bytes", len(data))
	return nil
}
