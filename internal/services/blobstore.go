package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// BlobStore persists raw file bytes. Paths returned by Save are what the
// metadata record stores as localPath.
type BlobStore interface {
	Save(ctx context.Context, data []byte) (string, error)
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
	Ping(ctx context.Context) error
}

// LocalBlobStore writes blobs under a directory on the local filesystem.
type LocalBlobStore struct {
	root string
}

func NewLocalBlobStore(root string) (*LocalBlobStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve blob root: %w", err)
	}
	return &LocalBlobStore{root: abs}, nil
}

// Save creates the root on first use and writes data under a random name.
func (s *LocalBlobStore) Save(_ context.Context, data []byte) (string, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("failed to create blob root: %w", err)
	}

	path := filepath.Join(s.root, uuid.NewString())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	return path, nil
}

func (s *LocalBlobStore) Read(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}

func (s *LocalBlobStore) Write(_ context.Context, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}
	return nil
}

// Ping reports whether the root can be created.
func (s *LocalBlobStore) Ping(context.Context) error {
	return os.MkdirAll(s.root, 0o755)
}
