// Package blobfs stores attached file bytes on the local filesystem. Handles
// are content hashes, so re-uploading identical bytes is a no-op and handles
// never collide.
package blobfs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store is a content-addressed blob store rooted at a directory.
type Store struct {
	root string
}

// ErrNotFound is returned when a handle has no stored bytes.
var ErrNotFound = errors.New("blob not found")

// New creates the root directory if needed and returns the store.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("blob store root is required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &Store{root: root}, nil
}

// Put stores the bytes and returns their handle.
func (s *Store) Put(_ context.Context, data []byte) (string, error) {
	sum := sha256.Sum256(data)
	handle := hex.EncodeToString(sum[:])

	path, err := s.pathFor(handle)
	if err != nil {
		return "", err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		return handle, nil
	}

	if mkErr := os.MkdirAll(filepath.Dir(path), 0o750); mkErr != nil {
		return "", fmt.Errorf("create blob dir: %w", mkErr)
	}

	// Write-then-rename so readers never observe a partial blob.
	tmp, err := os.CreateTemp(filepath.Dir(path), "incoming-*")
	if err != nil {
		return "", fmt.Errorf("create blob temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("close blob temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("store blob: %w", err)
	}
	return handle, nil
}

// Get returns the stored bytes for a handle.
func (s *Store) Get(_ context.Context, handle string) ([]byte, error) {
	path, err := s.pathFor(handle)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) // #nosec G304 - path is derived from a validated hex handle
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

// pathFor fans blobs out into two-character subdirectories to keep directory
// sizes manageable.
func (s *Store) pathFor(handle string) (string, error) {
	if len(handle) != sha256.Size*2 {
		return "", fmt.Errorf("invalid blob handle %q", handle)
	}
	if _, err := hex.DecodeString(handle); err != nil {
		return "", fmt.Errorf("invalid blob handle %q", handle)
	}
	return filepath.Join(s.root, handle[:2], handle), nil
}
