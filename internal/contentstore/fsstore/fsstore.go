// Package fsstore writes uploaded content as plain files under a root directory.
package fsstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/patric-chuzhbe/filesmanager/internal/contentstore"
)

// FSStore stores each blob in its own file.
type FSStore struct {
	root string
}

// New creates root, with parents, when it does not exist.
func New(ctx context.Context, root string) (*FSStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf(
			"in internal/contentstore/fsstore/fsstore.go/New(): error while `filepath.Abs()` calling: %w",
			err,
		)
	}

	if err := os.MkdirAll(absRoot, 0755); err != nil {
		return nil, fmt.Errorf(
			"in internal/contentstore/fsstore/fsstore.go/New(): error while `os.MkdirAll()` calling: %w",
			err,
		)
	}

	return &FSStore{root: absRoot}, nil
}

// Put writes data to root/name and returns the absolute path.
func (s *FSStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := s.resolve(filepath.Join(s.root, name))
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf(
			"in internal/contentstore/fsstore/fsstore.go/Put(): error while `os.WriteFile()` calling: %w",
			err,
		)
	}

	return path, nil
}

// Get reads back content previously written by Put.
func (s *FSStore) Get(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.resolve(locator)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", locator, contentstore.ErrContentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf(
			"in internal/contentstore/fsstore/fsstore.go/Get(): error while `os.ReadFile()` calling: %w",
			err,
		)
	}

	return data, nil
}

// Root returns the absolute directory content is written to.
func (s *FSStore) Root() string {
	return s.root
}

func (s *FSStore) resolve(path string) (string, error) {
	cleaned := filepath.Clean(path)
	if cleaned == s.root || !strings.HasPrefix(cleaned, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the storage root", path)
	}

	return cleaned, nil
}
