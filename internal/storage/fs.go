package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FS is a Store backed by a local directory, one file per key.
type FS struct {
	dataDir string
}

// NewFS creates the data directory if needed. A leading "~/" expands to
// the user's home directory.
func NewFS(dataDir string) (*FS, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &FS{dataDir: dataDir}, nil
}

func (f *FS) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(f.dataDir, key))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

func (f *FS) Put(_ context.Context, key string, data []byte) error {
	if err := os.WriteFile(filepath.Join(f.dataDir, key), data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}
