package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for a key holding no blob. Callers that
// treat missing state as "empty prior state" check for it with errors.Is.
var ErrNotFound = errors.New("key not found")

// Store is the durable key-value blob store the watcher persists run
// state and diagnostic HTML dumps into.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}
