package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/x/ticketwatch/internal/snapshot"
)

// stateKey is the single blob holding the last persisted snapshot.
const stateKey = "state.json"

// LoadState reads the previously persisted snapshot. A missing key is an
// empty prior state, not an error.
func LoadState(ctx context.Context, store Store) (snapshot.Snapshot, error) {
	data, err := store.Get(ctx, stateKey)
	if errors.Is(err, ErrNotFound) {
		return snapshot.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}

	var snap snapshot.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing state: %w", err)
	}
	return snap, nil
}

// SaveState overwrites the persisted snapshot wholesale.
func SaveState(ctx context.Context, store Store, snap snapshot.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := store.Put(ctx, stateKey, data); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}

// DumpHTML persists a failed page under a timestamp-prefixed key for
// later diagnosis and returns the key.
func DumpHTML(ctx context.Context, store Store, label string, page []byte) (string, error) {
	key := fmt.Sprintf("%s-%s-dump.html", time.Now().UTC().Format("20060102T150405"), label)
	if err := store.Put(ctx, key, page); err != nil {
		return "", fmt.Errorf("dumping html: %w", err)
	}
	return key, nil
}
