// Package store is the persistence layer: string-keyed documents written as
// full blobs. There are no transactions and no partial updates; concurrent
// writers race and the last write wins, which matches how the rest of the
// system reasons about shared state.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a key has no stored document.
var ErrNotFound = errors.New("store: key not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Event signals that a key was written or deleted, possibly by another
// process sharing the same backend.
type Event struct {
	Key string
}

// Notifier is implemented by backends that can observe writes from other
// processes. The subscription ends when ctx is cancelled.
type Notifier interface {
	Subscribe(ctx context.Context) (<-chan Event, error)
}

// GetJSON loads the document at key into v. A missing key is reported as
// ErrNotFound with v untouched.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("store: decode %s: %w", key, err)
	}
	return nil
}

// PutJSON overwrites the document at key with the JSON encoding of v.
func PutJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	return s.Put(ctx, key, raw)
}
