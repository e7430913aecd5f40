// Package store provides the flat key-value persistence layer documents live in.
// Backends offer per-key atomic get/set/delete and nothing more: no transactions,
// no multi-key updates, no secondary indexes.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value exists under the key.
var ErrNotFound = errors.New("store: key not found")

// Store is a durable string-to-string mapping.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
