// Package prefs provides the durable key-value store used for the photo list snapshot.
package prefs

import "context"

// Store defines string key-value persistence.
// Consumers should depend on this interface rather than the concrete *DB type.
type Store interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
