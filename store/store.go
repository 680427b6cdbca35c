// Package store provides the persistent key-value layer backing session
// settings. Keys are /-separated hierarchical paths, values raw bytes.
// Two backends are provided: a filesystem store and a sqlite store.
package store

import "context"

// Store translates between external storage and the key-value namespace.
// Implementations are stateless: they perform I/O on each call without
// caching.
type Store interface {
	// List returns all available keys in the store.
	List(ctx context.Context) ([]string, error)
	// Load retrieves the value for a single key.
	// Returns ErrKeyNotFound when the key is absent.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save persists a value, creating or overwriting as needed.
	Save(ctx context.Context, key string, value []byte) error
	// Delete removes a key from storage. Missing keys are ignored.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
