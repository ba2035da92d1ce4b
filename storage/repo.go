package storage

import "context"

// Entry is a single key/value pair written by a batch.
type Entry struct {
	Key   string
	Value string
}

// KV is string key/value device storage that survives process restarts.
// Structured values are JSON encoded by callers before they reach the store.
type KV interface {
	// Get returns the value for key and whether it was present
	Get(ctx context.Context, key string) (string, bool, error)

	// Set creates or overwrites key
	Set(ctx context.Context, key, value string) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Clear removes every key
	Clear(ctx context.Context) error
}

// BatchWriter is implemented by stores that can write several entries
// atomically.
type BatchWriter interface {
	SetMany(ctx context.Context, entries []Entry) error
}
