package ports

import "context"

// KeyValueStore is the persistence collaborator. Values survive restarts of
// the portal for every backend except the in-memory one.
type KeyValueStore interface {
	// Get returns domain.ErrKeyNotFound when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete is a no-op for absent keys.
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by dependencies that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}
