package cache

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned by Get for absent or expired keys.
	ErrNotFound = errors.New("cache: not found")
	// ErrUnavailable is returned once the store has been closed.
	ErrUnavailable = errors.New("cache: unavailable")
	// ErrInvalidConfig is returned by New for unusable Options.
	ErrInvalidConfig = errors.New("cache: invalid configuration")
	// ErrTooLarge is returned by Set when a single value exceeds the per-shard byte budget.
	ErrTooLarge = errors.New("cache: value exceeds byte budget")
)

// Store is the host cache collaborator clouds are persisted in.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns a copy of the value stored under key, ErrNotFound on a miss,
	// or ErrUnavailable when the backend cannot be reached.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a copy of val under key, replacing any previous value.
	Set(ctx context.Context, key string, val []byte) error
}

// Remover is implemented by stores that support explicit invalidation.
type Remover interface {
	// Remove deletes key. Removing an absent key returns ErrNotFound.
	Remove(ctx context.Context, key string) error
}

var (
	_ Store   = (*Memory)(nil)
	_ Remover = (*Memory)(nil)
)
