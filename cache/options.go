package cache

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/IvanBrykalov/tagcloud/policy"
)

// EvictReason explains why an entry was removed.
type EvictReason int

const (
	// EvictPolicy: removed by the eviction policy or the entry-count limit.
	EvictPolicy EvictReason = iota
	// EvictTTL: expired (lazy, on access or while trimming).
	EvictTTL
	// EvictCapacity: removed to satisfy the MaxBytes budget.
	EvictCapacity
)

// String returns a stable label value ("policy", "ttl", "capacity").
func (r EvictReason) String() string {
	switch r {
	case EvictTTL:
		return "ttl"
	case EvictCapacity:
		return "capacity"
	default:
		return "policy"
	}
}

// Metrics receives cache-level observability signals.
// NoopMetrics is used when none is configured.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	// Size reports store-wide totals after a mutation.
	Size(entries int, bytes int64)
}

// Options configures a Memory store. Zero values are safe except Capacity;
// defaults are applied in New():
//   - Shards <= 0   => auto (≈ 2*GOMAXPROCS, power of two)
//   - nil Policy    => LRU
//   - nil Metrics   => NoopMetrics
//   - nil Clock     => wall clock
type Options struct {
	// Capacity is the entry count limit across all shards. Required.
	Capacity int

	// Shards is rounded up to a power of two.
	Shards int

	// Policy chooses eviction order (lru.New(), twoq.New(...)).
	Policy policy.Policy

	// DefaultTTL applies to Set; 0 disables expiry.
	DefaultTTL time.Duration

	// MaxBytes bounds the total size of stored snapshots; 0 disables the limit.
	// The budget is split evenly across shards.
	MaxBytes int64

	// OnEvict is called under the shard lock; keep it cheap.
	OnEvict func(key string, reason EvictReason)
	Metrics Metrics

	// Clock is the TTL time source; tests pass clock.NewMock().
	Clock clock.Clock
}
