package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"github.com/IvanBrykalov/tagcloud/internal/util"
	"github.com/IvanBrykalov/tagcloud/policy/lru"
)

// Memory is a sharded in-memory Store for serialized clouds.
// All methods are safe for concurrent use.
type Memory struct {
	shards []*shard
	closed atomic.Bool
	opt    Options
	tot    totals
}

// New constructs a Memory store. It returns ErrInvalidConfig when Capacity
// is not positive or DefaultTTL/MaxBytes are negative.
func New(opt Options) (*Memory, error) {
	switch {
	case opt.Capacity <= 0:
		return nil, errors.Wrapf(ErrInvalidConfig, "capacity must be > 0, got %d", opt.Capacity)
	case opt.DefaultTTL < 0:
		return nil, errors.Wrapf(ErrInvalidConfig, "default TTL must be >= 0, got %s", opt.DefaultTTL)
	case opt.MaxBytes < 0:
		return nil, errors.Wrapf(ErrInvalidConfig, "max bytes must be >= 0, got %d", opt.MaxBytes)
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Policy == nil {
		opt.Policy = lru.New()
	}
	if opt.Clock == nil {
		opt.Clock = clock.New()
	}

	n := util.ShardCount(opt.Shards)
	opt.Shards = n
	perShardCap := (opt.Capacity + n - 1) / n
	var perShardBytes int64
	if opt.MaxBytes > 0 {
		perShardBytes = (opt.MaxBytes + int64(n) - 1) / int64(n)
	}

	m := &Memory{opt: opt}
	m.shards = make([]*shard, n)
	for i := range m.shards {
		m.shards[i] = newShard(perShardCap, perShardBytes, &m.opt, &m.tot)
	}
	return m, nil
}

// Get returns a copy of the value for key.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := m.usable(ctx); err != nil {
		return nil, err
	}
	v, ok := m.shardFor(key).get(key, m.now())
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "key %q", key)
	}
	return v, nil
}

// Set stores a copy of val under key with the DefaultTTL.
func (m *Memory) Set(ctx context.Context, key string, val []byte) error {
	return m.SetWithTTL(ctx, key, val, m.opt.DefaultTTL)
}

// SetWithTTL stores a copy of val with a per-key TTL; ttl <= 0 disables expiry.
func (m *Memory) SetWithTTL(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := m.usable(ctx); err != nil {
		return err
	}
	s := m.shardFor(key)
	if s.maxBytes > 0 && int64(len(val)) > s.maxBytes {
		return errors.Wrapf(ErrTooLarge, "key %q: %d bytes, budget %d", key, len(val), s.maxBytes)
	}
	now := m.now()
	var exp int64
	if ttl > 0 {
		exp = now + int64(ttl)
	}
	s.set(key, append([]byte(nil), val...), exp, now)
	return nil
}

// Remove deletes key; ErrNotFound if it was absent.
func (m *Memory) Remove(ctx context.Context, key string) error {
	if err := m.usable(ctx); err != nil {
		return err
	}
	if !m.shardFor(key).remove(key) {
		return errors.Wrapf(ErrNotFound, "key %q", key)
	}
	return nil
}

// Len returns the number of resident entries (expired ones included until touched).
func (m *Memory) Len() int {
	total := 0
	for _, s := range m.shards {
		total += s.length()
	}
	return total
}

// Stats aggregates per-shard counters.
func (m *Memory) Stats() Stats {
	var st Stats
	for _, s := range m.shards {
		st.Hits += s.hits.Load()
		st.Misses += s.misses.Load()
		st.Evictions += s.evicts.Load()
	}
	st.Entries = int(m.tot.entries.Load())
	st.Bytes = m.tot.bytes.Load()
	return st
}

// Shards returns the effective shard count.
func (m *Memory) Shards() int { return len(m.shards) }

// Close releases all entries. Later calls return ErrUnavailable.
func (m *Memory) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	for _, s := range m.shards {
		s.clear()
	}
	m.opt.Metrics.Size(0, 0)
	return nil
}

// ---- helpers ----

func (m *Memory) usable(ctx context.Context) error {
	if m.closed.Load() {
		return errors.WithStack(ErrUnavailable)
	}
	return ctx.Err()
}

func (m *Memory) shardFor(key string) *shard {
	return m.shards[util.ShardIndex(util.KeyHash(key), len(m.shards))]
}

func (m *Memory) now() int64 { return m.opt.Clock.Now().UnixNano() }
