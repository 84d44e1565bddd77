// Package cache provides the store weighted clouds are cached in: a
// sharded, in-memory byte store with pluggable eviction, per-entry TTL,
// a byte budget and metrics hooks.
//
// Design
//
//   - Concurrency: keys are hashed with xxhash onto a power-of-two number of
//     shards, each with its own mutex, map and intrusive MRU↔LRU list.
//
//   - Values: snapshots are copied on Set and on Get, so callers can neither
//     corrupt a cached cloud nor observe a later overwrite.
//
//   - Policies: LRU by default; 2Q (policy/twoq) keeps a bulk warm-up from
//     flushing the clouds that are actually being read.
//
//   - TTL: entries carry an absolute deadline taken from Options.Clock.
//     Expiry is lazy on Get and while a shard trims to its limits.
//
//   - Limits: Capacity bounds entries, MaxBytes bounds the summed snapshot
//     size. Both are split evenly across shards.
//
//   - Errors: a miss or expired key is ErrNotFound; a closed store is
//     ErrUnavailable. Callers must not treat either as an empty cloud.
//
// Basic usage
//
//	m, err := cache.New(cache.Options{Capacity: 10_000, DefaultTTL: time.Hour})
//	if err != nil {
//	    return err
//	}
//	defer m.Close()
//	_ = m.Set(ctx, "tagadelic_cloud_3", snapshot)
//	b, err := m.Get(ctx, "tagadelic_cloud_3")
//	if errors.Is(err, cache.ErrNotFound) {
//	    // rebuild
//	}
//
// Exporting metrics
//
//	a := prom.New(nil, "tagcloud", "cache", nil)
//	m, _ := cache.New(cache.Options{Capacity: 10_000, Metrics: a})
package cache
