// Package util contains internal helpers for the cache (hashing, sharding, padding).
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import "github.com/cespare/xxhash/v2"

// KeyHash hashes a cache key for shard selection.
// Cloud cache keys share a long common prefix ("tagadelic_cloud_"), so the
// hash has to mix the whole string; xxhash does that without allocating.
func KeyHash(key string) uint64 {
	return xxhash.Sum64String(key)
}
