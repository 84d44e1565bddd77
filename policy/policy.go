// Package policy defines the eviction policy contract used by cache shards.
package policy

// Node is the view a policy gets of a resident cache entry.
type Node interface {
	Key() string
}

// Hooks are the O(1) list operations a shard exposes to its policy.
// The shard list runs from MRU (front) to LRU (back).
//
// All hook calls happen under the shard lock. Hooks only touch the list;
// the shard owns the key->entry map and unlinks evicted or removed nodes
// itself.
type Hooks interface {
	// MoveToFront promotes the node to MRU.
	MoveToFront(Node)
	// PushFront links a newly admitted node at MRU.
	PushFront(Node)
}

// ShardPolicy is a policy instance bound to one shard. All methods are
// invoked under the shard lock.
//
//   - OnAdd may return a node to evict; the shard evicts it and then calls
//     OnRemove for it.
//   - OnGet and OnUpdate record a use.
//   - OnRemove lets the policy drop its own bookkeeping for the node.
type ShardPolicy interface {
	OnAdd(Node) (evict Node)
	OnGet(Node)
	OnUpdate(Node)
	OnRemove(Node)
}

// Policy builds shard-local instances.
type Policy interface {
	// Name identifies the policy in config and logs ("lru", "2q").
	Name() string
	New(Hooks) ShardPolicy
}
