// Package lru implements least-recently-used eviction for cached clouds.
package lru

import "github.com/IvanBrykalov/tagcloud/policy"

// Name is the config/log identifier of this policy.
const Name = "lru"

type factory struct{}

// New returns a Policy that keeps the most recently read or written
// snapshots and lets the shard trim from the LRU end.
func New() policy.Policy { return factory{} }

func (factory) Name() string { return Name }

func (factory) New(h policy.Hooks) policy.ShardPolicy { return &lru{h: h} }

// lru never proposes evictions itself; the shard enforces its limits
// by trimming its list tail.
type lru struct {
	h policy.Hooks
}

func (p *lru) OnAdd(n policy.Node) policy.Node {
	p.h.PushFront(n)
	return nil
}

func (p *lru) OnGet(n policy.Node) { p.h.MoveToFront(n) }

// OnUpdate treats a rewrite of a cached cloud as a use.
func (p *lru) OnUpdate(n policy.Node) { p.h.MoveToFront(n) }

func (p *lru) OnRemove(policy.Node) {}
