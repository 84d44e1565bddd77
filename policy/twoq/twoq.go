// Package twoq implements the 2Q eviction policy.
//
// Clouds that are written once by a warm-up pass and never read again stay
// in a small probation queue (A1in) and are evicted from there first, so a
// bulk warm-up cannot flush the clouds that are actually being served (Am).
// Keys evicted from probation are remembered in a ghost queue (A1out); a
// cloud re-admitted while its ghost is alive goes straight to Am.
package twoq

import (
	"container/list"

	"github.com/IvanBrykalov/tagcloud/policy"
)

// Name is the config/log identifier of this policy.
const Name = "2q"

// New returns a 2Q policy with per-shard queue sizes.
// A probation size of about 25% of the shard capacity and a ghost size of
// 50–100% work well. Sizes below 1 are raised to 1.
func New(probation, ghosts int) policy.Policy {
	return factory{probation: max(probation, 1), ghosts: max(ghosts, 1)}
}

type factory struct {
	probation int
	ghosts    int
}

func (factory) Name() string { return Name }

func (f factory) New(h policy.Hooks) policy.ShardPolicy {
	return &twoQ{
		h:      h,
		in:     newQueue[policy.Node](f.probation),
		ghosts: newQueue[string](f.ghosts),
	}
}

// twoQ is called under the shard lock only.
type twoQ struct {
	h      policy.Hooks
	in     *queue[policy.Node] // A1in, resident nodes on probation
	ghosts *queue[string]      // A1out, keys only
}

func (q *twoQ) OnAdd(n policy.Node) policy.Node {
	q.h.PushFront(n)
	if q.ghosts.remove(n.Key()) {
		return nil // second chance: admit straight into Am
	}
	q.in.push(n)
	if q.in.overflow() {
		return q.in.back()
	}
	return nil
}

// OnGet graduates a probation node into Am.
func (q *twoQ) OnGet(n policy.Node) {
	q.in.remove(n)
	q.h.MoveToFront(n)
}

func (q *twoQ) OnUpdate(n policy.Node) { q.OnGet(n) }

// OnRemove turns probation nodes into ghosts; removals from Am leave no trace.
func (q *twoQ) OnRemove(n policy.Node) {
	if !q.in.remove(n) {
		return
	}
	q.ghosts.remove(n.Key())
	q.ghosts.push(n.Key())
	for q.ghosts.overflow() {
		q.ghosts.remove(q.ghosts.back())
	}
}

// queue is a bounded MRU->LRU list with O(1) membership.
type queue[T comparable] struct {
	cap int
	l   *list.List
	idx map[T]*list.Element
}

func newQueue[T comparable](capacity int) *queue[T] {
	return &queue[T]{cap: capacity, l: list.New(), idx: make(map[T]*list.Element)}
}

func (q *queue[T]) push(v T) { q.idx[v] = q.l.PushFront(v) }

func (q *queue[T]) remove(v T) bool {
	el, ok := q.idx[v]
	if !ok {
		return false
	}
	q.l.Remove(el)
	delete(q.idx, v)
	return true
}

func (q *queue[T]) back() T {
	var zero T
	if el := q.l.Back(); el != nil {
		return el.Value.(T)
	}
	return zero
}

func (q *queue[T]) overflow() bool { return q.l.Len() > q.cap }

func (q *queue[T]) has(v T) bool {
	_, ok := q.idx[v]
	return ok
}

func (q *queue[T]) len() int { return q.l.Len() }
