// Package singleflight coalesces concurrent builds of the same cloud.
package singleflight

import (
	"context"
	"fmt"
	"sync"
)

// Group runs fn at most once per in-flight key. Later callers for the same
// key wait for the leader and receive its result.
//
// Cancelling a follower's ctx unblocks only that follower; the leader keeps
// running. Thread ctx into fn if the work itself must stop.
type Group[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*call[V]
}

type call[V any] struct {
	done    chan struct{} // closed after val/err are published
	val     V
	err     error
	waiters int
}

// Do executes fn for key, or joins an in-flight execution.
// shared reports whether the result was handed to more than one caller.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (v V, shared bool, err error) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*call[V])
	}
	if c, ok := g.m[key]; ok {
		c.waiters++
		g.mu.Unlock()

		select {
		case <-c.done:
			return c.val, true, c.err
		case <-ctx.Done():
			var zero V
			return zero, false, ctx.Err()
		}
	}

	c := &call[V]{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()

	g.run(key, c, fn)

	g.mu.Lock()
	shared = c.waiters > 0
	g.mu.Unlock()
	return c.val, shared, c.err
}

// Forget drops the in-flight marker for key so the next Do starts a new call.
// Callers already waiting still receive the original result.
func (g *Group[K, V]) Forget(key K) {
	g.mu.Lock()
	delete(g.m, key)
	g.mu.Unlock()
}

// run executes fn and always releases followers, even if fn panics.
func (g *Group[K, V]) run(key K, c *call[V], fn func() (V, error)) {
	normal := false
	defer func() {
		if !normal {
			if r := recover(); r != nil {
				c.err = fmt.Errorf("singleflight: panic in build of %v: %v", key, r)
				g.finish(key, c)
				panic(r)
			}
		}
		g.finish(key, c)
	}()
	c.val, c.err = fn()
	normal = true
}

func (g *Group[K, V]) finish(key K, c *call[V]) {
	close(c.done)
	g.mu.Lock()
	if g.m[key] == c {
		delete(g.m, key)
	}
	g.mu.Unlock()
}
