// Package source provides the tags a cloud is built from when it is not cached.
package source

import (
	"context"
	"slices"
	"sync"

	"github.com/pkg/errors"

	"github.com/IvanBrykalov/tagcloud/cloud"
)

// ErrUnknownCloud is returned when a source has no tags for a cloud id.
var ErrUnknownCloud = errors.New("source: unknown cloud")

// Source returns the tags of one cloud in display order.
// Implementations must be safe for concurrent use.
type Source interface {
	Tags(ctx context.Context, id string) ([]cloud.Tag, error)
}

// Func adapts a function to Source.
type Func func(ctx context.Context, id string) ([]cloud.Tag, error)

// Tags calls f.
func (f Func) Tags(ctx context.Context, id string) ([]cloud.Tag, error) { return f(ctx, id) }

// Static is an in-memory Source, mostly for tests and fixtures.
type Static struct {
	mu     sync.RWMutex
	clouds map[string][]cloud.Tag
}

// NewStatic returns a Static source holding a copy of clouds.
func NewStatic(clouds map[string][]cloud.Tag) *Static {
	s := &Static{clouds: make(map[string][]cloud.Tag, len(clouds))}
	for id, tags := range clouds {
		s.clouds[id] = slices.Clone(tags)
	}
	return s
}

// Put replaces the tags of id.
func (s *Static) Put(id string, tags ...cloud.Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clouds[id] = slices.Clone(tags)
}

// Tags returns a copy of the tags of id, or ErrUnknownCloud.
func (s *Static) Tags(ctx context.Context, id string) ([]cloud.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	tags, ok := s.clouds[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownCloud, "id %q", id)
	}
	return slices.Clone(tags), nil
}

var (
	_ Source = (*Static)(nil)
	_ Source = Func(nil)
)
