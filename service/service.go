// Package service retrieves weighted clouds through a cache.
//
// A cloud with id X lives in the store under CacheKey(X)
// ("tagadelic_cloud_X") as a versioned JSON snapshot. FromCache and ToCache
// are the raw read and write; Load is read-through: on a miss it builds the
// cloud from a source.Source, weights it, caches it and returns it.
// Concurrent Loads of one id share a single build.
//
// Every returned *cloud.Cloud is a private copy owned by the caller.
package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/tagcloud/cache"
	"github.com/IvanBrykalov/tagcloud/cloud"
	"github.com/IvanBrykalov/tagcloud/internal/singleflight"
	"github.com/IvanBrykalov/tagcloud/internal/util"
	"github.com/IvanBrykalov/tagcloud/source"
)

// KeyPrefix is prepended to a cloud id to form its cache key.
const KeyPrefix = "tagadelic_cloud_"

// DefaultWarmConcurrency bounds Warm when Options.WarmConcurrency is zero.
const DefaultWarmConcurrency = 8

// genStripes is the number of invalidation counters ids hash onto.
const genStripes = 64

// ErrNoRemoval is returned by Invalidate when the store cannot delete keys.
var ErrNoRemoval = errors.New("service: store does not support removal")

// CacheKey returns the store key of cloud id.
func CacheKey(id string) string { return KeyPrefix + id }

// Origin labels where a loaded cloud came from.
type Origin string

const (
	OriginCache  Origin = "cache"
	OriginSource Origin = "source"
)

// Metrics receives load observations. NoopMetrics is used when none is set.
type Metrics interface {
	ObserveLoad(origin Origin, d time.Duration, err error)
	Corrupt()
}

// NoopMetrics does nothing.
type NoopMetrics struct{}

func (NoopMetrics) ObserveLoad(Origin, time.Duration, error) {}
func (NoopMetrics) Corrupt()                                 {}

// Options configures a Service. Store is required; Source is required for
// Load and Warm.
type Options struct {
	Store  cache.Store
	Source source.Source

	// Cloud is applied to clouds built from the Source.
	Cloud cloud.Options

	// WarmConcurrency bounds parallel builds in Warm; 0 => DefaultWarmConcurrency.
	WarmConcurrency int

	Metrics Metrics
	Logger  *slog.Logger
}

// Service is safe for concurrent use.
type Service struct {
	opt Options
	log *slog.Logger
	sf  singleflight.Group[string, *cloud.Cloud]

	// gens counts invalidations per id stripe. A build only keeps its
	// snapshot cached if its stripe did not move while it ran.
	gens [genStripes]atomic.Uint64
}

// New validates opt and returns a Service.
func New(opt Options) (*Service, error) {
	if opt.Store == nil {
		return nil, errors.New("service: Store is required")
	}
	if opt.Cloud.Steps < 0 {
		return nil, errors.Wrapf(cloud.ErrInvalidSteps, "service: got %d", opt.Cloud.Steps)
	}
	if opt.WarmConcurrency <= 0 {
		opt.WarmConcurrency = DefaultWarmConcurrency
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	// A shared *rand.Rand would be used from several goroutines.
	opt.Cloud.Rand = nil
	return &Service{opt: opt, log: opt.Logger.With("component", "tagcloud")}, nil
}

// FromCache reads cloud id from the store. A miss is cache.ErrNotFound, an
// unreachable store cache.ErrUnavailable, an undecodable value ErrCorrupt.
func (s *Service) FromCache(ctx context.Context, id string) (*cloud.Cloud, error) {
	b, err := s.opt.Store.Get(ctx, CacheKey(id))
	if err != nil {
		return nil, errors.WithMessagef(err, "cloud %q", id)
	}
	c, err := decode(id, b)
	if err != nil {
		s.opt.Metrics.Corrupt()
		return nil, err
	}
	return c, nil
}

// ToCache writes c to the store under CacheKey(c.ID()).
func (s *Service) ToCache(ctx context.Context, c *cloud.Cloud) error {
	b, err := encode(c)
	if err != nil {
		return err
	}
	return errors.WithMessagef(s.opt.Store.Set(ctx, CacheKey(c.ID()), b), "cloud %q", c.ID())
}

// Load returns cloud id from the cache, building and caching it from the
// Source on a miss. A corrupt snapshot is rebuilt and overwritten; any other
// store error is returned as is.
func (s *Service) Load(ctx context.Context, id string) (*cloud.Cloud, error) {
	start := time.Now()
	c, err := s.FromCache(ctx, id)
	switch {
	case err == nil:
		s.opt.Metrics.ObserveLoad(OriginCache, time.Since(start), nil)
		return c, nil
	case errors.Is(err, ErrCorrupt):
		s.log.Warn("rebuilding corrupt cloud snapshot", "cloud", id, "error", err)
	case !errors.Is(err, cache.ErrNotFound):
		s.opt.Metrics.ObserveLoad(OriginCache, time.Since(start), err)
		return nil, err
	}

	if s.opt.Source == nil {
		err := errors.Errorf("service: no Source to build cloud %q", id)
		s.opt.Metrics.ObserveLoad(OriginSource, time.Since(start), err)
		return nil, err
	}
	built, shared, err := s.sf.Do(ctx, id, func() (*cloud.Cloud, error) {
		return s.build(ctx, id)
	})
	s.opt.Metrics.ObserveLoad(OriginSource, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if shared {
		s.log.Debug("joined in-flight cloud build", "cloud", id)
	}
	return built.Clone(), nil
}

// build runs once per in-flight id.
func (s *Service) build(ctx context.Context, id string) (*cloud.Cloud, error) {
	gen := s.gen(id)
	start := gen.Load()
	tags, err := s.opt.Source.Tags(ctx, id)
	if err != nil {
		return nil, errors.WithMessagef(err, "loading tags of cloud %q", id)
	}
	c, err := cloud.New(id, s.opt.Cloud, tags...)
	if err != nil {
		return nil, err
	}
	c.CalculateWeights()
	if gen.Load() != start {
		s.log.Debug("cloud invalidated during build, not caching", "cloud", id)
		return c, nil
	}
	if err := s.ToCache(ctx, c); err != nil {
		return nil, err
	}
	if gen.Load() != start {
		// Invalidate ran while the snapshot was being written.
		if err := s.remove(ctx, id); err != nil {
			return nil, err
		}
	}
	s.log.Debug("built cloud", "cloud", id, "tags", c.Len(), "steps", c.Steps())
	return c, nil
}

func (s *Service) gen(id string) *atomic.Uint64 {
	return &s.gens[util.KeyHash(id)%genStripes]
}

// Warm loads every id, at most WarmConcurrency at a time, and returns the
// first error. Clouds already cached are left as they are.
func (s *Service) Warm(ctx context.Context, ids []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opt.WarmConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			_, err := s.Load(ctx, id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return errors.WithMessage(err, "warming clouds")
	}
	s.log.Info("warmed clouds", "count", len(ids))
	return nil
}

// Invalidate drops the cached snapshot of id. A missing snapshot is not an error.
// A build of id already in flight still answers its callers but leaves
// nothing in the store, so the next Load reads the Source again.
func (s *Service) Invalidate(ctx context.Context, id string) error {
	if _, ok := s.opt.Store.(cache.Remover); !ok {
		return ErrNoRemoval
	}
	s.gen(id).Add(1)
	s.sf.Forget(id)
	return s.remove(ctx, id)
}

func (s *Service) remove(ctx context.Context, id string) error {
	r, ok := s.opt.Store.(cache.Remover)
	if !ok {
		return ErrNoRemoval
	}
	if err := r.Remove(ctx, CacheKey(id)); err != nil && !errors.Is(err, cache.ErrNotFound) {
		return errors.WithMessagef(err, "cloud %q", id)
	}
	return nil
}
