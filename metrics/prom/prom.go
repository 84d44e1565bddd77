// Package prom exports cache and cloud-loading metrics to Prometheus.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/tagcloud/cache"
	"github.com/IvanBrykalov/tagcloud/service"
)

// Adapter implements cache.Metrics and service.Metrics.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits     prometheus.Counter
	misses   prometheus.Counter
	evicts   *prometheus.CounterVec
	entries  prometheus.Gauge
	bytes    prometheus.Gauge
	loads    *prometheus.HistogramVec
	failures *prometheus.CounterVec
	corrupt  prometheus.Counter
}

// New constructs and registers the adapter.
//   - reg:          registry to register with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      namespace and subsystem
//   - constLabels:  static labels on every metric (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: name, Help: help, ConstLabels: constLabels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: sub, Name: name, Help: help, ConstLabels: constLabels,
		})
	}

	a := &Adapter{
		hits:    counter("cache_hits_total", "Cloud cache hits"),
		misses:  counter("cache_misses_total", "Cloud cache misses"),
		entries: gauge("cache_entries", "Number of cached cloud snapshots"),
		bytes:   gauge("cache_bytes", "Total size of cached cloud snapshots"),
		corrupt: counter("snapshot_corrupt_total", "Cached snapshots that failed to decode"),
		evicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "cache_evictions_total",
			Help: "Cloud cache evictions by reason", ConstLabels: constLabels,
		}, []string{"reason"}),
		loads: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Subsystem: sub, Name: "load_duration_seconds",
			Help:        "Time to produce a weighted cloud, by origin",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"origin"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "load_errors_total",
			Help: "Failed cloud loads, by origin", ConstLabels: constLabels,
		}, []string{"origin"}),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.entries, a.bytes, a.loads, a.failures, a.corrupt)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter for the reason.
func (a *Adapter) Evict(r cache.EvictReason) { a.evicts.WithLabelValues(r.String()).Inc() }

// Size sets the resident entry and byte gauges.
func (a *Adapter) Size(entries int, bytes int64) {
	a.entries.Set(float64(entries))
	a.bytes.Set(float64(bytes))
}

// ObserveLoad records one load; failed loads are counted but not timed.
func (a *Adapter) ObserveLoad(origin service.Origin, d time.Duration, err error) {
	if err != nil {
		a.failures.WithLabelValues(string(origin)).Inc()
		return
	}
	a.loads.WithLabelValues(string(origin)).Observe(d.Seconds())
}

// Corrupt counts a snapshot that could not be decoded.
func (a *Adapter) Corrupt() { a.corrupt.Inc() }

var (
	_ cache.Metrics   = (*Adapter)(nil)
	_ service.Metrics = (*Adapter)(nil)
)
