package prom

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/IvanBrykalov/tagcloud/cache"
	"github.com/IvanBrykalov/tagcloud/service"
)

func TestAdapter_CacheSignals(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := New(reg, "tagcloud", "", prometheus.Labels{"instance": "test"})

	m, err := cache.New(cache.Options{Capacity: 1, Shards: 1, Metrics: a})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	_ = m.Set(ctx, "a", []byte("xx"))
	_ = m.Set(ctx, "b", []byte("yyy")) // evicts a
	_, _ = m.Get(ctx, "a")
	_, _ = m.Get(ctx, "b")

	if got := testutil.ToFloat64(a.hits); got != 1 {
		t.Fatalf("hits=%v, want 1", got)
	}
	if got := testutil.ToFloat64(a.misses); got != 1 {
		t.Fatalf("misses=%v, want 1", got)
	}
	if got := testutil.ToFloat64(a.evicts.WithLabelValues("policy")); got != 1 {
		t.Fatalf("policy evictions=%v, want 1", got)
	}
	if got := testutil.ToFloat64(a.entries); got != 1 {
		t.Fatalf("entries=%v, want 1", got)
	}
	if got := testutil.ToFloat64(a.bytes); got != 3 {
		t.Fatalf("bytes=%v, want 3", got)
	}
}

func TestAdapter_LoadSignals(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := New(reg, "tagcloud", "svc", nil)

	a.ObserveLoad(service.OriginCache, time.Millisecond, nil)
	a.ObserveLoad(service.OriginSource, 3*time.Millisecond, nil)
	a.ObserveLoad(service.OriginSource, time.Millisecond, errors.New("boom"))
	a.Corrupt()

	if n := testutil.CollectAndCount(a.loads); n != 2 {
		t.Fatalf("load series=%d, want 2", n)
	}
	if got := testutil.ToFloat64(a.failures.WithLabelValues("source")); got != 1 {
		t.Fatalf("source failures=%v, want 1", got)
	}
	if got := testutil.ToFloat64(a.corrupt); got != 1 {
		t.Fatalf("corrupt=%v, want 1", got)
	}

	const want = `
# HELP tagcloud_svc_snapshot_corrupt_total Cached snapshots that failed to decode
# TYPE tagcloud_svc_snapshot_corrupt_total counter
tagcloud_svc_snapshot_corrupt_total 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "tagcloud_svc_snapshot_corrupt_total"); err != nil {
		t.Fatal(err)
	}
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg, "tagcloud", "", nil)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	New(reg, "tagcloud", "", nil)
}
