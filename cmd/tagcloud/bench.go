package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/IvanBrykalov/tagcloud/cloud"
	"github.com/IvanBrykalov/tagcloud/config"
	"github.com/IvanBrykalov/tagcloud/metrics/prom"
	"github.com/IvanBrykalov/tagcloud/source"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run a Zipf load of cloud reads and invalidations against the cached service",
	Args:  cobra.NoArgs,
	RunE:  runBench,
}

func init() {
	f := benchCmd.Flags()
	f.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
	f.Duration("duration", 10*time.Second, "benchmark duration")
	f.Int("reads", 95, "read percentage [0..100]; the rest invalidates")
	f.Int("vocabularies", 5_000, "number of generated vocabularies")
	f.Int("tags", 40, "tags per generated vocabulary")
	f.Float64("zipf-s", 1.1, "Zipf s > 1 (skew)")
	f.Float64("zipf-v", 1.0, "Zipf v >= 1")
	f.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	f.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
	f.String("metrics-addr", "", "serve Prometheus metrics at addr; empty = metrics_addr from config")
	f.String("cache-policy", "", "override cache.policy: lru | 2q")

	for key, flag := range map[string]string{
		"metrics_addr": "metrics-addr",
		"cache.policy": "cache-policy",
	} {
		if err := v.BindPFlag(key, f.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

type benchCounters struct {
	reads, invalidations, errs, total atomic.Uint64
}

func runBench(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	workers, _ := f.GetInt("workers")
	duration, _ := f.GetDuration("duration")
	readPct, _ := f.GetInt("reads")
	vocabs, _ := f.GetInt("vocabularies")
	tagsPer, _ := f.GetInt("tags")
	zipfS, _ := f.GetFloat64("zipf-s")
	zipfV, _ := f.GetFloat64("zipf-v")
	seed, _ := f.GetUint64("seed")
	pprofAddr, _ := f.GetString("pprof")

	if vocabs <= 0 || tagsPer < 0 {
		return errors.New("bench: vocabularies must be > 0 and tags >= 0")
	}
	if zipfS <= 1 || zipfV < 1 {
		return errors.New("bench: zipf-s must be > 1 and zipf-v >= 1")
	}
	workers = max(workers, 1)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !f.Changed("db") && cfg.DB.Path == config.Default().DB.Path {
		cfg.DB.Path = source.MemoryDSN
	}

	if pprofAddr != "" {
		go func() {
			slog.Info("pprof listening", "addr", pprofAddr)
			slog.Warn("pprof stopped", "error", http.ListenAndServe(pprofAddr, nil))
		}()
	}

	reg := prometheus.NewRegistry()
	met := prom.New(reg, "tagcloud", "bench", nil)
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			slog.Info("metrics listening", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Warn("metrics server stopped", "error", err)
			}
		}()
		defer srv.Close()
	}

	st, err := openStack(cfg, met)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if err := seedVocabularies(ctx, st.db, vocabs, tagsPer, seed); err != nil {
		return err
	}

	var c benchCounters
	runCtx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := range workers {
		go func() {
			defer wg.Done()
			benchWorker(runCtx, st, &c, uint64(w), seed, zipfS, zipfV, uint64(vocabs-1), readPct)
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	ops := c.total.Load()
	stats := st.mem.Stats()
	hitRate := 0.0
	if lookups := stats.Hits + stats.Misses; lookups > 0 {
		hitRate = float64(stats.Hits) / float64(lookups) * 100
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "policy=%s capacity=%d shards=%d workers=%d vocabularies=%d tags=%d dur=%v seed=%d\n",
		cfg.Cache.Policy, cfg.Cache.Capacity, st.mem.Shards(), workers, vocabs, tagsPer, elapsed.Round(time.Millisecond), seed)
	fmt.Fprintf(out, "ops=%d (%.0f ops/s)  loads=%d  invalidations=%d  errors=%d\n",
		ops, float64(ops)/elapsed.Seconds(), c.reads.Load(), c.invalidations.Load(), c.errs.Load())
	fmt.Fprintf(out, "cache hits=%d misses=%d hit-rate=%.2f%% evictions=%d entries=%d bytes=%d\n",
		stats.Hits, stats.Misses, hitRate, stats.Evictions, stats.Entries, stats.Bytes)
	return nil
}

// benchWorker owns its RNG and Zipf source; neither is goroutine-safe.
func benchWorker(ctx context.Context, st *stack, c *benchCounters, id, seed uint64, zipfS, zipfV float64, imax uint64, readPct int) {
	r := rand.New(rand.NewPCG(seed, id*9973))
	zipf := rand.NewZipf(r, zipfS, zipfV, imax)

	for ctx.Err() == nil {
		c.total.Add(1)
		vocab := vocabID(zipf.Uint64())
		if r.IntN(100) < readPct {
			c.reads.Add(1)
			if _, err := st.svc.Load(ctx, vocab); err != nil && ctx.Err() == nil {
				c.errs.Add(1)
			}
			continue
		}
		c.invalidations.Add(1)
		if err := st.svc.Invalidate(ctx, vocab); err != nil && ctx.Err() == nil {
			c.errs.Add(1)
		}
	}
}

func vocabID(n uint64) string { return "v" + strconv.FormatUint(n, 10) }

// seedVocabularies fills db with n vocabularies of Zipf-distributed counts.
func seedVocabularies(ctx context.Context, db *source.SQLite, n, tagsPer int, seed uint64) error {
	r := rand.New(rand.NewPCG(seed, 1))
	zipf := rand.NewZipf(r, 1.2, 1, 10_000)
	tags := make([]cloud.Tag, tagsPer)
	for i := range n {
		for j := range tags {
			tags[j] = cloud.NewTag("tag"+strconv.Itoa(j), int(zipf.Uint64())+1)
		}
		if err := db.Put(ctx, vocabID(uint64(i)), tags...); err != nil {
			return errors.WithMessage(err, "seeding vocabularies")
		}
	}
	slog.Info("seeded vocabularies", "count", n, "tags", tagsPer)
	return nil
}
