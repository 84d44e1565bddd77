package cache

import (
	"math/rand"
	"strconv"
	"sync/atomic"
	"testing"
)

// benchmarkMix runs a read/write mix against a warm store with snapshot-sized
// values. Keys use the cloud key prefix so hashing sees realistic input.
func benchmarkMix(b *testing.B, readsPct int, snapshot int) {
	m, err := New(Options{Capacity: 100_000})
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = m.Close() })

	val := make([]byte, snapshot)
	for i := 0; i < 50_000; i++ {
		_ = m.Set(bg, "tagadelic_cloud_"+strconv.Itoa(i), val)
	}

	b.ReportAllocs()
	b.SetBytes(int64(snapshot))
	b.ResetTimer()

	var seed int64 = 1
	keyMask := (1 << 16) - 1

	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		i := 0
		for pb.Next() {
			k := "tagadelic_cloud_" + strconv.Itoa(i&keyMask)
			if r.Intn(100) < readsPct {
				_, _ = m.Get(bg, k)
			} else {
				_ = m.Set(bg, k, val)
			}
			i++
		}
	})
}

func BenchmarkMemory_90r10w_1KiB(b *testing.B) { benchmarkMix(b, 90, 1<<10) }
func BenchmarkMemory_50r50w_1KiB(b *testing.B) { benchmarkMix(b, 50, 1<<10) }
func BenchmarkMemory_90r10w_16KiB(b *testing.B) { benchmarkMix(b, 90, 16<<10) }
