package cloud

import (
	"encoding/binary"
	"math"
	"testing"
)

// Fuzz the bucketing formula with arbitrary value sets and band counts.
// Guards against panics and checks the band range and monotonicity.
func FuzzWeigh(f *testing.F) {
	f.Add([]byte{}, uint8(6))
	f.Add([]byte{0, 0, 0, 0, 0, 0, 0, 0}, uint8(1))
	f.Add([]byte("0123456789abcdef0123456789abcdef"), uint8(6))
	f.Add([]byte{0xff, 0xf8, 0, 0, 0, 0, 0, 1}, uint8(255)) // NaN pattern
	f.Add([]byte{ // 0, 1, +Inf
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0xf0, 0x3f,
		0, 0, 0, 0, 0, 0, 0xf0, 0x7f,
	}, uint8(6))
	f.Add([]byte{ // -MaxFloat64, MaxFloat64
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xef, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xef, 0x7f,
	}, uint8(6))

	f.Fuzz(func(t *testing.T, raw []byte, steps8 uint8) {
		steps := int(steps8)
		if steps == 0 {
			steps = 1
		}
		// Cap the set size; 8 bytes per value.
		const limit = 512
		if len(raw) > limit*8 {
			raw = raw[:limit*8]
		}
		vals := make([]float64, 0, len(raw)/8)
		for len(raw) >= 8 {
			vals = append(vals, math.Float64frombits(binary.LittleEndian.Uint64(raw)))
			raw = raw[8:]
		}

		ws, err := Weigh(tagsWithValues(vals...), steps)
		if err != nil {
			t.Fatalf("Weigh: %v", err)
		}
		if len(ws) != len(vals) {
			t.Fatalf("len: want %d, got %d", len(vals), len(ws))
		}
		for _, a := range ws {
			if a.Weight < 1 || a.Weight > steps {
				t.Fatalf("weight %d outside [1,%d] for %v", a.Weight, steps, a.Distributed)
			}
			// NaN compares false, so it never takes part in the ordering check.
			for _, b := range ws {
				if a.Distributed > b.Distributed && a.Weight < b.Weight {
					t.Fatalf("not monotone: %v -> %d but %v -> %d", a.Distributed, a.Weight, b.Distributed, b.Weight)
				}
			}
		}
	})
}
