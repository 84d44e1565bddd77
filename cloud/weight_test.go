package cloud

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func tagsWithValues(vals ...float64) []Tag {
	tags := make([]Tag, len(vals))
	for i, v := range vals {
		tags[i] = Tag{Name: string(rune('a' + i)), Count: i, Distributed: v}
	}
	return tags
}

func weightsOf(ws []WeightedTag) []int {
	out := make([]int, len(ws))
	for i, w := range ws {
		out[i] = w.Weight
	}
	return out
}

// Evenly spaced values fill every band exactly once.
func TestWeigh_LinearSpread(t *testing.T) {
	t.Parallel()

	ws, err := Weigh(tagsWithValues(0, 1, 2, 3, 4, 5), 6)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, 4, 5, 6}, weightsOf(ws))
}

// Identical values collapse into band 1.
func TestWeigh_IdenticalValues(t *testing.T) {
	t.Parallel()

	ws, err := Weigh(tagsWithValues(5, 5, 5), 6)
	require.NoError(t, err)
	require.Equal(t, []int{1, 1, 1}, weightsOf(ws))
}

func TestWeigh_SingleTag(t *testing.T) {
	t.Parallel()

	ws, err := Weigh(tagsWithValues(42), 6)
	require.NoError(t, err)
	require.Equal(t, []int{1}, weightsOf(ws))
}

func TestWeigh_Empty(t *testing.T) {
	t.Parallel()

	ws, err := Weigh(nil, 6)
	require.NoError(t, err)
	require.Empty(t, ws)
}

// Only differences matter, so shifting every value leaves weights unchanged.
func TestWeigh_NegativeValuesTranslationInvariant(t *testing.T) {
	t.Parallel()

	pos, err := Weigh(tagsWithValues(0, 1.5, 3, 7, 10), 4)
	require.NoError(t, err)
	neg, err := Weigh(tagsWithValues(-100, -98.5, -97, -93, -90), 4)
	require.NoError(t, err)
	require.Equal(t, weightsOf(pos), weightsOf(neg))
	require.Equal(t, 4, neg[len(neg)-1].Weight)
}

func TestWeigh_InvalidSteps(t *testing.T) {
	t.Parallel()

	for _, steps := range []int{0, -1, -6} {
		_, err := Weigh(tagsWithValues(1, 2), steps)
		require.ErrorIs(t, err, ErrInvalidSteps)
		require.ErrorIs(t, err, ErrInvalidConfig)
	}
}

func TestWeigh_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	tags := tagsWithValues(3, 1, 2)
	before := append([]Tag(nil), tags...)
	ws, err := Weigh(tags, 3)
	require.NoError(t, err)
	require.Equal(t, before, tags)
	for i := range ws {
		require.Equal(t, tags[i], ws[i].Tag, "order must be preserved")
	}
}

// NaN and infinities never escape the band range.
func TestWeigh_NonFiniteValuesClamped(t *testing.T) {
	t.Parallel()

	ws, err := Weigh(tagsWithValues(math.NaN(), 1, math.Inf(1), math.Inf(-1), 2), 5)
	require.NoError(t, err)
	require.Equal(t, []int{1, 1, 5, 1, 5}, weightsOf(ws))
}

// Infinities take the outer bands and leave the finite range alone.
func TestWeigh_InfinityPinnedToOuterBands(t *testing.T) {
	t.Parallel()

	ws, err := Weigh(tagsWithValues(0, 1, math.Inf(1)), 6)
	require.NoError(t, err)
	require.Equal(t, []int{1, 6, 6}, weightsOf(ws))

	ws, err = Weigh(tagsWithValues(math.Inf(-1), 0, 1), 6)
	require.NoError(t, err)
	require.Equal(t, []int{1, 1, 6}, weightsOf(ws))

	ws, err = Weigh(tagsWithValues(math.Inf(1), math.Inf(-1)), 4)
	require.NoError(t, err)
	require.Equal(t, []int{4, 1}, weightsOf(ws))
}

// A range wider than float64 can represent still spans every band.
func TestWeigh_OverflowingRange(t *testing.T) {
	t.Parallel()

	ws, err := Weigh(tagsWithValues(-math.MaxFloat64, 0, math.MaxFloat64), 6)
	require.NoError(t, err)
	require.Equal(t, []int{1, 3, 6}, weightsOf(ws))

	ws, err = Weigh(tagsWithValues(math.MaxFloat64, -math.MaxFloat64), 2)
	require.NoError(t, err)
	require.Equal(t, []int{2, 1}, weightsOf(ws))
}

// Randomized property check: band range, monotonicity, max reachability
// and order preservation over many generated sets.
func TestWeigh_Properties(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(1, 2))
	for iter := 0; iter < 500; iter++ {
		n := 1 + r.IntN(64)
		steps := 1 + r.IntN(12)
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = (r.Float64() - 0.3) * 50
		}
		tags := tagsWithValues(vals...)
		ws, err := Weigh(tags, steps)
		require.NoError(t, err)
		require.Len(t, ws, n)

		maxV := math.Inf(-1)
		for _, v := range vals {
			maxV = math.Max(maxV, v)
		}
		for i, a := range ws {
			require.Equal(t, tags[i], a.Tag)
			require.GreaterOrEqual(t, a.Weight, 1)
			require.LessOrEqual(t, a.Weight, steps)
			if a.Distributed == maxV && spread(vals) >= minRange {
				require.Equal(t, steps, a.Weight, "max value must reach the last band")
			}
			for _, b := range ws {
				if a.Distributed > b.Distributed {
					require.GreaterOrEqual(t, a.Weight, b.Weight)
				}
			}
		}
	}
}

func spread(vals []float64) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	return hi - lo
}

func TestDistribute(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0.0, Distribute(0))
	require.Equal(t, 0.0, Distribute(1))
	require.InDelta(t, math.Log(100), Distribute(100), 1e-12)

	tag := NewTag("go", 20)
	require.Equal(t, "go", tag.Name)
	require.Equal(t, 20, tag.Count)
	require.InDelta(t, math.Log(20), tag.Distributed, 1e-12)
}
