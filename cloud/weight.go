package cloud

import (
	"math"

	"github.com/pkg/errors"
)

const (
	// DefaultSteps is the number of weight bands used when Options.Steps is zero.
	DefaultSteps = 6

	// minRange keeps a set of identical values from producing a zero-width range.
	minRange = 0.01
	// rangeWidening pushes the maximum value just below the Steps+1 boundary.
	rangeWidening = 1.0001
)

// Weigh buckets tags into steps bands relative to the whole slice.
// The result has the same length and order as tags; tags itself is not modified.
// An empty slice yields an empty result.
func Weigh(tags []Tag, steps int) ([]WeightedTag, error) {
	if steps <= 0 {
		return nil, errors.Wrapf(ErrInvalidSteps, "got %d", steps)
	}
	out := make([]WeightedTag, len(tags))
	for i := range tags {
		out[i].Tag = tags[i]
	}
	weighInPlace(out, steps)
	return out, nil
}

// weighInPlace assigns Weight on every element; steps must already be valid.
func weighInPlace(tags []WeightedTag, steps int) {
	if len(tags) == 0 {
		return
	}

	// Only finite values define the range; infinities are pinned to the
	// outer bands by band.
	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for i := range tags {
		d := tags[i].Distributed
		if math.IsInf(d, 0) {
			continue
		}
		if d < lo {
			lo = d
		}
		if d > hi {
			hi = d
		}
	}

	scale := 1.0
	span := math.Max(minRange, hi-lo) * rangeWidening
	if math.IsInf(span, 1) {
		// The range overflows float64; weigh quartered values instead.
		scale = 0.25
		span = (hi*scale - lo*scale) * rangeWidening
	}
	for i := range tags {
		tags[i].Weight = band(tags[i].Distributed*scale, lo*scale, span, steps)
	}
}

// band maps d into [1, steps].
func band(d, lo, span float64, steps int) int {
	switch {
	case math.IsInf(d, 1):
		return steps
	case math.IsInf(d, -1):
		return 1
	}
	f := math.Floor(float64(steps) * ((d - lo) / span))
	// NaN compares false everywhere; send it to the lowest band.
	if !(f >= 0) {
		return 1
	}
	if f >= float64(steps) {
		return steps
	}
	return 1 + int(f)
}
