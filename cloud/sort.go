package cloud

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/collate"
)

// SortOrder selects how SortBy reorders a cloud.
type SortOrder int

const (
	// ByName sorts ascending by locale-collated name.
	ByName SortOrder = iota
	// ByCount sorts by raw count, highest first. Ties keep their relative order.
	ByCount
	// ByWeight sorts by weight, heaviest first, then by name.
	ByWeight
	// Random shuffles uniformly (Fisher–Yates). The order is not reproducible
	// unless Options.Rand is seeded.
	Random

	sortOrderEnd
)

var sortOrderNames = [...]string{
	ByName:   "name",
	ByCount:  "count",
	ByWeight: "weight",
	Random:   "random",
}

// String returns the canonical lowercase name of the order.
func (o SortOrder) String() string {
	if !o.valid() {
		return "unknown"
	}
	return sortOrderNames[o]
}

func (o SortOrder) valid() bool { return o >= ByName && o < sortOrderEnd }

// ParseSortOrder maps "name", "count", "weight" or "random" (any case)
// to a SortOrder. Anything else returns ErrInvalidSortOrder.
func ParseSortOrder(s string) (SortOrder, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range sortOrderNames {
		if name == key {
			return SortOrder(i), nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidSortOrder, "%q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (o SortOrder) MarshalText() ([]byte, error) {
	if !o.valid() {
		return nil, errors.Wrapf(ErrInvalidSortOrder, "%d", int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *SortOrder) UnmarshalText(b []byte) error {
	v, err := ParseSortOrder(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// sortTags reorders tags in place. col is used by ByName and ByWeight;
// rng may be nil to use the global source.
func sortTags(tags []WeightedTag, order SortOrder, col *collate.Collator, rng *rand.Rand) error {
	switch order {
	case ByName:
		slices.SortStableFunc(tags, func(a, b WeightedTag) int {
			return col.CompareString(a.Name, b.Name)
		})
	case ByCount:
		slices.SortStableFunc(tags, func(a, b WeightedTag) int {
			return cmp.Compare(b.Count, a.Count)
		})
	case ByWeight:
		slices.SortStableFunc(tags, func(a, b WeightedTag) int {
			if c := cmp.Compare(b.Weight, a.Weight); c != 0 {
				return c
			}
			return col.CompareString(a.Name, b.Name)
		})
	case Random:
		swap := func(i, j int) { tags[i], tags[j] = tags[j], tags[i] }
		if rng != nil {
			rng.Shuffle(len(tags), swap)
		} else {
			rand.Shuffle(len(tags), swap)
		}
	default:
		return errors.Wrapf(ErrInvalidSortOrder, "%d", int(order))
	}
	return nil
}
