package cloud

import (
	"math/rand/v2"
	"slices"

	"github.com/pkg/errors"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Options configures a Cloud. Zero values are safe; defaults are applied in New():
//   - Steps == 0       => DefaultSteps (negative values are rejected)
//   - Locale unset     => language.Und (root collation)
//   - Rand == nil      => global math/rand/v2 source for Random
type Options struct {
	// Steps is the number of weight bands. Immutable after New.
	Steps int

	// Locale drives name collation for ByName and ByWeight.
	Locale language.Tag

	// Rand is the source used by Random. Not safe for concurrent use, like the Cloud itself.
	Rand *rand.Rand
}

// Cloud is an ordered collection of tags weighted relative to each other.
// Insertion order is preserved and duplicates are allowed.
type Cloud struct {
	id     string
	steps  int
	locale language.Tag
	rng    *rand.Rand

	tags  []WeightedTag
	dirty bool // weights are stale since the last AddTag/AddTags

	col *collate.Collator // built on first name comparison
}

// New constructs a cloud with the given id and optional initial tags.
// It returns ErrInvalidSteps if opt.Steps is negative.
func New(id string, opt Options, tags ...Tag) (*Cloud, error) {
	steps := opt.Steps
	if steps == 0 {
		steps = DefaultSteps
	}
	if steps < 0 {
		return nil, errors.Wrapf(ErrInvalidSteps, "cloud %q: got %d", id, steps)
	}
	c := &Cloud{
		id:     id,
		steps:  steps,
		locale: opt.Locale,
		rng:    opt.Rand,
		tags:   make([]WeightedTag, 0, len(tags)),
	}
	return c.AddTags(tags...), nil
}

// ID returns the opaque identifier used to derive the cache key.
func (c *Cloud) ID() string { return c.id }

// Steps returns the number of weight bands.
func (c *Cloud) Steps() int { return c.steps }

// Locale returns the collation locale.
func (c *Cloud) Locale() language.Tag { return c.locale }

// Len returns the number of tags, duplicates included.
func (c *Cloud) Len() int { return len(c.tags) }

// AddTag appends a tag and returns the cloud for chaining.
func (c *Cloud) AddTag(t Tag) *Cloud {
	c.tags = append(c.tags, WeightedTag{Tag: t})
	c.dirty = true
	return c
}

// AddTags appends tags in order and returns the cloud for chaining.
func (c *Cloud) AddTags(tags ...Tag) *Cloud {
	if len(tags) == 0 {
		return c
	}
	for _, t := range tags {
		c.tags = append(c.tags, WeightedTag{Tag: t})
	}
	c.dirty = true
	return c
}

// Tags returns a copy of the tag sequence with weights.
// Weights are recomputed only if tags were added since the last computation.
func (c *Cloud) Tags() []WeightedTag {
	c.ensureWeights()
	return slices.Clone(c.tags)
}

// CalculateWeights recomputes every weight from the current tag set and
// returns the cloud for chaining. Calling it repeatedly yields the same weights.
func (c *Cloud) CalculateWeights() *Cloud {
	weighInPlace(c.tags, c.steps)
	c.dirty = false
	return c
}

// SortBy reorders the tags in place. Unknown orders return ErrInvalidSortOrder
// and leave the cloud untouched.
func (c *Cloud) SortBy(order SortOrder) error {
	if !order.valid() {
		return errors.Wrapf(ErrInvalidSortOrder, "cloud %q: %d", c.id, int(order))
	}
	c.ensureWeights()
	return sortTags(c.tags, order, c.collator(), c.rng)
}

// Clone returns a deep copy that shares no mutable state with c.
// The copy shuffles with the global source since Options.Rand cannot be shared.
func (c *Cloud) Clone() *Cloud {
	return &Cloud{
		id:     c.id,
		steps:  c.steps,
		locale: c.locale,
		tags:   slices.Clone(c.tags),
		dirty:  c.dirty,
	}
}

func (c *Cloud) ensureWeights() {
	if c.dirty {
		c.CalculateWeights()
	}
}

func (c *Cloud) collator() *collate.Collator {
	if c.col == nil {
		c.col = collate.New(c.locale)
	}
	return c.col
}
