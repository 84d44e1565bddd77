package cloud

import "math"

// Tag is a single entry of a cloud.
//
// Distributed is the weighting input: a monotonic, dampened transform of
// Count supplied by the caller. NewTag uses the natural logarithm.
type Tag struct {
	ID          string  `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string  `json:"name" yaml:"name"`
	Count       int     `json:"count" yaml:"count"`
	Distributed float64 `json:"distributed" yaml:"distributed"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Link        string  `json:"link,omitempty" yaml:"link,omitempty"`
}

// NewTag returns a tag whose Distributed value is ln(count).
// Counts below 1 are treated as 1 so the value stays finite.
func NewTag(name string, count int) Tag {
	return Tag{Name: name, Count: count, Distributed: Distribute(count)}
}

// Distribute is the default dampening transform, ln(max(count, 1)).
func Distribute(count int) float64 {
	if count < 1 {
		count = 1
	}
	return math.Log(float64(count))
}

// WeightedTag pairs a tag with the band it was assigned in one cloud.
type WeightedTag struct {
	Tag    `yaml:",inline"`
	Weight int `json:"weight" yaml:"weight"`
}
