// Package cloud computes weighted tag clouds.
//
// Design
//
//   - Weighting: every tag carries a Distributed value (usually ln(count)).
//     The cloud scans the set once for min/max and buckets each tag into one of
//     Steps bands (default 6) with
//
//     weight = 1 + floor(steps * (d - min) / range)
//     range  = max(0.01, max - min) * 1.0001
//
//     The 0.01 floor keeps a set of identical values in band 1; the 1.0001
//     widening keeps the maximum inside band Steps. Results are clamped into
//     [1, Steps] regardless.
//
//   - Purity: weights are not written into Tag values. Weigh returns a new
//     []WeightedTag in input order, so one Tag may belong to several clouds.
//
//   - Laziness: a Cloud recomputes weights on read only after AddTag/AddTags
//     marked it dirty. CalculateWeights forces a recomputation.
//
//   - Sorting: SortBy takes a closed SortOrder (ByName, ByCount, ByWeight,
//     Random). Names are compared with a locale collator from golang.org/x/text.
//
// Basic usage
//
//	c, err := cloud.New("vocabulary-3", cloud.Options{Steps: 6},
//	    cloud.NewTag("go", 120),
//	    cloud.NewTag("rust", 40),
//	)
//	if err != nil {
//	    return err
//	}
//	c.AddTag(cloud.NewTag("zig", 3))
//	if err := c.SortBy(cloud.ByName); err != nil {
//	    return err
//	}
//	for _, t := range c.Tags() {
//	    fmt.Println(t.Name, t.Weight)
//	}
//
// Thread-safety
//
// A Cloud is not safe for concurrent use; callers sharing one must serialize
// access or hand out copies via Clone.
package cloud
