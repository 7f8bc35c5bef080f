// Package dataset models a pool of image/label samples for object-detection
// training and derives the per-sample representative class used for
// balance-preserving splits.
package dataset

import "sort"

// ClassID is an annotation class index. Real classes are non-negative;
// ClassEmpty marks samples whose annotation record has no objects.
type ClassID int

// ClassEmpty is the sentinel class for samples with an empty label file.
const ClassEmpty ClassID = -1

// Sample pairs one image file with its annotation file. The two share a
// common stem; Class is the representative label computed at scan time and
// fixed for the sample's lifetime.
type Sample struct {
	Stem  string
	Image string
	Label string
	Class ClassID
}

// Pool is the working set of samples at one pipeline stage. Stages return
// new pools rather than mutating their input.
type Pool []Sample

// Histogram maps a representative class to the number of samples bearing it.
type Histogram map[ClassID]int

// Histogram counts samples per representative class. The counts sum to
// the pool size.
func (p Pool) Histogram() Histogram {
	h := make(Histogram)
	for _, s := range p {
		h[s.Class]++
	}
	return h
}

// Stems returns the sample identifiers in pool order.
func (p Pool) Stems() []string {
	stems := make([]string, len(p))
	for i, s := range p {
		stems[i] = s.Stem
	}
	return stems
}

// Classes returns the histogram's classes in ascending order.
func (h Histogram) Classes() []ClassID {
	classes := make([]ClassID, 0, len(h))
	for c := range h {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
	return classes
}

// Total sums the histogram counts.
func (h Histogram) Total() int {
	n := 0
	for _, count := range h {
		n += count
	}
	return n
}
