// Package prune removes low-signal samples from a pool before splitting:
// a requested number of empty-label samples, then every sample whose
// representative class has too few members to train on.
package prune

import (
	"fmt"
	"math/rand"

	"github.com/banshee-data/datasplit/internal/dataset"
)

// DefaultMinSamples is the minimum per-class sample count retained when no
// override is given.
const DefaultMinSamples = 10

// Options configures the two pruning passes.
type Options struct {
	// NDump is the number of empty-label samples to remove. Only consulted
	// when DumpRequested is set.
	NDump         int
	DumpRequested bool

	// MinSamples is the minimum number of samples a class must retain.
	MinSamples int
}

// Validate checks the option ranges. Violations are configuration errors
// reported before any pool mutation.
func (o Options) Validate() error {
	if o.DumpRequested && o.NDump < 0 {
		return &dataset.ConfigError{Reason: fmt.Sprintf("dump count must be non-negative, got %d", o.NDump)}
	}
	if o.MinSamples < 1 {
		return &dataset.ConfigError{Reason: fmt.Sprintf("min samples must be at least 1, got %d", o.MinSamples)}
	}
	return nil
}

// Report describes what pruning removed and why.
type Report struct {
	// Before and After are the class histograms at entry and exit.
	Before dataset.Histogram
	After  dataset.Histogram

	// Dumped is the number of empty-label samples removed by request.
	Dumped int

	// RemovedClasses maps each class dropped by the minimum-sample filter
	// to the number of samples it had at filter time.
	RemovedClasses map[dataset.ClassID]int
}

// Removed is the total number of samples the filter pass dropped.
func (r *Report) Removed() int {
	n := 0
	for _, count := range r.RemovedClasses {
		n += count
	}
	return n
}

// Prune applies the empty-sample dump followed by the minimum-sample filter
// and returns the surviving pool. The input pool is not modified.
//
// The filter is a single pass over the post-dump histogram: a class dragged
// below the threshold by another class's removal is only caught by a
// subsequent run, matching the tool's historical behavior.
func Prune(rng *rand.Rand, pool dataset.Pool, opts Options) (dataset.Pool, *Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}

	report := &Report{
		Before:         pool.Histogram(),
		RemovedClasses: make(map[dataset.ClassID]int),
	}

	if opts.DumpRequested {
		dumped, err := dumpEmpty(rng, pool, opts.NDump)
		if err != nil {
			return nil, nil, err
		}
		pool = dumped
		report.Dumped = opts.NDump
	}

	hist := pool.Histogram()
	for class, count := range hist {
		if count < opts.MinSamples {
			report.RemovedClasses[class] = count
		}
	}

	if len(report.RemovedClasses) > 0 {
		kept := make(dataset.Pool, 0, len(pool))
		for _, s := range pool {
			if _, drop := report.RemovedClasses[s.Class]; !drop {
				kept = append(kept, s)
			}
		}
		pool = kept
	}

	report.After = pool.Histogram()
	return pool, report, nil
}

// dumpEmpty removes exactly n empty-label samples chosen uniformly without
// replacement. Requesting more than exist is a configuration error and
// nothing is removed.
func dumpEmpty(rng *rand.Rand, pool dataset.Pool, n int) (dataset.Pool, error) {
	var empties []int
	for i, s := range pool {
		if s.Class == dataset.ClassEmpty {
			empties = append(empties, i)
		}
	}

	if n > len(empties) {
		return nil, &dataset.ConfigError{
			Reason: fmt.Sprintf("requested dump of %d empty samples but the pool only has %d", n, len(empties)),
		}
	}

	drop := make(map[int]bool, n)
	for _, pick := range rng.Perm(len(empties))[:n] {
		drop[empties[pick]] = true
	}

	kept := make(dataset.Pool, 0, len(pool)-n)
	for i, s := range pool {
		if !drop[i] {
			kept = append(kept, s)
		}
	}
	return kept, nil
}
