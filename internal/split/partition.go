// Package split partitions a pool of labeled samples into disjoint subsets
// whose per-class proportions approximate the requested fractions, with a
// uniform-random fallback when stratification is infeasible.
package split

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/banshee-data/datasplit/internal/dataset"
)

// Method identifies which algorithm produced a partition.
type Method int

const (
	// MethodStratified preserved per-class proportions across both sides.
	MethodStratified Method = iota
	// MethodFallback split the pool uniformly at random, ignoring classes.
	MethodFallback
)

func (m Method) String() string {
	switch m {
	case MethodStratified:
		return "stratified"
	case MethodFallback:
		return "fallback"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Result describes one partition invocation. Callers inspect Method rather
// than relying on error-based control flow: a fallback is a degraded but
// valid outcome, and Reason says why stratification was abandoned.
type Result struct {
	Method   Method
	Fraction float64
	Reason   string
}

// Partition splits the pool into (kept, heldOut) with heldOut holding
// approximately fraction f of every class. If any class is too small to put
// at least one member on each side, stratification is infeasible and the
// whole pool is split uniformly at random instead; the Result flags which
// path ran. Both paths leave kept and heldOut disjoint, covering, and in
// pool order, and both are deterministic for a given generator state.
func Partition(rng *rand.Rand, pool dataset.Pool, f float64) (kept, heldOut dataset.Pool, res Result, err error) {
	if f <= 0 || f >= 1 {
		return nil, nil, Result{}, &dataset.ConfigError{
			Reason: fmt.Sprintf("split fraction must be in (0,1), got %g", f),
		}
	}

	res.Fraction = f

	// One global permutation drives both paths, so a run consumes the same
	// amount of randomness whichever path it takes.
	perm := rng.Perm(len(pool))

	held, reason := stratify(pool, perm, f)
	if reason == "" {
		res.Method = MethodStratified
	} else {
		res.Method = MethodFallback
		res.Reason = reason
		held = make(map[int]bool)
		for _, i := range perm[:int(f*float64(len(pool)))] {
			held[i] = true
		}
	}

	kept = make(dataset.Pool, 0, len(pool)-len(held))
	heldOut = make(dataset.Pool, 0, len(held))
	for i, s := range pool {
		if held[i] {
			heldOut = append(heldOut, s)
		} else {
			kept = append(kept, s)
		}
	}
	return kept, heldOut, res, nil
}

// stratify reserves round(f*count) members of each class, drawn in
// permutation order. It returns a non-empty reason instead of a held-out
// set when some class cannot place a member on both sides.
func stratify(pool dataset.Pool, perm []int, f float64) (map[int]bool, string) {
	if len(pool) == 0 {
		return nil, "pool is empty"
	}

	byClass := make(map[dataset.ClassID][]int)
	for _, i := range perm {
		class := pool[i].Class
		byClass[class] = append(byClass[class], i)
	}

	held := make(map[int]bool)
	for _, class := range pool.Histogram().Classes() {
		members := byClass[class]
		take := int(math.Round(f * float64(len(members))))
		if take == 0 || take == len(members) {
			return nil, fmt.Sprintf("class %d has %d samples, too few to hold out %g of them", class, len(members), f)
		}
		for _, i := range members[:take] {
			held[i] = true
		}
	}
	return held, ""
}
