package split

import (
	"fmt"
	"math/rand"

	"github.com/banshee-data/datasplit/internal/dataset"
)

// Split partition names, also used as output directory names.
const (
	TrainName = "train"
	ValidName = "valid"
	TestName  = "test"
)

// Fractions carries the requested split ratios for one run.
type Fractions struct {
	Valid   float64
	Test    float64
	HasTest bool
}

// Validate checks the ratio ranges and that a positive train fraction
// remains.
func (f Fractions) Validate() error {
	if f.Valid <= 0 || f.Valid >= 1 {
		return &dataset.ConfigError{Reason: fmt.Sprintf("validation fraction must be in (0,1), got %g", f.Valid)}
	}
	if f.HasTest {
		if f.Test <= 0 || f.Test >= 1 {
			return &dataset.ConfigError{Reason: fmt.Sprintf("test fraction must be in (0,1), got %g", f.Test)}
		}
		if f.Valid+f.Test >= 1 {
			return &dataset.ConfigError{
				Reason: fmt.Sprintf("validation and test fractions sum to %g, leaving no train fraction", f.Valid+f.Test),
			}
		}
	}
	return nil
}

// Splits is the terminal state of one orchestration: disjoint partitions
// covering the pruned pool, plus the per-stage partition results.
type Splits struct {
	Train dataset.Pool
	Valid dataset.Pool
	Test  dataset.Pool

	HasTest bool
	Stages  []Result
}

// Subset is one named split partition.
type Subset struct {
	Name string
	Pool dataset.Pool
}

// Subsets returns the populated splits in train, valid, test order.
func (s *Splits) Subsets() []Subset {
	parts := []Subset{
		{Name: TrainName, Pool: s.Train},
		{Name: ValidName, Pool: s.Valid},
	}
	if s.HasTest {
		parts = append(parts, Subset{Name: TestName, Pool: s.Test})
	}
	return parts
}

// Degraded reports whether any stage fell back to the unstratified split.
func (s *Splits) Degraded() bool {
	for _, stage := range s.Stages {
		if stage.Method == MethodFallback {
			return true
		}
	}
	return false
}

// Split partitions the pool according to the requested fractions.
//
// A two-way run is a single partition at the validation fraction. A
// three-way run chains two: first hold out valid+test of the pool, then
// hold out test/(valid+test) of that remainder — the partitioner is binary,
// so the second fraction is relative to the remainder, not the pool. If any
// stage fails, no partial result is returned.
func Split(rng *rand.Rand, pool dataset.Pool, fr Fractions) (*Splits, error) {
	if err := fr.Validate(); err != nil {
		return nil, err
	}

	if !fr.HasTest {
		train, valid, res, err := Partition(rng, pool, fr.Valid)
		if err != nil {
			return nil, fmt.Errorf("train/valid split failed: %w", err)
		}
		return &Splits{Train: train, Valid: valid, Stages: []Result{res}}, nil
	}

	combined := fr.Valid + fr.Test
	train, rest, first, err := Partition(rng, pool, combined)
	if err != nil {
		return nil, fmt.Errorf("train/rest split failed: %w", err)
	}

	valid, test, second, err := Partition(rng, rest, fr.Test/combined)
	if err != nil {
		return nil, fmt.Errorf("valid/test split failed: %w", err)
	}

	return &Splits{
		Train:   train,
		Valid:   valid,
		Test:    test,
		HasTest: true,
		Stages:  []Result{first, second},
	}, nil
}
