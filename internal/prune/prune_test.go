package prune

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/datasplit/internal/dataset"
)

// makePool builds a pool with the given number of samples per class,
// in deterministic stem order.
func makePool(counts map[dataset.ClassID]int) dataset.Pool {
	var pool dataset.Pool
	for _, class := range (dataset.Histogram)(counts).Classes() {
		for i := 0; i < counts[class]; i++ {
			stem := fmt.Sprintf("c%d_%03d", class, i)
			pool = append(pool, dataset.Sample{
				Stem: stem, Image: stem + ".jpg", Label: stem + ".txt", Class: class,
			})
		}
	}
	return pool
}

func TestPruneMinSamples(t *testing.T) {
	t.Parallel()

	t.Run("classes below threshold are removed", func(t *testing.T) {
		t.Parallel()
		pool := makePool(map[dataset.ClassID]int{0: 20, 1: 3, 2: 10})

		kept, report, err := Prune(rand.New(rand.NewSource(1)), pool, Options{MinSamples: 10})
		require.NoError(t, err)

		assert.Len(t, kept, 30)
		assert.Equal(t, map[dataset.ClassID]int{1: 3}, report.RemovedClasses)
		assert.Equal(t, 3, report.Removed())
		assert.Equal(t, dataset.Histogram{0: 20, 1: 3, 2: 10}, report.Before)
		assert.Equal(t, dataset.Histogram{0: 20, 2: 10}, report.After)

		// Every retained class meets the threshold.
		for class, count := range kept.Histogram() {
			assert.GreaterOrEqual(t, count, 10, "class %d", class)
		}
	})

	t.Run("empty sentinel class is filtered like any other", func(t *testing.T) {
		t.Parallel()
		pool := makePool(map[dataset.ClassID]int{dataset.ClassEmpty: 2, 0: 15})

		kept, report, err := Prune(rand.New(rand.NewSource(1)), pool, Options{MinSamples: 10})
		require.NoError(t, err)
		assert.Len(t, kept, 15)
		assert.Equal(t, map[dataset.ClassID]int{dataset.ClassEmpty: 2}, report.RemovedClasses)
	})

	t.Run("pool order is preserved", func(t *testing.T) {
		t.Parallel()
		pool := makePool(map[dataset.ClassID]int{0: 12, 1: 2, 2: 12})

		kept, _, err := Prune(rand.New(rand.NewSource(1)), pool, Options{MinSamples: 10})
		require.NoError(t, err)

		var want []string
		for _, s := range pool {
			if s.Class != 1 {
				want = append(want, s.Stem)
			}
		}
		assert.Equal(t, want, kept.Stems())
	})

	t.Run("input pool is not mutated", func(t *testing.T) {
		t.Parallel()
		pool := makePool(map[dataset.ClassID]int{0: 12, 1: 2})
		before := append(dataset.Pool(nil), pool...)

		_, _, err := Prune(rand.New(rand.NewSource(1)), pool, Options{MinSamples: 10})
		require.NoError(t, err)
		assert.Equal(t, before, pool)
	})

	t.Run("filter is single pass, not fixed point", func(t *testing.T) {
		t.Parallel()
		// Class 1 sits exactly at the threshold and survives even though a
		// fixed-point filter over the shrinking pool might reconsider it.
		pool := makePool(map[dataset.ClassID]int{0: 5, 1: 10})

		kept, report, err := Prune(rand.New(rand.NewSource(1)), pool, Options{MinSamples: 10})
		require.NoError(t, err)
		assert.Equal(t, map[dataset.ClassID]int{0: 5}, report.RemovedClasses)
		assert.Equal(t, dataset.Histogram{1: 10}, kept.Histogram())
	})
}

func TestPruneDump(t *testing.T) {
	t.Parallel()

	t.Run("removes exactly n empty samples", func(t *testing.T) {
		t.Parallel()
		pool := makePool(map[dataset.ClassID]int{dataset.ClassEmpty: 12, 0: 20})

		kept, report, err := Prune(rand.New(rand.NewSource(1)), pool, Options{
			NDump: 5, DumpRequested: true, MinSamples: 1,
		})
		require.NoError(t, err)

		assert.Equal(t, 5, report.Dumped)
		assert.Len(t, kept, 27)
		assert.Equal(t, 7, kept.Histogram()[dataset.ClassEmpty])
		assert.Equal(t, 20, kept.Histogram()[0], "non-empty samples are untouched")
	})

	t.Run("dump is reproducible for a given seed", func(t *testing.T) {
		t.Parallel()
		pool := makePool(map[dataset.ClassID]int{dataset.ClassEmpty: 20, 0: 20})
		opts := Options{NDump: 10, DumpRequested: true, MinSamples: 1}

		a, _, err := Prune(rand.New(rand.NewSource(7)), pool, opts)
		require.NoError(t, err)
		b, _, err := Prune(rand.New(rand.NewSource(7)), pool, opts)
		require.NoError(t, err)
		assert.Equal(t, a.Stems(), b.Stems())
	})

	t.Run("requesting more than available is a config error", func(t *testing.T) {
		t.Parallel()
		pool := makePool(map[dataset.ClassID]int{dataset.ClassEmpty: 3, 0: 20})

		_, _, err := Prune(rand.New(rand.NewSource(1)), pool, Options{
			NDump: 5, DumpRequested: true, MinSamples: 10,
		})

		var cerr *dataset.ConfigError
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("dump of zero is a no-op", func(t *testing.T) {
		t.Parallel()
		pool := makePool(map[dataset.ClassID]int{dataset.ClassEmpty: 3, 0: 20})

		kept, _, err := Prune(rand.New(rand.NewSource(1)), pool, Options{
			NDump: 0, DumpRequested: true, MinSamples: 1,
		})
		require.NoError(t, err)
		assert.Len(t, kept, 23)
	})
}

func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults are valid", Options{MinSamples: DefaultMinSamples}, false},
		{"min samples of one is valid", Options{MinSamples: 1}, false},
		{"zero min samples rejected", Options{MinSamples: 0}, true},
		{"negative dump rejected", Options{NDump: -1, DumpRequested: true, MinSamples: 10}, true},
		{"negative dump ignored when not requested", Options{NDump: -1, MinSamples: 10}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.opts.Validate()
			if tt.wantErr {
				var cerr *dataset.ConfigError
				assert.ErrorAs(t, err, &cerr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
