package manifest

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/datasplit/internal/dataset"
	"github.com/banshee-data/datasplit/internal/prune"
	"github.com/banshee-data/datasplit/internal/report"
	"github.com/banshee-data/datasplit/internal/split"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "manifest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func fixtureRun(t *testing.T, seed int64) report.Run {
	t.Helper()

	var pool dataset.Pool
	for _, group := range []struct {
		class dataset.ClassID
		n     int
	}{{0, 40}, {1, 20}} {
		for i := 0; i < group.n; i++ {
			stem := fmt.Sprintf("c%d_%03d", group.class, i)
			pool = append(pool, dataset.Sample{Stem: stem, Image: stem + ".jpg", Label: stem + ".txt", Class: group.class})
		}
	}

	rng := rand.New(rand.NewSource(seed))
	pruned, pruneReport, err := prune.Prune(rng, pool, prune.Options{MinSamples: 10})
	require.NoError(t, err)
	splits, err := split.Split(rng, pruned, split.Fractions{Valid: 0.25})
	require.NoError(t, err)

	return report.Run{
		Source:         "testdata/src",
		Seed:           seed,
		ScannedSamples: len(pool),
		Prune:          pruneReport,
		Splits:         splits,
	}
}

func TestRecordRun(t *testing.T) {
	t.Parallel()

	t.Run("round-trips a run", func(t *testing.T) {
		t.Parallel()
		db := openTestDB(t)

		runID, err := db.RecordRun(fixtureRun(t, 1))
		require.NoError(t, err)
		require.NotEmpty(t, runID)

		latest, err := db.LatestRun()
		require.NoError(t, err)
		assert.Equal(t, runID, latest.RunID)
		assert.Equal(t, "testdata/src", latest.Source)
		assert.Equal(t, int64(1), latest.Seed)
		assert.Equal(t, 60, latest.Scanned)
		assert.Equal(t, 60, latest.Retained)
		assert.False(t, latest.Degraded)

		counts, err := db.SplitCounts(runID)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"train": 45, "valid": 15}, counts)
	})

	t.Run("stores split membership", func(t *testing.T) {
		t.Parallel()
		db := openTestDB(t)
		run := fixtureRun(t, 1)

		runID, err := db.RecordRun(run)
		require.NoError(t, err)

		stems, err := db.SplitMembers(runID, split.ValidName)
		require.NoError(t, err)
		assert.Len(t, stems, len(run.Splits.Valid))
		for _, s := range run.Splits.Valid {
			assert.Contains(t, stems, s.Stem)
		}
	})

	t.Run("identical runs record identical membership", func(t *testing.T) {
		t.Parallel()
		db := openTestDB(t)

		id1, err := db.RecordRun(fixtureRun(t, 9))
		require.NoError(t, err)
		id2, err := db.RecordRun(fixtureRun(t, 9))
		require.NoError(t, err)
		require.NotEqual(t, id1, id2)

		for _, name := range []string{split.TrainName, split.ValidName} {
			a, err := db.SplitMembers(id1, name)
			require.NoError(t, err)
			b, err := db.SplitMembers(id2, name)
			require.NoError(t, err)
			assert.Equal(t, a, b)
		}
	})

	t.Run("stores per-class counts for both phases", func(t *testing.T) {
		t.Parallel()
		db := openTestDB(t)

		runID, err := db.RecordRun(fixtureRun(t, 1))
		require.NoError(t, err)

		var n int
		err = db.QueryRow(
			"SELECT n FROM class_counts WHERE run_id = ? AND phase = 'before' AND class = 0", runID,
		).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 40, n)
	})

	t.Run("rejects an incomplete run", func(t *testing.T) {
		t.Parallel()
		db := openTestDB(t)

		_, err := db.RecordRun(report.Run{Source: "x"})
		assert.Error(t, err)
	})
}

func TestLatestRunEmpty(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	_, err := db.LatestRun()
	assert.Error(t, err)
}
