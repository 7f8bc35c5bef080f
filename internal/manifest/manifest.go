// Package manifest records pipeline runs in a sqlite database so successive
// splits over the same source can be compared and reproduced.
package manifest

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/datasplit/internal/dataset"
	"github.com/banshee-data/datasplit/internal/report"
)

type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the manifest database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id            TEXT PRIMARY KEY,
			source            TEXT,
			seed              BIGINT,
			scanned           BIGINT,
			retained          BIGINT,
			degraded          BOOLEAN,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS run_stages (
			run_id            TEXT,
			stage             BIGINT,
			method            TEXT,
			fraction          DOUBLE,
			reason            TEXT,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
		CREATE TABLE IF NOT EXISTS class_counts (
			run_id            TEXT,
			phase             TEXT,
			class             BIGINT,
			n                 BIGINT,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
		CREATE TABLE IF NOT EXISTS split_members (
			run_id            TEXT,
			split             TEXT,
			stem              TEXT,
			class             BIGINT,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db}, nil
}

// RecordRun stores one completed run and returns its generated id. The
// whole run is written in a single transaction so a crash never leaves a
// partial manifest entry.
func (db *DB) RecordRun(run report.Run) (string, error) {
	if run.Prune == nil || run.Splits == nil {
		return "", fmt.Errorf("run is incomplete: prune and split results are required")
	}

	runID := uuid.NewString()

	tx, err := db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO runs (run_id, source, seed, scanned, retained, degraded) VALUES (?, ?, ?, ?, ?, ?)",
		runID, run.Source, run.Seed, run.ScannedSamples, run.Prune.After.Total(), run.Splits.Degraded(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}

	for i, stage := range run.Splits.Stages {
		_, err = tx.Exec(
			"INSERT INTO run_stages (run_id, stage, method, fraction, reason) VALUES (?, ?, ?, ?, ?)",
			runID, i+1, stage.Method.String(), stage.Fraction, stage.Reason,
		)
		if err != nil {
			return "", fmt.Errorf("failed to record stage %d: %w", i+1, err)
		}
	}

	if err := insertCounts(tx, runID, "before", run.Prune.Before); err != nil {
		return "", err
	}
	if err := insertCounts(tx, runID, "after", run.Prune.After); err != nil {
		return "", err
	}

	for _, part := range run.Splits.Subsets() {
		for _, s := range part.Pool {
			_, err = tx.Exec(
				"INSERT INTO split_members (run_id, split, stem, class) VALUES (?, ?, ?, ?)",
				runID, part.Name, s.Stem, int(s.Class),
			)
			if err != nil {
				return "", fmt.Errorf("failed to record %s member %s: %w", part.Name, s.Stem, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

func insertCounts(tx *sql.Tx, runID, phase string, hist dataset.Histogram) error {
	for _, class := range hist.Classes() {
		_, err := tx.Exec(
			"INSERT INTO class_counts (run_id, phase, class, n) VALUES (?, ?, ?, ?)",
			runID, phase, int(class), hist[class],
		)
		if err != nil {
			return fmt.Errorf("failed to record %s count for class %d: %w", phase, class, err)
		}
	}
	return nil
}

// RunSummary is one row of the runs table.
type RunSummary struct {
	RunID    string
	Source   string
	Seed     int64
	Scanned  int
	Retained int
	Degraded bool
}

// LatestRun returns the most recently recorded run.
func (db *DB) LatestRun() (*RunSummary, error) {
	row := db.QueryRow(
		"SELECT run_id, source, seed, scanned, retained, degraded FROM runs ORDER BY timestamp DESC, run_id DESC LIMIT 1",
	)

	var s RunSummary
	if err := row.Scan(&s.RunID, &s.Source, &s.Seed, &s.Scanned, &s.Retained, &s.Degraded); err != nil {
		return nil, err
	}
	return &s, nil
}

// SplitCounts returns the number of members per split for a run.
func (db *DB) SplitCounts(runID string) (map[string]int, error) {
	rows, err := db.Query(
		"SELECT split, COUNT(*) FROM split_members WHERE run_id = ? GROUP BY split",
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var split string
		var n int
		if err := rows.Scan(&split, &n); err != nil {
			return nil, err
		}
		counts[split] = n
	}
	return counts, rows.Err()
}

// SplitMembers returns the sorted stems assigned to one split of a run.
func (db *DB) SplitMembers(runID, split string) ([]string, error) {
	rows, err := db.Query(
		"SELECT stem FROM split_members WHERE run_id = ? AND split = ? ORDER BY stem",
		runID, split,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stems []string
	for rows.Next() {
		var stem string
		if err := rows.Scan(&stem); err != nil {
			return nil, err
		}
		stems = append(stems, stem)
	}
	return stems, rows.Err()
}
