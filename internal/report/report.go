// Package report renders run diagnostics: a plain-text summary for logs and
// an optional HTML class-distribution chart.
package report

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/datasplit/internal/dataset"
	"github.com/banshee-data/datasplit/internal/prune"
	"github.com/banshee-data/datasplit/internal/split"
)

// Run collects everything one pipeline run produced, for reporting and for
// the manifest.
type Run struct {
	Source string
	Seed   int64

	// ScannedSamples is the pool size before pruning.
	ScannedSamples int

	Prune  *prune.Report
	Splits *split.Splits
}

// ClassName formats a class for human-readable output.
func ClassName(c dataset.ClassID) string {
	if c == dataset.ClassEmpty {
		return "empty"
	}
	return fmt.Sprintf("class %d", c)
}

// Write emits the plain-text run report. The format is for humans and logs;
// nothing parses it.
func Write(w io.Writer, run Run) error {
	fmt.Fprintf(w, "source: %s (seed %d)\n", run.Source, run.Seed)
	fmt.Fprintf(w, "scanned %d samples\n", run.ScannedSamples)

	if run.Prune != nil {
		fmt.Fprintf(w, "\nclass distribution before pruning:\n")
		writeHistogram(w, run.Prune.Before)

		if run.Prune.Dumped > 0 {
			fmt.Fprintf(w, "dumped %d empty-label samples\n", run.Prune.Dumped)
		}
		if len(run.Prune.RemovedClasses) > 0 {
			fmt.Fprintf(w, "removed %d samples from %d under-represented classes:\n",
				run.Prune.Removed(), len(run.Prune.RemovedClasses))
			for _, class := range histogramClasses(run.Prune.RemovedClasses) {
				fmt.Fprintf(w, "  %s: %d samples\n", ClassName(class), run.Prune.RemovedClasses[class])
			}
		}
		if run.Prune.Dumped > 0 || len(run.Prune.RemovedClasses) > 0 {
			fmt.Fprintf(w, "\nclass distribution after pruning:\n")
			writeHistogram(w, run.Prune.After)
		}
		if len(run.Prune.After) > 0 {
			mean, stddev := histogramStats(run.Prune.After)
			fmt.Fprintf(w, "per-class samples: mean %.1f, stddev %.1f\n", mean, stddev)
		}
	}

	if run.Splits != nil {
		fmt.Fprintf(w, "\nsplit stages:\n")
		for i, stage := range run.Splits.Stages {
			fmt.Fprintf(w, "  stage %d: %s split at %.3f", i+1, stage.Method, stage.Fraction)
			if stage.Reason != "" {
				fmt.Fprintf(w, " (%s)", stage.Reason)
			}
			fmt.Fprintln(w)
		}
		for _, part := range run.Splits.Subsets() {
			fmt.Fprintf(w, "  %s: %d samples\n", part.Name, len(part.Pool))
		}
		if run.Splits.Degraded() {
			fmt.Fprintf(w, "  WARNING: at least one stage used the unstratified fallback; class balance is not guaranteed\n")
		}
	}

	return nil
}

func writeHistogram(w io.Writer, h dataset.Histogram) {
	for _, class := range h.Classes() {
		fmt.Fprintf(w, "  %s: %d samples\n", ClassName(class), h[class])
	}
}

func histogramClasses(m map[dataset.ClassID]int) []dataset.ClassID {
	return dataset.Histogram(m).Classes()
}

// histogramStats summarizes how balanced the retained classes are.
func histogramStats(h dataset.Histogram) (mean, stddev float64) {
	counts := make([]float64, 0, len(h))
	for _, class := range h.Classes() {
		counts = append(counts, float64(h[class]))
	}
	return stat.Mean(counts, nil), stat.PopStdDev(counts, nil)
}
