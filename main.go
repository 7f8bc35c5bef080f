package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/banshee-data/datasplit/internal/dataset"
	"github.com/banshee-data/datasplit/internal/fsutil"
	"github.com/banshee-data/datasplit/internal/manifest"
	"github.com/banshee-data/datasplit/internal/materialize"
	"github.com/banshee-data/datasplit/internal/prune"
	"github.com/banshee-data/datasplit/internal/report"
	"github.com/banshee-data/datasplit/internal/split"
)

var (
	srcDir       = flag.String("src", "", "source directory containing all_images/ and all_labels/")
	outDir       = flag.String("out", "", "output directory for the splits (default: same as source)")
	validFrac    = flag.Float64("valid", 0.2, "fraction to hold out for validation, 0-1")
	testFrac     = flag.Float64("test", 0, "fraction to hold out for testing, 0-1 (0 disables the test split)")
	nDump        = flag.Int("dump", -1, "number of empty-label samples to drop (-1 disables)")
	minSamples   = flag.Int("min-samples", prune.DefaultMinSamples, "minimum number of samples per class")
	randomSeed   = flag.Int64("rand", 1, "seed for random generation")
	force        = flag.Bool("force", false, "replace existing split directories")
	dryRun       = flag.Bool("dry-run", false, "analyze and report only, skip the file copy")
	chartPath    = flag.String("chart", "", "write a class-distribution HTML chart to this path")
	manifestPath = flag.String("manifest", "", "record the run in this sqlite manifest database")
)

func main() {
	flag.Parse()

	if *srcDir == "" {
		log.Fatal("-src is required")
	}

	if err := run(fsutil.OSFileSystem{}); err != nil {
		log.Fatalf("split failed: %v", err)
	}
}

func run(fsys fsutil.FileSystem) error {
	out := *outDir
	if out == "" {
		out = *srcDir
	}

	imageDir := filepath.Join(*srcDir, dataset.ImagesDirName)
	labelDir := filepath.Join(*srcDir, dataset.LabelsDirName)
	for _, dir := range []string{imageDir, labelDir} {
		if !fsys.Exists(dir) {
			return fmt.Errorf("source directory %s does not exist", dir)
		}
	}

	pool, classes, err := dataset.Scan(fsys, imageDir, labelDir)
	if err != nil {
		return err
	}
	log.Printf("scanned %d samples (%d classes)", len(pool), len(classes))

	// One seeded generator drives the whole run: empty-sample dumping and
	// both split stages. Re-running with the same seed, parameters and
	// source listing reproduces the splits exactly.
	rng := rand.New(rand.NewSource(*randomSeed))

	pruned, pruneReport, err := prune.Prune(rng, pool, prune.Options{
		NDump:         *nDump,
		DumpRequested: *nDump >= 0,
		MinSamples:    *minSamples,
	})
	if err != nil {
		return err
	}
	if removed := len(pool) - len(pruned); removed > 0 {
		log.Printf("pruned %d samples (%d dumped, %d under-represented)",
			removed, pruneReport.Dumped, pruneReport.Removed())
	}

	fractions := split.Fractions{Valid: *validFrac, Test: *testFrac, HasTest: *testFrac > 0}
	splits, err := split.Split(rng, pruned, fractions)
	if err != nil {
		return err
	}
	for _, part := range splits.Subsets() {
		log.Printf("%s: %d samples", part.Name, len(part.Pool))
	}
	if splits.Degraded() {
		log.Printf("WARNING: stratification was infeasible for at least one stage; fell back to a uniform random split")
	}

	summary := report.Run{
		Source:         *srcDir,
		Seed:           *randomSeed,
		ScannedSamples: len(pool),
		Prune:          pruneReport,
		Splits:         splits,
	}
	if err := report.Write(os.Stdout, summary); err != nil {
		return err
	}

	if *chartPath != "" {
		var buf bytes.Buffer
		if err := report.RenderChart(&buf, summary); err != nil {
			return err
		}
		if err := fsys.WriteFile(*chartPath, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write chart: %w", err)
		}
		log.Printf("wrote distribution chart to %s", *chartPath)
	}

	if *manifestPath != "" {
		db, err := manifest.Open(*manifestPath)
		if err != nil {
			return fmt.Errorf("failed to open manifest: %w", err)
		}
		defer db.Close()

		runID, err := db.RecordRun(summary)
		if err != nil {
			return err
		}
		log.Printf("recorded run %s in %s", runID, *manifestPath)
	}

	if *dryRun {
		log.Print("dry run: skipping materialization")
		return nil
	}

	if err := materialize.Materialize(fsys, *srcDir, out, splits, *force); err != nil {
		return err
	}

	names, err := materialize.LoadClassNames(fsys, *srcDir)
	if err != nil {
		log.Printf("WARNING: could not load class names from source data.yaml: %v", err)
	}
	if names == nil {
		names = materialize.GenerateClassNames(classes)
	}
	if err := materialize.WriteDataYAML(fsys, out, names, fractions.HasTest); err != nil {
		return err
	}

	log.Printf("dataset split written to %s", out)
	return nil
}
