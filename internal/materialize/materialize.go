// Package materialize writes a computed split to disk: per-split
// images/labels directories, the copied sample files, and the data.yaml /
// test.yaml training configuration.
package materialize

import (
	"fmt"
	"path/filepath"

	"github.com/banshee-data/datasplit/internal/dataset"
	"github.com/banshee-data/datasplit/internal/fsutil"
	"github.com/banshee-data/datasplit/internal/split"
)

// Materialize copies every sample of every split into
// outDir/<split>/{images,labels}. Existing split directories abort the run
// unless force is set, in which case they are replaced.
func Materialize(fsys fsutil.FileSystem, srcDir, outDir string, splits *split.Splits, force bool) error {
	imageDir := filepath.Join(srcDir, dataset.ImagesDirName)
	labelDir := filepath.Join(srcDir, dataset.LabelsDirName)

	for _, part := range splits.Subsets() {
		dir := filepath.Join(outDir, part.Name)
		if fsys.Exists(dir) {
			if !force {
				return fmt.Errorf("output directory %s already exists (use -force to replace)", dir)
			}
			if err := fsys.RemoveAll(dir); err != nil {
				return fmt.Errorf("failed to remove existing %s: %w", dir, err)
			}
		}
	}

	for _, part := range splits.Subsets() {
		imagesOut := filepath.Join(outDir, part.Name, "images")
		labelsOut := filepath.Join(outDir, part.Name, "labels")
		for _, dir := range []string{imagesOut, labelsOut} {
			if err := fsys.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
		}

		for _, s := range part.Pool {
			if err := fsutil.CopyFile(fsys, filepath.Join(imageDir, s.Image), filepath.Join(imagesOut, s.Image)); err != nil {
				return fmt.Errorf("failed to copy image %s: %w", s.Image, err)
			}
			if err := fsutil.CopyFile(fsys, filepath.Join(labelDir, s.Label), filepath.Join(labelsOut, s.Label)); err != nil {
				return fmt.Errorf("failed to copy label %s: %w", s.Label, err)
			}
		}
	}

	return nil
}
