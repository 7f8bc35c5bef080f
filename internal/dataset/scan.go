package dataset

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/banshee-data/datasplit/internal/fsutil"
)

// Canonical collaborator directory names under the source directory.
const (
	ImagesDirName = "all_images"
	LabelsDirName = "all_labels"
)

// Scan lists the image and label directories, pairs files by stem, and
// summarizes each annotation record into its representative class. It also
// returns the sorted union of every class index seen across all records
// (not just the representatives), which feeds the data.yaml names table.
//
// Every label file must have exactly one image with the same stem and vice
// versa; a dangling file on either side aborts the scan. Listings are
// processed in sorted order so the resulting pool order is deterministic.
func Scan(fsys fsutil.FileSystem, imageDir, labelDir string) (Pool, []ClassID, error) {
	images, err := fsys.ReadDir(imageDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list image dir: %w", err)
	}
	labels, err := fsys.ReadDir(labelDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list label dir: %w", err)
	}

	imageByStem := make(map[string]string, len(images))
	for _, name := range images {
		s := stem(name)
		if prev, ok := imageByStem[s]; ok {
			return nil, nil, fmt.Errorf("image stem %q is ambiguous: %s and %s", s, prev, name)
		}
		imageByStem[s] = name
	}

	pool := make(Pool, 0, len(labels))
	seen := make(map[ClassID]bool)
	matched := make(map[string]bool, len(labels))
	for _, name := range labels {
		s := stem(name)
		if matched[s] {
			return nil, nil, fmt.Errorf("label stem %q is ambiguous", s)
		}
		matched[s] = true

		image, ok := imageByStem[s]
		if !ok {
			return nil, nil, fmt.Errorf("label %s has no matching image in %s", name, imageDir)
		}

		data, err := fsys.ReadFile(filepath.Join(labelDir, name))
		if err != nil {
			return nil, nil, &ParseError{File: name, Err: err}
		}
		classes, err := ParseRecord(data, name)
		if err != nil {
			return nil, nil, err
		}
		for _, c := range classes {
			seen[c] = true
		}

		pool = append(pool, Sample{
			Stem:  s,
			Image: image,
			Label: name,
			Class: Representative(classes),
		})
	}

	for s, image := range imageByStem {
		if !matched[s] {
			return nil, nil, fmt.Errorf("image %s has no matching label in %s", image, labelDir)
		}
	}

	all := make([]ClassID, 0, len(seen))
	for c := range seen {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })

	return pool, all, nil
}

// stem strips the extension from a file name.
func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
