package materialize

import (
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/datasplit/internal/dataset"
	"github.com/banshee-data/datasplit/internal/fsutil"
)

// dataConfig is the training configuration schema consumed downstream.
type dataConfig struct {
	Path  string         `yaml:"path"`
	Train string         `yaml:"train"`
	Val   string         `yaml:"val"`
	Test  string         `yaml:"test,omitempty"`
	Names map[int]string `yaml:"names"`
}

// LoadClassNames reads the class-name table from srcDir/data.yaml when one
// exists. Both the mapping form (id: name) and the list form are accepted.
// A missing file returns nil without error; the caller falls back to
// generated names.
func LoadClassNames(fsys fsutil.FileSystem, srcDir string) (map[int]string, error) {
	path := filepath.Join(srcDir, "data.yaml")
	if !fsys.Exists(path) {
		return nil, nil
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc struct {
		Names yaml.Node `yaml:"names"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	switch doc.Names.Kind {
	case yaml.MappingNode:
		names := make(map[int]string)
		if err := doc.Names.Decode(&names); err != nil {
			return nil, fmt.Errorf("failed to parse names table in %s: %w", path, err)
		}
		return names, nil
	case yaml.SequenceNode:
		var list []string
		if err := doc.Names.Decode(&list); err != nil {
			return nil, fmt.Errorf("failed to parse names list in %s: %w", path, err)
		}
		names := make(map[int]string, len(list))
		for i, name := range list {
			names[i] = name
		}
		return names, nil
	default:
		return nil, nil
	}
}

// GenerateClassNames builds a generic names table for the given classes.
// The empty sentinel is not a trainable class and is skipped.
func GenerateClassNames(classes []dataset.ClassID) map[int]string {
	names := make(map[int]string, len(classes))
	for _, c := range classes {
		if c == dataset.ClassEmpty {
			continue
		}
		names[int(c)] = fmt.Sprintf("class_%d", c)
	}
	return names
}

// WriteDataYAML writes outDir/data.yaml and, for three-way splits,
// outDir/test.yaml (the same configuration with val pointed at the test
// images, used for held-out evaluation).
func WriteDataYAML(fsys fsutil.FileSystem, outDir string, names map[int]string, hasTest bool) error {
	root := outDir
	if abs, err := filepath.Abs(outDir); err == nil {
		root = abs
	}

	cfg := dataConfig{
		Path:  root,
		Train: "train/images",
		Val:   "valid/images",
		Names: names,
	}
	if hasTest {
		cfg.Test = "test/images"
	}

	if err := writeYAML(fsys, filepath.Join(outDir, "data.yaml"), cfg); err != nil {
		return err
	}

	if hasTest {
		testCfg := cfg
		testCfg.Val = "test/images"
		if err := writeYAML(fsys, filepath.Join(outDir, "test.yaml"), testCfg); err != nil {
			return err
		}
	}

	return nil
}

func writeYAML(fsys fsutil.FileSystem, path string, cfg dataConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := fsys.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
