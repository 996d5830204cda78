package pipeline

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/poiesic/docflow/convert"
	"github.com/poiesic/docflow/core"
	"github.com/poiesic/docflow/metadata"
)

// Discover walks the source tree and returns the raw documents eligible for
// processing, sorted by path. Derived artifacts, sidecars, and anything under
// a derived-artifact directory are excluded so outputs are never reprocessed
// as inputs.
func Discover(root string) ([]string, error) {
	var docs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			// Hidden directories hold prompts and tooling, not documents.
			if strings.HasPrefix(name, ".") || strings.Contains(name, ".converted") {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if metadata.IsSidecar(name) || convert.IsDerived(name) {
			return nil
		}
		if !convert.IsRawDocument(path) {
			return nil
		}
		docs = append(docs, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(docs)
	return docs, nil
}

// DiscoverConverted walks the source tree and returns every converted
// artifact in one of the given formats, sorted by path. This is the input set
// for the global embedding phase.
func DiscoverConverted(root string, formats []core.OutputFormat) ([]string, error) {
	suffixes := make([]string, len(formats))
	for i, format := range formats {
		suffixes[i] = format.ConvertedSuffix()
	}

	var artifacts []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		for _, suffix := range suffixes {
			if strings.HasSuffix(path, suffix) {
				artifacts = append(artifacts, path)
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(artifacts)
	return artifacts, nil
}
