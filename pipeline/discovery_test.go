package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/docflow/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, file := range files {
		path := filepath.Join(root, file)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
	}
}

func TestDiscoverSelectsRawDocuments(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"report.pdf",
		"slides.pptx",
		"sub/notes.docx",
		// derived artifacts and sidecars must never be picked up as inputs
		"report.pdf.converted.md",
		"report.pdf.metadata.json",
		"report.pdf.analysis.json",
		"report.pdf.converted.embedding.json",
		// prompts and tooling
		"validate.validate.prompt.yaml",
		".github/prompts/doc-analysis.analysis.prompt.yaml",
		"README.md",
	)

	docs, err := Discover(root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "report.pdf"),
		filepath.Join(root, "slides.pptx"),
		filepath.Join(root, "sub", "notes.docx"),
	}, docs)
}

func TestDiscoverSkipsDerivedDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"report.pdf",
		"report.pdf.converted/page1.png",
		".hidden/secret.pdf",
	)

	docs, err := Discover(root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "report.pdf")}, docs)
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestDiscoverConverted(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"a.pdf",
		"a.pdf.converted.md",
		"b.pdf.converted.md",
		"b.pdf.converted.html",
		"sub/c.docx.converted.md",
		".hidden/d.pdf.converted.md",
	)

	artifacts, err := DiscoverConverted(root, []core.OutputFormat{core.FormatMarkdown})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.pdf.converted.md"),
		filepath.Join(root, "b.pdf.converted.md"),
		filepath.Join(root, "sub", "c.docx.converted.md"),
	}, artifacts)

	artifacts, err = DiscoverConverted(root, []core.OutputFormat{core.FormatMarkdown, core.FormatHTML})
	require.NoError(t, err)
	assert.Len(t, artifacts, 4)
}
