package convert

import (
	"testing"

	"github.com/poiesic/docflow/core"
	"github.com/stretchr/testify/assert"
)

func TestIsRawDocument(t *testing.T) {
	assert.True(t, IsRawDocument("docs/report.pdf"))
	assert.True(t, IsRawDocument("docs/slides.PPTX"))
	assert.True(t, IsRawDocument("scan.jpeg"))
	assert.False(t, IsRawDocument("notes.md"))
	assert.False(t, IsRawDocument("report.pdf.converted.md"))
	assert.False(t, IsRawDocument("report.pdf.metadata.json"))
}

func TestIsDerived(t *testing.T) {
	assert.True(t, IsDerived("report.pdf.converted.md"))
	assert.True(t, IsDerived("report.pdf.metadata.json"))
	assert.True(t, IsDerived("report.pdf.converted.embedding.json"))
	assert.True(t, IsDerived("report.pdf.analysis.json"))
	assert.True(t, IsDerived("report.pdf.analysis.finance.json"))
	assert.False(t, IsDerived("report.pdf"))
	assert.False(t, IsDerived("analysis.prompt.yaml"))
}

func TestArtifactPaths(t *testing.T) {
	converted := ConvertedPath("docs/report.pdf", core.FormatMarkdown)
	assert.Equal(t, "docs/report.pdf.converted.md", converted)

	assert.Equal(t, "docs/report.pdf.analysis.json", AnalysisPath(converted, ""))
	assert.Equal(t, "docs/report.pdf.analysis.finance.json", AnalysisPath(converted, "finance"))
	assert.Equal(t, "docs/report.pdf.converted.embedding.json", EmbeddingPath(converted))
	assert.Equal(t, "docs/report.pdf", SourcePath(converted))
}
