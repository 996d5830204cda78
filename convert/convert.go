package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/poiesic/docflow/core"
)

// Converter renders a raw document into one or more textual output formats.
// Implementations must be safe for concurrent use; the pipeline invokes one
// conversion per worker.
type Converter interface {
	// Convert renders the document at sourcePath and writes one artifact per
	// requested format next to the source. It returns the written path per
	// format. Malformed input is reported as a *ConversionError.
	Convert(ctx context.Context, sourcePath string, formats []core.OutputFormat) (map[core.OutputFormat]string, error)
}

// ConversionError indicates the rendering service rejected the document as
// malformed. It is a per-document failure, never fatal to the whole run
// unless the run is fail-fast.
type ConversionError struct {
	Path string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion of %s failed: %v", e.Path, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// rawSuffixes are the file suffixes treated as raw pipeline inputs.
var rawSuffixes = map[string]bool{
	".pdf":  true,
	".docx": true,
	".pptx": true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
	".webp": true,
	".svg":  true,
}

// IsRawDocument reports whether the path has a raw-document suffix.
func IsRawDocument(path string) bool {
	return rawSuffixes[strings.ToLower(filepath.Ext(path))]
}

// IsDerived reports whether the file name denotes a pipeline output rather
// than a source: converted artifacts, metadata sidecars, analysis results,
// and embedding files. Derived files must never be fed back in as inputs.
func IsDerived(name string) bool {
	lower := strings.ToLower(name)
	if strings.Contains(lower, ".converted.") {
		return true
	}
	if strings.HasSuffix(lower, ".metadata.json") {
		return true
	}
	if strings.HasSuffix(lower, ".embedding.json") {
		return true
	}
	if strings.HasSuffix(lower, ".analysis.json") || isTopicAnalysis(lower) {
		return true
	}
	return false
}

func isTopicAnalysis(lower string) bool {
	// matches <doc>.analysis.<topic>.json
	if !strings.HasSuffix(lower, ".json") {
		return false
	}
	return strings.Contains(lower, ".analysis.")
}

// ConvertedPath returns the artifact path produced for a document in the
// given format, e.g. report.pdf -> report.pdf.converted.md. Idempotent naming
// lets a rerun overwrite an orphaned artifact instead of duplicating it.
func ConvertedPath(docPath string, format core.OutputFormat) string {
	return docPath + format.ConvertedSuffix()
}

// AnalysisPath returns the analysis output path for a converted document,
// optionally topic-qualified: report.pdf.converted.md ->
// report.pdf.analysis.json or report.pdf.analysis.<topic>.json.
func AnalysisPath(convertedPath string, topic string) string {
	base := strings.TrimSuffix(convertedPath, filepath.Ext(convertedPath))
	base = strings.TrimSuffix(base, ".converted")
	if topic == "" {
		return base + ".analysis.json"
	}
	return base + ".analysis." + topic + ".json"
}

// SourcePath returns the raw document path a converted artifact was produced
// from: report.pdf.converted.md -> report.pdf.
func SourcePath(convertedPath string) string {
	base := strings.TrimSuffix(convertedPath, filepath.Ext(convertedPath))
	return strings.TrimSuffix(base, ".converted")
}

// EmbeddingPath returns the embedding artifact path for a converted document:
// report.pdf.converted.md -> report.pdf.converted.embedding.json.
func EmbeddingPath(convertedPath string) string {
	return strings.TrimSuffix(convertedPath, filepath.Ext(convertedPath)) + ".embedding.json"
}
