package ai

import (
	"context"

	"github.com/poiesic/docflow/prompt"
)

// RawDocument carries the raw source bytes handed to the verification
// service alongside the rendered text.
type RawDocument struct {
	Name string // file name, for the service's context window
	MIME string // content type, e.g. "application/pdf"
	Data []byte
}

// Verdict is the structured pass/fail result of a verification call.
// Match reflects the service's judgement that the rendered text faithfully
// represents the raw document; Fields preserves the full parsed response.
type Verdict struct {
	Match  bool
	Fields map[string]any
}

// Verifier compares a rendered document against its raw source.
// Implementations must be thread-safe for concurrent use.
//
// A negative verdict is NOT an error: the call succeeded and the content
// disagreed. Errors are reserved for the service itself failing.
type Verifier interface {
	VerifyRendering(ctx context.Context, raw RawDocument, rendered string, format string, tmpl *prompt.Template) (*Verdict, error)
}

// Analyzer runs an analysis prompt over a document's text and returns the
// model's response verbatim. Implementations must be thread-safe for
// concurrent use.
type Analyzer interface {
	Analyze(ctx context.Context, tmpl *prompt.Template, document string) (string, error)
}

// Embedder generates vector embeddings from text for semantic similarity
// search. Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains embeddings in the same order as the
	// input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider aggregates the AI services behind the pipeline for convenient
// initialization and lifecycle management. The handle is constructed once and
// injected into the pipeline; there is no module-global client state.
type Provider interface {
	// Verifier returns the rendering verification service.
	Verifier() Verifier

	// Analyzer returns the document analysis service.
	Analyzer() Analyzer

	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	Close() error
}
