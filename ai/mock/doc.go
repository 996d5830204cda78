// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Verifier, ai.Analyzer,
// ai.Embedder, and ai.Provider for use in unit tests. The mocks allow tests
// to run without external AI service dependencies and enable controlled,
// deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockVerifier := mock.NewMockVerifier()
//	mockVerifier.VerifyRenderingFunc = func(ctx context.Context, raw ai.RawDocument, rendered, format string, tmpl *prompt.Template) (*ai.Verdict, error) {
//	    return &ai.Verdict{Match: false}, nil
//	}
//
//	// Check call counts
//	count := mockVerifier.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockVerifier: Every rendering matches its source document
//   - MockAnalyzer: Returns a small JSON summary of its input
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockProvider: Aggregates the three mock services
package mock
