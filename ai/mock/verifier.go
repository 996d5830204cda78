package mock

import (
	"context"
	"sync"

	"github.com/poiesic/docflow/ai"
	"github.com/poiesic/docflow/prompt"
)

// MockVerifier is a test double for ai.Verifier.
// It allows custom behavior injection via function fields.
// Safe for concurrent use, like the interface it doubles.
type MockVerifier struct {
	// VerifyRenderingFunc is called by VerifyRendering if set.
	// If nil, every rendering matches.
	VerifyRenderingFunc func(ctx context.Context, raw ai.RawDocument, rendered string, format string, tmpl *prompt.Template) (*ai.Verdict, error)

	mu        sync.Mutex
	callCount int
}

// NewMockVerifier creates a mock verifier that accepts every rendering.
// Note: Returns concrete type to allow test assertions via GetMockVerifier().
func NewMockVerifier() *MockVerifier {
	return &MockVerifier{}
}

// VerifyRendering returns a matching verdict unless a custom function is set.
func (m *MockVerifier) VerifyRendering(ctx context.Context, raw ai.RawDocument, rendered string, format string, tmpl *prompt.Template) (*ai.Verdict, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.VerifyRenderingFunc != nil {
		return m.VerifyRenderingFunc(ctx, raw, rendered, format, tmpl)
	}

	return &ai.Verdict{
		Match: true,
		Fields: map[string]any{
			"match":    true,
			"document": raw.Name,
		},
	}, nil
}

// CallCount returns the number of times VerifyRendering was called.
func (m *MockVerifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockVerifier) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.VerifyRenderingFunc = nil
}
