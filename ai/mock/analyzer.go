package mock

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/poiesic/docflow/prompt"
)

// MockAnalyzer is a test double for ai.Analyzer.
// It allows custom behavior injection via function fields.
// Safe for concurrent use, like the interface it doubles.
type MockAnalyzer struct {
	// AnalyzeFunc is called by Analyze if set.
	// If nil, returns a small JSON summary of the document.
	AnalyzeFunc func(ctx context.Context, tmpl *prompt.Template, document string) (string, error)

	mu        sync.Mutex
	callCount int
}

// NewMockAnalyzer creates a mock analyzer with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockAnalyzer().
func NewMockAnalyzer() *MockAnalyzer {
	return &MockAnalyzer{}
}

// Analyze returns a deterministic JSON report unless a custom function is set.
func (m *MockAnalyzer) Analyze(ctx context.Context, tmpl *prompt.Template, document string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, tmpl, document)
	}

	name := ""
	if tmpl != nil {
		name = tmpl.Name
	}
	out, err := json.Marshal(map[string]any{
		"prompt": name,
		"length": len(document),
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// CallCount returns the number of times Analyze was called.
func (m *MockAnalyzer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockAnalyzer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.AnalyzeFunc = nil
}
