package mock

import (
	"context"
	"sync"
	"testing"

	"github.com/poiesic/docflow/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockVerifierDefaults(t *testing.T) {
	verifier := NewMockVerifier()

	verdict, err := verifier.VerifyRendering(context.Background(), ai.RawDocument{Name: "a.pdf"}, "rendered", "markdown", nil)
	require.NoError(t, err)
	assert.True(t, verdict.Match)
	assert.Equal(t, "a.pdf", verdict.Fields["document"])
	assert.Equal(t, 1, verifier.CallCount())

	verifier.Reset()
	assert.Equal(t, 0, verifier.CallCount())
}

func TestMockEmbedderDeterministic(t *testing.T) {
	embedder := NewMockEmbedder()

	v1, err := embedder.EmbedText(context.Background(), "same text")
	require.NoError(t, err)
	v2, err := embedder.EmbedText(context.Background(), "same text")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Len(t, v1, 8)

	v3, err := embedder.EmbedText(context.Background(), "different text")
	require.NoError(t, err)
	assert.NotEqual(t, v1, v3)
	assert.Equal(t, 3, embedder.CallCount())
}

// The doubled interfaces require thread safety; the pipeline drives them from
// concurrent workers, so the counters must hold up under parallel callers.
func TestMocksConcurrentCallCounting(t *testing.T) {
	const callers = 32

	verifier := NewMockVerifier()
	analyzer := NewMockAnalyzer()
	embedder := NewMockEmbedder()

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = verifier.VerifyRendering(context.Background(), ai.RawDocument{Name: "doc"}, "rendered", "markdown", nil)
			_, _ = analyzer.Analyze(context.Background(), nil, "document text")
			_, _ = embedder.EmbedText(context.Background(), "document text")
			_, _ = embedder.EmbedTexts(context.Background(), []string{"a", "b"})
		}()
	}
	wg.Wait()

	assert.Equal(t, callers, verifier.CallCount())
	assert.Equal(t, callers, analyzer.CallCount())
	assert.Equal(t, 2*callers, embedder.CallCount())
}
