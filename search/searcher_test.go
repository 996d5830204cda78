package search

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/docflow/ai/mock"
	"github.com/poiesic/docflow/core"
	"github.com/poiesic/docflow/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSearcherValidation(t *testing.T) {
	index, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	defer index.Close()

	_, err = NewSearcher(nil, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrIndexRequired)

	_, err = NewSearcher(index, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

func TestFindSimilar(t *testing.T) {
	ctx := context.Background()

	index, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	defer index.Close()

	provider := mock.NewMockProvider().(*mock.MockProvider)
	embedder := provider.GetMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		// Queries mentioning reports line up with the indexed report vector
		if text == "quarterly report" {
			return []float32{1, 0}, nil
		}
		return []float32{0, 1}, nil
	}

	require.NoError(t, index.Upsert(ctx,
		&core.DocumentVector{Path: "report.pdf.converted.md", Vector: []float32{1, 0.05}},
		&core.DocumentVector{Path: "slides.pptx.converted.md", Vector: []float32{0.05, 1}},
	))

	searcher, err := NewSearcher(index, provider)
	require.NoError(t, err)

	matches, err := searcher.FindSimilar(ctx, "quarterly report", 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "report.pdf.converted.md", matches[0].Entry.Path)
}

func TestFindSimilarThresholdOption(t *testing.T) {
	ctx := context.Background()

	index, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	defer index.Close()

	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}

	require.NoError(t, index.Upsert(ctx,
		&core.DocumentVector{Path: "far.pdf.converted.md", Vector: []float32{0.5, 0.866}},
	))

	searcher, err := NewSearcher(index, provider, WithMinSimilarity(0.1))
	require.NoError(t, err)

	matches, err := searcher.FindSimilar(ctx, "anything", 5)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestFindSimilarEmbedderError(t *testing.T) {
	index, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	defer index.Close()

	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	searcher, err := NewSearcher(index, provider)
	require.NoError(t, err)

	_, err = searcher.FindSimilar(context.Background(), "query", 5)
	assert.Error(t, err)
}
