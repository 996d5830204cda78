package badger

import (
	"context"
	"testing"

	"github.com/poiesic/docflow/core"
	"github.com/poiesic/docflow/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) storage.VectorIndex {
	t.Helper()
	index, err := NewMemoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })
	return index
}

func TestUpsertAndGet(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)

	entry := &core.DocumentVector{
		Path:        "docs/report.pdf.converted.md",
		Fingerprint: "abc",
		Model:       "embeddinggemma",
		Vector:      []float32{3, 4},
	}
	require.NoError(t, index.Upsert(ctx, entry))

	got, err := index.Get(ctx, entry.Path)
	require.NoError(t, err)
	assert.Equal(t, entry.Path, got.Path)
	assert.Equal(t, "abc", got.Fingerprint)
	assert.False(t, got.IndexedAt.IsZero())

	// Vectors are normalized on write
	assert.InDelta(t, 0.6, got.Vector[0], 1e-6)
	assert.InDelta(t, 0.8, got.Vector[1], 1e-6)
}

func TestUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)

	path := "docs/report.pdf.converted.md"
	require.NoError(t, index.Upsert(ctx, &core.DocumentVector{Path: path, Fingerprint: "v1", Vector: []float32{1, 0}}))
	require.NoError(t, index.Upsert(ctx, &core.DocumentVector{Path: path, Fingerprint: "v2", Vector: []float32{0, 1}}))

	got, err := index.Get(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Fingerprint)
}

func TestGetMissing(t *testing.T) {
	index := newTestIndex(t)

	_, err := index.Get(context.Background(), "docs/absent.pdf.converted.md")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)

	path := "docs/report.pdf.converted.md"
	require.NoError(t, index.Upsert(ctx, &core.DocumentVector{Path: path, Vector: []float32{1, 0}}))
	require.NoError(t, index.Delete(ctx, path))

	_, err := index.Get(ctx, path)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Deleting a missing path reports not found
	assert.ErrorIs(t, index.Delete(ctx, path), storage.ErrNotFound)
}

func TestFindSimilar(t *testing.T) {
	ctx := context.Background()
	index := newTestIndex(t)

	require.NoError(t, index.Upsert(ctx,
		&core.DocumentVector{Path: "a.converted.md", Vector: []float32{1, 0}},
		&core.DocumentVector{Path: "b.converted.md", Vector: []float32{0.9, 0.1}},
		&core.DocumentVector{Path: "c.converted.md", Vector: []float32{0, 1}},
	))

	matches, err := index.FindSimilar(ctx, []float32{1, 0}, 0.5, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// Highest similarity first
	assert.Equal(t, "a.converted.md", matches[0].Entry.Path)
	assert.Equal(t, "b.converted.md", matches[1].Entry.Path)
	assert.Greater(t, matches[0].Score, matches[1].Score)

	t.Run("limit caps results", func(t *testing.T) {
		matches, err := index.FindSimilar(ctx, []float32{1, 0}, 0.5, 1)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "a.converted.md", matches[0].Entry.Path)
	})

	t.Run("invalid limit rejected", func(t *testing.T) {
		_, err := index.FindSimilar(ctx, []float32{1, 0}, 0.5, 0)
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	})
}
