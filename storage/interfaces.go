package storage

import (
	"context"

	"github.com/poiesic/docflow/core"
)

// VectorIndex provides persistent storage for document embedding vectors.
// Implementations must be thread-safe and support concurrent access.
type VectorIndex interface {
	// Upsert inserts or replaces the vector entries for their document paths.
	// Sets IndexedAt if not already set.
	Upsert(ctx context.Context, entries ...*core.DocumentVector) error

	// Get retrieves the vector entry for a document path.
	// Returns ErrNotFound if the path has never been indexed.
	Get(ctx context.Context, path string) (*core.DocumentVector, error)

	// Delete removes the vector entries for the given document paths.
	// Returns ErrNotFound if any path does not exist.
	Delete(ctx context.Context, paths ...string) error

	// FindSimilar finds indexed documents similar to the given vector.
	// Returns entries with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.VectorMatch, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}
