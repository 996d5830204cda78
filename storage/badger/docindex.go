package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docflow/core"
	"github.com/poiesic/docflow/storage"
)

// DocumentIndex implements storage.VectorIndex for BadgerDB.
type DocumentIndex struct {
	backend *Backend
}

var _ storage.VectorIndex = (*DocumentIndex)(nil)

// NewDocumentIndex creates a document index on an existing backend.
func NewDocumentIndex(backend *Backend) (*DocumentIndex, error) {
	return &DocumentIndex{
		backend: backend,
	}, nil
}

// NewVectorIndex opens a BadgerDB-backed vector index at the given path.
//
// Returns storage.VectorIndex interface to enforce abstraction.
// Closing the index closes the underlying database.
func NewVectorIndex(path string) (storage.VectorIndex, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return NewDocumentIndex(backend)
}

// Close closes the underlying database.
func (r *DocumentIndex) Close() error {
	return r.backend.Close()
}

// WithTransaction executes a function within a transaction.
func (r *DocumentIndex) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Upsert inserts or replaces the vector entries for their document paths.
func (r *DocumentIndex) Upsert(ctx context.Context, entries ...*core.DocumentVector) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			if err := core.ValidateDocumentVector(entry); err != nil {
				return err
			}
			if entry.IndexedAt.IsZero() {
				entry.IndexedAt = time.Now().UTC()
			}
			entry.Vector = core.NormalizeVector(entry.Vector)

			key := makeDocVectorKey(entry.Id())
			value := storage.MarshalDocumentVector(entry)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Get retrieves the vector entry for a document path.
func (r *DocumentIndex) Get(ctx context.Context, path string) (*core.DocumentVector, error) {
	var result *core.DocumentVector
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocVectorKey(core.IDFromContent(path))
		var err error
		result, err = readDocVector(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// Delete removes the vector entries for the given document paths.
func (r *DocumentIndex) Delete(ctx context.Context, paths ...string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, path := range paths {
			key := makeDocVectorKey(core.IDFromContent(path))

			// Read first so missing paths surface as ErrNotFound
			entry, err := readDocVector(tx, key)
			if err != nil {
				return err
			}
			if entry == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// FindSimilar finds indexed documents similar to the given vector.
// Stored vectors are normalized on write, so cosine similarity reduces to
// a dot product.
func (r *DocumentIndex) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.VectorMatch, error) {
	if limit < 1 {
		return nil, storage.ErrInvalidQuery
	}

	query := core.NormalizeVector(vector)

	var results []*core.VectorMatch
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(docVectorPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			var entry *core.DocumentVector
			err := item.Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalDocumentVector(val)
				return err
			})
			if err != nil {
				return err
			}
			if entry == nil || len(entry.Vector) == 0 {
				continue
			}

			similarity := dotProduct(query, entry.Vector)
			if similarity >= minSimilarity {
				results = append(results, &core.VectorMatch{
					Entry: entry,
					Score: similarity,
				})
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.VectorMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// readDocVector reads a document vector entry from the transaction.
func readDocVector(tx *badger.Txn, key []byte) (*core.DocumentVector, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entry *core.DocumentVector
	err = item.Value(func(val []byte) error {
		var err error
		entry, err = storage.UnmarshalDocumentVector(val)
		return err
	})
	return entry, err
}
