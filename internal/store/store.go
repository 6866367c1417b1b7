// Package store persists the FAQ corpus and cached embedding vectors in
// SQLite. The search core only reads from it at snapshot build time; writes
// come from the ingestion/admin path.
package store

import (
	"context"

	"faqsearch/pkg/faq"
)

// Store is the document store for FAQ entries and their cached vectors.
type Store interface {
	// ListAll returns every entry with its cached embedding (if any), in
	// stable insertion order. This is the snapshot-build read path.
	ListAll(ctx context.Context) ([]*faq.Entry, error)

	// GetByID returns a single entry or faq.ErrNotFound.
	GetByID(ctx context.Context, id string) (*faq.Entry, error)

	// Upsert inserts or replaces an entry's document fields. The cached
	// embedding for an updated question is cleared, since it no longer
	// matches the text.
	Upsert(ctx context.Context, entry *faq.Entry) error

	// Append inserts a new entry; faq.ErrAlreadyExists if the id is taken.
	Append(ctx context.Context, entry *faq.Entry) error

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// SaveEmbedding stores the vector for an entry, replacing any previous
	// one. Provider and model are recorded so stale vectors are detectable.
	SaveEmbedding(ctx context.Context, faqID string, vector []float32, provider, model string) error

	// CountEmbedded returns how many entries have a cached vector.
	CountEmbedded(ctx context.Context) (int, error)

	// DeleteEmbeddings drops every cached vector. Used when the embedding
	// provider changes, which invalidates the whole semantic space.
	DeleteEmbeddings(ctx context.Context) error

	Close() error
}
