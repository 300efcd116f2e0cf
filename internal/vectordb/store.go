package vectordb

import "context"

// VectorStore holds the chunks of every uploaded document. Chunks are
// grouped by their source filename so a re-upload can replace them.
type VectorStore interface {
	AddDocuments(ctx context.Context, docs []Document) error

	// Search returns up to limit chunks ranked by similarity to query,
	// optionally restricted by filter. An empty store yields no results.
	Search(ctx context.Context, query string, limit int, filter *SearchFilter) ([]SearchResult, error)

	DeleteBySource(ctx context.Context, source string) error

	// ReplaceSource swaps the chunks of source for docs. On error the
	// previous chunks are still in place.
	ReplaceSource(ctx context.Context, source string, docs []Document) error

	// Persist and Load write and read a snapshot under dir.
	Persist(ctx context.Context, dir string) error
	Load(ctx context.Context, dir string) error

	// Count is the number of chunks held.
	Count() int
}
