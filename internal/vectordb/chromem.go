package vectordb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ziadkadry99/docchat/internal/embeddings"
)

const collectionName = "documents"

// ChromemStore implements VectorStore using chromem-go.
type ChromemStore struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
}

// NewChromemStore creates a new in-memory ChromemStore.
func NewChromemStore(embedder embeddings.Embedder) (*ChromemStore, error) {
	db := chromem.NewDB()
	ef := embeddings.ToChromemFunc(embedder)

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{
		db:         db,
		collection: col,
		embedFunc:  ef,
	}, nil
}

func (s *ChromemStore) AddDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	chromDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		chromDocs[i] = chromem.Document{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: metadataToMap(doc.Metadata),
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection.AddDocuments(ctx, chromDocs, 1)
}

func (s *ChromemStore) Search(ctx context.Context, query string, limit int, filter *SearchFilter) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// chromem-go requires nResults <= collection size.
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := s.collection.Query(ctx, query, limit, buildWhereClause(filter), nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	searchResults := make([]SearchResult, len(results))
	for i, r := range results {
		searchResults[i] = SearchResult{
			Document: Document{
				ID:       r.ID,
				Content:  r.Content,
				Metadata: mapToMetadata(r.Metadata),
			},
			Similarity: r.Similarity,
		}
	}

	return searchResults, nil
}

func (s *ChromemStore) DeleteBySource(ctx context.Context, source string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection.Delete(ctx, map[string]string{"source": source}, nil)
}

// ReplaceSource stores docs as the chunks of source and then drops the
// chunks source held before. Every chunk is embedded before the store is
// touched, so a failed embedding leaves the previous chunks searchable.
func (s *ChromemStore) ReplaceSource(ctx context.Context, source string, docs []Document) error {
	if len(docs) == 0 {
		return s.DeleteBySource(ctx, source)
	}

	chromDocs := make([]chromem.Document, len(docs))
	fresh := make(map[string]bool, len(docs))
	for i, doc := range docs {
		vec, err := s.embedFunc(ctx, doc.Content)
		if err != nil {
			return fmt.Errorf("embedding chunk %s: %w", doc.ID, err)
		}
		chromDocs[i] = chromem.Document{
			ID:        doc.ID,
			Content:   doc.Content,
			Metadata:  metadataToMap(doc.Metadata),
			Embedding: vec,
		}
		fresh[doc.ID] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, err := s.sourceIDs(ctx, source, chromDocs[0].Embedding)
	if err != nil {
		return err
	}

	// Nothing left can fail on the network; finish even if ctx ends now.
	ctx = context.WithoutCancel(ctx)
	if err := s.collection.AddDocuments(ctx, chromDocs, 1); err != nil {
		return err
	}

	var stale []string
	for _, id := range old {
		if !fresh[id] {
			stale = append(stale, id)
		}
	}
	if len(stale) == 0 {
		return nil
	}
	return s.collection.Delete(ctx, nil, nil, stale...)
}

// sourceIDs lists the ids of every chunk of source. chromem has no listing
// call, so it runs a query wide enough to return them all.
func (s *ChromemStore) sourceIDs(ctx context.Context, source string, vec []float32) ([]string, error) {
	n := s.collection.Count()
	if n == 0 {
		return nil, nil
	}
	results, err := s.collection.QueryEmbedding(ctx, vec, n, map[string]string{"source": source}, nil)
	if err != nil {
		return nil, fmt.Errorf("listing chunks of %s: %w", source, err)
	}
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids, nil
}

// SnapshotFile is the name of the compressed snapshot Persist writes.
const SnapshotFile = "chromem.gob.gz"

// Persist writes a snapshot to dir. The snapshot is written to a
// temporary file and renamed so an interrupted upload never leaves a
// truncated store behind.
func (s *ChromemStore) Persist(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	final := filepath.Join(dir, SnapshotFile)
	tmp := final + ".tmp"

	s.mu.RLock()
	err := s.db.ExportToFile(tmp, true, "")
	s.mu.RUnlock()
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("export to file: %w", err)
	}
	return os.Rename(tmp, final)
}

func (s *ChromemStore) Load(ctx context.Context, dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.ImportFromFile(filepath.Join(dir, SnapshotFile), ""); err != nil {
		return fmt.Errorf("import from file: %w", err)
	}

	// Re-acquire collection reference after import.
	col := s.db.GetCollection(collectionName, s.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	s.collection = col
	return nil
}

func (s *ChromemStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection.Count()
}

// metadataToMap converts DocumentMetadata to a flat map[string]string for chromem.
func metadataToMap(m DocumentMetadata) map[string]string {
	return map[string]string{
		"source":       m.Source,
		"upload_id":    m.UploadID,
		"chunk_index":  strconv.Itoa(m.ChunkIndex),
		"last_updated": m.LastUpdated.Format(time.RFC3339),
	}
}

// mapToMetadata converts a flat map[string]string back to DocumentMetadata.
func mapToMetadata(m map[string]string) DocumentMetadata {
	chunkIndex, _ := strconv.Atoi(m["chunk_index"])
	lastUpdated, _ := time.Parse(time.RFC3339, m["last_updated"])

	return DocumentMetadata{
		Source:      m["source"],
		UploadID:    m["upload_id"],
		ChunkIndex:  chunkIndex,
		LastUpdated: lastUpdated,
	}
}

// buildWhereClause converts a SearchFilter to a chromem where clause.
func buildWhereClause(filter *SearchFilter) map[string]string {
	if filter == nil {
		return nil
	}

	where := make(map[string]string)
	if filter.Source != nil {
		where["source"] = *filter.Source
	}
	if filter.UploadID != nil {
		where["upload_id"] = *filter.UploadID
	}

	if len(where) == 0 {
		return nil
	}
	return where
}
