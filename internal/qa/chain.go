package qa

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ziadkadry99/docchat/internal/llm"
	"github.com/ziadkadry99/docchat/internal/vectordb"
)

// Options configures a Chain. Zero K and ChunkSize take the defaults.
type Options struct {
	K            int
	ChunkSize    int
	ChunkOverlap int
	Model        string
	MaxTokens    int
}

// Chain answers questions about indexed documents. Without a provider it
// answers from the retrieved excerpts alone.
type Chain struct {
	store    vectordb.VectorStore
	provider llm.Provider
	opts     Options
	now      func() time.Time
}

// NewChain creates a chain over store. provider may be nil.
func NewChain(store vectordb.VectorStore, provider llm.Provider, opts Options) *Chain {
	if opts.K <= 0 {
		opts.K = 5
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.ChunkOverlap < 0 {
		opts.ChunkOverlap = DefaultChunkOverlap
	}
	return &Chain{store: store, provider: provider, opts: opts, now: time.Now}
}

// Index replaces any chunks previously stored for source with the chunks
// of text and returns how many were stored. If indexing fails the old
// chunks are kept.
func (c *Chain) Index(ctx context.Context, uploadID, source, text string) (int, error) {
	chunks := Chunk(text, c.opts.ChunkSize, c.opts.ChunkOverlap)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%s contains no text", source)
	}

	now := c.now()
	docs := make([]vectordb.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = vectordb.Document{
			ID:      fmt.Sprintf("%s-%d", uploadID, i),
			Content: chunk,
			Metadata: vectordb.DocumentMetadata{
				Source:      source,
				UploadID:    uploadID,
				ChunkIndex:  i,
				LastUpdated: now,
			},
		}
	}
	if err := c.store.ReplaceSource(ctx, source, docs); err != nil {
		return 0, fmt.Errorf("indexing %s: %w", source, err)
	}

	log.Printf("qa: indexed %s as %d chunks", source, len(chunks))
	return len(chunks), nil
}

// Search returns the k chunks most similar to query.
func (c *Chain) Search(ctx context.Context, query string, k int) ([]vectordb.SearchResult, error) {
	if k <= 0 {
		k = c.opts.K
	}
	return c.store.Search(ctx, query, k, nil)
}

// Answer retrieves context for question and asks the provider. When the
// provider fails the excerpt answer is returned instead.
func (c *Chain) Answer(ctx context.Context, question string) (string, error) {
	results, err := c.Search(ctx, question, c.opts.K)
	if err != nil {
		return "", fmt.Errorf("retrieving context: %w", err)
	}

	if c.provider == nil {
		return excerptAnswer(question, results), nil
	}

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Model:       c.opts.Model,
		System:      answerRules,
		Prompt:      buildPrompt(vectordb.ContextText(results), question),
		MaxTokens:   c.opts.MaxTokens,
		Temperature: 0,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Printf("qa: %s completion failed, falling back to excerpts: %v", c.provider.Name(), err)
		return excerptAnswer(question, results), nil
	}
	log.Printf("qa: answered with %s (%d tokens)", c.provider.Name(), resp.Usage.Total())
	return strings.TrimSpace(resp.Content), nil
}
