package embeddings

import (
	"context"
	"errors"
	"fmt"

	chromem "github.com/philippgille/chromem-go"
)

// ErrNoVector is returned when an embedder yields no vector for a text.
var ErrNoVector = errors.New("embeddings: no vector returned")

// Embedder turns document chunks and questions into vectors. Dimensions
// must be stable for the lifetime of a vector store.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Name() string
}

// ToChromemFunc adapts e to chromem's one-text-at-a-time EmbeddingFunc.
// Vectors of the wrong size are rejected so a changed model does not
// silently corrupt a persisted store.
func ToChromemFunc(e Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		vecs, err := e.Embed(ctx, []string{text})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		if len(vecs) == 0 || len(vecs[0]) == 0 {
			return nil, ErrNoVector
		}
		if d := e.Dimensions(); d > 0 && len(vecs[0]) != d {
			return nil, fmt.Errorf("%s: got %d dimensions, want %d", e.Name(), len(vecs[0]), d)
		}
		return vecs[0], nil
	}
}
