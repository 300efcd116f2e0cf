package embeddings

import (
	"context"
	"crypto/sha256"
	"math"
)

// HashDimensions is the vector size produced by HashEmbedder.
const HashDimensions = 32

// HashEmbedder derives a vector from the SHA-256 digest of the text. It
// needs no network access and is used when no API key is configured.
// Identical texts map to identical vectors; nothing else is preserved.
type HashEmbedder struct{}

// NewHashEmbedder returns the offline fallback embedder.
func NewHashEmbedder() *HashEmbedder { return &HashEmbedder{} }

func (HashEmbedder) Name() string    { return "sha256-hash" }
func (HashEmbedder) Dimensions() int { return HashDimensions }

func (h HashEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = hashVector(t)
	}
	return out, nil
}

// hashVector maps each digest byte to [-1, 1] and normalizes the result,
// since chromem compares vectors by dot product.
func hashVector(text string) []float32 {
	sum := sha256.Sum256([]byte(text))
	vec := make([]float32, HashDimensions)
	var norm float64
	for i := range vec {
		v := float64(sum[i%len(sum)])/127.5 - 1.0
		vec[i] = float32(v)
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}
