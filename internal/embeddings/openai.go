package embeddings

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const maxBatchSize = 100

// OpenAIModel represents a supported OpenAI embedding model.
type OpenAIModel string

const (
	ModelTextEmbedding3Small OpenAIModel = "text-embedding-3-small"
	ModelTextEmbedding3Large OpenAIModel = "text-embedding-3-large"
)

// dimensions is 0 for models it does not know, which disables the size
// check in ToChromemFunc.
func (m OpenAIModel) dimensions() int {
	switch m {
	case ModelTextEmbedding3Small:
		return 1536
	case ModelTextEmbedding3Large:
		return 3072
	default:
		return 0
	}
}

// OpenAIEmbedder generates embeddings using OpenAI's API.
type OpenAIEmbedder struct {
	client   *openai.Client
	model    OpenAIModel
	endpoint string
}

// OpenRouterBaseURL is the OpenAI-compatible endpoint of OpenRouter.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// NewOpenAIEmbedder creates a new OpenAI embedder with the given API key and model.
func NewOpenAIEmbedder(apiKey string, model OpenAIModel) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client:   openai.NewClient(apiKey),
		model:    model,
		endpoint: "openai",
	}
}

// NewOpenRouterEmbedder creates an embedder that talks to OpenRouter.
func NewOpenRouterEmbedder(apiKey string, model OpenAIModel) *OpenAIEmbedder {
	return NewCompatibleEmbedder(apiKey, OpenRouterBaseURL, model)
}

// NewCompatibleEmbedder creates an embedder for any OpenAI-compatible API.
func NewCompatibleEmbedder(apiKey, baseURL string, model OpenAIModel) *OpenAIEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenAIEmbedder{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		endpoint: baseURL,
	}
}

func (e *OpenAIEmbedder) Name() string {
	return string(e.model)
}

func (e *OpenAIEmbedder) Dimensions() int {
	return e.model.dimensions()
}

// Embed sends texts in batches of maxBatchSize. Blank texts are sent as a
// single space because the API rejects empty input; results are placed
// by their returned index.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	for start := 0; start < len(texts); start += maxBatchSize {
		end := min(start+maxBatchSize, len(texts))

		batch := make([]string, end-start)
		for i, t := range texts[start:end] {
			if strings.TrimSpace(t) == "" {
				t = " "
			}
			batch[i] = t
		}

		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: batch,
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			return nil, fmt.Errorf("%s embedding request: %w", e.endpoint, err)
		}
		if len(resp.Data) != len(batch) {
			return nil, fmt.Errorf("%s returned %d embeddings, expected %d", e.endpoint, len(resp.Data), len(batch))
		}

		for _, emb := range resp.Data {
			if emb.Index < 0 || emb.Index >= len(batch) {
				return nil, fmt.Errorf("%s returned embedding index %d out of range", e.endpoint, emb.Index)
			}
			out[start+emb.Index] = emb.Embedding
		}
	}
	return out, nil
}
