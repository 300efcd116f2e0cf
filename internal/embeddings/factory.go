package embeddings

import "log"

// New picks an embedder for the given credentials. With an OpenRouter key
// the OpenRouter endpoint is used, with an OpenAI key the OpenAI one, and
// with neither the hash fallback.
func New(openRouterKey, openAIKey, model string) Embedder {
	if model == "" {
		model = string(ModelTextEmbedding3Large)
	}
	switch {
	case openRouterKey != "":
		log.Printf("embeddings: using OpenRouter model %s", model)
		return NewOpenRouterEmbedder(openRouterKey, OpenAIModel(model))
	case openAIKey != "":
		log.Printf("embeddings: using OpenAI model %s", model)
		return NewOpenAIEmbedder(openAIKey, OpenAIModel(model))
	default:
		log.Printf("embeddings: no API key found, using hash fallback")
		return NewHashEmbedder()
	}
}
