package llm

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrMissingKey is returned when the selected provider has no API key.
var ErrMissingKey = errors.New("llm: API key not set")

// Keys are the API keys the answering provider can use.
type Keys struct {
	OpenAI     string
	OpenRouter string
}

// KeysFromEnv reads OPENAI_API_KEY and OPENROUTER_API_KEY.
func KeysFromEnv() Keys {
	return Keys{
		OpenAI:     os.Getenv("OPENAI_API_KEY"),
		OpenRouter: os.Getenv("OPENROUTER_API_KEY"),
	}
}

// NewProvider returns the provider named by providerType. "" and "none"
// return a nil provider, which callers treat as excerpt-only answering.
// "auto" prefers OpenRouter, then OpenAI, and returns nil when neither
// key is set.
func NewProvider(providerType, model string, keys Keys) (Provider, error) {
	switch providerType {
	case "", "none":
		return nil, nil

	case "auto":
		switch {
		case keys.OpenRouter != "":
			return NewOpenRouterProvider(keys.OpenRouter, model), nil
		case keys.OpenAI != "":
			return NewOpenAIProvider(keys.OpenAI, openAIModel(model)), nil
		}
		return nil, nil

	case "openai":
		if keys.OpenAI == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingKey)
		}
		return NewOpenAIProvider(keys.OpenAI, openAIModel(model)), nil

	case "openrouter":
		if keys.OpenRouter == "" {
			return nil, fmt.Errorf("%w: OPENROUTER_API_KEY", ErrMissingKey)
		}
		return NewOpenRouterProvider(keys.OpenRouter, model), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}

// openAIModel strips the vendor prefix OpenRouter model names carry, so
// "openai/gpt-4o-mini" works against api.openai.com too.
func openAIModel(model string) string {
	return strings.TrimPrefix(model, "openai/")
}
