package llm

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when the model replies with no text.
var ErrEmptyCompletion = errors.New("llm: empty completion")

// Provider answers a prompt with a single chat completion.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	Name() string
}

// CompletionRequest is one prompt sent as a user message, optionally
// preceded by a system message. Zero Model and MaxTokens use the
// provider's defaults.
type CompletionRequest struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// CompletionResponse is the model's reply.
type CompletionResponse struct {
	Content string
	Model   string
	Usage   Usage
}

// Usage counts the tokens spent on one completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Total returns prompt plus completion tokens.
func (u Usage) Total() int { return u.PromptTokens + u.CompletionTokens }
