package llm

import (
	"context"
	"errors"
)

// GenerationConfig carries the sampling parameters sent with every prompt.
// Values are fixed per deployment, not per request.
type GenerationConfig struct {
	Temperature     float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int32
}

// Client abstracts the generative model provider.
type Client interface {
	Invoke(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
}

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("empty model response")
