package ai

import "context"

// Options tune a single generation request. Nil pointer fields keep the
// provider defaults.
type Options struct {
	Temperature     *float32
	TopP            *float32
	TopK            *float32
	MaxOutputTokens int32
	// ResponseMIMEType hints the expected media type of the response,
	// e.g. "application/json" or "text/plain".
	ResponseMIMEType string
}

// Generator is the boundary to an external generative text service.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, opts *Options) (string, error)
}

// Float32 returns a pointer to the given value for use in Options.
func Float32(v float32) *float32 { return &v }
