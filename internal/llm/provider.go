// Package llm wraps the external generative capability providers behind a
// narrow completion interface.
package llm

import "context"

// Provider defines the interface for generative LLM providers.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}
