package ports

import "context"

// Prompt sent to a text completion service.
type CompletionRequest struct {
	SystemInstruction string
	Prompt            string
}

// Contract for a generative text completion service.
type CompletionProvider interface {
	// Return the full completion for a prompt.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// Deliver the completion incrementally. Returning an error from onChunk
	// aborts the stream.
	Stream(ctx context.Context, req CompletionRequest, onChunk func(text string) error) error
}
