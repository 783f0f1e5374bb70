package completion

import (
	"context"
	"sync"
	"waste-route-service/internal/ports"
)

// MockCompletionProvider returns canned chunks and records every request.
type MockCompletionProvider struct {
	Chunks []string
	Err    error

	mu       sync.Mutex
	requests []ports.CompletionRequest
}

func NewMockCompletionProvider(chunks ...string) *MockCompletionProvider {
	return &MockCompletionProvider{Chunks: chunks}
}

func (m *MockCompletionProvider) record(req ports.CompletionRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
}

// Requests returns the prompts received so far.
func (m *MockCompletionProvider) Requests() []ports.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.CompletionRequest(nil), m.requests...)
}

func (m *MockCompletionProvider) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	m.record(req)
	if m.Err != nil {
		return "", m.Err
	}

	var text string
	for _, c := range m.Chunks {
		text += c
	}
	return text, nil
}

func (m *MockCompletionProvider) Stream(ctx context.Context, req ports.CompletionRequest, onChunk func(string) error) error {
	m.record(req)
	if m.Err != nil {
		return m.Err
	}

	for _, c := range m.Chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := onChunk(c); err != nil {
			return err
		}
	}
	return nil
}
