package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"waste-route-service/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, srv *httptest.Server) *GeminiProvider {
	t.Helper()
	p, err := NewGeminiProvider("test-key", GeminiOptions{
		BaseURL:    srv.URL,
		Model:      "gemini-test",
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	p.backoff = time.Millisecond
	return p
}

func TestGeminiComplete(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Empty "},{"text":"market bins first."}]},"finishReason":"STOP"}]}`)
	}))
	defer srv.Close()

	p := newTestProvider(t, srv)
	text, err := p.Complete(context.Background(), ports.CompletionRequest{
		SystemInstruction: "be brief",
		Prompt:            "what next?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Empty market bins first.", text)

	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "be brief", got.SystemInstruction.Parts[0].Text)
	require.Len(t, got.Contents, 1)
	assert.Equal(t, "user", got.Contents[0].Role)
	assert.Equal(t, "what next?", got.Contents[0].Parts[0].Text)
}

func TestGeminiCompleteRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`)
	}))
	defer srv.Close()

	text, err := newTestProvider(t, srv).Complete(context.Background(), ports.CompletionRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGeminiCompleteDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"message":"API key not valid"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestProvider(t, srv).Complete(context.Background(), ports.CompletionRequest{Prompt: "hi"})
	require.Error(t, err)

	var he *httpStatusError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGeminiCompleteBlockedPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"promptFeedback":{"blockReason":"SAFETY"}}`)
	}))
	defer srv.Close()

	_, err := newTestProvider(t, srv).Complete(context.Background(), ports.CompletionRequest{Prompt: "hi"})
	require.ErrorContains(t, err, "SAFETY")
}

func TestGeminiStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-test:streamGenerateContent", r.URL.Path)
		assert.Equal(t, "sse", r.URL.Query().Get("alt"))

		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"Send ", "Truck 1 ", "now."} {
			fmt.Fprintf(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":%q}]}}]}\r\n\r\n", part)
		}
	}))
	defer srv.Close()

	var chunks []string
	err := newTestProvider(t, srv).Stream(context.Background(), ports.CompletionRequest{Prompt: "hi"}, func(text string) error {
		chunks = append(chunks, text)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Send ", "Truck 1 ", "now."}, chunks)
	assert.Equal(t, "Send Truck 1 now.", strings.Join(chunks, ""))
}

func TestGeminiStreamOutlivesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		if !assert.True(t, ok) {
			return
		}
		for _, part := range []string{"one ", "two ", "three"} {
			fmt.Fprintf(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":%q}]}}]}\n\n", part)
			flusher.Flush()
			time.Sleep(80 * time.Millisecond)
		}
	}))
	defer srv.Close()

	p, err := NewGeminiProvider("test-key", GeminiOptions{
		BaseURL: srv.URL,
		Model:   "gemini-test",
		Timeout: 100 * time.Millisecond,
	})
	require.NoError(t, err)

	var chunks []string
	err = p.Stream(context.Background(), ports.CompletionRequest{Prompt: "hi"}, func(text string) error {
		chunks = append(chunks, text)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"one ", "two ", "three"}, chunks)
}

func TestGeminiCompleteHonoursTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	p, err := NewGeminiProvider("test-key", GeminiOptions{
		BaseURL:    srv.URL,
		Model:      "gemini-test",
		Timeout:    50 * time.Millisecond,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	p.backoff = time.Millisecond

	start := time.Now()
	_, err = p.Complete(context.Background(), ports.CompletionRequest{Prompt: "hi"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestGeminiStreamStopsWhenConsumerFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 3; i++ {
			fmt.Fprint(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"x\"}]}}]}\n\n")
		}
	}))
	defer srv.Close()

	errGone := errors.New("client gone")
	calls := 0
	err := newTestProvider(t, srv).Stream(context.Background(), ports.CompletionRequest{Prompt: "hi"}, func(string) error {
		calls++
		return errGone
	})
	require.ErrorIs(t, err, errGone)
	assert.Equal(t, 1, calls)
}

func TestNewGeminiProviderValidates(t *testing.T) {
	_, err := NewGeminiProvider("", GeminiOptions{Model: "m"})
	require.Error(t, err)

	_, err = NewGeminiProvider("key", GeminiOptions{})
	require.Error(t, err)
}
