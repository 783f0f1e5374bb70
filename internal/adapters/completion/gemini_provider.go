package completion

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"waste-route-service/internal/platform/logger"
	"waste-route-service/internal/platform/obs"
	"waste-route-service/internal/ports"

	"golang.org/x/time/rate"
)

// GeminiProvider implements CompletionProvider using the Gemini REST API.
//
// It coordinates:
//   - Request pacing through a token bucket
//   - Retry with exponential backoff on transient failures
//   - Server-sent event decoding for streamed completions
//
// The provider is safe for concurrent use.
type GeminiProvider struct {
	session     *http.Client
	apiKey      string
	baseURL     string
	model       string
	limiter     *rate.Limiter
	maxAttempts int
	backoff     time.Duration
	timeout     time.Duration
	log         logger.Logger
}

// GeminiOptions configures the provider. Timeout bounds a whole Complete
// call and the wait for response headers of a Stream; a stream body is
// bounded only by the caller's context.
type GeminiOptions struct {
	BaseURL        string
	Model          string
	RequestsPerSec float64
	Burst          int
	Timeout        time.Duration
	HTTPClient     *http.Client
}

func NewGeminiProvider(apiKey string, opts GeminiOptions) (*GeminiProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is empty")
	}
	if opts.Model == "" {
		return nil, errors.New("gemini model is empty")
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	limit := rate.Inf
	if opts.RequestsPerSec > 0 {
		limit = rate.Limit(opts.RequestsPerSec)
	}
	burst := max(opts.Burst, 1)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	session := opts.HTTPClient
	if session == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.ResponseHeaderTimeout = timeout
		session = &http.Client{Transport: transport}
	}

	return &GeminiProvider{
		session:     session,
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       opts.Model,
		limiter:     rate.NewLimiter(limit, burst),
		maxAttempts: 4,
		backoff:     200 * time.Millisecond,
		timeout:     timeout,
		log:         logger.New("gemini"),
	}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// text concatenates the parts of the first candidate.
func (r geminiResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

func (r geminiResponse) blocked() string {
	if r.PromptFeedback != nil {
		return r.PromptFeedback.BlockReason
	}
	return ""
}

func (g *GeminiProvider) endpoint(method string, query url.Values) string {
	u := fmt.Sprintf("%s/v1beta/models/%s:%s", g.baseURL, url.PathEscape(g.model), method)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func encodeRequest(req ports.CompletionRequest) ([]byte, error) {
	body := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}}},
	}
	if req.SystemInstruction != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.SystemInstruction}}}
	}
	return json.Marshal(body)
}

// Complete returns the whole completion for req.
func (g *GeminiProvider) Complete(ctx context.Context, req ports.CompletionRequest) (_ string, err error) {
	defer obs.Time(ctx, "gemini_complete")(&err)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	payload, err := encodeRequest(req)
	if err != nil {
		return "", fmt.Errorf("gemini complete: encode request: %w", err)
	}

	endpoint := g.endpoint("generateContent", nil)
	resp, err := g.doWithRetry(ctx, func() (*http.Request, error) {
		return g.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return "", fmt.Errorf("gemini complete: %w", err)
	}
	defer resp.Body.Close()

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("gemini complete: decode response: %w", err)
	}
	if reason := out.blocked(); reason != "" {
		return "", fmt.Errorf("gemini complete: prompt blocked: %s", reason)
	}
	if len(out.Candidates) == 0 {
		return "", errors.New("gemini complete: response has no candidates")
	}

	return out.text(), nil
}

// Stream delivers the completion chunk by chunk from the SSE endpoint.
// Retries only happen before the first byte of the stream is read.
func (g *GeminiProvider) Stream(
	ctx context.Context,
	req ports.CompletionRequest,
	onChunk func(text string) error,
) (err error) {
	defer obs.Time(ctx, "gemini_stream")(&err)

	payload, err := encodeRequest(req)
	if err != nil {
		return fmt.Errorf("gemini stream: encode request: %w", err)
	}

	endpoint := g.endpoint("streamGenerateContent", url.Values{"alt": {"sse"}})
	resp, err := g.doWithRetry(ctx, func() (*http.Request, error) {
		r, err := g.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Accept", "text/event-stream")
		return r, nil
	})
	if err != nil {
		return fmt.Errorf("gemini stream: %w", err)
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "" || data == "[DONE]" {
			continue
		}

		var chunk geminiResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return fmt.Errorf("gemini stream: decode chunk: %w", err)
		}
		if reason := chunk.blocked(); reason != "" {
			return fmt.Errorf("gemini stream: prompt blocked: %s", reason)
		}

		text := chunk.text()
		if text == "" {
			continue
		}
		if err := onChunk(text); err != nil {
			return fmt.Errorf("gemini stream: deliver chunk: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("gemini stream: read: %w", err)
	}
	return nil
}
