// Package llm provides the generative-model client used by agents.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/Eugenepoly/market-agent/internal/metrics"
	"github.com/Eugenepoly/market-agent/pkg/types"
)

// Client generates text from a prompt. Agents receive a Client at
// construction time; tests substitute a fake.
type Client interface {
	Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error)
}

// GenerateOption adjusts a single Generate call.
type GenerateOption func(*generateOptions)

type generateOptions struct {
	useSearch bool
}

// WithSearch enables the model's web-search tool for this call.
func WithSearch() GenerateOption {
	return func(o *generateOptions) { o.useSearch = true }
}

// Config holds settings for the Gemini client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string

	// RequestsPerMinute caps the request rate to the API (0 = no limit).
	RequestsPerMinute int

	// Retry settings for transient failures.
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	HTTPClient *http.Client
}

// GeminiClient calls the Gemini generateContent REST endpoint. A token
// bucket limits the request rate, and transient failures (429/500/503)
// are retried with capped, jittered exponential backoff.
type GeminiClient struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	retrier *Retrier
}

// NewGeminiClient builds a client from config, applying defaults for
// model, endpoint, and retry policy.
func NewGeminiClient(cfg Config) *GeminiClient {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BaseDelay == 0 {
		cfg.BaseDelay = 2 * time.Second
	}
	if cfg.MaxDelay == 0 {
		cfg.MaxDelay = 60 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.RequestsPerMinute)
	}

	return &GeminiClient{
		cfg:     cfg,
		http:    httpClient,
		limiter: limiter,
		retrier: NewRetrier(cfg.MaxRetries, cfg.BaseDelay, cfg.MaxDelay),
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
	Tools    []geminiTool    `json:"tools,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt and returns the first candidate's text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	var o generateOptions
	for _, opt := range opts {
		opt(&o)
	}

	req := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	if o.useSearch {
		req.Tools = []geminiTool{{GoogleSearch: &struct{}{}}}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", types.NewPermanentError("marshal request", err)
	}

	var text string
	err = c.retrier.Do(ctx, func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return types.NewPermanentError("rate limiter wait", err)
			}
		}
		var callErr error
		text, callErr = c.generateOnce(ctx, body)
		metrics.ModelRequestsTotal.WithLabelValues(requestOutcome(callErr)).Inc()
		return callErr
	})
	return text, err
}

func requestOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case types.ClassifyError(err) == types.ErrorKindTransient:
		return "transient_error"
	default:
		return "permanent_error"
	}
}

func (c *GeminiClient) generateOnce(ctx context.Context, body []byte) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.cfg.BaseURL, c.cfg.Model, c.cfg.APIKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", types.NewPermanentError("build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", types.NewTransientError("model request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		callErr := fmt.Errorf("model error %d: %s", resp.StatusCode, string(respBody))
		if retryableStatus(resp.StatusCode) {
			return "", types.NewTransientError("model call", callErr)
		}
		return "", types.NewPermanentError("model call", callErr)
	}

	var gemResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gemResp); err != nil {
		return "", types.NewPermanentError("decode response", err)
	}
	if len(gemResp.Candidates) == 0 || len(gemResp.Candidates[0].Content.Parts) == 0 {
		return "", types.NewPermanentError("empty model response", nil)
	}
	return gemResp.Candidates[0].Content.Parts[0].Text, nil
}

// retryableStatus reports whether an HTTP status marks a transient failure:
// rate limit, internal error, or overloaded/unavailable.
func retryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable:
		return true
	}
	return false
}
