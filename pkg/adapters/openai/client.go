package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/FrenchMajesty/repo-feature-analyzer/internal/retry"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	openaiBaseURL = "https://api.openai.com/v1"

	// GroqBaseURL is the OpenAI-compatible endpoint of Groq
	GroqBaseURL = "https://api.groq.com/openai/v1"

	defaultTimeout = 120 * time.Second
	defaultDumpDir = "debug_llm_requests"
)

// Option configures an OpenAIClient
type Option func(*OpenAIClient)

// WithBaseURL points the client at another OpenAI-compatible endpoint
func WithBaseURL(baseURL string) Option {
	return func(c *OpenAIClient) {
		if baseURL != "" {
			c.BaseURL = baseURL
		}
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *OpenAIClient) {
		c.HTTPClient = httpClient
	}
}

// WithRetryConfig overrides the retry policy
func WithRetryConfig(cfg retry.Config) Option {
	return func(c *OpenAIClient) {
		c.RetryConfig = cfg
	}
}

// WithRateLimit limits the client to requestsPerSecond. Non-positive values disable limiting.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(c *OpenAIClient) {
		if requestsPerSecond <= 0 {
			c.Limiter = nil
			return
		}
		burst := int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.Limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithLogger sets the logger used for retry messages
func WithLogger(logger *zap.Logger) Option {
	return func(c *OpenAIClient) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithRequestDumps writes every request/response pair under dir
func WithRequestDumps(dir string) Option {
	return func(c *OpenAIClient) {
		c.DumpRequests = true
		if dir != "" {
			c.DumpDir = dir
		}
	}
}

// Creates a new OpenAIClient
func NewClient(apiKey string, opts ...Option) *OpenAIClient {
	client := &OpenAIClient{
		APIKey:      apiKey,
		HTTPClient:  &http.Client{Timeout: defaultTimeout},
		RetryConfig: retry.DefaultConfig(),
		BaseURL:     openaiBaseURL,
		DumpDir:     defaultDumpDir,
		Logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

var _ LanguageModelClient = (*OpenAIClient)(nil)

// Sends a chat completion request to OpenAI with retry logic
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	url := c.BaseURL + "/chat/completions"

	bodyBytes, err := c.createAndRunRetryableRequest(ctx, url, req, "chat")
	if err != nil {
		return nil, err
	}

	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return nil, &ChatCompletionError{
			Message: fmt.Sprintf("failed to parse chat completion response: %v", err),
			RawBody: json.RawMessage(bodyBytes),
		}
	}

	return &chatResp, nil
}

// Sets the base URL for the OpenAI client
func (c *OpenAIClient) SetBaseURL(baseUrl string) {
	c.BaseURL = baseUrl
}
