package openai

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/FrenchMajesty/repo-feature-analyzer/internal/retry"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// OpenAIClient is a minimal client for the OpenAI Chat API. It also works
// against OpenAI-compatible endpoints such as Groq by changing BaseURL.
type OpenAIClient struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client

	RetryConfig retry.Config

	// DumpRequests writes every request and response body under DumpDir
	DumpRequests bool
	DumpDir      string

	// Limiter throttles outgoing requests. Nil means unlimited.
	Limiter *rate.Limiter

	Logger *zap.Logger
}

// LanguageModelClient is the chat completion surface the classifier adapter needs
type LanguageModelClient interface {
	ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error)
	SetBaseURL(baseUrl string)
}

// ChatCompletionRequest is the request body for the chat completion endpoint
type ChatCompletionRequest struct {
	Model               string        `json:"model"`
	Messages            []ChatMessage `json:"messages"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`

	// Temperature is a pointer so that an explicit zero is still sent
	Temperature *float32 `json:"temperature,omitempty"`

	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ResponseFormatJSONObject asks the model for a single JSON object
const ResponseFormatJSONObject = "json_object"

type ResponseFormat struct {
	Type string `json:"type,omitempty"`
}

type ChatCompletionChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatCompletionResponse is the response from the chat completion endpoint
type ChatCompletionResponse struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object"`
	Model   string                 `json:"model,omitempty"`
	Choices []ChatCompletionChoice `json:"choices"`
	Usage   ChatCompletionUsage    `json:"usage"`
}

type ChatCompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleSystem    MessageRole = "system"
)

type ChatMessage struct {
	Role    MessageRole `json:"role"`
	Content *string     `json:"content,omitempty"`
}

// ChatError is the error object of a non-2xx response
type ChatError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`

	// FailedGeneration is set by Groq when JSON mode output did not parse
	FailedGeneration string `json:"failed_generation,omitempty"`
}

type ChatCompletionResponseError struct {
	Error ChatError `json:"error"`
}

// ChatCompletionError carries the status code and raw body of a failed request
type ChatCompletionError struct {
	Message    string          `json:"message"`
	StatusCode int             `json:"status_code,omitempty"`
	RawBody    json.RawMessage `json:"raw_body,omitempty"`
}

func (e *ChatCompletionError) Error() string {
	return e.Message
}

// GetRawResponseBody returns the raw response body if available
func (e *ChatCompletionError) GetRawResponseBody() json.RawMessage {
	return e.RawBody
}
