package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/FrenchMajesty/repo-feature-analyzer/internal/retry"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/classifier"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/types"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

const (
	defaultAnthropicModel     = "claude-3-5-haiku-latest"
	defaultAnthropicMaxTokens = 4096
)

// messageCreator is the part of the Anthropic SDK the adapter uses
type messageCreator interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicLLMClient implements classifier.LLMClient with the Anthropic Messages API
type AnthropicLLMClient struct {
	messages messageCreator
	model    string
	retry    retry.Config
	logger   *zap.Logger
}

var _ classifier.LLMClient = (*AnthropicLLMClient)(nil)

// NewAnthropicLLMClient creates a Claude client. The SDK's own retries are
// disabled so the shared retry policy applies.
func NewAnthropicLLMClient(apiKey *string, model, baseURL string, retryCfg retry.Config, logger *zap.Logger) (*AnthropicLLMClient, error) {
	key, err := loadEnvVar(apiKey, "ANTHROPIC_API_KEY")
	if err != nil {
		return nil, err
	}

	opts := []option.RequestOption{
		option.WithAPIKey(*key),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)

	if model == "" {
		model = defaultAnthropicModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AnthropicLLMClient{
		messages: &client.Messages,
		model:    model,
		retry:    retryCfg,
		logger:   logger,
	}, nil
}

// Classify sends the prompt at temperature zero and returns the concatenated text blocks
func (c *AnthropicLLMClient) Classify(ctx context.Context, prompt types.Prompt) (string, error) {
	maxTokens := prompt.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(0),
		System:      []anthropic.TextBlockParam{{Text: prompt.System}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.User)),
		},
	}

	resp, err := callWithRetry(ctx, "Anthropic", c.retry, c.logger, anthropicStatus, func() (*anthropic.Message, error) {
		return c.messages.New(ctx, params)
	})
	if err != nil {
		return "", fmt.Errorf("failed to get LLM response: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("empty response from Anthropic API")
	}

	return strings.TrimSpace(text.String()), nil
}

func anthropicStatus(err error) int {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
