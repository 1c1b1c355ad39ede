package adapters

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/adapters/openai"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/classifier"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/types"
)

// DefaultLLMClient implements classifier.LLMClient over any OpenAI-compatible
// chat completions endpoint (OpenAI, Groq)
type DefaultLLMClient struct {
	client openai.LanguageModelClient
	model  string
}

const (
	defaultModel     = "gpt-4.1-mini"
	defaultGroqModel = "llama-3.3-70b-versatile"
)

var _ classifier.LLMClient = (*DefaultLLMClient)(nil)

// NewDefaultLLMClient creates a new LLM client using OpenAI with API key from environment
func NewDefaultLLMClient(apiKey *string, model string, opts ...openai.Option) (*DefaultLLMClient, error) {
	key, err := loadEnvVar(apiKey, "OPENAI_API_KEY")
	if err != nil {
		return nil, err
	}

	instance := DefaultLLMClient{
		client: openai.NewClient(*key, opts...),
		model:  defaultModel,
	}

	if model != "" {
		instance.model = model
	}

	return &instance, nil
}

// Classify sends the prompt with deterministic decoding and JSON output mode
// and returns the raw response text
func (c *DefaultLLMClient) Classify(ctx context.Context, prompt types.Prompt) (string, error) {
	system := prompt.System
	user := prompt.User
	temperature := float32(0)

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatMessage{
			{
				Role:    openai.MessageRoleSystem,
				Content: &system,
			},
			{
				Role:    openai.MessageRoleUser,
				Content: &user,
			},
		},
		Temperature:         &temperature,
		ResponseFormat:      &openai.ResponseFormat{Type: openai.ResponseFormatJSONObject},
		MaxCompletionTokens: prompt.MaxTokens,
	}

	resp, err := c.client.ChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to get LLM response: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil {
		return "", fmt.Errorf("no response from LLM")
	}

	return strings.TrimSpace(*resp.Choices[0].Message.Content), nil
}

// loadEnvVar loads an environment variable into a pointer if no value is provided
func loadEnvVar(target *string, envKey string) (*string, error) {
	if target == nil || *target == "" {
		envVar := os.Getenv(envKey)
		if envVar == "" {
			return nil, fmt.Errorf("%s environment variable not set and no value provided", envKey)
		}
		return &envVar, nil
	}
	return target, nil
}
