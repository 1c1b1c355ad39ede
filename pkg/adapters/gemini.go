package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/FrenchMajesty/repo-feature-analyzer/internal/retry"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/classifier"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/types"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// contentGenerator is the part of the genai SDK the adapter uses
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiLLMClient implements classifier.LLMClient with the Gemini API
type GeminiLLMClient struct {
	models contentGenerator
	model  string
	retry  retry.Config
	logger *zap.Logger
}

var _ classifier.LLMClient = (*GeminiLLMClient)(nil)

// NewGeminiLLMClient creates a Gemini client
func NewGeminiLLMClient(ctx context.Context, apiKey *string, model, baseURL string, retryCfg retry.Config, logger *zap.Logger) (*GeminiLLMClient, error) {
	key, err := loadEnvVar(apiKey, "GEMINI_API_KEY")
	if err != nil {
		return nil, err
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  *key,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if model == "" {
		model = defaultGeminiModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &GeminiLLMClient{
		models: client.Models,
		model:  model,
		retry:  retryCfg,
		logger: logger,
	}, nil
}

// Classify sends the prompt at temperature zero in JSON mode and returns the
// text of the first candidate that has any
func (c *GeminiLLMClient) Classify(ctx context.Context, prompt types.Prompt) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](0),
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
	}
	if prompt.MaxTokens > 0 {
		config.MaxOutputTokens = int32(prompt.MaxTokens)
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt.User, genai.RoleUser)}

	resp, err := callWithRetry(ctx, "Gemini", c.retry, c.logger, geminiStatus, func() (*genai.GenerateContentResponse, error) {
		return c.models.GenerateContent(ctx, c.model, contents, config)
	})
	if err != nil {
		return "", fmt.Errorf("failed to get LLM response: %w", err)
	}

	var text strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate == nil || candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part != nil && part.Text != "" {
					text.WriteString(part.Text)
				}
			}
			if text.Len() > 0 {
				break
			}
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("no response generated from Gemini")
	}

	return strings.TrimSpace(text.String()), nil
}

func geminiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code
	}
	return 0
}
