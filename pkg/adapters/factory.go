package adapters

import (
	"context"
	"fmt"
	"net/http"

	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/adapters/openai"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/classifier"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/config"
	"go.uber.org/zap"
)

// NewLLMClient builds the classification client for the configured provider
func NewLLMClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (classifier.LLMClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "llm"), zap.String("provider", cfg.Provider))

	var apiKey *string
	if cfg.APIKey != "" {
		apiKey = &cfg.APIKey
	}
	retryCfg := cfg.Retry.Policy()

	switch cfg.Provider {
	case config.ProviderOpenAI, config.ProviderGroq:
		baseURL, model := cfg.BaseURL, cfg.Model
		if cfg.Provider == config.ProviderGroq {
			if baseURL == "" {
				baseURL = openai.GroqBaseURL
			}
			if model == "" {
				model = defaultGroqModel
			}
		}

		opts := []openai.Option{
			openai.WithBaseURL(baseURL),
			openai.WithRetryConfig(retryCfg),
			openai.WithRateLimit(cfg.RequestsPerSecond),
			openai.WithLogger(logger),
		}
		if cfg.Timeout > 0 {
			opts = append(opts, openai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
		}
		if cfg.DumpDir != "" {
			opts = append(opts, openai.WithRequestDumps(cfg.DumpDir))
		}

		// NewDefaultLLMClient falls back to OPENAI_API_KEY, which is wrong for Groq
		if apiKey == nil && cfg.Provider == config.ProviderGroq {
			return nil, fmt.Errorf("%w for provider %s", config.ErrMissingAPIKey, cfg.Provider)
		}
		client, err := NewDefaultLLMClient(apiKey, model, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil

	case config.ProviderAnthropic:
		client, err := NewAnthropicLLMClient(apiKey, cfg.Model, cfg.BaseURL, retryCfg, logger)
		if err != nil {
			return nil, err
		}
		return client, nil

	case config.ProviderGemini:
		client, err := NewGeminiLLMClient(ctx, apiKey, cfg.Model, cfg.BaseURL, retryCfg, logger)
		if err != nil {
			return nil, err
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
}
