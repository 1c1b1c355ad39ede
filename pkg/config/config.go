// Package config loads analyzer settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/FrenchMajesty/repo-feature-analyzer/internal/retry"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/chunker"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey means no credential was found for the configured provider.
// Nothing can be analyzed without one.
var ErrMissingAPIKey = errors.New("missing API key")

const (
	ProviderOpenAI    = "openai"
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// defaultKeyEnv maps each provider to the environment variable holding its key
var defaultKeyEnv = map[string]string{
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderGroq:      "GROQ_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
}

// Config is the complete analyzer configuration
type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Rules    RulesConfig    `yaml:"rules"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LLMConfig selects and tunes the model provider
type LLMConfig struct {
	Provider string `yaml:"provider" validate:"required,oneof=openai groq anthropic gemini"`
	Model    string `yaml:"model"`

	// APIKey is never read from the file. It is resolved from APIKeyEnv.
	APIKey    string `yaml:"-"`
	APIKeyEnv string `yaml:"api_key_env"`

	BaseURL           string        `yaml:"base_url" validate:"omitempty,url"`
	MaxTokens         int           `yaml:"max_tokens" validate:"gte=0"`
	RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gte=0"`
	Timeout           time.Duration `yaml:"timeout" validate:"gte=0"`

	// DumpDir enables request/response dumps for the OpenAI-compatible client
	DumpDir string `yaml:"dump_dir"`

	Retry   RetryConfig   `yaml:"retry"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// RetryConfig is the per-request retry policy
type RetryConfig struct {
	MaxRetries int           `yaml:"max_retries" validate:"gte=0"`
	BaseDelay  time.Duration `yaml:"base_delay" validate:"gte=0"`
	MaxDelay   time.Duration `yaml:"max_delay" validate:"gte=0"`
	Multiplier float64       `yaml:"multiplier" validate:"gte=1"`
}

// Policy converts the settings to a retry.Config
func (r RetryConfig) Policy() retry.Config {
	return retry.Config{
		MaxRetries:      r.MaxRetries,
		BaseDelay:       r.BaseDelay,
		MaxDelay:        r.MaxDelay,
		BackoffMultiple: r.Multiplier,
	}
}

// BreakerConfig configures the circuit breaker guarding model calls
type BreakerConfig struct {
	// FailureThreshold of zero disables the breaker
	FailureThreshold int           `yaml:"failure_threshold" validate:"gte=0"`
	Cooldown         time.Duration `yaml:"cooldown" validate:"gte=0"`
}

// Settings converts the config to a retry.BreakerConfig
func (b BreakerConfig) Settings() retry.BreakerConfig {
	return retry.BreakerConfig{
		FailureThreshold: b.FailureThreshold,
		Cooldown:         b.Cooldown,
	}
}

// AnalysisConfig tunes the chunking pipeline
type AnalysisConfig struct {
	ChunkSize       int `yaml:"chunk_size" validate:"gt=0"`
	MinChunkContent int `yaml:"min_chunk_content" validate:"gte=0"`
	Workers         int `yaml:"workers" validate:"gte=1"`
}

// RulesConfig points at an alternative heuristic rule table. Empty uses the built-in one.
type RulesConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig holds the scraped-input and results directories
type OutputConfig struct {
	InputDir string `yaml:"input_dir"`
	Dir      string `yaml:"dir"`
}

// LoggingConfig configures the zap logger
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	retryDefaults := retry.DefaultConfig()
	breakerDefaults := retry.DefaultBreakerConfig()

	return &Config{
		LLM: LLMConfig{
			Provider: ProviderOpenAI,
			Timeout:  2 * time.Minute,
			Retry: RetryConfig{
				MaxRetries: retryDefaults.MaxRetries,
				BaseDelay:  retryDefaults.BaseDelay,
				MaxDelay:   retryDefaults.MaxDelay,
				Multiplier: retryDefaults.BackoffMultiple,
			},
			Breaker: BreakerConfig{
				FailureThreshold: breakerDefaults.FailureThreshold,
				Cooldown:         breakerDefaults.Cooldown,
			},
		},
		Analysis: AnalysisConfig{
			ChunkSize:       chunker.DefaultChunkSize,
			MinChunkContent: 100,
			Workers:         1,
		},
		Output: OutputConfig{
			InputDir: "scraped_repos",
			Dir:      "results",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadEnv loads .env style files into the process environment. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the configuration at path over the defaults, resolves the API
// key from the environment and validates the result. An empty path loads the
// defaults alone.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.resolveAPIKey(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderOpenAI
	}
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = defaultKeyEnv[c.LLM.Provider]
	}
	if c.Analysis.ChunkSize == 0 {
		c.Analysis.ChunkSize = chunker.DefaultChunkSize
	}
	if c.Analysis.Workers == 0 {
		c.Analysis.Workers = 1
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// Validate checks field constraints
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) resolveAPIKey() error {
	if c.LLM.APIKey != "" {
		return nil
	}
	key := strings.TrimSpace(os.Getenv(c.LLM.APIKeyEnv))
	if key == "" {
		return fmt.Errorf("%w: %s is not set for provider %s", ErrMissingAPIKey, c.LLM.APIKeyEnv, c.LLM.Provider)
	}
	c.LLM.APIKey = key
	return nil
}
