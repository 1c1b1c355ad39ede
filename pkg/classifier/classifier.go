package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/FrenchMajesty/repo-feature-analyzer/internal/retry"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/chunker"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/features"
	"go.uber.org/zap"
)

// DefaultMinContentLength is the trimmed length below which a chunk is skipped
const DefaultMinContentLength = 100

// Config holds the dependencies of a Classifier
type Config struct {
	// LLMClient is required
	LLMClient LLMClient

	// MinContentLength defaults to DefaultMinContentLength
	MinContentLength int

	// MaxTokens is passed to the model. Zero leaves it to the provider.
	MaxTokens int

	// Breaker, when set, stops model calls after consecutive transport failures
	Breaker *retry.Breaker

	Logger *zap.Logger
}

func (c *Config) applyDefaults() {
	if c.MinContentLength <= 0 {
		c.MinContentLength = DefaultMinContentLength
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

// Classifier turns one chunk of code into a validated per-chunk feature map
type Classifier struct {
	llm              LLMClient
	minContentLength int
	maxTokens        int
	breaker          *retry.Breaker
	logger           *zap.Logger
}

// New creates a Classifier with the given configuration
func New(cfg Config) (*Classifier, error) {
	cfg.applyDefaults()

	if cfg.LLMClient == nil {
		return nil, fmt.Errorf("LLMClient is required")
	}

	return &Classifier{
		llm:              cfg.LLMClient,
		minContentLength: cfg.MinContentLength,
		maxTokens:        cfg.MaxTokens,
		breaker:          cfg.Breaker,
		logger:           cfg.Logger,
	}, nil
}

// ShouldSkip reports whether text is too short to be worth a model call
func (c *Classifier) ShouldSkip(text string) bool {
	return len(strings.TrimSpace(text)) < c.minContentLength
}

// Classify sends the chunk to the model and validates the response.
//
// Skipped chunks return ErrChunkTooSmall. Every other failure is a *ChunkError
// carrying its FailureKind, except cancellation of ctx which is returned as is.
func (c *Classifier) Classify(ctx context.Context, chunk chunker.Chunk) (result features.Map, err error) {
	if c.ShouldSkip(chunk.Text) {
		return nil, ErrChunkTooSmall
	}

	if err := c.breaker.Allow(); err != nil {
		return nil, &ChunkError{Kind: KindTransport, Chunk: chunk.Index, Err: err}
	}

	defer func() {
		if r := recover(); r != nil {
			c.breaker.Failure()
			result, err = nil, &ChunkError{Kind: KindTransport, Chunk: chunk.Index, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	c.logger.Debug("classifying chunk", zap.Int("chunk", chunk.Index), zap.Int("bytes", len(chunk.Text)))

	raw, err := c.llm.Classify(ctx, BuildPrompt(chunk.Text, c.maxTokens))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			c.breaker.Release()
			return nil, ctxErr
		}
		c.breaker.Failure()
		return nil, &ChunkError{Kind: KindTransport, Chunk: chunk.Index, Err: err}
	}
	c.breaker.Success()

	result, err = Validate(raw)
	if err != nil {
		var chunkErr *ChunkError
		if errors.As(err, &chunkErr) {
			chunkErr.Chunk = chunk.Index
		}
		return nil, err
	}

	return result, nil
}
