package analyzer

import (
	"github.com/FrenchMajesty/repo-feature-analyzer/internal/retry"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/chunker"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/classifier"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/heuristics"
	"go.uber.org/zap"
)

// DefaultWorkers keeps chunk processing strictly sequential
const DefaultWorkers = 1

// Config holds configuration for the Analyzer
type Config struct {
	// LLMClient classifies chunks. Required.
	LLMClient classifier.LLMClient

	// ChunkSize is the chunk character budget. If 0, uses chunker.DefaultChunkSize.
	ChunkSize int

	// MinChunkContent is the trimmed length below which a chunk is skipped. If 0, uses classifier.DefaultMinContentLength.
	MinChunkContent int

	// MaxTokens caps each model response. Zero leaves it to the provider.
	MaxTokens int

	// Workers bounds concurrent model calls. If 0, uses DefaultWorkers.
	Workers int

	// Breaker is optional; nil never short-circuits
	Breaker *retry.Breaker

	// Rules are the heuristic tables used by AnalyzeProject. If nil, uses heuristics.Default().
	Rules *heuristics.Rules

	Logger *zap.Logger
}

// applyDefaults fills in default values for unset config fields
func (c *Config) applyDefaults() {
	if c.ChunkSize <= 0 {
		c.ChunkSize = chunker.DefaultChunkSize
	}
	if c.MinChunkContent <= 0 {
		c.MinChunkContent = classifier.DefaultMinContentLength
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Rules == nil {
		c.Rules = heuristics.Default()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}
