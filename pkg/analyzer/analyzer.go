// Package analyzer drives a full feature analysis: it chunks the code, has
// every chunk classified through a per-run cache and merges the results into
// a repository-level feature map.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/FrenchMajesty/repo-feature-analyzer/internal/logging"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/cache"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/chunker"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/classifier"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/features"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/heuristics"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/merger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const maxLoggedResponse = 500

// Analyzer runs feature analyses. It is safe for concurrent use; every call
// to Analyze gets its own cache and accumulator.
type Analyzer struct {
	chunker    *chunker.Chunker
	classifier *classifier.Classifier
	rules      *heuristics.Rules
	workers    int
	logger     *zap.Logger
}

// New creates a new Analyzer with the given configuration
func New(cfg Config) (*Analyzer, error) {
	cfg.applyDefaults()

	if cfg.LLMClient == nil {
		return nil, fmt.Errorf("LLMClient is required")
	}

	logger := cfg.Logger.With(zap.String("component", "analyzer"))

	clf, err := classifier.New(classifier.Config{
		LLMClient:        cfg.LLMClient,
		MinContentLength: cfg.MinChunkContent,
		MaxTokens:        cfg.MaxTokens,
		Breaker:          cfg.Breaker,
		Logger:           cfg.Logger.With(zap.String("component", "classifier")),
	})
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		chunker:    chunker.New(cfg.ChunkSize),
		classifier: clf,
		rules:      cfg.Rules,
		workers:    cfg.Workers,
		logger:     logger,
	}, nil
}

// Diagnostics counts what happened to each chunk of a run
type Diagnostics struct {
	TotalChunks int `json:"total_chunks"`

	// Classified chunks got a fresh, valid model response
	Classified int `json:"classified"`

	// CacheHits reused the result of an identical chunk
	CacheHits int `json:"cache_hits"`

	// Skipped chunks were too short to send
	Skipped int `json:"skipped"`

	// Failed chunks contributed nothing; see FailuresByKind
	Failed         int            `json:"failed"`
	FailuresByKind map[string]int `json:"failures_by_kind,omitempty"`

	Duration time.Duration `json:"duration_ns"`
}

// Result is the outcome of one analysis run
type Result struct {
	RunID       string                 `json:"run_id"`
	Features    features.RepositoryMap `json:"features"`
	Diagnostics Diagnostics            `json:"diagnostics"`
}

// outcome of a single chunk
type outcome int

const (
	outcomeClassified outcome = iota
	outcomeCacheHit
	outcomeSkipped
	outcomeFailed
)

type run struct {
	id     string
	cache  *cache.Cache
	acc    *merger.Accumulator
	flight singleflight.Group
	logger *zap.Logger

	mu   sync.Mutex
	diag Diagnostics
}

func (r *run) record(o outcome, kind classifier.FailureKind) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch o {
	case outcomeClassified:
		r.diag.Classified++
	case outcomeCacheHit:
		r.diag.CacheHits++
	case outcomeSkipped:
		r.diag.Skipped++
	case outcomeFailed:
		r.diag.Failed++
		r.diag.FailuresByKind[kind.String()]++
	}
}

// cached marks a singleflight value that came out of the cache
type cached struct {
	result features.Map
}

// Analyze classifies every chunk of codeContent and merges the results.
//
// Chunk-local failures are logged, counted in the diagnostics and excluded from
// the merge; they never fail the run. The returned map always covers the whole
// catalog. Only cancellation of ctx returns an error.
func (a *Analyzer) Analyze(ctx context.Context, codeContent string) (*Result, error) {
	start := time.Now()

	r := &run{
		id:    uuid.NewString(),
		cache: cache.New(),
		acc:   merger.NewAccumulator(),
		diag:  Diagnostics{FailuresByKind: make(map[string]int)},
	}
	r.logger = a.logger.With(zap.String("run_id", r.id))

	chunks := a.chunker.Split(codeContent)
	r.diag.TotalChunks = len(chunks)
	if len(chunks) == 0 {
		r.logger.Warn("no code chunks to analyze")
	}
	r.logger.Info("starting analysis", zap.Int("chunks", len(chunks)), zap.Int("workers", a.workers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for _, chunk := range chunks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return a.process(gctx, r, chunk)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.diag.Duration = time.Since(start)

	result := &Result{
		RunID:       r.id,
		Features:    r.acc.Finalize(),
		Diagnostics: r.diag,
	}

	r.logger.Info("analysis complete",
		zap.Int("chunks", r.diag.TotalChunks),
		zap.Int("classified", r.diag.Classified),
		zap.Int("cache_hits", r.diag.CacheHits),
		zap.Int("skipped", r.diag.Skipped),
		zap.Int("failed", r.diag.Failed),
		zap.Int("features_present", result.Features.PresentCount()),
		zap.Duration("duration", r.diag.Duration),
	)

	return result, nil
}

// process handles one chunk. It only returns an error when ctx is done.
func (a *Analyzer) process(ctx context.Context, r *run, chunk chunker.Chunk) error {
	logger := r.logger.With(zap.Int("chunk", chunk.Index))

	if a.classifier.ShouldSkip(chunk.Text) {
		logger.Debug("skipping small chunk", zap.Int("bytes", len(chunk.Text)))
		r.record(outcomeSkipped, 0)
		return nil
	}

	fp := cache.FingerprintOf(chunk.Text)

	// executed is only set for the caller whose function actually runs
	var executed bool
	v, err, _ := r.flight.Do(fp.String(), func() (interface{}, error) {
		executed = true
		if result, ok := r.cache.Get(fp); ok {
			return cached{result: result}, nil
		}
		result, err := a.classifier.Classify(ctx, chunk)
		if err != nil {
			return nil, err
		}
		r.cache.Put(fp, result)
		return result, nil
	})

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.Is(err, classifier.ErrChunkTooSmall) {
			r.record(outcomeSkipped, 0)
			return nil
		}

		kind := classifier.KindOf(err)
		if kind == 0 {
			kind = classifier.KindTransport
		}

		fields := []zap.Field{zap.String("kind", kind.String()), zap.Error(err)}
		var chunkErr *classifier.ChunkError
		if errors.As(err, &chunkErr) && chunkErr.Raw != "" {
			fields = append(fields, zap.String("raw_response", logging.Truncate(chunkErr.Raw, maxLoggedResponse)))
		}
		logger.Warn("chunk excluded from analysis", fields...)

		r.record(outcomeFailed, kind)
		return nil
	}

	switch res := v.(type) {
	case cached:
		logger.Debug("using cached analysis", zap.String("fingerprint", fp.String()))
		r.acc.Merge(res.result)
		r.record(outcomeCacheHit, 0)
	case features.Map:
		r.acc.Merge(res)
		if executed {
			r.record(outcomeClassified, 0)
		} else {
			// another worker made the call for an identical chunk
			r.record(outcomeCacheHit, 0)
		}
	}

	return nil
}
