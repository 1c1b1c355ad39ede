package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/FrenchMajesty/repo-feature-analyzer/internal/logging"
	"github.com/FrenchMajesty/repo-feature-analyzer/internal/retry"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/adapters"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/analyzer"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/config"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/heuristics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath string
	verbose    bool
	workers    int

	cfg    *config.Config
	logger *zap.Logger
)

// newLLMClient is swapped out in tests
var newLLMClient = adapters.NewLLMClient

var rootCmd = &cobra.Command{
	Use:   "repo-analyzer",
	Short: "Detect architectural features of scraped repositories",
	Long: `repo-analyzer reads the directory listing and code dump of a repository,
labels its deployment platform and framework with heuristic rules and has a
language model classify the code chunk by chunk.

Provider credentials are read from the environment or a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnv(); err != nil {
			return err
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if workers > 0 {
			cfg.Analysis.Workers = workers
		}

		logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Format, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// buildAnalyzer wires the provider client, breaker and rule tables from cfg
func buildAnalyzer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*analyzer.Analyzer, error) {
	llm, err := newLLMClient(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}

	rules, err := heuristics.Load(cfg.Rules.Path)
	if err != nil {
		return nil, err
	}

	return analyzer.New(analyzer.Config{
		LLMClient:       llm,
		ChunkSize:       cfg.Analysis.ChunkSize,
		MinChunkContent: cfg.Analysis.MinChunkContent,
		MaxTokens:       cfg.LLM.MaxTokens,
		Workers:         cfg.Analysis.Workers,
		Breaker:         retry.NewBreaker(cfg.LLM.Breaker.Settings()),
		Rules:           rules,
		Logger:          logger,
	})
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 0, "Concurrent model calls (overrides config)")

	analyzeCmd.Flags().StringVar(&outputDir, "output", "", "Results directory (overrides config)")
	batchCmd.Flags().StringVar(&outputDir, "output", "", "Results directory (overrides config)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(batchCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
