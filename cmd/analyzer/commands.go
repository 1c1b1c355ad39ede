package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/analyzer"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/features"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/report"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var outputDir string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <owner/repo>",
	Short: "Analyze a single scraped repository",
	Long: `Reads <input_dir>/<owner_repo>_directory_structure.txt and
<input_dir>/<owner_repo>_code_content.txt, runs the analysis and writes
<output_dir>/<owner_repo>_analysis_results.json.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := buildAnalyzer(ctx, cfg, logger)
		if err != nil {
			return err
		}
		_, err = runAnalyze(ctx, a, args[0], cfg.Output.InputDir, resultsDir(), cmd.OutOrStdout())
		return err
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch <input_file>",
	Short: "Analyze every repository listed in an input file",
	Long: `Each line of the input file is owner/repo|deployment. Repositories whose
scraped files are missing are skipped. Writes <output_dir>/analysis_results.csv.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := buildAnalyzer(ctx, cfg, logger)
		if err != nil {
			return err
		}
		_, err = runBatch(ctx, a, args[0], cfg.Output.InputDir, resultsDir(), logger, cmd.OutOrStdout())
		return err
	},
}

func resultsDir() string {
	if outputDir != "" {
		return outputDir
	}
	return cfg.Output.Dir
}

// runAnalyze analyzes one repository, writes its results document and prints a summary
func runAnalyze(ctx context.Context, a *analyzer.Analyzer, repo, inputDir, outDir string, out io.Writer) (*analyzer.ProjectReport, error) {
	project, err := loadProject(inputDir, repo)
	if err != nil {
		return nil, err
	}

	rep, err := a.AnalyzeProject(ctx, project)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(outDir, fileStem(repo)+resultsSuffix)
	if err := report.WriteResults(path, rep); err != nil {
		return nil, err
	}

	printSummary(out, rep)
	fmt.Fprintf(out, "\nResults saved to %s\n", path)
	return rep, nil
}

func printSummary(out io.Writer, rep *analyzer.ProjectReport) {
	fmt.Fprintf(out, "Analysis Summary for %s\n", rep.Repository)
	fmt.Fprintf(out, "Deployment: %s\n", rep.Deployment)
	fmt.Fprintf(out, "Framework: %s\n", rep.Framework)

	fmt.Fprintln(out, "\nInfrastructure:")
	for _, name := range rep.DirectoryFeatures {
		fmt.Fprintf(out, "  %-24s %v\n", name, rep.DirectoryAnalysis[name])
	}

	fmt.Fprintln(out, "\nCode features:")
	for _, name := range features.Catalog() {
		f := rep.LLMAnalysis[name]
		if !f.Present {
			continue
		}
		fmt.Fprintf(out, "  %-24s %s\n", name, f.Details)
	}

	d := rep.Diagnostics
	fmt.Fprintf(out, "\nChunks: %d total, %d classified, %d cached, %d skipped, %d failed\n",
		d.TotalChunks, d.Classified, d.CacheHits, d.Skipped, d.Failed)
}

// runBatch analyzes every repository in inputFile into a single CSV. A
// repository that fails is logged and left out; only cancellation stops the batch.
func runBatch(ctx context.Context, a *analyzer.Analyzer, inputFile, inputDir, outDir string, logger *zap.Logger, out io.Writer) (BatchMetrics, error) {
	start := time.Now()
	metrics := BatchMetrics{RunID: uuid.NewString()}
	logger = logger.With(zap.String("batch_id", metrics.RunID))

	entries, err := loadBatch(inputFile)
	if err != nil {
		return metrics, err
	}
	metrics.Repositories = len(entries)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return metrics, fmt.Errorf("failed to create output directory: %w", err)
	}

	csvPath := filepath.Join(outDir, batchCSVName)
	w, err := report.CreateCSV(csvPath, a.DirectoryFeatures())
	if err != nil {
		return metrics, err
	}
	defer w.Close()

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return metrics, err
		}

		project, err := loadProject(inputDir, entry.Repo)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.Warn("scraped files missing, skipping", zap.String("repository", entry.Repo))
				metrics.Missing++
				continue
			}
			return metrics, err
		}
		project.DeclaredDeployment = entry.Deployment

		fmt.Fprintf(out, "[%d/%d] analyzing %s\n", i+1, len(entries), entry.Repo)

		rep, err := a.AnalyzeProject(ctx, project)
		if err != nil {
			if ctx.Err() != nil {
				return metrics, ctx.Err()
			}
			logger.Error("analysis failed", zap.String("repository", entry.Repo), zap.Error(err))
			metrics.Errored++
			continue
		}

		if err := w.Write(rep); err != nil {
			return metrics, fmt.Errorf("failed to write CSV row: %w", err)
		}
		metrics.add(rep.Diagnostics)
	}

	if err := w.Close(); err != nil {
		return metrics, err
	}

	metrics.Duration = time.Since(start)
	metricsPath, err := saveMetricsToFile(outDir, metrics)
	if err != nil {
		logger.Warn("failed to save batch metrics", zap.Error(err))
	}

	fmt.Fprintf(out, "\nAnalyzed %d of %d repositories (%d missing, %d failed)\n",
		metrics.Analyzed, metrics.Repositories, metrics.Missing, metrics.Errored)
	fmt.Fprintf(out, "Results saved to %s\n", csvPath)
	if metricsPath != "" {
		fmt.Fprintf(out, "Metrics saved to %s\n", metricsPath)
	}
	return metrics, nil
}
