package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/analyzer"
	"github.com/google/uuid"
)

const (
	directorySuffix = "_directory_structure.txt"
	codeSuffix      = "_code_content.txt"
	resultsSuffix   = "_analysis_results.json"
	batchCSVName    = "analysis_results.csv"
)

// BatchEntry is one line of a batch input file
type BatchEntry struct {
	Repo       string
	Deployment string
}

// BatchMetrics summarizes a batch run
type BatchMetrics struct {
	RunID        string        `json:"run_id"`
	Repositories int           `json:"repositories"`
	Analyzed     int           `json:"analyzed"`
	Missing      int           `json:"missing"`
	Errored      int           `json:"errored"`
	TotalChunks  int           `json:"total_chunks"`
	Classified   int           `json:"classified"`
	CacheHits    int           `json:"cache_hits"`
	Skipped      int           `json:"skipped"`
	Failed       int           `json:"failed"`
	Duration     time.Duration `json:"duration_ns"`
}

func (m *BatchMetrics) add(d analyzer.Diagnostics) {
	m.Analyzed++
	m.TotalChunks += d.TotalChunks
	m.Classified += d.Classified
	m.CacheHits += d.CacheHits
	m.Skipped += d.Skipped
	m.Failed += d.Failed
}

// fileStem turns owner/repo into the owner_repo prefix of the scraped files
func fileStem(repo string) string {
	return strings.ReplaceAll(strings.TrimSpace(repo), "/", "_")
}

// loadProject reads the scraped directory listing and code dump of repo
func loadProject(inputDir, repo string) (analyzer.Project, error) {
	stem := filepath.Join(inputDir, fileStem(repo))

	directory, err := os.ReadFile(stem + directorySuffix)
	if err != nil {
		return analyzer.Project{}, fmt.Errorf("failed to read directory structure: %w", err)
	}

	code, err := os.ReadFile(stem + codeSuffix)
	if err != nil {
		return analyzer.Project{}, fmt.Errorf("failed to read code content: %w", err)
	}

	return analyzer.Project{
		Repo:      repo,
		Directory: string(directory),
		Code:      string(code),
	}, nil
}

// loadBatch parses owner/repo|deployment lines. Blank lines are skipped and
// the deployment column is optional.
func loadBatch(path string) ([]BatchEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	var entries []BatchEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		repo, deployment, _ := strings.Cut(line, "|")
		entries = append(entries, BatchEntry{
			Repo:       strings.TrimSpace(repo),
			Deployment: strings.TrimSpace(deployment),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	return entries, nil
}

// saveMetricsToFile writes the batch metrics next to the results
func saveMetricsToFile(dir string, metrics BatchMetrics) (string, error) {
	timestamp := time.Now().Format("20060102_150405")
	random := uuid.New().String()[:8]
	filename := filepath.Join(dir, fmt.Sprintf("metrics_%s_%s.json", timestamp, random))

	jsonData, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return "", err
	}

	return filename, nil
}
