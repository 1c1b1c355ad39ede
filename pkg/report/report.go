// Package report writes analysis results to disk
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/analyzer"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/features"
)

// WriteResults writes the report of one repository as indented JSON
func WriteResults(path string, r *analyzer.ProjectReport) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// CSVWriter writes one row of feature flags per repository
type CSVWriter struct {
	w         *csv.Writer
	closer    io.Closer
	directory []string
}

// CreateCSV creates the file at path and writes the header row
func CreateCSV(path string, directoryFeatures []string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	w, err := NewCSVWriter(f, directoryFeatures)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// NewCSVWriter writes the header row to out. directoryFeatures fixes the
// order of the infrastructure columns.
func NewCSVWriter(out io.Writer, directoryFeatures []string) (*CSVWriter, error) {
	w := &CSVWriter{
		w:         csv.NewWriter(out),
		directory: append([]string(nil), directoryFeatures...),
	}

	header := []string{"repository", "deployment", "framework"}
	header = append(header, w.directory...)
	for _, name := range features.Catalog() {
		header = append(header, string(name))
	}

	if err := w.w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	return w, nil
}

// Write appends the row for r
func (w *CSVWriter) Write(r *analyzer.ProjectReport) error {
	row := []string{r.Repository, r.Deployment, r.Framework}
	for _, name := range w.directory {
		row = append(row, flag(r.DirectoryAnalysis[name]))
	}
	for _, name := range features.Catalog() {
		row = append(row, flag(r.LLMAnalysis[name].Present))
	}
	return w.w.Write(row)
}

// Flush writes buffered rows to the underlying writer
func (w *CSVWriter) Flush() error {
	w.w.Flush()
	return w.w.Error()
}

// Close flushes and closes the file opened by CreateCSV. Calling it again is a no-op.
func (w *CSVWriter) Close() error {
	err := w.Flush()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
		w.closer = nil
	}
	return err
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
