// Package merger folds per-chunk feature verdicts into a repository-level
// verdict.
package merger

import (
	"strings"
	"sync"

	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/features"
)

type running struct {
	present      bool
	details      []string
	improvements []string
}

// Accumulator collects chunk results. Merge order does not affect the
// Present flags, and merging the same result twice does not change the
// finalized evidence.
type Accumulator struct {
	mu       sync.Mutex
	features map[features.Name]*running
	merged   int
}

// NewAccumulator creates an accumulator seeded with every catalog feature absent
func NewAccumulator() *Accumulator {
	a := &Accumulator{
		features: make(map[features.Name]*running),
	}
	for _, name := range features.Catalog() {
		a.features[name] = &running{}
	}
	return a
}

// Merge folds a validated chunk result into the running total. Features
// outside the catalog are ignored.
func (a *Accumulator) Merge(result features.Map) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for name, verdict := range result {
		r, ok := a.features[name]
		if !ok {
			continue
		}

		if verdict.Present {
			r.present = true
			if d := strings.TrimSpace(verdict.Details); d != "" {
				r.details = append(r.details, d)
			}
		}

		if imp := strings.TrimSpace(verdict.Improvements); imp != "" {
			r.improvements = append(r.improvements, imp)
		}
	}

	a.merged++
}

// Merged returns the number of chunk results merged so far
func (a *Accumulator) Merged() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.merged
}

// Finalize builds the repository map. Evidence is deduplicated keeping
// first-seen order; features without evidence get features.NotFound.
func (a *Accumulator) Finalize() features.RepositoryMap {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(features.RepositoryMap, len(a.features))
	for name, r := range a.features {
		evidence := dedup(r.details)

		finding := features.Finding{
			Present:      r.present,
			Evidence:     evidence,
			Improvements: dedup(r.improvements),
			Details:      features.NotFound,
		}
		if len(evidence) > 0 {
			finding.Details = strings.Join(evidence, "\n")
		}
		out[name] = finding
	}
	return out
}

func dedup(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
