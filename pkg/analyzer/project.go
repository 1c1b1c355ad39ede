package analyzer

import (
	"context"

	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/features"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/heuristics"
	"go.uber.org/zap"
)

// Project is the scraped content of one repository
type Project struct {
	// Repo is the repository id, owner/name
	Repo string

	// DeclaredDeployment is the deployment listed in a batch input file, if any
	DeclaredDeployment string

	Directory string
	Code      string
}

// CombinedFinding merges the directory heuristics and the model verdict for one feature
type CombinedFinding struct {
	Present             bool              `json:"present"`
	DirectoryIndicators bool              `json:"directory_indicators"`
	CodeAnalysis        *features.Finding `json:"code_analysis,omitempty"`
}

// ProjectReport is the full analysis of one repository
type ProjectReport struct {
	Repository         string `json:"repository"`
	RunID              string `json:"run_id"`
	DeclaredDeployment string `json:"declared_deployment,omitempty"`
	Deployment         string `json:"deployment"`
	Framework          string `json:"framework"`

	DirectoryAnalysis map[string]bool            `json:"directory_analysis"`
	LLMAnalysis       features.RepositoryMap     `json:"llm_analysis"`
	CombinedAnalysis  map[string]CombinedFinding `json:"combined_analysis"`

	Diagnostics Diagnostics `json:"diagnostics"`

	// DirectoryFeatures lists the infrastructure feature names in rule order
	DirectoryFeatures []string `json:"-"`
}

// AnalyzeProject combines the heuristic labels and directory indicators with
// the model analysis of the code
func (a *Analyzer) AnalyzeProject(ctx context.Context, p Project) (*ProjectReport, error) {
	detection := a.rules.Detect(heuristics.Input{
		Repo:      p.Repo,
		Directory: p.Directory,
		Code:      p.Code,
	})

	a.logger.Info("heuristics evaluated",
		zap.String("repository", p.Repo),
		zap.String("deployment", detection.Deployment),
		zap.String("framework", detection.Framework),
	)

	result, err := a.Analyze(ctx, p.Code)
	if err != nil {
		return nil, err
	}

	return &ProjectReport{
		Repository:         p.Repo,
		RunID:              result.RunID,
		DeclaredDeployment: p.DeclaredDeployment,
		Deployment:         detection.Deployment,
		Framework:          detection.Framework,
		DirectoryAnalysis:  detection.Directory,
		LLMAnalysis:        result.Features,
		CombinedAnalysis:   combine(detection.Directory, result.Features),
		Diagnostics:        result.Diagnostics,
		DirectoryFeatures:  a.rules.DirectoryFeatures(),
	}, nil
}

// DirectoryFeatures lists the infrastructure feature names in rule order
func (a *Analyzer) DirectoryFeatures() []string {
	return a.rules.DirectoryFeatures()
}

func combine(directory map[string]bool, code features.RepositoryMap) map[string]CombinedFinding {
	out := make(map[string]CombinedFinding, len(directory)+len(code))

	for name, found := range directory {
		out[name] = CombinedFinding{Present: found, DirectoryIndicators: found}
	}

	for name, finding := range code {
		f := finding
		c := out[string(name)]
		c.Present = c.Present || f.Present
		c.CodeAnalysis = &f
		out[string(name)] = c
	}

	return out
}
