// Package heuristics labels a repository's deployment platform, framework and
// infrastructure features with ordered substring rules. The rule tables are
// data: a built-in table is embedded and another can be loaded from disk.
package heuristics

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Unknown is the label returned when no rule matches
const Unknown = "Unknown"

//go:embed rules.yaml
var defaultRules []byte

// Input is the evidence the rules are evaluated against
type Input struct {
	// Repo is the repository id, owner/name
	Repo string

	// Directory is the textual directory listing
	Directory string

	// Code is the concatenated code content
	Code string
}

func (in Input) normalized() Input {
	return Input{
		Repo:      strings.ToLower(in.Repo),
		Directory: strings.ToLower(in.Directory),
		Code:      strings.ToLower(in.Code),
	}
}

type termKind int

const (
	termFile termKind = iota
	termContent
	termRepo
)

type term struct {
	kind   termKind
	value  string
	negate bool
}

func (t term) eval(in Input) bool {
	var haystack string
	switch t.kind {
	case termFile:
		haystack = in.Directory
	case termContent:
		haystack = in.Code
	case termRepo:
		haystack = in.Repo
	}
	return strings.Contains(haystack, t.value) != t.negate
}

func parseTerm(raw string) (term, error) {
	var t term
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "!") {
		t.negate = true
		s = s[1:]
	}

	prefix, value, ok := strings.Cut(s, ":")
	if !ok || value == "" {
		return term{}, fmt.Errorf("invalid term %q: expected file:, content: or repo: prefix", raw)
	}

	switch prefix {
	case "file":
		t.kind = termFile
	case "content":
		t.kind = termContent
	case "repo":
		t.kind = termRepo
	default:
		return term{}, fmt.Errorf("invalid term %q: unknown prefix %q", raw, prefix)
	}

	t.value = strings.ToLower(value)
	return t, nil
}

// Rule assigns Label when any of its clauses matches
type Rule struct {
	Label string     `yaml:"label"`
	Any   [][]string `yaml:"any"`

	clauses [][]term
}

func (r *Rule) compile() error {
	if r.Label == "" {
		return fmt.Errorf("rule without label")
	}
	if len(r.Any) == 0 {
		return fmt.Errorf("rule %q has no clauses", r.Label)
	}

	r.clauses = make([][]term, 0, len(r.Any))
	for _, clause := range r.Any {
		if len(clause) == 0 {
			return fmt.Errorf("rule %q has an empty clause", r.Label)
		}
		terms := make([]term, 0, len(clause))
		for _, raw := range clause {
			t, err := parseTerm(raw)
			if err != nil {
				return fmt.Errorf("rule %q: %w", r.Label, err)
			}
			terms = append(terms, t)
		}
		r.clauses = append(r.clauses, terms)
	}
	return nil
}

func (r *Rule) matches(in Input) bool {
	for _, clause := range r.clauses {
		all := true
		for _, t := range clause {
			if !t.eval(in) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// DirectoryRule flags an infrastructure feature when any pattern occurs in the directory listing
type DirectoryRule struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

// Rules holds the ordered rule tables
type Rules struct {
	DirectoryRules  []DirectoryRule `yaml:"directory"`
	DeploymentRules []Rule          `yaml:"deployment"`
	FrameworkRules  []Rule          `yaml:"framework"`
}

// Default returns the built-in rule tables
func Default() *Rules {
	rules, err := Parse(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("heuristics: built-in rules are invalid: %v", err))
	}
	return rules
}

// Load reads rule tables from path, or returns the built-in tables when path is empty
func Load(path string) (*Rules, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and compiles YAML rule tables
func Parse(data []byte) (*Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rules: %w", err)
	}

	seen := make(map[string]bool, len(rules.DirectoryRules))
	for i, d := range rules.DirectoryRules {
		if d.Name == "" || len(d.Patterns) == 0 {
			return nil, fmt.Errorf("directory rule %d needs a name and patterns", i)
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("duplicate directory feature %q", d.Name)
		}
		seen[d.Name] = true
		for j, p := range d.Patterns {
			rules.DirectoryRules[i].Patterns[j] = strings.ToLower(p)
		}
	}

	for i := range rules.DeploymentRules {
		if err := rules.DeploymentRules[i].compile(); err != nil {
			return nil, fmt.Errorf("deployment: %w", err)
		}
	}
	for i := range rules.FrameworkRules {
		if err := rules.FrameworkRules[i].compile(); err != nil {
			return nil, fmt.Errorf("framework: %w", err)
		}
	}

	return &rules, nil
}

func firstMatch(rules []Rule, in Input) string {
	for i := range rules {
		if rules[i].matches(in) {
			return rules[i].Label
		}
	}
	return Unknown
}

// Deployment returns the label of the first deployment rule that matches
func (r *Rules) Deployment(in Input) string {
	return firstMatch(r.DeploymentRules, in.normalized())
}

// Framework returns the label of the first framework rule that matches
func (r *Rules) Framework(in Input) string {
	return firstMatch(r.FrameworkRules, in.normalized())
}

// DirectoryFeatures returns the infrastructure feature names in table order
func (r *Rules) DirectoryFeatures() []string {
	names := make([]string, len(r.DirectoryRules))
	for i, d := range r.DirectoryRules {
		names[i] = d.Name
	}
	return names
}

// Directory flags every infrastructure feature against the directory listing
func (r *Rules) Directory(directory string) map[string]bool {
	listing := strings.ToLower(directory)
	found := make(map[string]bool, len(r.DirectoryRules))
	for _, d := range r.DirectoryRules {
		found[d.Name] = false
		for _, p := range d.Patterns {
			if strings.Contains(listing, p) {
				found[d.Name] = true
				break
			}
		}
	}
	return found
}

// Detection is the full heuristic verdict for one repository
type Detection struct {
	Deployment string          `json:"deployment"`
	Framework  string          `json:"framework"`
	Directory  map[string]bool `json:"directory"`
}

// Detect evaluates every table once against in
func (r *Rules) Detect(in Input) Detection {
	norm := in.normalized()
	return Detection{
		Deployment: firstMatch(r.DeploymentRules, norm),
		Framework:  firstMatch(r.FrameworkRules, norm),
		Directory:  r.Directory(norm.Directory),
	}
}
