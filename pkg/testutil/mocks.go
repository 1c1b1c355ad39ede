package testutil

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/features"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/types"
)

// MockLLMClient is a mock implementation of classifier.LLMClient for testing
type MockLLMClient struct {
	ClassifyFunc func(ctx context.Context, prompt types.Prompt) (string, error)

	mu         sync.Mutex
	callCount  int
	lastPrompt types.Prompt
	codes      []string
}

func (m *MockLLMClient) Classify(ctx context.Context, prompt types.Prompt) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastPrompt = prompt
	m.codes = append(m.codes, CodeFromPrompt(prompt))
	m.mu.Unlock()

	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, prompt)
	}

	// Default: nothing detected
	return Response(nil), nil
}

// CallCount returns the number of Classify calls so far
func (m *MockLLMClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastPrompt returns the most recent prompt
func (m *MockLLMClient) LastPrompt() types.Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPrompt
}

// Codes returns the code portion of every prompt, in call order
func (m *MockLLMClient) Codes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.codes...)
}

const codeMarker = "Code to analyze:\n"

// CodeFromPrompt extracts the chunk text from a classification prompt
func CodeFromPrompt(prompt types.Prompt) string {
	if i := strings.Index(prompt.User, codeMarker); i >= 0 {
		return prompt.User[i+len(codeMarker):]
	}
	return prompt.User
}

// Response renders a well-formed model response covering the whole catalog.
// Features not in detected are reported absent.
func Response(detected features.Map) string {
	out := make(map[string]features.Verdict, len(features.Catalog()))
	for _, name := range features.Catalog() {
		out[string(name)] = detected[name]
	}
	data, err := json.Marshal(out)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// Code returns a chunk body long enough to pass the minimum content length
func Code(marker string) string {
	return marker + "\n" + strings.Repeat("// filler line for a realistic chunk body\n", 4)
}
