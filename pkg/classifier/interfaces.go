package classifier

import (
	"context"

	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/types"
)

// LLMClient sends a classification prompt to a language model and returns the
// raw response text. Implementations must request deterministic decoding
// (temperature zero) and JSON output.
type LLMClient interface {
	Classify(ctx context.Context, prompt types.Prompt) (string, error)
}
