package classifier

import (
	"fmt"
	"strings"

	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/features"
	"github.com/FrenchMajesty/repo-feature-analyzer/pkg/types"
)

const systemPrompt = "You are a code analysis expert. Analyze the code and return ONLY valid JSON matching the exact format specified. Do not include any additional text or formatting."

// instructions is rendered once from the feature registry
var instructions = renderInstructions()

func renderInstructions() string {
	var b strings.Builder
	b.WriteString("Analyze the following code snippet and determine if it implements any of these features. For each feature:\n")
	b.WriteString("1. Indicate if it's present\n")
	b.WriteString("2. Provide details about the implementation if found\n")
	b.WriteString("3. Suggest specific improvements or implementations if needed (e.g., \"Should implement Redis caching for user sessions\" or \"Needs S3 bucket for file uploads\")\n\n")

	b.WriteString("Features to analyze:\n")
	entries := features.Entries()
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, e.Title, e.Hint)
	}

	b.WriteString("\nReturn your analysis in this exact JSON format:\n{\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "    %q: {\"present\": false, \"details\": \"\", \"improvements\": \"\"}", string(e.Name))
		if i < len(entries)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}")
	return b.String()
}

// BuildPrompt returns the classification prompt for a chunk of code
func BuildPrompt(code string, maxTokens int) types.Prompt {
	return types.Prompt{
		System:    systemPrompt,
		User:      instructions + "\n\nCode to analyze:\n" + code,
		MaxTokens: maxTokens,
	}
}
