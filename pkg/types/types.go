package types

// Prompt is a provider-agnostic classification request
type Prompt struct {
	// System is the fixed instruction describing the output contract
	System string

	// User carries the feature instructions followed by the code chunk
	User string

	// MaxTokens caps the response length. Zero uses the provider default.
	MaxTokens int
}
