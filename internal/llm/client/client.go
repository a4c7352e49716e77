package llmclient

import (
	"context"
	"encoding/json"
)

// LLMClient defines the interface for LLM providers.
type LLMClient interface {
	Name() string
	Close() error
	CountTokens(text string) int
	TokenCapacity() int
	// Complete sends prompt plus the JSON rendering of input and returns the
	// model's text verbatim. The text may wrap its answer in prose or code
	// fences; callers extract structure themselves.
	Complete(ctx context.Context, prompt string, input any) (string, error)
}

// renderInput appends the input payload to the prompt the way every provider
// in this package expects it.
func renderInput(prompt string, input any) string {
	if input == nil {
		return prompt
	}
	in, _ := json.MarshalIndent(input, "", "  ")
	return prompt + "\n\n[INPUT JSON]\n" + string(in)
}
