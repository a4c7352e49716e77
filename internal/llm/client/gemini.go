package llmclient

import (
	"context"
	"strings"

	genai "google.golang.org/genai"
)

// GeminiClient is a thin wrapper around the official genai client.
// It only focuses on the API call itself. Cross-cutting concerns
// (rate limiting, retries, logging, hooks) are applied via Middleware.
type GeminiClient struct {
	cli      *genai.Client
	model    string
	tokenCap int
	// JSONMode asks the API for application/json output.
	JSONMode bool
}

func NewGeminiClient(ctx context.Context, apiKey, model string, tokenCap int) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoAPIKey
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	if tokenCap <= 0 {
		tokenCap = 12000
	}
	return &GeminiClient{cli: cli, model: model, tokenCap: tokenCap, JSONMode: true}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }
func (g *GeminiClient) Close() error { return nil }
func (g *GeminiClient) CountTokens(text string) int {
	return CountTokens(text)
}
func (g *GeminiClient) TokenCapacity() int { return g.tokenCap }

// Complete concatenates prompt and input and returns the text of the first
// candidate.
func (g *GeminiClient) Complete(ctx context.Context, prompt string, input any) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if g.JSONMode {
		cfg.ResponseMIMEType = "application/json"
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: renderInput(prompt, input)}}}},
		cfg,
	)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}
