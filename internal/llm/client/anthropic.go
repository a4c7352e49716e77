package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
)

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	http      *http.Client
	apiKey    string
	model     string
	tokenCap  int
	maxOutput int
	BaseURL   string
}

func NewAnthropicClient(apiKey, model string, tokenCap int) (*AnthropicClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoAPIKey
	}
	if tokenCap <= 0 {
		tokenCap = 100000
	}
	return &AnthropicClient{
		http:      &http.Client{Timeout: 180 * time.Second},
		apiKey:    apiKey,
		model:     model,
		tokenCap:  tokenCap,
		maxOutput: 8192,
		BaseURL:   anthropicBaseURL,
	}, nil
}

func (a *AnthropicClient) Name() string { return "Anthropic:" + a.model }
func (a *AnthropicClient) Close() error { return nil }
func (a *AnthropicClient) CountTokens(text string) int {
	return CountTokens(text)
}
func (a *AnthropicClient) TokenCapacity() int { return a.tokenCap }

type anthropicReq struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}
type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
type anthropicResp struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// Complete sends prompt as the system prompt and input as the user turn, and
// joins every text block of the reply.
func (a *AnthropicClient) Complete(ctx context.Context, prompt string, input any) (string, error) {
	user := strings.TrimSpace(renderInput("", input))
	if user == "" {
		user = "Respond with the JSON object described in the instructions."
	}
	b, err := json.Marshal(anthropicReq{
		Model:     a.model,
		MaxTokens: a.maxOutput,
		System:    prompt,
		Messages:  []anthropicMessage{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", statusError("anthropic", resp, body)
	}
	var out anthropicResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, c := range out.Content {
		if c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}
	// A max_tokens stop leaves truncated JSON; the response pipeline repairs
	// what it can, so the text is still returned.
	return sb.String(), nil
}
