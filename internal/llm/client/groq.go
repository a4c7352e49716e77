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

const groqBaseURL = "https://api.groq.com/openai/v1/chat/completions"

// GroqClient calls the Groq Chat Completions API. The API is OpenAI-compatible,
// so BaseURL may point at any compatible endpoint.
// See: https://console.groq.com/docs/api-reference
type GroqClient struct {
	http     *http.Client
	apiKey   string
	model    string
	tokenCap int
	// BaseURL is the full chat completions URL.
	BaseURL string
	// JSONMode sets response_format to json_object.
	JSONMode bool
}

func NewGroqClient(apiKey, model string, tokenCap int) (*GroqClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoAPIKey
	}
	if tokenCap <= 0 {
		tokenCap = 6000
	}
	return &GroqClient{
		http:     &http.Client{Timeout: 120 * time.Second},
		apiKey:   apiKey,
		model:    model,
		tokenCap: tokenCap,
		BaseURL:  groqBaseURL,
		JSONMode: true,
	}, nil
}

func (g *GroqClient) Name() string { return "Groq:" + g.model }
func (g *GroqClient) Close() error { return nil }
func (g *GroqClient) CountTokens(text string) int {
	return CountTokens(text)
}
func (g *GroqClient) TokenCapacity() int { return g.tokenCap }

type groqChatReq struct {
	Model          string            `json:"model"`
	Messages       []groqMessage     `json:"messages"`
	Temperature    float32           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}
type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
type groqChatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends prompt as the system message and input as the user message.
func (g *GroqClient) Complete(ctx context.Context, prompt string, input any) (string, error) {
	reqBody := groqChatReq{
		Model: g.model,
		Messages: []groqMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: strings.TrimSpace(renderInput("", input))},
		},
		Temperature: 0.2,
	}
	if g.JSONMode {
		reqBody.ResponseFormat = map[string]string{"type": "json_object"}
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		// Context length exceeded is reported as a 400 and is permanent too.
		return "", statusError("groq", resp, body)
	}
	var out groqChatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return out.Choices[0].Message.Content, nil
}
