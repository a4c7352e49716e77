package llm

import (
	"context"
	"errors"
	"time"

	llmclient "setupwizard/internal/llm/client"
)

// Retry retries Complete up to maxAttempts with exponential backoff
// starting at baseDelay. If context is canceled, it stops immediately.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		return &retrying{LLMClient: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	llmclient.LLMClient
	max  int
	base time.Duration
}

func (r *retrying) Complete(ctx context.Context, prompt string, input any) (string, error) {
	var last error
	for i := 0; i < r.max; i++ {
		out, err := r.LLMClient.Complete(ctx, prompt, input)
		if err == nil {
			return out, nil
		}
		// If it's a permanent error, do not retry.
		var pErr *llmclient.PermanentError
		if errors.As(err, &pErr) {
			return "", err
		}
		last = err
		if i == r.max-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(r.base * time.Duration(1<<i)):
		}
	}
	return "", last
}
