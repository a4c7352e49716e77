package llm

import (
	"context"
	"log"
	"time"

	llmclient "setupwizard/internal/llm/client"
)

// WithLogging logs request size, latency and errors, and warns when a prompt
// is larger than the client's token capacity. Provide a custom logger
// or nil to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		return &logging{LLMClient: next, log: logger}
	}
}

type logging struct {
	llmclient.LLMClient
	log *log.Logger
}

func (l *logging) Complete(ctx context.Context, prompt string, input any) (string, error) {
	phase := PhaseFrom(ctx)
	tokens := l.CountTokens(prompt)
	l.log.Printf("LLM request (%s, %s): ~%d tokens", phase, l.Name(), tokens)
	if limit := l.TokenCapacity(); limit > 0 && tokens > limit {
		l.log.Printf("LLM warning (%s): prompt exceeds %s capacity of %d tokens", phase, l.Name(), limit)
	}
	start := time.Now()
	out, err := l.LLMClient.Complete(ctx, prompt, input)
	if err != nil {
		l.log.Printf("LLM error (%s): %v", phase, err)
		return out, err
	}
	l.log.Printf("LLM response (%s): %d bytes in %s", phase, len(out), time.Since(start).Round(time.Millisecond))
	return out, nil
}
