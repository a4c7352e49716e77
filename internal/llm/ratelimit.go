package llm

import (
	"context"
	"os"
	"strconv"
	"time"

	llmclient "setupwizard/internal/llm/client"
)

// rpsLimiter is a lightweight token-bucket limiter that throttles to at most
// R requests per second with an optional burst capacity.
type rpsLimiter struct {
	tokens chan struct{}
	stopCh chan struct{}
}

// newRPSLimiter creates a limiter that allows up to rps events per second
// with a burst capacity of 'burst'. If rps <= 0, the limiter is disabled
// (Acquire becomes a no-op).
func newRPSLimiter(rps float64, burst int) *rpsLimiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}

	l := &rpsLimiter{
		tokens: make(chan struct{}, burst),
		stopCh: make(chan struct{}),
	}

	// Pre-fill bucket to allow an initial burst.
	for i := 0; i < burst; i++ {
		l.tokens <- struct{}{}
	}

	period := time.Duration(float64(time.Second) / rps)
	if period <= 0 {
		period = time.Millisecond
	}
	ticker := time.NewTicker(period)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				select {
				case l.tokens <- struct{}{}:
				default:
					// bucket full; drop token
				}
			case <-l.stopCh:
				return
			}
		}
	}()

	return l
}

// Acquire blocks until a token is available or the context is canceled.
func (l *rpsLimiter) Acquire(ctx context.Context) error {
	if l == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopCh:
		return context.Canceled
	case <-l.tokens:
		return nil
	}
}

// Stop terminates the limiter's refill goroutine.
func (l *rpsLimiter) Stop() {
	if l == nil {
		return
	}
	close(l.stopCh)
}

// RateLimit limits request rate. If rps <= 0, the limiter is disabled.
// Closing the wrapped client stops the limiter.
func RateLimit(rps float64, burst int) Middleware {
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		return &rateLimited{LLMClient: next, rl: newRPSLimiter(rps, burst)}
	}
}

// RateLimitFromEnv reads RPS/BURST from environment variables with the
// given prefixes in priority order. For example, ("LLM","GEMINI")
// checks LLM_RPS/LLM_BURST first, then GEMINI_RPS/GEMINI_BURST.
// When no variable is set, fallback is used.
func RateLimitFromEnv(fallback *llmclient.RateLimitConfig, prefixes ...string) Middleware {
	find := func(suffix string) string {
		for _, p := range prefixes {
			if p == "" {
				continue
			}
			if v := os.Getenv(p + suffix); v != "" {
				return v
			}
		}
		return ""
	}
	var rps float64
	var burst int
	if fallback != nil {
		rps, burst = fallback.RPS, fallback.Burst
	}
	if v := find("_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			rps = f
		}
	}
	if v := find("_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			burst = n
		}
	}
	return RateLimit(rps, burst)
}

type rateLimited struct {
	llmclient.LLMClient
	rl *rpsLimiter
}

func (c *rateLimited) Close() error {
	c.rl.Stop()
	return c.LLMClient.Close()
}

func (c *rateLimited) Complete(ctx context.Context, prompt string, input any) (string, error) {
	if err := c.rl.Acquire(ctx); err != nil {
		return "", err
	}
	return c.LLMClient.Complete(ctx, prompt, input)
}
