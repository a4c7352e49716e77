package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	lru "github.com/hashicorp/golang-lru/v2"

	llmclient "setupwizard/internal/llm/client"
)

// Cache memoizes successful completions keyed by client name, prompt and
// input. Regenerating after a quality failure bypasses it through
// WithoutCache. size <= 0 disables the cache.
func Cache(size int) Middleware {
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		if size <= 0 {
			return next
		}
		c, err := lru.New[string, string](size)
		if err != nil {
			return next
		}
		return &cached{LLMClient: next, cache: c}
	}
}

type ctxKeyNoCache struct{}

// WithoutCache forces the next request made with ctx to reach the provider.
// The fresh answer still replaces the cached one.
func WithoutCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKeyNoCache{}, true)
}

func cacheBypassed(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeyNoCache{}).(bool)
	return v
}

type cached struct {
	llmclient.LLMClient
	cache *lru.Cache[string, string]
}

func (c *cached) Complete(ctx context.Context, prompt string, input any) (string, error) {
	key := cacheKey(c.Name(), prompt, input)
	if !cacheBypassed(ctx) {
		if out, ok := c.cache.Get(key); ok {
			return out, nil
		}
	}
	out, err := c.LLMClient.Complete(ctx, prompt, input)
	if err != nil {
		return "", err
	}
	c.cache.Add(key, out)
	return out, nil
}

func cacheKey(name, prompt string, input any) string {
	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	h.Write([]byte{0})
	in, _ := json.Marshal(input)
	h.Write(in)
	return hex.EncodeToString(h.Sum(nil))
}
