package llm

import (
	"context"

	llmclient "setupwizard/internal/llm/client"
)

// PromptHook defines callbacks around LLM requests.
type PromptHook interface {
	Before(ctx context.Context, phase, prompt string, input any)
	After(ctx context.Context, phase, completion string, err error)
}

type ctxKeyHook struct{}
type ctxKeyPhase struct{}

// WithPhase labels requests made with ctx, e.g. "recommend".
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, ctxKeyPhase{}, phase)
}

// WithPromptHook attaches a PromptHook to the context. The WithHooks
// middleware invokes it around requests.
func WithPromptHook(ctx context.Context, hook PromptHook) context.Context {
	return context.WithValue(ctx, ctxKeyHook{}, hook)
}

// HookFrom returns the hook stored in the context.
func HookFrom(ctx context.Context) PromptHook {
	if v := ctx.Value(ctxKeyHook{}); v != nil {
		if h, ok := v.(PromptHook); ok {
			return h
		}
	}
	return nil
}

// PhaseFrom returns the phase string stored in the context.
func PhaseFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyPhase{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}

// WithHooks calls HookFrom(ctx).Before/After around Complete.
// If no hook is present in the context, it is a no-op.
func WithHooks() Middleware {
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		return &hooked{LLMClient: next}
	}
}

type hooked struct {
	llmclient.LLMClient
}

func (h *hooked) Complete(ctx context.Context, prompt string, input any) (string, error) {
	hook := HookFrom(ctx)
	if hook != nil {
		hook.Before(ctx, PhaseFrom(ctx), prompt, input)
	}
	out, err := h.LLMClient.Complete(ctx, prompt, input)
	if hook != nil {
		hook.After(ctx, PhaseFrom(ctx), out, err)
	}
	return out, err
}
