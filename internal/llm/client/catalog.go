package llmclient

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// ClientFactory builds a client for model with the given context budget.
type ClientFactory func(ctx context.Context, model string, tokenCap int) (LLMClient, error)

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type ModelRegistration struct {
	Provider  string
	Model     string
	Default   bool
	MaxTokens int
	RateLimit *RateLimitConfig
	Factory   ClientFactory
}

type ModelRegistrar interface {
	RegisterModel(spec ModelRegistration) error
}

// Registry maps provider/model pairs to client factories.
type Registry struct {
	mu     sync.RWMutex
	models map[string][]ModelRegistration
}

func NewRegistry() *Registry {
	return &Registry{models: make(map[string][]ModelRegistration)}
}

func (r *Registry) RegisterModel(spec ModelRegistration) error {
	provider := normalize(spec.Provider)
	if provider == "" || spec.Model == "" {
		return fmt.Errorf("llmclient: provider and model are required")
	}
	if spec.Factory == nil {
		return fmt.Errorf("llmclient: %s/%s has no factory", provider, spec.Model)
	}
	spec.Provider = provider
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.models[provider] {
		if m.Model == spec.Model {
			return fmt.Errorf("llmclient: %s/%s already registered", provider, spec.Model)
		}
	}
	r.models[provider] = append(r.models[provider], spec)
	return nil
}

// Providers returns the registered provider names in sorted order.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.models))
	for p := range r.models {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Lookup resolves a model for provider. An empty model selects the
// provider's default. Models missing from the catalog reuse the provider's
// default registration with the requested name.
func (r *Registry) Lookup(provider, model string) (ModelRegistration, error) {
	provider = normalize(provider)
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.models[provider]
	if len(list) == 0 {
		return ModelRegistration{}, fmt.Errorf("llmclient: unknown provider %q", provider)
	}
	def := list[0]
	for _, m := range list {
		if model != "" && m.Model == model {
			return m, nil
		}
		if m.Default {
			def = m
		}
	}
	if model != "" {
		def.Model = model
	}
	return def, nil
}

// New builds a client for provider/model.
func (r *Registry) New(ctx context.Context, provider, model string) (LLMClient, ModelRegistration, error) {
	spec, err := r.Lookup(provider, model)
	if err != nil {
		return nil, ModelRegistration{}, err
	}
	cli, err := spec.Factory(ctx, spec.Model, spec.MaxTokens)
	if err != nil {
		return nil, spec, fmt.Errorf("llmclient: %s/%s: %w", spec.Provider, spec.Model, err)
	}
	return cli, spec, nil
}

// RegisterDefaults registers every built-in provider.
func RegisterDefaults(reg ModelRegistrar) error {
	for _, fn := range []func(ModelRegistrar) error{
		RegisterGeminiModels,
		RegisterGroqModels,
		RegisterAnthropicModels,
		RegisterFakeModels,
	} {
		if err := fn(reg); err != nil {
			return err
		}
	}
	return nil
}

func RegisterGeminiModels(reg ModelRegistrar) error {
	limits := &RateLimitConfig{RPS: 0.25, Burst: 1}
	factory := func(ctx context.Context, model string, tokenCap int) (LLMClient, error) {
		return NewGeminiClient(ctx, os.Getenv("GEMINI_API_KEY"), model, tokenCap)
	}
	for _, m := range []ModelRegistration{
		{Model: "gemini-2.5-flash", Default: true, MaxTokens: 12000},
		{Model: "gemini-2.5-pro", MaxTokens: 12000},
	} {
		m.Provider, m.RateLimit, m.Factory = "gemini", limits, factory
		if err := reg.RegisterModel(m); err != nil {
			return err
		}
	}
	return nil
}

func RegisterGroqModels(reg ModelRegistrar) error {
	limits := &RateLimitConfig{RPS: 0.5, Burst: 1}
	factory := func(ctx context.Context, model string, tokenCap int) (LLMClient, error) {
		return NewGroqClient(os.Getenv("GROQ_API_KEY"), model, tokenCap)
	}
	for _, m := range []ModelRegistration{
		{Model: "llama-3.3-70b-versatile", Default: true, MaxTokens: 6000},
		{Model: "openai/gpt-oss-120b", MaxTokens: 8000},
	} {
		m.Provider, m.RateLimit, m.Factory = "groq", limits, factory
		if err := reg.RegisterModel(m); err != nil {
			return err
		}
	}
	return nil
}

func RegisterAnthropicModels(reg ModelRegistrar) error {
	factory := func(ctx context.Context, model string, tokenCap int) (LLMClient, error) {
		return NewAnthropicClient(os.Getenv("ANTHROPIC_API_KEY"), model, tokenCap)
	}
	for _, m := range []ModelRegistration{
		{Model: "claude-sonnet-4-5", Default: true, MaxTokens: 100000},
		{Model: "claude-haiku-4-5", MaxTokens: 100000},
	} {
		m.Provider, m.Factory = "anthropic", factory
		if err := reg.RegisterModel(m); err != nil {
			return err
		}
	}
	return nil
}

func RegisterFakeModels(reg ModelRegistrar) error {
	return reg.RegisterModel(ModelRegistration{
		Provider: "fake",
		Model:    "sample",
		Default:  true,
		Factory: func(ctx context.Context, model string, tokenCap int) (LLMClient, error) {
			return NewFakeClient(), nil
		},
	})
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
