package llmclient

import (
	"context"
	"testing"

	"setupwizard/internal/tester"
)

type collectRegistrar struct {
	specs []ModelRegistration
}

func (c *collectRegistrar) RegisterModel(spec ModelRegistration) error {
	c.specs = append(c.specs, spec)
	return nil
}

func TestRegisterDefaults_AnnotatesProviders(t *testing.T) {
	reg := &collectRegistrar{}
	if err := RegisterDefaults(reg); err != nil {
		t.Fatalf("register defaults: %v", err)
	}
	defaults := map[string]int{}
	for _, spec := range reg.specs {
		if spec.Factory == nil {
			t.Fatalf("%s/%s has no factory", spec.Provider, spec.Model)
		}
		if spec.Default {
			defaults[spec.Provider]++
		}
	}
	tester.Eq(t, defaults, map[string]int{"gemini": 1, "groq": 1, "anthropic": 1, "fake": 1})
}

func TestRegistry_LookupDefaultAndCustomModel(t *testing.T) {
	r := NewRegistry()
	tester.NoErr(t, RegisterDefaults(r))
	tester.Eq(t, r.Providers(), []string{"anthropic", "fake", "gemini", "groq"})

	spec, err := r.Lookup("Gemini", "")
	tester.NoErr(t, err)
	tester.Eq(t, spec.Model, "gemini-2.5-flash")

	spec, err = r.Lookup("gemini", "gemini-2.5-pro")
	tester.NoErr(t, err)
	tester.Eq(t, spec.Model, "gemini-2.5-pro")

	spec, err = r.Lookup("groq", "my-finetune")
	tester.NoErr(t, err)
	tester.Eq(t, spec.Model, "my-finetune")
	tester.Eq(t, spec.MaxTokens, 6000)

	_, err = r.Lookup("nope", "")
	tester.True(t, err != nil, "unknown provider must fail")
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	tester.NoErr(t, RegisterFakeModels(r))
	if err := RegisterFakeModels(r); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestRegistry_NewMissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	r := NewRegistry()
	tester.NoErr(t, RegisterDefaults(r))
	_, _, err := r.New(context.Background(), "anthropic", "")
	tester.ErrIs(t, err, ErrNoAPIKey)
}

func TestRegistry_NewFake(t *testing.T) {
	r := NewRegistry()
	tester.NoErr(t, RegisterDefaults(r))
	cli, spec, err := r.New(context.Background(), "fake", "")
	tester.NoErr(t, err)
	tester.Eq(t, spec.Provider, "fake")
	out, err := cli.Complete(context.Background(), "p", nil)
	tester.NoErr(t, err)
	tester.Eq(t, out, SampleCompletion)
}
