package response

import (
	"encoding/json"
	"fmt"
	"strings"

	t "setupwizard/internal/types"
	"setupwizard/internal/util/jsonutil"
)

// Policy controls how incomplete or malformed completions are handled.
type Policy struct {
	// Strict turns missing fields, thin content and unparseable text into
	// errors instead of synthesized defaults.
	Strict bool
	// Minimum counts enforced under Strict.
	MinAgents         int
	MinCommands       int
	MinRuleCategories int
	// Keywords replaces DefaultKeywords for the fallback when non-empty.
	Keywords []KeywordRule
	// Repairs replaces DefaultRepairs when non-nil.
	Repairs []Transform
}

// DefaultPolicy is permissive and requires two agents and two rule
// categories once Strict is switched on.
func DefaultPolicy() Policy {
	return Policy{MinAgents: 2, MinRuleCategories: 2}
}

// Outcome summarises how a Result was produced.
type Outcome string

const (
	OutcomeValid     Outcome = "validated"
	OutcomeDefaulted Outcome = "defaulted"
	OutcomeFallback  Outcome = "fallback"
)

// Result is a configuration together with how it was obtained.
type Result struct {
	Config      t.ProjectConfiguration
	Candidate   Candidate
	Outcome     Outcome
	Diagnostics []Diagnostic
}

// Validator turns completions into configurations. It holds only its policy
// and is safe for concurrent use.
type Validator struct {
	policy Policy
}

func NewValidator(p Policy) *Validator {
	if p.Repairs == nil {
		p.Repairs = DefaultRepairs
	}
	p.MinAgents = max(p.MinAgents, 0)
	p.MinCommands = max(p.MinCommands, 0)
	p.MinRuleCategories = max(p.MinRuleCategories, 0)
	return &Validator{policy: p}
}

func (v *Validator) Policy() Policy { return v.policy }

// Pipeline extracts and validates raw under policy.
func Pipeline(raw string, policy Policy) (Result, error) {
	return NewValidator(policy).Validate(raw)
}

// Validate runs Extract on raw and validates the resulting candidate.
func (v *Validator) Validate(raw string) (Result, error) {
	return v.ValidateCandidate(Extract(raw), raw)
}

// ValidateCandidate parses c, repairing it when needed, and checks the
// result against the configuration schema. raw is the full completion and
// feeds the keyword fallback.
//
// Strict policies return *ParseError or *QualityError; permissive policies
// always return a configuration.
func (v *Validator) ValidateCandidate(c Candidate, raw string) (Result, error) {
	var diags diagnostics
	val, text, applied, err := v.parse(c.Text)
	if err != nil {
		if v.policy.Strict {
			return Result{Candidate: c, Diagnostics: diags}, &ParseError{Strategy: c.Strategy, Applied: applied, Err: err}
		}
		diags.warn("fallback", "no valid JSON found (%v); building configuration from keywords", err)
		return v.fallback(c, raw, diags), nil
	}
	if len(applied) > 0 {
		c.Text = text
		c.Repaired = true
		diags.info("repaired", "parsed after repairs: %s", strings.Join(applied, ", "))
	}

	doc, ok := val.(map[string]any)
	if !ok {
		if v.policy.Strict {
			return Result{Candidate: c, Diagnostics: diags}, &QualityError{Failures: []string{"response is not a JSON object"}}
		}
		diags.warn("not-object", "parsed JSON is a %s, not an object; building configuration from keywords", kindOf(val))
		return v.fallback(c, raw, diags), nil
	}

	ck := checker{policy: v.policy, diags: &diags}
	cfg := ck.build(doc)
	if len(ck.failures) > 0 {
		return Result{Candidate: c, Diagnostics: diags}, &QualityError{Failures: ck.failures}
	}
	out := OutcomeValid
	if ck.defaulted {
		out = OutcomeDefaulted
	}
	return Result{Config: cfg, Candidate: c, Outcome: out, Diagnostics: diags}, nil
}

func (v *Validator) fallback(c Candidate, raw string, diags diagnostics) Result {
	return Result{
		Config:      Fallback(raw, v.policy.Keywords),
		Candidate:   c,
		Outcome:     OutcomeFallback,
		Diagnostics: diags,
	}
}

// parse decodes text, applying the repair transforms cumulatively until one
// prefix of them yields valid JSON. It returns the decoded value, the text
// that parsed and the names of the transforms applied.
func (v *Validator) parse(text string) (any, string, []string, error) {
	var val any
	err := jsonutil.UnmarshalFlex([]byte(text), &val)
	if err == nil {
		return val, text, nil, nil
	}
	var applied []string
	for _, tr := range v.policy.Repairs {
		text = tr.Apply(text)
		applied = append(applied, tr.Name)
		val = nil
		if err = jsonutil.UnmarshalFlex([]byte(text), &val); err == nil {
			return val, text, applied, nil
		}
	}
	return nil, text, applied, err
}

// checker walks a decoded document, collecting strict failures or
// synthesizing defaults depending on the policy.
type checker struct {
	policy    Policy
	diags     *diagnostics
	failures  []string
	defaulted bool
}

func (c *checker) fail(format string, args ...any) {
	c.failures = append(c.failures, fmt.Sprintf(format, args...))
}

// missing handles an absent or mistyped required field.
func (c *checker) missing(key, reason string) {
	if c.policy.Strict {
		c.fail("%s", reason)
		return
	}
	c.defaulted = true
	c.diags.warn("missing-field", "%s; using default", reason)
}

func (c *checker) build(doc map[string]any) t.ProjectConfiguration {
	var cfg t.ProjectConfiguration
	cfg.ProjectAnalysis = c.analysis(doc)
	cfg.RecommendedAgents = c.agents(doc)
	cfg.RecommendedCommands = c.commands(doc)
	cfg.RecommendedHooks = c.hooks(doc)
	cfg.ClaudeRules = c.rules(doc)
	return cfg
}

func (c *checker) analysis(doc map[string]any) t.ProjectAnalysis {
	var pa t.ProjectAnalysis
	raw, ok := doc[t.KeyProjectAnalysis]
	if !ok {
		c.missing(t.KeyProjectAnalysis, "missing "+t.KeyProjectAnalysis)
		return pa
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		c.missing(t.KeyProjectAnalysis, t.KeyProjectAnalysis+" must be an object")
		return pa
	}
	if err := decodeInto(obj, &pa); err != nil {
		if c.policy.Strict {
			c.fail("%s: %v", t.KeyProjectAnalysis, err)
		} else {
			c.diags.warn("bad-analysis", "%s could not be decoded: %v", t.KeyProjectAnalysis, err)
		}
		return t.ProjectAnalysis{}
	}
	if pa.Complexity != "" {
		norm := strings.ToLower(strings.TrimSpace(pa.Complexity))
		switch {
		case t.ValidComplexity(norm):
			pa.Complexity = norm
		case c.policy.Strict:
			c.fail("%s.complexity must be one of simple, medium, complex (got %q)", t.KeyProjectAnalysis, pa.Complexity)
		default:
			c.diags.warn("bad-complexity", "unknown complexity %q dropped", pa.Complexity)
			pa.Complexity = ""
		}
	}
	return pa
}

func (c *checker) agents(doc map[string]any) []t.Agent {
	items, ok := c.array(doc, t.KeyRecommendedAgents)
	if !ok {
		return []t.Agent{}
	}
	out := make([]t.Agent, 0, len(items))
	for i, item := range items {
		var a t.Agent
		if err := decodeInto(item, &a); err != nil {
			c.badItem(t.KeyRecommendedAgents, i, err.Error())
			continue
		}
		if strings.TrimSpace(a.Name) == "" {
			c.badItem(t.KeyRecommendedAgents, i, "missing name")
			continue
		}
		out = append(out, a)
	}
	c.minCount(len(out), c.policy.MinAgents, "agent")
	return out
}

func (c *checker) commands(doc map[string]any) []t.Command {
	items, ok := c.array(doc, t.KeyRecommendedCommands)
	if !ok {
		return []t.Command{}
	}
	out := make([]t.Command, 0, len(items))
	for i, item := range items {
		var cmd t.Command
		if err := decodeInto(item, &cmd); err != nil {
			c.badItem(t.KeyRecommendedCommands, i, err.Error())
			continue
		}
		if strings.TrimSpace(cmd.Name) == "" {
			c.badItem(t.KeyRecommendedCommands, i, "missing name")
			continue
		}
		out = append(out, cmd)
	}
	c.minCount(len(out), c.policy.MinCommands, "command")
	return out
}

// array returns the list stored under key, reporting absence or a wrong type.
func (c *checker) array(doc map[string]any, key string) ([]any, bool) {
	raw, ok := doc[key]
	if !ok {
		c.missing(key, "missing "+key)
		return nil, false
	}
	items, ok := raw.([]any)
	if !ok {
		c.missing(key, key+" must be an array")
		return nil, false
	}
	return items, true
}

func (c *checker) badItem(key string, i int, reason string) {
	if c.policy.Strict {
		c.fail("%s[%d]: %s", key, i, reason)
		return
	}
	c.diags.warn("bad-item", "%s[%d] skipped: %s", key, i, reason)
}

func (c *checker) minCount(n, minimum int, noun string) {
	if n >= minimum {
		return
	}
	if c.policy.Strict {
		c.fail("only %d %s, minimum %d required", n, plural(n, noun), minimum)
		return
	}
	c.diags.warn("low-count", "only %d %s recommended", n, plural(n, noun))
}

// hooks accepts both the flat form ({"command": ...}) and the settings form
// ({"matcher": ..., "hooks": [{"type": "command", "command": ...}]}).
func (c *checker) hooks(doc map[string]any) map[string][]t.Hook {
	raw, ok := doc[t.KeyRecommendedHooks]
	if !ok {
		c.diags.info("default-hooks", "%s missing; using default hooks", t.KeyRecommendedHooks)
		return DefaultHooks()
	}
	triggers, ok := raw.(map[string]any)
	if !ok {
		c.diags.warn("default-hooks", "%s must be an object; using default hooks", t.KeyRecommendedHooks)
		return DefaultHooks()
	}
	out := make(map[string][]t.Hook)
	for trigger, list := range triggers {
		items, ok := list.([]any)
		if !ok {
			c.diags.warn("bad-hook", "hooks for %s must be an array", trigger)
			continue
		}
		for i, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				c.diags.warn("bad-hook", "%s[%d] is not an object", trigger, i)
				continue
			}
			matcher, _ := obj["matcher"].(string)
			desc, _ := obj["description"].(string)
			if nested, ok := obj["hooks"].([]any); ok {
				for _, n := range nested {
					inner, _ := n.(map[string]any)
					cmd, _ := inner["command"].(string)
					if strings.TrimSpace(cmd) == "" {
						continue
					}
					d := desc
					if s, ok := inner["description"].(string); ok && s != "" {
						d = s
					}
					out[trigger] = append(out[trigger], t.Hook{Matcher: matcher, Description: d, Command: cmd})
				}
				continue
			}
			cmd, _ := obj["command"].(string)
			if strings.TrimSpace(cmd) == "" {
				c.diags.warn("bad-hook", "%s[%d] has no command", trigger, i)
				continue
			}
			out[trigger] = append(out[trigger], t.Hook{Matcher: matcher, Description: desc, Command: cmd})
		}
	}
	if len(out) == 0 {
		c.diags.info("default-hooks", "no usable hooks recommended; using default hooks")
		return DefaultHooks()
	}
	return out
}

// rules decodes claudeRules and fills missing or empty categories with the
// default lists.
func (c *checker) rules(doc map[string]any) t.Rules {
	defaults := DefaultRules()
	raw, ok := doc[t.KeyClaudeRules]
	if !ok {
		c.missing(t.KeyClaudeRules, "missing "+t.KeyClaudeRules)
		return rulesFrom(defaults)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		c.missing(t.KeyClaudeRules, t.KeyClaudeRules+" must be an object")
		return rulesFrom(defaults)
	}
	known := make(map[string]bool, len(t.RuleCategories))
	merged := make(map[string][]string, len(t.RuleCategories))
	supplied := 0
	for _, key := range t.RuleCategories {
		known[key] = true
		val, ok := obj[key]
		if !ok {
			c.diags.info("default-rules", "%s.%s missing; using defaults", t.KeyClaudeRules, key)
			merged[key] = defaults[key]
			continue
		}
		var list []string
		if err := decodeInto(val, &list); err != nil {
			if c.policy.Strict {
				c.fail("%s.%s must be an array of strings", t.KeyClaudeRules, key)
			} else {
				c.diags.warn("default-rules", "%s.%s is not a list of strings; using defaults", t.KeyClaudeRules, key)
			}
			merged[key] = defaults[key]
			continue
		}
		if len(list) == 0 {
			c.diags.info("default-rules", "%s.%s is empty; using defaults", t.KeyClaudeRules, key)
			merged[key] = defaults[key]
			continue
		}
		supplied++
		merged[key] = list
	}
	for key := range obj {
		if !known[key] {
			c.diags.info("ignored-rules", "unknown rule category %q ignored", key)
		}
	}
	if supplied < c.policy.MinRuleCategories {
		if c.policy.Strict {
			c.fail("only %d rule %s, minimum %d required", supplied, plural(supplied, "category"), c.policy.MinRuleCategories)
		} else {
			c.diags.warn("low-count", "only %d rule %s supplied", supplied, plural(supplied, "category"))
		}
	}
	return rulesFrom(merged)
}

func decodeInto(v any, out any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func plural(n int, noun string) string {
	if n == 1 {
		return noun
	}
	if strings.HasSuffix(noun, "y") {
		return strings.TrimSuffix(noun, "y") + "ies"
	}
	return noun + "s"
}

func kindOf(v any) string {
	switch v.(type) {
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
