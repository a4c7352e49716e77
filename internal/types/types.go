package types

// Complexity tiers reported in ProjectAnalysis.Complexity.
const (
	ComplexitySimple  = "simple"
	ComplexityMedium  = "medium"
	ComplexityComplex = "complex"
)

// ValidComplexity reports whether s is one of the known complexity tiers.
func ValidComplexity(s string) bool {
	switch s {
	case ComplexitySimple, ComplexityMedium, ComplexityComplex:
		return true
	}
	return false
}

// Top-level keys of a ProjectConfiguration document.
const (
	KeyProjectAnalysis     = "projectAnalysis"
	KeyRecommendedAgents   = "recommendedAgents"
	KeyRecommendedCommands = "recommendedCommands"
	KeyRecommendedHooks    = "recommendedHooks"
	KeyClaudeRules         = "claudeRules"
)

// Configuration documents ---------------------------------------------------------

// ProjectConfiguration is the validated recommendation set produced from a
// model completion and consumed by the file generator.
type ProjectConfiguration struct {
	ProjectAnalysis     ProjectAnalysis   `json:"projectAnalysis"`
	RecommendedAgents   []Agent           `json:"recommendedAgents"`
	RecommendedCommands []Command         `json:"recommendedCommands"`
	RecommendedHooks    map[string][]Hook `json:"recommendedHooks,omitempty"`
	ClaudeRules         Rules             `json:"claudeRules"`
}

type ProjectAnalysis struct {
	ProjectType     string   `json:"projectType,omitempty"`
	Technologies    []string `json:"technologies,omitempty"`
	Frameworks      []string `json:"frameworks,omitempty"`
	Complexity      string   `json:"complexity,omitempty"`
	BuildTools      []string `json:"buildTools,omitempty"`
	TestingMaturity string   `json:"testingMaturity,omitempty"`
	MainLanguages   []string `json:"mainLanguages,omitempty"`
	Risks           []string `json:"risks,omitempty"`
}

type Agent struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Tools        []string `json:"tools,omitempty"`
	SystemPrompt string   `json:"systemPrompt"`
	Model        string   `json:"model,omitempty"`
}

type Command struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Prompt       string   `json:"prompt"`
	ArgumentHint string   `json:"argumentHint,omitempty"`
	AllowedTools []string `json:"allowedTools,omitempty"`
}

// Hook is one shell command bound to a trigger such as "PostToolUse" or "Stop".
type Hook struct {
	Matcher     string `json:"matcher,omitempty"`
	Description string `json:"description,omitempty"`
	Command     string `json:"command"`
}

// Rules groups the rule categories rendered into the project rules file.
type Rules struct {
	CodingStandards        []string `json:"codingStandards"`
	ArchitectureGuidelines []string `json:"architectureGuidelines"`
	TestingRequirements    []string `json:"testingRequirements"`
	SimplicityGuardrails   []string `json:"simplicityGuardrails"`
	VerificationStandards  []string `json:"verificationStandards,omitempty"`
	ComplianceProtocols    []string `json:"complianceProtocols,omitempty"`
}

// Rule category keys inside claudeRules.
const (
	RuleCodingStandards        = "codingStandards"
	RuleArchitectureGuidelines = "architectureGuidelines"
	RuleTestingRequirements    = "testingRequirements"
	RuleSimplicityGuardrails   = "simplicityGuardrails"
	RuleVerificationStandards  = "verificationStandards"
	RuleComplianceProtocols    = "complianceProtocols"
)

// RuleCategories lists every rule category in rendering order.
var RuleCategories = []string{
	RuleCodingStandards,
	RuleArchitectureGuidelines,
	RuleTestingRequirements,
	RuleSimplicityGuardrails,
	RuleVerificationStandards,
	RuleComplianceProtocols,
}

// Category returns the rule list stored under key, or nil for unknown keys.
func (r Rules) Category(key string) []string {
	switch key {
	case RuleCodingStandards:
		return r.CodingStandards
	case RuleArchitectureGuidelines:
		return r.ArchitectureGuidelines
	case RuleTestingRequirements:
		return r.TestingRequirements
	case RuleSimplicityGuardrails:
		return r.SimplicityGuardrails
	case RuleVerificationStandards:
		return r.VerificationStandards
	case RuleComplianceProtocols:
		return r.ComplianceProtocols
	}
	return nil
}

// CategoryTitle is the heading used for a rule category in the rules file.
func CategoryTitle(key string) string {
	switch key {
	case RuleCodingStandards:
		return "Coding Standards"
	case RuleArchitectureGuidelines:
		return "Architecture Guidelines"
	case RuleTestingRequirements:
		return "Testing Requirements"
	case RuleSimplicityGuardrails:
		return "Simplicity Guardrails"
	case RuleVerificationStandards:
		return "Verification Standards"
	case RuleComplianceProtocols:
		return "Compliance Protocols"
	}
	return key
}
