package response

import (
	"slices"
	"strings"

	t "setupwizard/internal/types"
)

// Analysis fields a KeywordRule can set.
const (
	FieldTechnologies    = "technologies"
	FieldFrameworks      = "frameworks"
	FieldBuildTools      = "buildTools"
	FieldMainLanguages   = "mainLanguages"
	FieldRisks           = "risks"
	FieldProjectType     = "projectType"
	FieldTestingMaturity = "testingMaturity"
)

// KeywordRule maps a lower-case substring of the completion to a value of a
// ProjectAnalysis field. List fields accumulate unique values; scalar fields
// keep the first match in table order.
type KeywordRule struct {
	Keyword string
	Field   string
	Value   string
}

// DefaultKeywords is the mapping used by the fallback when Policy.Keywords is
// empty. It is a heuristic, not an exhaustive catalogue.
var DefaultKeywords = []KeywordRule{
	{"typescript", FieldMainLanguages, "TypeScript"},
	{"javascript", FieldMainLanguages, "JavaScript"},
	{"python", FieldMainLanguages, "Python"},
	{"golang", FieldMainLanguages, "Go"},
	{"go.mod", FieldMainLanguages, "Go"},
	{"rust", FieldMainLanguages, "Rust"},
	{"java ", FieldMainLanguages, "Java"},
	{"kotlin", FieldMainLanguages, "Kotlin"},
	{"ruby", FieldMainLanguages, "Ruby"},

	{"react", FieldFrameworks, "React"},
	{"next.js", FieldFrameworks, "Next.js"},
	{"vue", FieldFrameworks, "Vue"},
	{"angular", FieldFrameworks, "Angular"},
	{"django", FieldFrameworks, "Django"},
	{"flask", FieldFrameworks, "Flask"},
	{"fastapi", FieldFrameworks, "FastAPI"},
	{"express", FieldFrameworks, "Express"},
	{"spring", FieldFrameworks, "Spring"},
	{"rails", FieldFrameworks, "Rails"},

	{"docker", FieldBuildTools, "Docker"},
	{"makefile", FieldBuildTools, "Make"},
	{"webpack", FieldBuildTools, "Webpack"},
	{"vite", FieldBuildTools, "Vite"},
	{"npm", FieldBuildTools, "npm"},
	{"yarn", FieldBuildTools, "Yarn"},
	{"pnpm", FieldBuildTools, "pnpm"},
	{"cargo", FieldBuildTools, "Cargo"},
	{"gradle", FieldBuildTools, "Gradle"},
	{"maven", FieldBuildTools, "Maven"},

	{"postgres", FieldTechnologies, "PostgreSQL"},
	{"mysql", FieldTechnologies, "MySQL"},
	{"sqlite", FieldTechnologies, "SQLite"},
	{"redis", FieldTechnologies, "Redis"},
	{"graphql", FieldTechnologies, "GraphQL"},
	{"kubernetes", FieldTechnologies, "Kubernetes"},
	{"jest", FieldTechnologies, "Jest"},
	{"pytest", FieldTechnologies, "pytest"},
	{"vitest", FieldTechnologies, "Vitest"},

	{"mock-only", FieldTestingMaturity, "mock-only"},
	{"inadequate", FieldTestingMaturity, "inadequate"},
	{"no tests", FieldTestingMaturity, "none"},
	{"jest", FieldTestingMaturity, "basic"},
	{"pytest", FieldTestingMaturity, "basic"},

	{"mock-only", FieldRisks, "Tests rely on mocks only"},
	{"inadequate", FieldRisks, "Inadequate test coverage"},
	{"security", FieldRisks, "Security concerns mentioned"},
	{"legacy", FieldRisks, "Legacy code"},

	{"cli", FieldProjectType, "cli"},
	{"api", FieldProjectType, "api"},
	{"frontend", FieldProjectType, "web"},
	{"web app", FieldProjectType, "web"},
	{"library", FieldProjectType, "library"},
}

// Fallback builds a configuration from keyword matches against raw. It never
// fails and always populates the four required fields.
func Fallback(raw string, rules []KeywordRule) t.ProjectConfiguration {
	if len(rules) == 0 {
		rules = DefaultKeywords
	}
	text := strings.ToLower(raw)
	var pa t.ProjectAnalysis
	for _, r := range rules {
		if r.Keyword == "" || !strings.Contains(text, strings.ToLower(r.Keyword)) {
			continue
		}
		applyKeyword(&pa, r)
	}
	if pa.ProjectType == "" {
		pa.ProjectType = "unknown"
	}
	if pa.TestingMaturity == "" {
		pa.TestingMaturity = "unknown"
	}
	pa.Complexity = complexityFor(&pa)
	return t.ProjectConfiguration{
		ProjectAnalysis:     pa,
		RecommendedAgents:   fallbackAgents(),
		RecommendedCommands: fallbackCommands(),
		RecommendedHooks:    DefaultHooks(),
		ClaudeRules:         rulesFrom(DefaultRules()),
	}
}

func applyKeyword(pa *t.ProjectAnalysis, r KeywordRule) {
	switch r.Field {
	case FieldTechnologies:
		pa.Technologies = appendUnique(pa.Technologies, r.Value)
	case FieldFrameworks:
		pa.Frameworks = appendUnique(pa.Frameworks, r.Value)
	case FieldBuildTools:
		pa.BuildTools = appendUnique(pa.BuildTools, r.Value)
	case FieldMainLanguages:
		pa.MainLanguages = appendUnique(pa.MainLanguages, r.Value)
	case FieldRisks:
		pa.Risks = appendUnique(pa.Risks, r.Value)
	case FieldProjectType:
		if pa.ProjectType == "" {
			pa.ProjectType = r.Value
		}
	case FieldTestingMaturity:
		if pa.TestingMaturity == "" {
			pa.TestingMaturity = r.Value
		}
	}
}

func complexityFor(pa *t.ProjectAnalysis) string {
	n := len(pa.Technologies) + len(pa.Frameworks) + len(pa.BuildTools) + len(pa.MainLanguages)
	switch {
	case n <= 2:
		return t.ComplexitySimple
	case n <= 6:
		return t.ComplexityMedium
	default:
		return t.ComplexityComplex
	}
}

func appendUnique(list []string, v string) []string {
	if slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}

func rulesFrom(m map[string][]string) t.Rules {
	return t.Rules{
		CodingStandards:        m[t.RuleCodingStandards],
		ArchitectureGuidelines: m[t.RuleArchitectureGuidelines],
		TestingRequirements:    m[t.RuleTestingRequirements],
		SimplicityGuardrails:   m[t.RuleSimplicityGuardrails],
		VerificationStandards:  m[t.RuleVerificationStandards],
		ComplianceProtocols:    m[t.RuleComplianceProtocols],
	}
}
