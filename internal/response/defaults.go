package response

import t "setupwizard/internal/types"

// DefaultRules returns the fixed rule lists injected for missing categories.
func DefaultRules() map[string][]string {
	return map[string][]string{
		t.RuleCodingStandards: {
			"Follow the existing code style and naming conventions",
			"Keep functions small and focused on a single task",
			"Handle errors explicitly instead of ignoring them",
			"Remove dead code and unused imports",
		},
		t.RuleArchitectureGuidelines: {
			"Respect the existing module boundaries",
			"Prefer composition over inheritance",
			"Keep business logic independent of I/O",
			"Introduce new dependencies only when clearly needed",
		},
		t.RuleTestingRequirements: {
			"Add or update tests for every behavior change",
			"Exercise real code paths rather than mocks alone",
			"Cover error paths and edge cases",
			"Keep the test suite green before committing",
		},
		t.RuleSimplicityGuardrails: {
			"Choose the simplest solution that works",
			"Avoid speculative abstractions",
			"Do not add configuration nobody asked for",
			"Prefer deleting code over adding code",
		},
		t.RuleVerificationStandards: {
			"Run the build before reporting a task as done",
			"Run the relevant tests and read their output",
			"Verify claims against the actual code",
			"State clearly what was not verified",
		},
		t.RuleComplianceProtocols: {
			"Never commit secrets or credentials",
			"Keep third-party licenses intact",
			"Ask before running destructive commands",
			"Document any deviation from these rules",
		},
	}
}

// DefaultHooks is synthesized when the completion recommends no hooks.
func DefaultHooks() map[string][]t.Hook {
	return map[string][]t.Hook{
		"PostToolUse": {{
			Matcher:     "Edit|MultiEdit|Write",
			Description: "Report files changed by the agent",
			Command:     "git status --short",
		}},
		"Stop": {{
			Description: "Show a diff summary when the session ends",
			Command:     "git diff --stat",
		}},
	}
}

// fallbackAgents are used when no JSON could be recovered at all.
func fallbackAgents() []t.Agent {
	return []t.Agent{
		{
			Name:         "code-reviewer",
			Description:  "Reviews changes for correctness, readability and consistency with the codebase",
			Tools:        []string{"Read", "Grep", "Glob"},
			SystemPrompt: "You review code changes. Point out bugs, unclear code and deviations from the project's conventions. Be specific and cite files and lines.",
		},
		{
			Name:         "test-writer",
			Description:  "Writes and maintains tests that exercise real behavior",
			Tools:        []string{"Read", "Write", "Edit", "Bash"},
			SystemPrompt: "You write focused tests for the code under change. Prefer real collaborators over mocks and cover error paths.",
		},
	}
}

func fallbackCommands() []t.Command {
	return []t.Command{
		{
			Name:        "review",
			Description: "Review the current changes",
			Prompt:      "Review the uncommitted changes in this repository and list concrete problems with suggested fixes.",
		},
	}
}
