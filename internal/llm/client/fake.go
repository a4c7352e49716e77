package llmclient

import (
	"context"
	"sync"
)

// FakeCall records one Complete invocation on a FakeClient.
type FakeCall struct {
	Prompt string
	Input  any
}

// FakeClient returns canned completions for offline runs and tests. Each call
// consumes the next response; the last one repeats once the list runs out.
type FakeClient struct {
	mu        sync.Mutex
	responses []string
	next      int
	calls     []FakeCall
	// Err, when set, is returned by every call.
	Err error
}

func NewFakeClient(responses ...string) *FakeClient {
	if len(responses) == 0 {
		responses = []string{SampleCompletion}
	}
	return &FakeClient{responses: responses}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }
func (f *FakeClient) CountTokens(text string) int {
	return CountTokens(text)
}
func (f *FakeClient) TokenCapacity() int { return 1 << 20 }

func (f *FakeClient) Complete(ctx context.Context, prompt string, input any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, FakeCall{Prompt: prompt, Input: input})
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Err != nil {
		return "", f.Err
	}
	out := f.responses[f.next]
	if f.next < len(f.responses)-1 {
		f.next++
	}
	return out, nil
}

// Calls returns a copy of the recorded calls.
func (f *FakeClient) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeCall(nil), f.calls...)
}

// SampleCompletion is what the fake provider answers by default: a fenced
// configuration surrounded by prose, as real models tend to reply.
const SampleCompletion = "Here is the recommended setup for this project.\n\n```json\n" + `{
  "projectAnalysis": {
    "projectType": "cli",
    "technologies": ["SQLite"],
    "complexity": "medium",
    "buildTools": ["Make"],
    "testingMaturity": "basic",
    "mainLanguages": ["Go"]
  },
  "recommendedAgents": [
    {
      "name": "code-reviewer",
      "description": "Reviews changes for correctness and idiomatic style",
      "tools": ["Read", "Grep", "Glob"],
      "systemPrompt": "You review code changes in this repository. Flag bugs, unclear naming and missing error handling."
    },
    {
      "name": "test-engineer",
      "description": "Writes table-driven tests for new behavior",
      "tools": ["Read", "Write", "Edit", "Bash"],
      "systemPrompt": "You write focused tests that exercise real behavior and cover error paths."
    }
  ],
  "recommendedCommands": [
    {
      "name": "check",
      "description": "Build and test the project",
      "prompt": "Run the build and the full test suite, then summarize any failures.",
      "allowedTools": ["Bash"]
    }
  ],
  "recommendedHooks": {
    "PostToolUse": [
      {"matcher": "Edit|Write", "description": "Format edited files", "command": "make fmt"}
    ]
  },
  "claudeRules": {
    "codingStandards": ["Format code before committing", "Wrap errors with context"],
    "architectureGuidelines": ["Keep packages small and focused"],
    "testingRequirements": ["Every bug fix gets a regression test"],
    "simplicityGuardrails": ["Prefer the standard library unless a dependency is already in use"]
  }
}` + "\n```\n\nLet me know if you want adjustments."
