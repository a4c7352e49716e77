package generate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"setupwizard/internal/safeio"
	"setupwizard/internal/types"
)

func sampleConfig() types.ProjectConfiguration {
	return types.ProjectConfiguration{
		ProjectAnalysis: types.ProjectAnalysis{
			ProjectType:   "cli",
			MainLanguages: []string{"Go"},
			Complexity:    types.ComplexityMedium,
			Risks:         []string{"no tests for\nthe parser"},
		},
		RecommendedAgents: []types.Agent{
			{Name: "Code Reviewer", Description: "Reviews: diffs", Tools: []string{"Read", "Grep"}, SystemPrompt: "Review carefully.\n", Model: "sonnet"},
			{Name: "code reviewer", Description: "Second one", SystemPrompt: "Again."},
		},
		RecommendedCommands: []types.Command{
			{Name: "check", Description: "Build and test", Prompt: "Run make test.", ArgumentHint: "[pkg]", AllowedTools: []string{"Bash"}},
		},
		RecommendedHooks: map[string][]types.Hook{
			"PostToolUse": {{Matcher: "Edit|Write", Command: "gofmt -l ."}},
			"Stop":        {{Command: "git diff --stat"}},
		},
		ClaudeRules: types.Rules{
			CodingStandards:      []string{"Wrap errors"},
			SimplicityGuardrails: []string{"Stay small"},
		},
	}
}

func newWriter(t *testing.T) (*Writer, string) {
	t.Helper()
	root := t.TempDir()
	fsys, err := safeio.NewSafeFS(root)
	require.NoError(t, err)
	return &Writer{FS: fsys}, root
}

func read(t *testing.T, root, rel string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(b)
}

func TestWrite_AllFiles(t *testing.T) {
	w, root := newWriter(t)
	written, err := w.Write(sampleConfig())
	require.NoError(t, err)

	var paths []string
	for _, wr := range written {
		require.False(t, wr.Skipped, wr.Path)
		paths = append(paths, wr.Path)
	}
	require.Equal(t, []string{
		".claude/agents/code-reviewer.md",
		".claude/agents/code-reviewer-2.md",
		".claude/commands/check.md",
		".claude/settings.json",
		"CLAUDE.md",
	}, paths)

	var fm agentFrontMatter
	body, err := ParseFrontMatter([]byte(read(t, root, ".claude/agents/code-reviewer.md")), &fm)
	require.NoError(t, err)
	require.Equal(t, agentFrontMatter{Name: "code-reviewer", Description: "Reviews: diffs", Tools: "Read, Grep", Model: "sonnet"}, fm)
	require.Equal(t, "Review carefully.", body)

	var cfm commandFrontMatter
	body, err = ParseFrontMatter([]byte(read(t, root, ".claude/commands/check.md")), &cfm)
	require.NoError(t, err)
	require.Equal(t, commandFrontMatter{Description: "Build and test", ArgumentHint: "[pkg]", AllowedTools: "Bash"}, cfm)
	require.Equal(t, "Run make test.", body)

	rules := read(t, root, "CLAUDE.md")
	require.True(t, strings.HasPrefix(rules, "# Project Guidelines\n"))
	require.Contains(t, rules, "- **Type:** cli\n")
	require.Contains(t, rules, "## Known Risks\n\n- no tests for the parser\n")
	require.Contains(t, rules, "## Coding Standards\n\n- Wrap errors\n")
	require.Contains(t, rules, "## Simplicity Guardrails\n\n- Stay small\n")
	require.NotContains(t, rules, "## Testing Requirements")

	var settings map[string]map[string][]hookGroup
	require.NoError(t, json.Unmarshal([]byte(read(t, root, ".claude/settings.json")), &settings))
	require.Equal(t, []hookGroup{{Matcher: "Edit|Write", Hooks: []hookCommand{{Type: "command", Command: "gofmt -l ."}}}}, settings["hooks"]["PostToolUse"])
	require.Equal(t, []hookGroup{{Hooks: []hookCommand{{Type: "command", Command: "git diff --stat"}}}}, settings["hooks"]["Stop"])
}

func TestWrite_SkipsExistingUnlessForced(t *testing.T) {
	w, root := newWriter(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "CLAUDE.md"), []byte("mine"), 0o644))

	written, err := w.Write(sampleConfig())
	require.NoError(t, err)
	last := written[len(written)-1]
	require.Equal(t, KindRules, last.Kind)
	require.True(t, last.Skipped)
	require.Equal(t, "mine", read(t, root, "CLAUDE.md"))

	w.Force = true
	written, err = w.Write(sampleConfig())
	require.NoError(t, err)
	require.False(t, written[len(written)-1].Skipped)
	require.NotEqual(t, "mine", read(t, root, "CLAUDE.md"))
}

func TestWrite_DryRunWritesNothing(t *testing.T) {
	w, root := newWriter(t)
	w.DryRun = true
	written, err := w.Write(sampleConfig())
	require.NoError(t, err)
	require.Len(t, written, 5)
	for _, wr := range written {
		require.Positive(t, wr.Bytes, wr.Path)
	}
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestWrite_MergesSettings(t *testing.T) {
	w, root := newWriter(t)
	existing := `{
  "permissions": {"allow": ["Bash(go test:*)"]},
  "hooks": {
    "PostToolUse": [
      {"matcher": "Edit|Write", "hooks": [{"type": "command", "command": "gofmt -l .", "timeout": 30}]}
    ]
  }
}`
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".claude"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".claude", "settings.json"), []byte(existing), 0o644))

	cfg := sampleConfig()
	cfg.RecommendedHooks["PostToolUse"] = append(cfg.RecommendedHooks["PostToolUse"], types.Hook{Matcher: "Edit|Write", Command: "go vet ./..."})
	written, err := w.Write(cfg)
	require.NoError(t, err)
	var settingsWritten Written
	for _, wr := range written {
		if wr.Kind == KindSettings {
			settingsWritten = wr
		}
	}
	require.True(t, settingsWritten.Merged)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(read(t, root, ".claude/settings.json")), &got))
	require.Equal(t, map[string]any{"allow": []any{"Bash(go test:*)"}}, got["permissions"])

	var typed struct {
		Hooks map[string][]hookGroup `json:"hooks"`
	}
	require.NoError(t, json.Unmarshal([]byte(read(t, root, ".claude/settings.json")), &typed))
	require.Equal(t, []hookGroup{{Matcher: "Edit|Write", Hooks: []hookCommand{
		{Type: "command", Command: "gofmt -l .", Timeout: 30},
		{Type: "command", Command: "go vet ./..."},
	}}}, typed.Hooks["PostToolUse"])
}

func TestWrite_RejectsBrokenSettings(t *testing.T) {
	w, root := newWriter(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".claude"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".claude", "settings.json"), []byte("{nope"), 0o644))
	_, err := w.Write(sampleConfig())
	require.ErrorContains(t, err, "parse .claude/settings.json")
}

func TestWrite_NoHooksNoSettings(t *testing.T) {
	w, root := newWriter(t)
	cfg := sampleConfig()
	cfg.RecommendedHooks = nil
	written, err := w.Write(cfg)
	require.NoError(t, err)
	require.Len(t, written, 4)
	_, err = os.Stat(filepath.Join(root, ".claude", "settings.json"))
	require.True(t, os.IsNotExist(err))
}

func TestWrite_NeedsFilesystem(t *testing.T) {
	_, err := (&Writer{}).Write(sampleConfig())
	require.Error(t, err)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Code Reviewer":        "code-reviewer",
		"  API/Docs writer!! ": "api-docs-writer",
		"test_runner":          "test-runner",
		"日本語":                  "unnamed",
		"--":                   "unnamed",
		"v2 Migrator":          "v2-migrator",
		"../../etc/passwd":     "etc-passwd",
	}
	for in, want := range cases {
		require.Equal(t, want, Slugify(in), in)
	}
	require.Len(t, Slugify(strings.Repeat("a", 100)), 64)
}

func TestParseFrontMatterErrors(t *testing.T) {
	var fm agentFrontMatter
	_, err := ParseFrontMatter([]byte("no front matter"), &fm)
	require.Error(t, err)
	_, err = ParseFrontMatter([]byte("---\nname: x\n"), &fm)
	require.Error(t, err)
}
