package prompt

import (
	"strings"
	"testing"

	"setupwizard/internal/scan"
	"setupwizard/internal/tester"
)

func TestBuild_IdeaOnly(t *testing.T) {
	p, payload, err := Build(Input{Idea: "  a CLI that tracks habits  ", MinAgents: 3})
	tester.NoErr(t, err)
	tester.True(t, payload == nil, "no payload without a scan")
	tester.True(t, strings.Contains(p, "Project idea:\na CLI that tracks habits\n"), p)
	tester.True(t, strings.Contains(p, "at least 3 agents"), p)
	tester.True(t, strings.Contains(p, "as described by the idea"), p)
	tester.False(t, strings.Contains(p, "input JSON describes"), p)
}

func TestBuild_WithSummary(t *testing.T) {
	sum := &scan.Summary{
		Files:      4,
		TotalBytes: 2048,
		Categories: map[scan.Category]int{scan.CategorySource: 3, scan.CategoryBuild: 1},
		Languages:  []scan.LanguageCount{{Language: "Go", Files: 3}},
		Markers:    []string{"go.mod"},
		ReadmeHead: "# Demo",
	}
	p, payload, err := Build(Input{Summary: sum, Focus: "security"})
	tester.NoErr(t, err)
	tester.True(t, strings.Contains(p, "input JSON describes the project layout"), p)
	tester.True(t, strings.Contains(p, "Pay particular attention to: security"), p)
	tester.True(t, strings.Contains(p, "at least 1 agents"), p)
	tester.False(t, strings.Contains(p, "Project idea"), p)

	m, ok := payload.(map[string]any)
	tester.True(t, ok, "payload is a map")
	tester.Eq(t, m["files"], any(4))
	tester.Eq(t, m["size"], any("2.0 kB"))
	tester.Eq(t, m["markers"], any([]string{"go.mod"}))
	tester.Eq(t, m["readme"], any("# Demo"))
	_, truncated := m["truncated"]
	tester.False(t, truncated)
}

func TestBuild_ListsEveryRequiredKey(t *testing.T) {
	p, _, err := Build(Input{Idea: "x"})
	tester.NoErr(t, err)
	for _, k := range []string{"projectAnalysis", "recommendedAgents", "recommendedCommands", "claudeRules"} {
		tester.True(t, strings.Contains(p, `"`+k+`"`), k)
	}
}
