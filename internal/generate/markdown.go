package generate

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	t "setupwizard/internal/types"
)

type agentFrontMatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Tools       string `yaml:"tools,omitempty"`
	Model       string `yaml:"model,omitempty"`
}

type commandFrontMatter struct {
	Description  string `yaml:"description"`
	ArgumentHint string `yaml:"argument-hint,omitempty"`
	AllowedTools string `yaml:"allowed-tools,omitempty"`
}

func renderAgent(a t.Agent, slug string) ([]byte, error) {
	fm := agentFrontMatter{
		Name:        slug,
		Description: oneLine(a.Description),
		Tools:       strings.Join(a.Tools, ", "),
		Model:       a.Model,
	}
	return withFrontMatter(fm, a.SystemPrompt)
}

func renderCommand(c t.Command) ([]byte, error) {
	fm := commandFrontMatter{
		Description:  oneLine(c.Description),
		ArgumentHint: c.ArgumentHint,
		AllowedTools: strings.Join(c.AllowedTools, ", "),
	}
	return withFrontMatter(fm, c.Prompt)
}

func withFrontMatter(fm any, body string) ([]byte, error) {
	head, err := yaml.Marshal(fm)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(head)
	buf.WriteString("---\n\n")
	buf.WriteString(strings.TrimSpace(body))
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// ParseFrontMatter splits a generated markdown file into its front matter
// and body.
func ParseFrontMatter(doc []byte, fm any) (string, error) {
	s := string(doc)
	if !strings.HasPrefix(s, "---\n") {
		return "", fmt.Errorf("generate: missing front matter")
	}
	head, body, ok := strings.Cut(s[len("---\n"):], "\n---\n")
	if !ok {
		return "", fmt.Errorf("generate: unterminated front matter")
	}
	if err := yaml.Unmarshal([]byte(head), fm); err != nil {
		return "", err
	}
	return strings.TrimSpace(body), nil
}

func renderRules(cfg t.ProjectConfiguration) []byte {
	var b strings.Builder
	b.WriteString("# Project Guidelines\n")

	pa := cfg.ProjectAnalysis
	var facts []string
	add := func(label, v string) {
		if v != "" {
			facts = append(facts, fmt.Sprintf("- **%s:** %s", label, v))
		}
	}
	add("Type", pa.ProjectType)
	add("Languages", strings.Join(pa.MainLanguages, ", "))
	add("Technologies", strings.Join(pa.Technologies, ", "))
	add("Frameworks", strings.Join(pa.Frameworks, ", "))
	add("Build tools", strings.Join(pa.BuildTools, ", "))
	add("Complexity", pa.Complexity)
	add("Testing maturity", pa.TestingMaturity)
	if len(facts) > 0 {
		b.WriteString("\n## Project Overview\n\n")
		b.WriteString(strings.Join(facts, "\n"))
		b.WriteString("\n")
	}
	if len(pa.Risks) > 0 {
		b.WriteString("\n## Known Risks\n\n")
		for _, r := range pa.Risks {
			fmt.Fprintf(&b, "- %s\n", oneLine(r))
		}
	}

	for _, key := range t.RuleCategories {
		items := cfg.ClaudeRules.Category(key)
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", t.CategoryTitle(key))
		for _, it := range items {
			fmt.Fprintf(&b, "- %s\n", oneLine(it))
		}
	}
	return []byte(b.String())
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
