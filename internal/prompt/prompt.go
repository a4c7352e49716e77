// Package prompt renders the recommendation request sent to the model.
package prompt

import (
	"bytes"
	"strings"
	"text/template"

	"setupwizard/internal/scan"
)

// Input is what the request is built from. Either Summary or Idea must be
// set; both may be.
type Input struct {
	Idea    string
	Summary *scan.Summary
	// Focus narrows the recommendations, e.g. "security" or "testing".
	Focus string
	// MinAgents is echoed in the instructions so the model aims for it.
	MinAgents int
}

const recommendTemplate = `You are configuring an AI coding assistant for a software project.
{{if .Scanned}}
The input JSON describes the project layout: file counts per category,
languages by file count, marker files (build manifests, CI), top-level
entries and the head of the README.
{{- end}}
{{- if .Idea}}

Project idea:
{{.Idea}}
{{- end}}
{{- if .Focus}}

Pay particular attention to: {{.Focus}}
{{- end}}

Task:
Return STRICT JSON with exactly these top-level keys:
{
  "projectAnalysis": {
    "projectType": "string",          // e.g. web-app, cli, library, api
    "technologies": ["string"],
    "frameworks": ["string"],
    "complexity": "simple|medium|complex",
    "buildTools": ["string"],
    "testingMaturity": "string",      // none, basic, comprehensive
    "mainLanguages": ["string"],
    "risks": ["string"]
  },
  "recommendedAgents": [
    {"name": "kebab-case", "description": "string", "tools": ["string"], "systemPrompt": "string", "model": "optional"}
  ],
  "recommendedCommands": [
    {"name": "kebab-case", "description": "string", "prompt": "string", "argumentHint": "optional", "allowedTools": ["optional"]}
  ],
  "recommendedHooks": {
    "PostToolUse": [{"matcher": "Edit|Write", "description": "string", "command": "shell command"}]
  },
  "claudeRules": {
    "codingStandards": ["string"],
    "architectureGuidelines": ["string"],
    "testingRequirements": ["string"],
    "simplicityGuardrails": ["string"],
    "verificationStandards": ["string"],
    "complianceProtocols": ["string"]
  }
}

Rules:
- Recommend at least {{.MinAgents}} agents, each with a focused system prompt.
- Tools are assistant tool names such as Read, Write, Edit, Grep, Glob, Bash.
- Hook commands must be safe to run after every edit; prefer fast checks.
- Ground every rule in the project's actual stack{{if not .Scanned}} as described by the idea{{end}}.
- JSON only; no comments or trailing commas.
`

var recommendTmpl = template.Must(template.New("recommend").Parse(recommendTemplate))

type templateData struct {
	Scanned   bool
	Idea      string
	Focus     string
	MinAgents int
}

// Build renders the instructions and returns the structured payload that
// accompanies them (nil when there is no scanned project).
func Build(in Input) (string, any, error) {
	data := templateData{
		Scanned:   in.Summary != nil,
		Idea:      strings.TrimSpace(in.Idea),
		Focus:     strings.TrimSpace(in.Focus),
		MinAgents: max(in.MinAgents, 1),
	}
	var buf bytes.Buffer
	if err := recommendTmpl.Execute(&buf, data); err != nil {
		return "", nil, err
	}
	if in.Summary == nil {
		return buf.String(), nil, nil
	}
	s := in.Summary
	payload := map[string]any{
		"files":      s.Files,
		"dirs":       s.Dirs,
		"size":       s.HumanSize(),
		"categories": s.Categories,
		"languages":  s.Languages,
		"markers":    s.MarkerNames(),
		"top_level":  s.TopLevel,
	}
	if s.ReadmeHead != "" {
		payload["readme"] = s.ReadmeHead
	}
	if s.Truncated {
		payload["truncated"] = true
	}
	return buf.String(), payload, nil
}
