package response

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Strategy names the extraction rule that produced a Candidate.
type Strategy string

const (
	StrategyFencedJSON    Strategy = "fenced-json-block"
	StrategyFencedGeneric Strategy = "fenced-generic-block"
	StrategyBraceScan     Strategy = "brace-scan"
	StrategyRegex         Strategy = "last-resort-regex"
	StrategyNone          Strategy = "none"
)

// Candidate is a substring of a completion believed to hold one JSON object.
type Candidate struct {
	Text     string   `json:"text"`
	Strategy Strategy `json:"strategy"`
	Repaired bool     `json:"repaired"`
}

var (
	// A closing fence must sit on its own line. Fences embedded in JSON string
	// values have their newlines escaped and never close a block.
	reFence = regexp.MustCompile("(?ms)```([A-Za-z0-9_+-]*)[ \t]*\r?\n(.*?)\r?\n[ \t]*```[ \t]*\r?$")
	// A brace span tolerating one level of nested braces.
	reLooseObject = regexp.MustCompile(`\{(?:[^{}]|\{[^{}]*\})*\}`)
)

// Extract locates the most plausible JSON object in text.
//
// Labelled fences, unlabelled fences and a brace-depth scan are tried in that
// order and the first candidate that parses wins. When none of them parse, the
// loose regex is tried next, skipping spans that lie inside an earlier
// candidate so a repairable document is not traded for one of its fragments.
// Otherwise the first candidate found is returned so the validator can attempt
// repair. If no rule matches, the trimmed input is returned with StrategyNone.
func Extract(text string) Candidate {
	var found []Candidate
	if s, ok := fencedBlock(text, true); ok {
		found = append(found, Candidate{Text: s, Strategy: StrategyFencedJSON})
	}
	if s, ok := fencedBlock(text, false); ok {
		found = append(found, Candidate{Text: s, Strategy: StrategyFencedGeneric})
	}
	if s, ok := ScanObject(text); ok {
		found = append(found, Candidate{Text: s, Strategy: StrategyBraceScan})
	}
	for _, c := range found {
		if json.Valid([]byte(c.Text)) {
			return c
		}
	}
	if c, ok := looseObject(text, found); ok {
		return c
	}
	if len(found) > 0 {
		return found[0]
	}
	return Candidate{Text: strings.TrimSpace(text), Strategy: StrategyNone}
}

// looseObject returns the first regex match that is not part of an earlier
// candidate. With earlier candidates present the match must also parse.
func looseObject(text string, found []Candidate) (Candidate, bool) {
outer:
	for _, m := range reLooseObject.FindAllString(text, -1) {
		m = strings.TrimSpace(m)
		if len(found) == 0 {
			return Candidate{Text: m, Strategy: StrategyRegex}, true
		}
		for _, c := range found {
			if strings.Contains(c.Text, m) {
				continue outer
			}
		}
		if json.Valid([]byte(m)) {
			return Candidate{Text: m, Strategy: StrategyRegex}, true
		}
	}
	return Candidate{}, false
}

// fencedBlock returns the body of the first closed code fence whose body
// starts with '{'. labelledJSON selects fences tagged "json"; otherwise only
// fences without a language tag are considered.
func fencedBlock(text string, labelledJSON bool) (string, bool) {
	for _, m := range reFence.FindAllStringSubmatch(text, -1) {
		label, body := m[1], strings.TrimSpace(m[2])
		if labelledJSON && !strings.EqualFold(label, "json") {
			continue
		}
		if !labelledJSON && label != "" {
			continue
		}
		if strings.HasPrefix(body, "{") {
			return body, true
		}
	}
	return "", false
}

// ScanObject returns the span from the first '{' to the brace that brings the
// nesting depth back to zero. Braces inside string literals are counted too.
// It reports false when there is no '{' or the object never closes.
func ScanObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(text[start : i+1]), true
			}
		}
	}
	return "", false
}
