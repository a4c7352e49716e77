package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtract_LabelledFence(t *testing.T) {
	in := "Here you go:\n```json\n{\"projectAnalysis\":{},\"recommendedAgents\":[],\"recommendedCommands\":[],\"claudeRules\":{}}\n```\nEnjoy!"
	c := Extract(in)
	require.Equal(t, StrategyFencedJSON, c.Strategy)
	require.Equal(t, `{"projectAnalysis":{},"recommendedAgents":[],"recommendedCommands":[],"claudeRules":{}}`, c.Text)
	require.False(t, c.Repaired)
}

func TestExtract_LabelledFenceWinsOverEarlierProse(t *testing.T) {
	in := "Consider {this} aside.\n```JSON\n{\"a\": 1}\n```"
	c := Extract(in)
	require.Equal(t, StrategyFencedJSON, c.Strategy)
	require.Equal(t, `{"a": 1}`, c.Text)
}

func TestExtract_GenericFence(t *testing.T) {
	in := "Result:\n```\n  {\"a\": [1, 2]}  \n```\n"
	c := Extract(in)
	require.Equal(t, StrategyFencedGeneric, c.Strategy)
	require.Equal(t, `{"a": [1, 2]}`, c.Text)
}

func TestExtract_SkipsNonJSONFences(t *testing.T) {
	in := "```python\nprint('x')\n```\nand then {\"ok\": true} done"
	c := Extract(in)
	require.Equal(t, StrategyBraceScan, c.Strategy)
	require.Equal(t, `{"ok": true}`, c.Text)
}

func TestExtract_BraceScanKeepsOuterObject(t *testing.T) {
	in := `Some prose first {"a":{"b":{"c":1}}} and more prose after.`
	c := Extract(in)
	require.Equal(t, StrategyBraceScan, c.Strategy)
	require.Equal(t, `{"a":{"b":{"c":1}}}`, c.Text)
}

func TestExtract_BrokenFenceIsKeptForRepair(t *testing.T) {
	in := "```json\n{\"a\": 1,}\n```"
	c := Extract(in)
	require.Equal(t, StrategyFencedJSON, c.Strategy)
	require.Equal(t, `{"a": 1,}`, c.Text)
}

func TestExtract_PrefersParseableCandidate(t *testing.T) {
	// The labelled fence is broken, the unlabelled one parses.
	in := "```json\n{\"a\": 1,}\n```\n```\n{\"b\": 2}\n```"
	c := Extract(in)
	require.Equal(t, StrategyFencedGeneric, c.Strategy)
	require.Equal(t, `{"b": 2}`, c.Text)
}

func TestExtract_LastResortRegexOnTruncatedObject(t *testing.T) {
	in := `{"outer": {"inner": 1}, "rest": `
	c := Extract(in)
	require.Equal(t, StrategyRegex, c.Strategy)
	require.Equal(t, `{"inner": 1}`, c.Text)
}

func TestExtract_NoJSONReturnsInput(t *testing.T) {
	c := Extract("  This is not valid JSON at all  ")
	require.Equal(t, StrategyNone, c.Strategy)
	require.Equal(t, "This is not valid JSON at all", c.Text)

	empty := Extract("")
	require.Equal(t, StrategyNone, empty.Strategy)
	require.Equal(t, "", empty.Text)
}

func TestScanObject(t *testing.T) {
	s, ok := ScanObject(`x {"a": "}"} y`)
	// Braces inside strings are counted, so the scan stops early.
	require.True(t, ok)
	require.Equal(t, `{"a": "}`, s)

	_, ok = ScanObject("no braces")
	require.False(t, ok)

	_, ok = ScanObject(`{"never": {"closed": 1}`)
	require.False(t, ok)
}

func TestExtract_FenceInsideStringValue(t *testing.T) {
	cfg := sampleConfig()
	cfg.RecommendedCommands[0].Prompt = "Run:\n```bash\nmake check\n```\nthen report."
	b, err := json.Marshal(cfg)
	require.NoError(t, err)
	in := "Here is the setup for {your-project}:\n```json\n" + string(b) + "\n```"

	c := Extract(in)
	require.Equal(t, StrategyFencedJSON, c.Strategy)
	require.Equal(t, string(b), c.Text)

	res, err := Pipeline(in, strictPolicy())
	require.NoError(t, err)
	require.Equal(t, OutcomeValid, res.Outcome)
	require.Equal(t, cfg, res.Config)
}

func TestExtract_CRLFFence(t *testing.T) {
	c := Extract("```json\r\n{\"a\": 1}\r\n```\r\n")
	require.Equal(t, StrategyFencedJSON, c.Strategy)
	require.Equal(t, `{"a": 1}`, c.Text)
}

func TestExtract_RegexAfterUnparseableCandidates(t *testing.T) {
	in := "```json\n{\"a\": 1,}\n```\nOr, more simply: {\"b\": 2}"
	c := Extract(in)
	require.Equal(t, StrategyRegex, c.Strategy)
	require.Equal(t, `{"b": 2}`, c.Text)
}

func TestExtract_RegexIgnoresFragmentsOfBrokenCandidate(t *testing.T) {
	in := "```json\n{\"a\": {\"b\": {\"c\": 1}},}\n```"
	c := Extract(in)
	require.Equal(t, StrategyFencedJSON, c.Strategy)
	require.Equal(t, `{"a": {"b": {"c": 1}},}`, c.Text)
}
