package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripTrailingCommas(t *testing.T) {
	require.Equal(t, `{"a": [1, 2], "b": {"c": 3}}`, StripTrailingCommas(`{"a": [1, 2,], "b": {"c": 3,},}`))
	require.Equal(t, "{\"a\": 1\n}", StripTrailingCommas("{\"a\": 1,\n}"))
}

func TestReplaceSingleQuotes(t *testing.T) {
	require.Equal(t, `{"a": "b"}`, ReplaceSingleQuotes(`{'a': 'b'}`))
	// Apostrophes in values are rewritten too.
	require.Equal(t, `{"a": "it"s"}`, ReplaceSingleQuotes(`{"a": "it's"}`))
}

func TestQuoteBareKeys(t *testing.T) {
	require.Equal(t, `{"a": 1, "b_2": {"$c": true}}`, QuoteBareKeys(`{a: 1, b_2: {$c: true}}`))
	require.Equal(t, `{"a": 1}`, QuoteBareKeys(`{"a": 1}`))
}

func TestCollapseDoubledKeys(t *testing.T) {
	require.Equal(t, `{"key": 1}`, CollapseDoubledKeys(`{""key"": 1}`))
	require.Equal(t, `{"a": ""}`, CollapseDoubledKeys(`{"a": ""}`))
}

func TestRescanObject(t *testing.T) {
	require.Equal(t, `{"a": {"b": 1}}`, RescanObject(`{"a": {"b": 1}} trailing } garbage`))
	require.Equal(t, `{"open": `, RescanObject(`{"open": `))
}

func TestRepairsAreIdempotent(t *testing.T) {
	inputs := []string{
		`{a: 'x', "b": [1,2,],}`,
		`{"a": {"b": 1}} tail`,
		`{""k"": 1}`,
	}
	for _, in := range inputs {
		for _, tr := range DefaultRepairs {
			once := tr.Apply(in)
			require.Equal(t, once, tr.Apply(once), "%s on %q", tr.Name, in)
		}
	}
}

func TestRepairPipelineOrder(t *testing.T) {
	names := make([]string, 0, len(DefaultRepairs))
	for _, tr := range DefaultRepairs {
		names = append(names, tr.Name)
	}
	require.Equal(t, []string{
		"trailing-commas",
		"single-quotes",
		"quote-keys",
		"collapse-double-quoted-keys",
		"brace-rescan",
	}, names)
}

func TestParseStopsAtFirstSuccessfulPrefix(t *testing.T) {
	v := NewValidator(DefaultPolicy())
	val, text, applied, err := v.parse(`{"a": "it's", "b": [1,],}`)
	require.NoError(t, err)
	// Single-quote replacement would corrupt the apostrophe; it must not run.
	require.Equal(t, []string{"trailing-commas"}, applied)
	require.Equal(t, `{"a": "it's", "b": [1]}`, text)
	require.Equal(t, map[string]any{"a": "it's", "b": []any{float64(1)}}, val)
}

func TestParseFullRepair(t *testing.T) {
	v := NewValidator(DefaultPolicy())
	val, _, applied, err := v.parse(`{projectType: 'cli', tags: ['a', 'b',],} and some chatter`)
	require.NoError(t, err)
	require.Equal(t, "brace-rescan", applied[len(applied)-1])
	b, err := json.Marshal(val)
	require.NoError(t, err)
	require.JSONEq(t, `{"projectType":"cli","tags":["a","b"]}`, string(b))
}

func TestParseUnrepairable(t *testing.T) {
	v := NewValidator(DefaultPolicy())
	_, _, applied, err := v.parse(`{"a": [1, 2`)
	require.Error(t, err)
	require.Len(t, applied, len(DefaultRepairs))
}

func TestCustomRepairList(t *testing.T) {
	p := DefaultPolicy()
	p.Repairs = []Transform{}
	v := NewValidator(p)
	_, _, applied, err := v.parse(`{"a": 1,}`)
	require.Error(t, err)
	require.Empty(t, applied)
}
