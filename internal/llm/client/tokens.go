package llmclient

import "strings"

// CountTokens provides a rough token count for text, used to warn before a
// prompt overflows a model's context.
// It counts whitespace-delimited words and falls back to a character-based heuristic.
func CountTokens(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	words := strings.Fields(text)
	n := len(text) / 4
	if len(words) > n {
		n = len(words)
	}
	if n == 0 {
		n = 1
	}
	return n
}
