package response

import (
	"regexp"
	"strings"
)

// Transform is one textual correction applied to near-valid JSON.
type Transform struct {
	Name  string
	Apply func(string) string
}

var (
	reTrailingComma = regexp.MustCompile(`,(\s*[}\]])`)
	reBareKey       = regexp.MustCompile(`([{,]\s*)([A-Za-z_$][A-Za-z0-9_$]*)(\s*:)`)
	reDoubledKey    = regexp.MustCompile(`""([A-Za-z_$][A-Za-z0-9_$]*)""`)
)

// DefaultRepairs is the ordered repair pipeline. Transforms are applied
// cumulatively and the text is re-parsed after each one.
//
// The single-quote transform is lossy: apostrophes inside string values are
// rewritten as well.
var DefaultRepairs = []Transform{
	{Name: "trailing-commas", Apply: StripTrailingCommas},
	{Name: "single-quotes", Apply: ReplaceSingleQuotes},
	{Name: "quote-keys", Apply: QuoteBareKeys},
	{Name: "collapse-double-quoted-keys", Apply: CollapseDoubledKeys},
	{Name: "brace-rescan", Apply: RescanObject},
}

// StripTrailingCommas drops commas that directly precede '}' or ']'.
func StripTrailingCommas(s string) string {
	return reTrailingComma.ReplaceAllString(s, "$1")
}

// ReplaceSingleQuotes turns every single quote into a double quote. It is
// lossy: apostrophes inside values become quotes too.
func ReplaceSingleQuotes(s string) string {
	return strings.ReplaceAll(s, "'", `"`)
}

// QuoteBareKeys wraps identifier-like object keys in double quotes.
func QuoteBareKeys(s string) string {
	return reBareKey.ReplaceAllString(s, `$1"$2"$3`)
}

// CollapseDoubledKeys turns ""key"" back into "key".
func CollapseDoubledKeys(s string) string {
	return reDoubledKey.ReplaceAllString(s, `"$1"`)
}

// RescanObject keeps exactly one complete top-level object, dropping any
// trailing text. Input without a closed object is returned unchanged.
func RescanObject(s string) string {
	if obj, ok := ScanObject(s); ok {
		return obj
	}
	return s
}
