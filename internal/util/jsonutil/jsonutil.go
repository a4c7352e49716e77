package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// MarshalNoEscape encodes v into JSON without escaping <, >, & into <, etc.
// Shell commands in hook definitions stay readable this way.
func MarshalNoEscape(v any) ([]byte, error) {
	return MarshalNoEscapeIndent(v, "", "")
}

// MarshalNoEscapeIndent encodes v with indentation and without HTML escaping.
func MarshalNoEscapeIndent(v any, prefix, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if prefix != "" || indent != "" {
		enc.SetIndent(prefix, indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Remove trailing newline from json.Encoder.Encode
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnescapeUnicodeString converts JSON unicode escapes like ">" into actual characters.
func UnescapeUnicodeString(s string) (string, error) {
	// Trick: force JSON to treat the string as a quoted JSON string
	esc := strings.ReplaceAll(s, `\`, `\\`)
	esc = strings.ReplaceAll(esc, `"`, `\"`)
	esc = strings.ReplaceAll(esc, `\\u`, `\u`)
	var out string
	if err := json.Unmarshal([]byte(`"`+esc+`"`), &out); err != nil {
		return "", err
	}
	return out, nil
}

// NormalizeJSONUnicode parses JSON bytes, unwrapping up to two levels of
// JSON-encoded strings (models sometimes return an object serialized as a
// string), and recursively unescapes leftover unicode sequences in values.
func NormalizeJSONUnicode(raw []byte) ([]byte, error) {
	var anyVal any
	err := json.Unmarshal(raw, &anyVal)
	for depth := 0; err == nil && depth < 2; depth++ {
		s, ok := anyVal.(string)
		if !ok {
			break
		}
		var inner any
		if json.Unmarshal([]byte(s), &inner) != nil {
			break
		}
		anyVal = inner
	}
	if err != nil {
		return nil, err
	}
	if _, ok := anyVal.(string); ok {
		return nil, errors.New("jsonutil: payload is a plain string")
	}
	return MarshalNoEscape(deepUnescape(anyVal))
}

// UnmarshalFlex tries to unmarshal JSON bytes into v with best effort:
// 1) Direct unmarshal
// 2) Normalize and unmarshal
// The second step only runs when the first fails or yields a bare string.
func UnmarshalFlex(raw []byte, v any) error {
	direct := json.Unmarshal(raw, v)
	if direct == nil && !isStringTarget(v) {
		return nil
	}
	norm, err := NormalizeJSONUnicode(raw)
	if err != nil {
		if direct != nil {
			return direct
		}
		return nil
	}
	return json.Unmarshal(norm, v)
}

// isStringTarget reports whether v is *any currently holding a string.
func isStringTarget(v any) bool {
	p, ok := v.(*any)
	if !ok || p == nil {
		return false
	}
	_, ok = (*p).(string)
	return ok
}

// deepUnescape recursively traverses maps and slices,
// unescaping unicode sequences in all string values.
func deepUnescape(v any) any {
	switch x := v.(type) {
	case string:
		if !strings.Contains(x, `\u`) {
			return x
		}
		if s, err := UnescapeUnicodeString(x); err == nil {
			return s
		}
		return x
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = deepUnescape(x[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = deepUnescape(vv)
		}
		return out
	default:
		return v
	}
}
