package generate

import (
	"fmt"
	"strings"
	"unicode"
)

// Slugify turns a display name into a lowercase, dash separated file name.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if len(s) > 64 {
		s = strings.TrimSuffix(s[:64], "-")
	}
	if s == "" {
		return "unnamed"
	}
	return s
}

// slugSet hands out unique slugs, suffixing repeats with -2, -3, ...
type slugSet map[string]int

func newSlugSet() slugSet { return slugSet{} }

func (s slugSet) add(name string) string {
	base := Slugify(name)
	slug := base
	for n := 2; ; n++ {
		if _, taken := s[slug]; !taken {
			break
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
	s[slug] = 1
	return slug
}
