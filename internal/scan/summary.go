package scan

import (
	"errors"
	"io"
	"path"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"setupwizard/internal/safeio"
)

const readmeHeadLimit = 2000

// readmeReadLimit bounds how much of a README is read before badges and
// images are stripped.
const readmeReadLimit = 64 << 10

var (
	reImgMD   = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	reImgHTML = regexp.MustCompile(`(?is)<img[^>]*>`)
	reBadges  = regexp.MustCompile(`(?m)^\s*\[!\[.*$\n?`)
)

// LanguageCount is the number of source files written in one language.
type LanguageCount struct {
	Language string `json:"language"`
	Files    int    `json:"files"`
}

// Summary is what the recommendation prompt learns about a project.
type Summary struct {
	Root       string           `json:"-"`
	Files      int              `json:"files"`
	Dirs       int              `json:"dirs"`
	TotalBytes int64            `json:"totalBytes"`
	Categories map[Category]int `json:"categories"`
	// Languages is sorted by file count, most used first.
	Languages  []LanguageCount `json:"languages,omitempty"`
	Markers    []string        `json:"markers,omitempty"`
	TopLevel   []string        `json:"topLevel,omitempty"`
	ReadmeHead string          `json:"readme,omitempty"`
	Truncated  bool            `json:"truncated,omitempty"`
}

// Empty reports whether the project has no source files, i.e. whether
// there is nothing to recommend from besides a user-provided idea.
func (s Summary) Empty() bool {
	return s.Categories[CategorySource] == 0 && s.Categories[CategoryTest] == 0
}

// HumanSize renders TotalBytes for display, e.g. "1.2 MB".
func (s Summary) HumanSize() string {
	return humanize.Bytes(uint64(max(s.TotalBytes, 0)))
}

// PrimaryLanguage is the most used language, or "" when none was detected.
func (s Summary) PrimaryLanguage() string {
	if len(s.Languages) == 0 {
		return ""
	}
	return s.Languages[0].Language
}

// Scan walks root and summarizes its layout. Reads never leave root.
func Scan(root string, opts Options) (Summary, error) {
	fsys, err := safeio.NewSafeFS(root)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Root: fsys.Root(), Categories: map[Category]int{}}
	langs := map[string]int{}
	markerSet := map[string]bool{}
	readme := ""

	err = walk(fsys, opts, func(f FileVisit) {
		if f.IsDir {
			sum.Dirs++
			if f.Depth == 0 {
				sum.TopLevel = append(sum.TopLevel, f.Path+"/")
			}
			if f.Path == ".github/workflows" || f.Path == ".circleci" {
				markerSet[f.Path+"/"] = true
			}
			return
		}
		sum.Files++
		sum.TotalBytes += f.Size
		if f.Depth == 0 {
			sum.TopLevel = append(sum.TopLevel, f.Path)
		}
		cat := Classify(f.Path)
		sum.Categories[cat]++
		if cat == CategorySource || cat == CategoryTest {
			if lang := Language(f.Ext); lang != "" {
				langs[lang]++
			}
		}
		if IsMarker(f.Path) && !isCI(f.Path) {
			markerSet[f.Path] = true
		}
		if readme == "" && f.Depth == 0 && strings.HasPrefix(strings.ToLower(f.Path), "readme") {
			readme = f.Path
		}
	})
	if errors.Is(err, ErrFileLimit) {
		sum.Truncated = true
	} else if err != nil {
		return sum, err
	}

	for lang, n := range langs {
		sum.Languages = append(sum.Languages, LanguageCount{Language: lang, Files: n})
	}
	sort.Slice(sum.Languages, func(i, j int) bool {
		if sum.Languages[i].Files != sum.Languages[j].Files {
			return sum.Languages[i].Files > sum.Languages[j].Files
		}
		return sum.Languages[i].Language < sum.Languages[j].Language
	})
	for m := range markerSet {
		sum.Markers = append(sum.Markers, m)
	}
	sort.Strings(sum.Markers)

	if readme != "" {
		if b, err := readPrefix(fsys, readme, readmeReadLimit); err == nil {
			sum.ReadmeHead = readmeHead(string(b), readmeHeadLimit)
		}
	}
	return sum, nil
}

// readPrefix reads at most n bytes from the start of a file under fsys.
func readPrefix(fsys *safeio.SafeFS, p string, n int64) ([]byte, error) {
	f, err := fsys.SafeOpen(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, n))
}

func readmeHead(s string, n int) string {
	s = reBadges.ReplaceAllString(s, "")
	s = reImgMD.ReplaceAllString(s, "")
	s = reImgHTML.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimSpace(s[:cut]) + "\n..."
}

// MarkerNames returns marker base names, which are friendlier in prompts
// than full paths.
func (s Summary) MarkerNames() []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range s.Markers {
		name := path.Base(strings.TrimSuffix(m, "/"))
		if strings.HasSuffix(m, "/") {
			name = m
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
