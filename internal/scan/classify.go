package scan

import (
	"path"
	"strings"
)

// Category is the coarse role of a file in a project.
type Category string

const (
	CategorySource Category = "source"
	CategoryTest   Category = "test"
	CategoryConfig Category = "config"
	CategoryDocs   Category = "docs"
	CategoryBuild  Category = "build"
	CategoryCI     Category = "ci"
	CategoryOther  Category = "other"
)

var languages = map[string]string{
	".go": "Go", ".py": "Python", ".js": "JavaScript", ".jsx": "JavaScript",
	".mjs": "JavaScript", ".cjs": "JavaScript", ".ts": "TypeScript", ".tsx": "TypeScript",
	".rs": "Rust", ".java": "Java", ".kt": "Kotlin", ".kts": "Kotlin",
	".rb": "Ruby", ".php": "PHP", ".cs": "C#", ".c": "C", ".h": "C",
	".cc": "C++", ".cpp": "C++", ".hpp": "C++", ".swift": "Swift",
	".scala": "Scala", ".ex": "Elixir", ".exs": "Elixir", ".dart": "Dart",
	".lua": "Lua", ".sh": "Shell", ".bash": "Shell", ".vue": "Vue",
	".svelte": "Svelte", ".zig": "Zig", ".hs": "Haskell", ".clj": "Clojure",
	".sql": "SQL",
}

// Markers are files whose presence says a lot about the stack.
var markers = map[string]bool{
	"go.mod": true, "package.json": true, "Cargo.toml": true, "pyproject.toml": true,
	"requirements.txt": true, "setup.py": true, "Pipfile": true, "Gemfile": true,
	"pom.xml": true, "build.gradle": true, "build.gradle.kts": true, "composer.json": true,
	"Dockerfile": true, "docker-compose.yml": true, "compose.yaml": true,
	"Makefile": true, "CMakeLists.txt": true, "tsconfig.json": true, "deno.json": true,
	"mix.exs": true, "pubspec.yaml": true, "Package.swift": true,
}

var buildFiles = map[string]bool{
	"Makefile": true, "CMakeLists.txt": true, "Dockerfile": true, "Taskfile.yml": true,
	"justfile": true, "build.gradle": true, "build.gradle.kts": true, "pom.xml": true,
	"Cargo.toml": true, "go.mod": true, "go.sum": true, "package.json": true,
	"package-lock.json": true, "yarn.lock": true, "pnpm-lock.yaml": true,
	"pyproject.toml": true, "setup.py": true, "requirements.txt": true,
}

var configExts = map[string]bool{
	".json": true, ".yaml": true, ".yml": true, ".toml": true, ".ini": true,
	".cfg": true, ".conf": true, ".env": true, ".properties": true,
}

var docExts = map[string]bool{".md": true, ".rst": true, ".adoc": true, ".txt": true}

// Language returns the language for an extension, or "" when unknown.
func Language(ext string) string {
	return languages[strings.ToLower(ext)]
}

// IsMarker reports whether rel (slash separated) is a marker file. CI
// workflow directories count as markers too.
func IsMarker(rel string) bool {
	if markers[path.Base(rel)] {
		return true
	}
	return isCI(rel)
}

// Classify assigns a category from the file's path alone.
func Classify(rel string) Category {
	base := path.Base(rel)
	ext := strings.ToLower(path.Ext(base))
	switch {
	case isCI(rel):
		return CategoryCI
	case buildFiles[base]:
		return CategoryBuild
	case isTest(rel, base):
		return CategoryTest
	case languages[ext] != "":
		return CategorySource
	case docExts[ext] || strings.HasPrefix(rel, "docs/"):
		return CategoryDocs
	case configExts[ext] || strings.HasPrefix(base, "."):
		return CategoryConfig
	}
	return CategoryOther
}

func isCI(rel string) bool {
	return strings.HasPrefix(rel, ".github/workflows/") ||
		strings.HasPrefix(rel, ".circleci/") ||
		rel == ".gitlab-ci.yml" || rel == "Jenkinsfile" || rel == ".travis.yml" ||
		rel == "azure-pipelines.yml"
}

func isTest(rel, base string) bool {
	lower := strings.ToLower(base)
	stem := strings.TrimSuffix(lower, path.Ext(lower))
	switch {
	case strings.HasSuffix(stem, "_test"), strings.HasPrefix(stem, "test_"),
		strings.HasSuffix(stem, ".test"), strings.HasSuffix(stem, ".spec"),
		strings.HasSuffix(stem, "test") && languages[path.Ext(lower)] == "Java":
		return true
	}
	for _, dir := range []string{"test/", "tests/", "__tests__/", "spec/"} {
		if strings.HasPrefix(rel, dir) || strings.Contains(rel, "/"+dir) {
			return languages[path.Ext(lower)] != ""
		}
	}
	return false
}
