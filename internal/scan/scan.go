package scan

import (
	"errors"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"setupwizard/internal/safeio"
)

// ErrFileLimit stops a walk once Options.MaxFiles files were visited.
var ErrFileLimit = errors.New("scan: file limit reached")

var defaultIgnoreDirs = []string{
	".git", ".hg", ".svn", ".claude", ".idea", ".vscode",
	"node_modules", "vendor", "target", "dist", "build", ".next", ".cache",
	"__pycache__", ".venv", "venv",
}

// Options controls a walk.
type Options struct {
	// IgnoreDirs are directory base names that are never entered.
	// When nil the built-in list is used.
	IgnoreDirs []string
	// MaxDepth limits recursion; 0 visits only the root entries,
	// a negative value means unlimited.
	MaxDepth int
	// MaxFiles stops the walk after that many files; 0 means unlimited.
	MaxFiles int
}

// DefaultOptions walks the whole tree with the built-in ignore list and a
// file cap large enough for typical repositories.
func DefaultOptions() Options {
	return Options{MaxDepth: -1, MaxFiles: 5000}
}

// FileVisit carries per-entry metadata to user callbacks.
type FileVisit struct {
	// Root-relative path using forward slashes (e.g., "src/app.go").
	Path string
	// True when the entry is a directory.
	IsDir bool
	// Lowercased extension (e.g., ".go", ".md"); empty for dirs or no-ext files.
	Ext string
	// File size in bytes; 0 for dirs or when stat fails.
	Size int64
	// Depth below the root; root entries have depth 0.
	Depth int
}

// VisitFunc is invoked for every visited entry.
type VisitFunc func(f FileVisit)

// Walk visits every entry under the filesystem root in lexical order.
// Unreadable directories are skipped. Reaching MaxFiles ends the walk
// without error.
func Walk(fsys *safeio.SafeFS, opts Options, cb VisitFunc) error {
	err := walk(fsys, opts, cb)
	if errors.Is(err, ErrFileLimit) {
		return nil
	}
	return err
}

func walk(fsys *safeio.SafeFS, opts Options, cb VisitFunc) error {
	ignore := opts.IgnoreDirs
	if ignore == nil {
		ignore = defaultIgnoreDirs
	}
	files := 0
	return walkDir(fsys, ".", 0, opts, ignore, &files, cb)
}

func walkDir(fsys *safeio.SafeFS, dir string, depth int, opts Options, ignore []string, files *int, cb VisitFunc) error {
	entries, err := fsys.SafeReadDir(filepath.FromSlash(dir))
	if err != nil {
		if dir == "." {
			return err
		}
		return nil
	}
	for _, e := range entries {
		rel := e.Name()
		if dir != "." {
			rel = path.Join(dir, e.Name())
		}
		if e.IsDir() {
			if slices.Contains(ignore, e.Name()) {
				continue
			}
			cb(FileVisit{Path: rel, IsDir: true, Depth: depth})
			if opts.MaxDepth >= 0 && depth >= opts.MaxDepth {
				continue
			}
			if err := walkDir(fsys, rel, depth+1, opts, ignore, files, cb); err != nil {
				return err
			}
			continue
		}
		if !e.Type().IsRegular() {
			continue
		}
		if opts.MaxFiles > 0 && *files >= opts.MaxFiles {
			return ErrFileLimit
		}
		*files++
		var size int64
		if info, err := e.Info(); err == nil {
			size = info.Size()
		}
		cb(FileVisit{
			Path:  rel,
			Ext:   strings.ToLower(path.Ext(rel)),
			Size:  size,
			Depth: depth,
		})
	}
	return nil
}
