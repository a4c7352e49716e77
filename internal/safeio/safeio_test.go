package safeio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeFSAllowsAbsoluteUnderRoot(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(p, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fs, err := NewSafeFS(dir)
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	if _, err := fs.SafeReadFile(p); err != nil {
		t.Fatalf("SafeReadFile absolute: %v", err)
	}
}

func TestSafeFSRejectsTraversal(t *testing.T) {
	fs, err := NewSafeFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	if _, err := fs.SafeReadFile("../etc/passwd"); err == nil {
		t.Fatalf("expected traversal to fail")
	}
	if err := fs.SafeWriteFile("../escape.txt", []byte("x"), 0o644); err == nil {
		t.Fatalf("expected write traversal to fail")
	}
}

func TestSafeWriteFileCreatesParents(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewSafeFS(dir)
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	rel := filepath.Join(".claude", "agents", "reviewer.md")
	if err := fs.SafeWriteFile(rel, []byte("one"), 0o644); err != nil {
		t.Fatalf("SafeWriteFile: %v", err)
	}
	if err := fs.SafeWriteFile(rel, []byte("two"), 0o644); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := fs.SafeReadFile(rel)
	if err != nil {
		t.Fatalf("SafeReadFile: %v", err)
	}
	if string(got) != "two" {
		t.Fatalf("got %q want %q", got, "two")
	}
	if !fs.Exists(rel) || fs.Exists("missing.md") {
		t.Fatalf("Exists mismatch")
	}
	entries, err := os.ReadDir(filepath.Join(dir, ".claude", "agents"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestSafeWriteFileRejectsSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	fs, err := NewSafeFS(root)
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	if err := fs.SafeWriteFile(filepath.Join("link", "x.txt"), []byte("x"), 0o644); err == nil {
		t.Fatalf("expected symlink escape to fail")
	}
	if _, err := os.Stat(filepath.Join(outside, "x.txt")); err == nil {
		t.Fatalf("file written outside root")
	}
}

func TestSafeWriteFileRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewSafeFS(dir)
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	if err := fs.SafeMkdirAll("sub", 0o755); err != nil {
		t.Fatalf("SafeMkdirAll: %v", err)
	}
	if err := fs.SafeWriteFile("sub", []byte("x"), 0o644); err == nil {
		t.Fatalf("expected error writing over a directory")
	}
}

func TestSafeOpenReadsFilesOnly(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fs, err := NewSafeFS(dir)
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	f, err := fs.SafeOpen("a.txt")
	if err != nil {
		t.Fatalf("SafeOpen: %v", err)
	}
	f.Close()
	if _, err := fs.SafeOpen("."); err == nil {
		t.Fatalf("expected directory open to fail")
	}
}
