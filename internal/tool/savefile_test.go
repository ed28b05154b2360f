package tool

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveToFileWritesContent(t *testing.T) {
	dir := t.TempDir()
	cap := NewSaveToFile(dir)

	result, err := cap.Invoke(map[string]string{
		"content":  "hello",
		"filename": "README.md",
	})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if !strings.Contains(result, "README.md") {
		t.Fatalf("confirmation should name the file: %q", result)
	}
	content, err := os.ReadFile(filepath.Join(dir, "README.md"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(content) != "hello" {
		t.Fatalf("unexpected content: %q", content)
	}
}

func TestSaveToFileCreatesIntermediateDirectories(t *testing.T) {
	dir := t.TempDir()
	cap := NewSaveToFile(dir)

	if _, err := cap.Invoke(map[string]string{
		"content":  "body",
		"filename": "src/models/user.py",
	}); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "src", "models", "user.py")); err != nil {
		t.Fatalf("nested file missing: %v", err)
	}
}

func TestSaveToFileRejectsEscapingPaths(t *testing.T) {
	dir := t.TempDir()
	cap := NewSaveToFile(dir)
	cases := []string{
		"",
		"..",
		"../escape.txt",
		"a/../../escaped.txt",
		"src/../../../escaped.txt",
		"/etc/passwd",
	}
	for _, filename := range cases {
		if _, err := cap.Invoke(map[string]string{"content": "x", "filename": filename}); err == nil {
			t.Fatalf("expected rejection for filename %q", filename)
		}
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "escaped.txt")); err == nil {
		t.Fatalf("file escaped the output directory")
	}
}

func TestSaveToFileAllowsInternalDotDot(t *testing.T) {
	dir := t.TempDir()
	cap := NewSaveToFile(dir)
	if _, err := cap.Invoke(map[string]string{"content": "x", "filename": "a/../b.txt"}); err != nil {
		t.Fatalf("path staying inside the output directory should be accepted: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "b.txt")); err != nil {
		t.Fatalf("expected cleaned path to land in output dir: %v", err)
	}
}
