package tool

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NewSaveToFile builds the persistence capability. Content is written under
// outputDir; directory segments in the filename (for example "src/main.py")
// are created as needed. The output directory is captured here so two runs
// with different directories cannot interfere through shared state.
func NewSaveToFile(outputDir string) Capability {
	return Capability{
		Name:        SaveToFileName,
		Description: "Save content to a file in the run's output directory. Creates parent directories as needed.",
		Params: []Param{
			{Name: "content", Description: "The content to write to the file", Required: true},
			{Name: "filename", Description: "The name of the file to create, optionally with a relative directory prefix", Required: true},
		},
		Invoke: func(args map[string]string) (string, error) {
			filename := strings.TrimSpace(args["filename"])
			if filename == "" {
				return "", fmt.Errorf("tool: %s requires a filename", SaveToFileName)
			}
			if filepath.IsAbs(filename) {
				return "", fmt.Errorf("tool: %s filename %s escapes the output directory", SaveToFileName, filename)
			}
			// Join cleans the path, so any ".." segments collapse before the
			// containment check. Model-supplied filenames are untrusted.
			target := filepath.Join(outputDir, filepath.FromSlash(filename))
			rel, err := filepath.Rel(outputDir, target)
			if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				return "", fmt.Errorf("tool: %s filename %s escapes the output directory", SaveToFileName, filename)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return "", fmt.Errorf("tool: ensure directory for %s: %w", target, err)
			}
			if err := os.WriteFile(target, []byte(args["content"]), 0o644); err != nil {
				return "", fmt.Errorf("tool: write %s: %w", target, err)
			}
			return fmt.Sprintf("Saved content to %s", target), nil
		},
	}
}
