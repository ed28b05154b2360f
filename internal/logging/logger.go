// Package logging appends timestamped run logs under the output directory
// so users can inspect a run after the progress feed has scrolled away. One
// log file serves the whole process; components tag their lines through
// prefixed child loggers.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogDirName is the directory created under the run's output directory.
const LogDirName = ".crewsmith"

// Logger appends timestamped lines to <output>/.crewsmith/logs/crewsmith.log.
// Child loggers from Prefixed share the file and its write lock, so engine
// goroutines and the orchestrator can log concurrently without interleaving
// partial lines.
type Logger struct {
	mu     *sync.Mutex
	file   *os.File
	prefix string
}

// New creates (or reuses) the log file for the given output directory.
func New(outputDir string) (*Logger, error) {
	logDir := filepath.Join(outputDir, LogDirName, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(logDir, "crewsmith.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	return &Logger{mu: &sync.Mutex{}, file: f}, nil
}

// Prefixed returns a logger writing to the same file with every line tagged
// by component, so engine and workflow lines can be told apart in one log.
func (l *Logger) Prefixed(prefix string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{mu: l.mu, file: l.file, prefix: strings.TrimSpace(prefix)}
}

// Close releases the file handle. Closing any child closes the shared file.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Printf writes a single timestamped, optionally component-tagged line.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.file == nil {
		return
	}
	line := fmt.Sprintf(format, args...)
	line = strings.TrimRight(line, "\n")
	timestamp := time.Now().Format(time.RFC3339)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.prefix != "" {
		fmt.Fprintf(l.file, "[%s] %s: %s\n", timestamp, l.prefix, line)
		return
	}
	fmt.Fprintf(l.file, "[%s] %s\n", timestamp, line)
}
