// Package logging writes timestamped progress lines for a deploy run.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Logger writes one "[RFC3339] message" line per event to its console
// writer and, when opened with a path, appends the same line to a file.
// A nil *Logger discards everything.
type Logger struct {
	console io.Writer
	file    *os.File
	now     func() time.Time
}

// New returns a Logger writing to console only.
func New(console io.Writer) *Logger {
	return &Logger{console: console, now: time.Now}
}

// Open returns a Logger that also appends to the file at path. The parent
// directory is created if needed.
func Open(console io.Writer, path string) (*Logger, error) {
	l := New(console)
	if path == "" {
		return l, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	l.file = f
	return l, nil
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Printf writes a single timestamped line.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil {
		return
	}
	line := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	stamped := fmt.Sprintf("[%s] %s\n", l.now().Format(time.RFC3339), line)
	if l.console != nil {
		_, _ = io.WriteString(l.console, stamped)
	}
	if l.file != nil {
		_, _ = l.file.WriteString(stamped)
	}
}
