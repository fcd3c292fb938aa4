// Package command runs external programs with per-stream redirection and
// turns a nonzero exit into a structured error.
package command

import (
	"fmt"
	"strings"

	"github.com/flarebyte/vmrelease/internal/platform"
	"github.com/google/shlex"
)

// Invocation describes one child process.
//
// Line is split into words with POSIX shell rules when Shell is false and
// the host is not Windows. With Shell set it goes to /bin/sh -c. On Windows
// the line is handed to cmd.exe untouched regardless of Shell. Argv, when
// non-empty, is launched as given and Line is ignored.
type Invocation struct {
	Line   string
	Argv   []string
	Shell  bool
	Dir    string
	Stdin  Input
	Stdout Output
	Stderr Output
}

// Result holds the captured text of a successful run, stdout before stderr,
// limited to streams marked Return.
type Result struct {
	Captured []string
}

// Single returns the only captured stream.
func (r Result) Single() (string, bool) {
	if len(r.Captured) != 1 {
		return "", false
	}
	return r.Captured[0], true
}

// Pair returns stdout and stderr when both were returned.
func (r Result) Pair() (string, string, bool) {
	if len(r.Captured) != 2 {
		return "", "", false
	}
	return r.Captured[0], r.Captured[1], true
}

// Empty reports whether nothing was returned.
func (r Result) Empty() bool { return len(r.Captured) == 0 }

// Tokenize splits a command line using POSIX shell word-splitting rules.
func Tokenize(line string) ([]string, error) {
	words, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("tokenize %q: %w", line, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return words, nil
}

// NeedsTokenize reports whether a line must be split before launch.
func NeedsTokenize(host platform.OS, shell bool) bool {
	return !shell && !host.IsWindows()
}

// Display renders the invocation for logs and error messages.
func (inv Invocation) Display() string {
	if len(inv.Argv) > 0 {
		return strings.Join(inv.Argv, " ")
	}
	return inv.Line
}
