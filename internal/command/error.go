package command

import (
	"fmt"
	"strings"
)

// Error is returned when the child exits with a nonzero status. Stdout and
// Stderr are nil for streams that were not connected to a capture pipe.
type Error struct {
	Command  string
	ExitCode int
	Stdout   *string
	Stderr   *string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("command %q exited with status %d", e.Command, e.ExitCode)
	if e.Stderr != nil {
		if s := strings.TrimSpace(*e.Stderr); s != "" {
			msg += ": " + lastLine(s)
		}
	}
	return msg
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}

func strPtr(s string) *string { return &s }
