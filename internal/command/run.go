package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/flarebyte/vmrelease/internal/platform"
)

// Runner launches invocations for a fixed host kind.
type Runner struct {
	OS platform.OS
	// ConsoleOut and ConsoleErr receive Console streams. Nil means the
	// process's own stdout/stderr.
	ConsoleOut io.Writer
	ConsoleErr io.Writer
}

// NewRunner returns a Runner for the given host kind.
func NewRunner(host platform.OS) *Runner {
	return &Runner{OS: host}
}

// Run executes inv and blocks until the child exits.
func (r *Runner) Run(ctx context.Context, inv Invocation) (Result, error) {
	cmd, err := r.command(ctx, inv)
	if err != nil {
		return Result{}, err
	}
	cmd.Dir = inv.Dir

	switch {
	case inv.Stdin.text != nil:
		cmd.Stdin = strings.NewReader(*inv.Stdin.text)
	case inv.Stdin.file != nil:
		cmd.Stdin = inv.Stdin.file
	case inv.Stdin.inherit:
		cmd.Stdin = os.Stdin
	}

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = r.sink(inv.Stdout, &outBuf, r.consoleOut())
	cmd.Stderr = r.sink(inv.Stderr, &errBuf, r.consoleErr())

	runErr := cmd.Run()
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			ce := &Error{Command: inv.Display(), ExitCode: exitErr.ExitCode()}
			if inv.Stdout.captured() {
				ce.Stdout = strPtr(outBuf.String())
			}
			if inv.Stderr.captured() {
				ce.Stderr = strPtr(errBuf.String())
			}
			return Result{}, ce
		}
		return Result{}, fmt.Errorf("program %s start failed: %w", cmd.Path, runErr)
	}

	var res Result
	if inv.Stdout.returned() {
		res.Captured = append(res.Captured, outBuf.String())
	}
	if inv.Stderr.returned() {
		res.Captured = append(res.Captured, errBuf.String())
	}
	return res, nil
}

// command builds the exec.Cmd for inv without starting it.
func (r *Runner) command(ctx context.Context, inv Invocation) (*exec.Cmd, error) {
	if len(inv.Argv) > 0 {
		return exec.CommandContext(ctx, inv.Argv[0], inv.Argv[1:]...), nil
	}
	if strings.TrimSpace(inv.Line) == "" {
		return nil, errors.New("empty command")
	}
	if NeedsTokenize(r.OS, inv.Shell) {
		argv, err := Tokenize(inv.Line)
		if err != nil {
			return nil, err
		}
		return exec.CommandContext(ctx, argv[0], argv[1:]...), nil
	}
	if r.OS.IsWindows() {
		return windowsShellCommand(ctx, inv.Line), nil
	}
	return exec.CommandContext(ctx, "/bin/sh", "-c", inv.Line), nil
}

func (r *Runner) sink(o Output, buf *bytes.Buffer, console io.Writer) io.Writer {
	switch o.kind {
	case outputIgnore, outputReturn:
		return buf
	case outputFile:
		if o.file != nil {
			return o.file
		}
		return nil
	default:
		return console
	}
}

func (r *Runner) consoleOut() io.Writer {
	if r.ConsoleOut != nil {
		return r.ConsoleOut
	}
	return os.Stdout
}

func (r *Runner) consoleErr() io.Writer {
	if r.ConsoleErr != nil {
		return r.ConsoleErr
	}
	return os.Stderr
}
