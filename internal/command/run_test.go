package command

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/flarebyte/vmrelease/internal/platform"
)

func requirePOSIXShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("command tests require POSIX shell")
	}
}

func quietRunner() (*Runner, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &Runner{OS: platform.Linux, ConsoleOut: &out, ConsoleErr: &errOut}, &out, &errOut
}

func TestTokenize_EchoHelloWorld(t *testing.T) {
	got, err := Tokenize("echo hello world")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []string{"echo", "hello", "world"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %q, want %q", got, want)
	}
}

func TestTokenize_Quoting(t *testing.T) {
	got, err := Tokenize(`vagrant ssh ubuntu2204 --command "cd ~/workspace; ./build.sh abc 1.0"`)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []string{"vagrant", "ssh", "ubuntu2204", "--command", "cd ~/workspace; ./build.sh abc 1.0"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %q, want %q", got, want)
	}
}

func TestTokenize_Empty(t *testing.T) {
	if _, err := Tokenize("   "); err == nil {
		t.Fatalf("expected error for empty line")
	}
}

func TestCommand_LinuxNoShellSplitsArgv(t *testing.T) {
	r := &Runner{OS: platform.Linux}
	cmd, err := r.command(context.Background(), Invocation{Line: "echo hello world"})
	if err != nil {
		t.Fatalf("command: %v", err)
	}
	want := []string{"echo", "hello", "world"}
	if !reflect.DeepEqual(cmd.Args, want) {
		t.Fatalf("Args = %q, want %q", cmd.Args, want)
	}
}

func TestCommand_LinuxShellUsesSh(t *testing.T) {
	r := &Runner{OS: platform.Linux}
	cmd, err := r.command(context.Background(), Invocation{Line: "echo a | tr a b", Shell: true})
	if err != nil {
		t.Fatalf("command: %v", err)
	}
	want := []string{"/bin/sh", "-c", "echo a | tr a b"}
	if !reflect.DeepEqual(cmd.Args, want) {
		t.Fatalf("Args = %q, want %q", cmd.Args, want)
	}
}

func TestCommand_WindowsKeepsRawLine(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("argv shape differs on a real Windows host")
	}
	r := &Runner{OS: platform.Windows}
	line := `vagrant winrm windows10 --command "cd x; ./b.ps1"`
	for _, shell := range []bool{false, true} {
		cmd, err := r.command(context.Background(), Invocation{Line: line, Shell: shell})
		if err != nil {
			t.Fatalf("command: %v", err)
		}
		if got := cmd.Args[len(cmd.Args)-1]; got != line {
			t.Fatalf("shell=%v: last arg = %q, want raw line", shell, got)
		}
	}
}

func TestNeedsTokenize(t *testing.T) {
	if !NeedsTokenize(platform.Linux, false) {
		t.Fatalf("linux without shell must tokenize")
	}
	if NeedsTokenize(platform.Linux, true) {
		t.Fatalf("linux with shell must not tokenize")
	}
	if NeedsTokenize(platform.Windows, false) || NeedsTokenize(platform.Windows, true) {
		t.Fatalf("windows never tokenizes")
	}
}

func TestRun_ReturnShapes(t *testing.T) {
	requirePOSIXShell(t)
	r, _, _ := quietRunner()
	line := "printf out; printf err >&2"

	res, err := r.Run(context.Background(), Invocation{Line: line, Shell: true, Stdout: Return(), Stderr: Ignore()})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if s, ok := res.Single(); !ok || s != "out" {
		t.Fatalf("stdout only: got %+v", res)
	}

	res, err = r.Run(context.Background(), Invocation{Line: line, Shell: true, Stdout: Ignore(), Stderr: Return()})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if s, ok := res.Single(); !ok || s != "err" {
		t.Fatalf("stderr only: got %+v", res)
	}

	res, err = r.Run(context.Background(), Invocation{Line: line, Shell: true, Stdout: Return(), Stderr: Return()})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if o, e, ok := res.Pair(); !ok || o != "out" || e != "err" {
		t.Fatalf("pair: got %+v", res)
	}

	res, err = r.Run(context.Background(), Invocation{Line: line, Shell: true, Stdout: Ignore(), Stderr: Ignore()})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Empty() {
		t.Fatalf("none: got %+v", res)
	}
}

func TestRun_ConsolePassThrough(t *testing.T) {
	requirePOSIXShell(t)
	r, out, errOut := quietRunner()
	res, err := r.Run(context.Background(), Invocation{Line: "printf hi; printf ho >&2", Shell: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Empty() {
		t.Fatalf("console streams must not be returned: %+v", res)
	}
	if out.String() != "hi" || errOut.String() != "ho" {
		t.Fatalf("console got %q / %q", out.String(), errOut.String())
	}
}

func TestRun_NonZeroCapturesPipedStreamsOnly(t *testing.T) {
	requirePOSIXShell(t)
	r, _, _ := quietRunner()
	_, err := r.Run(context.Background(), Invocation{
		Line:   "printf out; printf err >&2; exit 3",
		Shell:  true,
		Stdout: Ignore(),
		Stderr: Console(),
	})
	var ce *Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if ce.ExitCode != 3 {
		t.Fatalf("ExitCode = %d, want 3", ce.ExitCode)
	}
	if ce.Stdout == nil || *ce.Stdout != "out" {
		t.Fatalf("Stdout = %v, want out", ce.Stdout)
	}
	if ce.Stderr != nil {
		t.Fatalf("Stderr must be nil for console stream, got %q", *ce.Stderr)
	}
}

func TestRun_NonZeroIgnoresReturnFlag(t *testing.T) {
	requirePOSIXShell(t)
	r, _, _ := quietRunner()
	_, err := r.Run(context.Background(), Invocation{
		Line:   "printf a; printf b >&2; exit 1",
		Shell:  true,
		Stdout: Return(),
		Stderr: Ignore(),
	})
	var ce *Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if ce.Stdout == nil || *ce.Stdout != "a" || ce.Stderr == nil || *ce.Stderr != "b" {
		t.Fatalf("unexpected captured output: %+v", ce)
	}
	if !strings.Contains(ce.Error(), "exited with status 1") || !strings.HasSuffix(ce.Error(), ": b") {
		t.Fatalf("unexpected message: %s", ce.Error())
	}
}

func TestRun_AnyNonZeroIsFailure(t *testing.T) {
	requirePOSIXShell(t)
	r, _, _ := quietRunner()
	for _, code := range []string{"1", "2", "127", "255"} {
		_, err := r.Run(context.Background(), Invocation{Line: "exit " + code, Shell: true})
		var ce *Error
		if !errors.As(err, &ce) {
			t.Fatalf("exit %s: expected *Error, got %v", code, err)
		}
	}
}

func TestRun_StringInputEchoed(t *testing.T) {
	requirePOSIXShell(t)
	r, _, _ := quietRunner()
	res, err := r.Run(context.Background(), Invocation{Line: "cat", Stdin: StringInput("abc"), Stdout: Return()})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if s, ok := res.Single(); !ok || s != "abc" {
		t.Fatalf("got %+v, want abc", res)
	}
}

func TestRun_FileStreams(t *testing.T) {
	requirePOSIXShell(t)
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(inPath, []byte("from file"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	in, err := os.Open(inPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = in.Close() }()
	out, err := os.Create(filepath.Join(dir, "out.txt"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	r, _, _ := quietRunner()
	if _, err := r.Run(context.Background(), Invocation{Line: "cat", Stdin: FileInput(in), Stdout: ToFile(out)}); err != nil {
		t.Fatalf("run: %v", err)
	}
	_ = out.Close()
	b, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "from file" {
		t.Fatalf("out.txt = %q", string(b))
	}
}

func TestRun_ArgvBypassesTokenizer(t *testing.T) {
	requirePOSIXShell(t)
	r, _, _ := quietRunner()
	res, err := r.Run(context.Background(), Invocation{Argv: []string{"printf", "%s", "a b"}, Stdout: Return()})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if s, _ := res.Single(); s != "a b" {
		t.Fatalf("got %q", s)
	}
}

func TestRun_ProgramNotFound(t *testing.T) {
	r, _, _ := quietRunner()
	_, err := r.Run(context.Background(), Invocation{Line: "this-program-does-not-exist-xyz arg"})
	if err == nil {
		t.Fatalf("expected error")
	}
	var ce *Error
	if errors.As(err, &ce) {
		t.Fatalf("start failure must not be a *Error: %v", err)
	}
}

func TestRun_WorkingDir(t *testing.T) {
	requirePOSIXShell(t)
	dir := t.TempDir()
	r, _, _ := quietRunner()
	res, err := r.Run(context.Background(), Invocation{Line: "pwd", Dir: dir, Stdout: Return()})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	s, _ := res.Single()
	want, _ := filepath.EvalSymlinks(dir)
	got, _ := filepath.EvalSymlinks(strings.TrimSpace(s))
	if got != want {
		t.Fatalf("pwd = %q, want %q", got, want)
	}
}

func TestRun_InheritInputReadsParentStdin(t *testing.T) {
	requirePOSIXShell(t)
	pr, pw, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	if _, err := pw.WriteString("passphrase\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = pw.Close()
	oldStdin := os.Stdin
	os.Stdin = pr
	defer func() {
		os.Stdin = oldStdin
		_ = pr.Close()
	}()

	r, _, _ := quietRunner()
	res, err := r.Run(context.Background(), Invocation{Line: "cat", Stdin: InheritInput(), Stdout: Return()})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if s, ok := res.Single(); !ok || s != "passphrase\n" {
		t.Fatalf("got %+v, want passphrase", res)
	}
}

func TestRun_NoInputReadsNothing(t *testing.T) {
	requirePOSIXShell(t)
	r, _, _ := quietRunner()
	res, err := r.Run(context.Background(), Invocation{Line: "cat", Stdin: NoInput(), Stdout: Return()})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if s, ok := res.Single(); !ok || s != "" {
		t.Fatalf("got %+v, want empty", res)
	}
}
