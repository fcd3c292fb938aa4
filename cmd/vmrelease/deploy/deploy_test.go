package deploy

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flarebyte/vmrelease/internal/platform"
	"github.com/flarebyte/vmrelease/internal/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func assertExitError(t *testing.T, err error, wantSubstr string, wantCode int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), wantSubstr) {
		t.Fatalf("unexpected error: %v", err)
	}
	ec, ok := err.(interface{ ExitCode() int })
	if !ok || ec.ExitCode() != wantCode {
		t.Fatalf("unexpected exit code for %v", err)
	}
}

func TestDeploy_MissingVersionPrintsUsage(t *testing.T) {
	out, err := execute(t)
	assertExitError(t, err, "expected exactly one argument", exitCodeUsage)
	if !strings.Contains(out, "Usage:") {
		t.Fatalf("usage not printed: %q", out)
	}
}

func TestDeploy_InvalidVersion(t *testing.T) {
	_, err := execute(t, "not-a-version")
	assertExitError(t, err, "invalid version", exitCodeFatal)
}

func TestDeploy_UnknownTag(t *testing.T) {
	repo, _ := testutil.TaggedRepo(t, "v1.3.0")
	_, err := execute(t, "--repo", repo, "1.4.0")
	assertExitError(t, err, "no tag matches version: 1.4.0", exitCodeFatal)
}

func TestDeploy_UnsupportedHost(t *testing.T) {
	cmd := NewCmd()
	err := run(context.Background(), cmd, flags{}, "1.4.0", runDeps{
		detector: platform.NewDetectorFor(func() string { return "plan9" }),
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
	})
	assertExitError(t, err, "unsupported platform: plan9", exitCodeFatal)
}

func TestDeploy_EndToEnd(t *testing.T) {
	repo, commit := testutil.TaggedRepo(t, "v1.4.0")
	vagrant, vagrantLog := testutil.FakeVagrant(t, "")
	scripts := testutil.WriteGuestScripts(t)
	work := t.TempDir()
	outDir := filepath.Join(work, "out")
	logFile := filepath.Join(work, "deploy.log")
	cfg := filepath.Join(work, "deploy.cue")
	testutil.WriteFile(t, cfg, "{\n  configVersion: \"1\"\n  machines: [{kind: \"arch\"}]\n}\n", 0o644)

	out, err := execute(t,
		"--config", cfg,
		"--repo", repo,
		"--vagrant", vagrant,
		"--scripts-dir", scripts,
		"--workspace-root", work,
		"--output-dir", outDir,
		"--log-file", logFile,
		"1.4.0",
	)
	if err != nil {
		t.Fatalf("deploy: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Summary:") || !strings.Contains(out, "archlinux") || !strings.Contains(out, "SUCCESS") {
		t.Fatalf("summary missing:\n%s", out)
	}

	calls := testutil.ReadLines(t, vagrantLog)
	if len(calls) != 4 || calls[0] != "up archlinux" || calls[3] != "halt archlinux" {
		t.Fatalf("vagrant calls = %q", calls)
	}
	if !strings.Contains(calls[1], "./arch_build.sh "+commit+" 1.4.0") {
		t.Fatalf("compile call = %q", calls[1])
	}

	notes, err := os.ReadFile(filepath.Join(outDir, "release_notes.txt"))
	if err != nil {
		t.Fatalf("notes: %v", err)
	}
	if !strings.Contains(string(notes), "Built from revision "+commit) || !strings.Contains(string(notes), "- Arch User Repository") {
		t.Fatalf("notes = %s", notes)
	}
	manifest, err := os.ReadFile(filepath.Join(outDir, "release-1.4.0.yaml"))
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	if !strings.Contains(string(manifest), "tool: vmrelease ") || !strings.Contains(string(manifest), "revision: "+commit) {
		t.Fatalf("manifest = %s", manifest)
	}
	logged := strings.Join(testutil.ReadLines(t, logFile), "\n")
	if !strings.Contains(logged, "starting VM archlinux") || !strings.Contains(logged, "stopping VM archlinux") {
		t.Fatalf("log file = %s", logged)
	}
}

func TestDeploy_FailedVMStillExitsZero(t *testing.T) {
	repo, _ := testutil.TaggedRepo(t, "1.4.0")
	vagrant, _ := testutil.FakeVagrant(t, "arch_build.sh")
	work := t.TempDir()
	cfg := filepath.Join(work, "deploy.cue")
	testutil.WriteFile(t, cfg, "{\n  configVersion: \"1\"\n  machines: [{kind: \"arch\"}]\n}\n", 0o644)

	out, err := execute(t,
		"--config", cfg,
		"--repo", repo,
		"--vagrant", vagrant,
		"--scripts-dir", testutil.WriteGuestScripts(t),
		"--workspace-root", work,
		"--output-dir", filepath.Join(work, "out"),
		"1.4.0",
	)
	if err != nil {
		t.Fatalf("deploy: %v", err)
	}
	if !strings.Contains(out, "FAILED") || !strings.Contains(out, "failed in archlinux") {
		t.Fatalf("output = %s", out)
	}
}
