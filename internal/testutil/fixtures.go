package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// GuestScripts lists every file the built-in profiles stage.
var GuestScripts = []string{
	"windows_build.ps1", "windows_provision.ps1", "windows_package.ps1",
	"ubuntu2204_provision.sh", "ubuntu2204_build.sh", "ubuntu_package.sh",
	"ubuntu_prepare_source_tarball.sh", "debian/control", "debian/rules",
	"arch_provision.sh", "arch_build.sh", "arch_package.sh", "PKGBUILD",
}

// WriteGuestScripts creates a guest scripts directory holding placeholder
// copies of GuestScripts and returns its path. The tree is written once
// under a source dir and copied into place, as a checkout would be.
func WriteGuestScripts(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "src")
	for _, name := range GuestScripts {
		WriteFile(t, filepath.Join(src, filepath.FromSlash(name)), "#!/bin/sh\n", 0o755)
	}
	dir := filepath.Join(root, "guest_scripts")
	if err := CopyTree(src, dir); err != nil {
		t.Fatalf("copy guest scripts: %v", err)
	}
	return dir
}

// WriteFile writes content to path, creating parents.
func WriteFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// FakeVagrant writes a POSIX shell stand-in for the VM manager. Each call
// appends its arguments as one line to the returned log. Calls whose
// arguments contain failOn exit with status 3.
func FakeVagrant(t *testing.T, failOn string) (bin, log string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake vagrant needs a POSIX shell")
	}
	dir := t.TempDir()
	bin = filepath.Join(dir, "vagrant")
	log = filepath.Join(dir, "vagrant.log")
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("echo \"$*\" >> '" + log + "'\n")
	if failOn != "" {
		b.WriteString("case \"$*\" in *'" + failOn + "'*) echo \"boom: $*\" >&2; exit 3;; esac\n")
	}
	WriteFile(t, bin, b.String(), 0o755)
	return bin, log
}

// ReadLines returns the non-empty lines of path, or nil if it is missing.
func ReadLines(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var out []string
	for _, l := range strings.Split(string(b), "\n") {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
