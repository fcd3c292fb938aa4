package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// TaggedRepo creates a repository with one commit carrying a lightweight
// tag and returns its directory and the commit hash.
func TaggedRepo(t *testing.T, tag string) (dir, commit string) {
	t.Helper()
	dir = t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "VERSION"), []byte(tag+"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if _, err := wt.Add("VERSION"); err != nil {
		t.Fatalf("add: %v", err)
	}
	sig := &object.Signature{Name: "Release Bot", Email: "bot@example.org", When: time.Unix(1700000000, 0).UTC()}
	h, err := wt.Commit("release "+tag, &git.CommitOptions{Author: sig})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := repo.CreateTag(tag, h, nil); err != nil {
		t.Fatalf("tag: %v", err)
	}
	return dir, h.String()
}
