// Package gitref resolves a release version label to the commit it was
// tagged at.
package gitref

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

var (
	// ErrTagNotFound is returned when no candidate tag exists.
	ErrTagNotFound = errors.New("no tag matches version")
	// ErrRepoNotFound is returned when repoDir is not inside a git work tree.
	ErrRepoNotFound = errors.New("git repo not found")
)

// TagCandidates lists the tag names tried for version, in order: the label
// itself, then the "v"-prefixed form (or the bare form when the label
// already carries a "v").
func TagCandidates(version string) []string {
	if len(version) > 1 && version[0] == 'v' {
		return []string{version, version[1:]}
	}
	return []string{version, "v" + version}
}

// ValidateVersion checks that version is a semantic version label.
func ValidateVersion(version string) error {
	if _, err := semver.NewVersion(version); err != nil {
		return fmt.Errorf("invalid version %q: %v", version, err)
	}
	return nil
}

// ResolveTag returns the commit hash the version tag points at. Annotated
// tags are peeled to their target commit.
func ResolveTag(repoDir, version string) (string, error) {
	repo, err := git.PlainOpenWithOptions(repoDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", ErrRepoNotFound
		}
		return "", fmt.Errorf("open repo %s: %w", repoDir, err)
	}
	for _, name := range TagCandidates(version) {
		ref, err := repo.Tag(name)
		if errors.Is(err, git.ErrTagNotFound) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("lookup tag %s: %w", name, err)
		}
		return peel(repo, ref)
	}
	return "", fmt.Errorf("%w: %s", ErrTagNotFound, version)
}

func peel(repo *git.Repository, ref *plumbing.Reference) (string, error) {
	tag, err := repo.TagObject(ref.Hash())
	switch {
	case err == nil:
		c, err := tag.Commit()
		if err != nil {
			return "", fmt.Errorf("tag %s does not point at a commit: %w", ref.Name().Short(), err)
		}
		return c.Hash.String(), nil
	case errors.Is(err, plumbing.ErrObjectNotFound):
		return ref.Hash().String(), nil
	default:
		return "", fmt.Errorf("read tag %s: %w", ref.Name().Short(), err)
	}
}
