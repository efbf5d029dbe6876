package cache

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// RepoIdentity discovers the git repository root and current HEAD commit
// for path by walking up from it, the way the teacher's git helpers locate
// a project root. Unlike the teacher, which shells out to the git binary,
// this opens the repository directly through go-git, so no subprocess or
// PATH dependency is needed at cache-lookup time.
//
// When path isn't inside a git checkout, ok is false and RepoRoot falls
// back to path's absolute form; when HEAD is unborn, ok is false and
// RepoRoot is the worktree root with an empty CommitHash. Callers can still
// build a Namespace scoped to this run, just without cross-run reuse.
func RepoIdentity(path string) (ns Namespace, ok bool, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Namespace{}, false, fmt.Errorf("cache: absolute path for %s: %w", path, err)
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return Namespace{RepoRoot: abs}, false, nil
	}
	if err != nil {
		return Namespace{RepoRoot: abs}, false, nil
	}

	wt, err := repo.Worktree()
	if err != nil {
		return Namespace{RepoRoot: abs}, false, nil
	}
	root := wt.Filesystem.Root()

	head, err := repo.Head()
	if err != nil {
		return Namespace{RepoRoot: root}, false, nil
	}

	return Namespace{RepoRoot: root, CommitHash: head.Hash().String()}, true, nil
}
