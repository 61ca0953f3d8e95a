// Package gitmeta resolves best-effort git metadata for a scan target.
// Failures are not errors: a non-git directory simply yields empty values.
package gitmeta

import (
	git "github.com/go-git/go-git/v5"
)

// Metadata describes the repository state a scan ran against.
type Metadata struct {
	CommitSHA string
	Branch    string
	Dirty     bool
}

// Resolve returns HEAD metadata for the repository at root. Everything is
// best-effort; callers must tolerate empty fields.
func Resolve(root string) Metadata {
	var meta Metadata
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return meta
	}
	head, err := repo.Head()
	if err != nil {
		return meta
	}
	meta.CommitSHA = head.Hash().String()
	if head.Name().IsBranch() {
		meta.Branch = head.Name().Short()
	}
	if wt, err := repo.Worktree(); err == nil {
		if status, err := wt.Status(); err == nil {
			meta.Dirty = !status.IsClean()
		}
	}
	return meta
}
