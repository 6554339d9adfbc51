package git

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrDetachedHead is returned by CurrentBranch when HEAD is not a branch.
var ErrDetachedHead = errors.New("HEAD is detached")

// ErrNoUpstream is returned by Upstream when the branch has no remote
// tracking configuration.
var ErrNoUpstream = errors.New("branch has no upstream")

// TopLevel returns the absolute path of the work tree containing dir.
func (s *GitService) TopLevel(ctx context.Context, dir string) (string, error) {
	output, err := s.executor.Output(ctx, dir, "git", "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not a git work tree: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// CurrentBranch returns the short name of the checked out branch.
func (s *GitService) CurrentBranch(ctx context.Context, repoPath string) (string, error) {
	output, _, err := s.executor.Run(ctx, repoPath, "git", "symbolic-ref", "-q", "--short", "HEAD")
	if err != nil {
		// symbolic-ref fails on a detached HEAD; tell that apart from a broken repo.
		if _, _, verr := s.executor.Run(ctx, repoPath, "git", "rev-parse", "--verify", "HEAD"); verr == nil {
			return "", ErrDetachedHead
		}
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// Upstream returns the remote and remote branch that branch tracks, read from
// branch.<name>.remote and branch.<name>.merge.
func (s *GitService) Upstream(ctx context.Context, repoPath, branch string) (remote, remoteBranch string, err error) {
	remoteOut, _, err := s.executor.Run(ctx, repoPath, "git", "config", "--get", "branch."+branch+".remote")
	if err != nil {
		return "", "", ErrNoUpstream
	}
	mergeOut, _, err := s.executor.Run(ctx, repoPath, "git", "config", "--get", "branch."+branch+".merge")
	if err != nil {
		return "", "", ErrNoUpstream
	}

	remote = strings.TrimSpace(string(remoteOut))
	remoteBranch = strings.TrimPrefix(strings.TrimSpace(string(mergeOut)), "refs/heads/")
	// "." means the branch tracks another local branch, which has nothing to fetch.
	if remote == "" || remote == "." || remoteBranch == "" {
		return "", "", ErrNoUpstream
	}
	return remote, remoteBranch, nil
}

// DefaultBranch returns the default branch name of remote (main or master).
func (s *GitService) DefaultBranch(ctx context.Context, repoPath, remote string) string {
	prefix := "refs/remotes/" + remote + "/"

	// Try the remote's HEAD first
	output, err := s.executor.Output(ctx, repoPath, "git", "symbolic-ref", "-q", prefix+"HEAD")
	if err == nil {
		// Output is like "refs/remotes/origin/main"
		if name := strings.TrimPrefix(strings.TrimSpace(string(output)), prefix); name != "" {
			return name
		}
	}

	// Fallback: check if main exists, otherwise use master
	_, _, err = s.executor.Run(ctx, repoPath, "git", "rev-parse", "-q", "--verify", prefix+"main")
	if err == nil {
		return "main"
	}

	return "master"
}
