package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/zhubert/plural-sync/logger"
)

// FetchedRef identifies the commit a fetch brought in. It is never modified
// after Fetch returns.
type FetchedRef struct {
	Remote string // Remote name, e.g. "origin"
	Branch string // Branch name on the remote, e.g. "main"
	Commit string // Full commit id the branch pointed at when fetched
}

// TrackingRef is the conventional short name of the fetched branch.
func (r *FetchedRef) TrackingRef() string {
	return r.Remote + "/" + r.Branch
}

// ShortCommit returns the first seven characters of the commit id.
func (r *FetchedRef) ShortCommit() string {
	if len(r.Commit) > 7 {
		return r.Commit[:7]
	}
	return r.Commit
}

// Fetch fetches a single branch from remote and resolves the commit it
// points at through FETCH_HEAD.
func (s *GitService) Fetch(ctx context.Context, repoPath, remote, branch string) (*FetchedRef, error) {
	log := logger.WithComponent("git")

	if strings.HasPrefix(remote, "-") || strings.HasPrefix(branch, "-") {
		return nil, fmt.Errorf("refusing to fetch %q from %q: names must not start with '-'", branch, remote)
	}

	output, err := s.executor.CombinedOutput(ctx, repoPath, "git", "fetch", "--no-tags", remote, branch)
	if err != nil {
		if out := strings.TrimSpace(string(output)); out != "" {
			return nil, fmt.Errorf("failed to fetch %s from %s: %s: %w", branch, remote, out, err)
		}
		return nil, fmt.Errorf("failed to fetch %s from %s: %w", branch, remote, err)
	}
	log.Debug("fetch output", "remote", remote, "branch", branch, "output", strings.TrimSpace(string(output)))

	commit, err := s.executor.Output(ctx, repoPath, "git", "rev-parse", "--verify", "FETCH_HEAD^{commit}")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve fetched %s/%s: %w", remote, branch, err)
	}

	ref := &FetchedRef{Remote: remote, Branch: branch, Commit: strings.TrimSpace(string(commit))}
	log.Info("fetched", "ref", ref.TrackingRef(), "commit", ref.Commit)
	return ref, nil
}
