package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zhubert/plural-sync/logger"
)

// ErrNothingToStash is returned by StashPush when git created no stash entry.
var ErrNothingToStash = errors.New("no local changes to stash")

// StashEntry identifies a stash created by StashPush.
type StashEntry struct {
	Label  string // Message recorded with the stash
	Commit string // Stash commit id, stable even after newer stashes are pushed
}

// StashPush stashes staged and unstaged changes to tracked files under label.
// Untracked files are left in place. The push is not interrupted by ctx being
// cancelled. If git fails after writing the stash entry, the entry is
// returned together with the error.
func (s *GitService) StashPush(ctx context.Context, repoPath, label string) (*StashEntry, error) {
	ctx = context.WithoutCancel(ctx)
	log := logger.WithComponent("git")
	before := s.stashTop(ctx, repoPath)

	output, err := s.executor.CombinedOutput(ctx, repoPath, "git", "stash", "push", "-m", label)
	after := s.stashTop(ctx, repoPath)

	var entry *StashEntry
	if after != "" && after != before {
		entry = &StashEntry{Label: label, Commit: after}
		log.Info("stash created", "repo", repoPath, "label", label, "commit", after)
	}

	switch {
	case err != nil:
		if entry != nil {
			log.Warn("git stash push failed after storing the stash", "repo", repoPath, "commit", after, "error", err)
		}
		return entry, fmt.Errorf("git stash push failed: %s: %w", strings.TrimSpace(string(output)), err)
	case entry == nil:
		return nil, fmt.Errorf("%w: %s", ErrNothingToStash, strings.TrimSpace(string(output)))
	}
	return entry, nil
}

// stashTop returns the commit at refs/stash, or "" if there is none.
func (s *GitService) stashTop(ctx context.Context, repoPath string) string {
	output, err := s.executor.Output(ctx, repoPath, "git", "rev-parse", "-q", "--verify", "refs/stash")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}
