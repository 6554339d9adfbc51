package reposync

import (
	"context"
	"fmt"
	"time"

	"github.com/zhubert/plural-sync/git"
)

// StashManager sets uncommitted edits aside before a merge. It never puts
// them back: restoring is left to the operator.
type StashManager struct {
	client   git.Client
	repoPath string
	now      func() time.Time
}

// NewStashManager returns a StashManager for the repository at repoPath.
func NewStashManager(client git.Client, repoPath string) *StashManager {
	return &StashManager{client: client, repoPath: repoPath, now: time.Now}
}

// Preserve stashes the uncommitted edits under label.
// When git reports a failure after the stash entry was written, the handle is
// returned together with the error.
func (m *StashManager) Preserve(ctx context.Context, label string) (*StashHandle, error) {
	entry, err := m.client.StashPush(ctx, m.repoPath, label)
	if entry == nil {
		return nil, err
	}
	return &StashHandle{Label: entry.Label, Commit: entry.Commit, CreatedAt: m.now()}, err
}

// AdviseRestore returns the notice telling the operator how to restore h.
// It never touches the repository.
func (m *StashManager) AdviseRestore(h *StashHandle) Notice {
	return Notice{
		Kind:    NoticeStashRestore,
		Message: fmt.Sprintf("Your uncommitted changes are still stashed as %q and were not restored.", h.Label),
		Details: []string{
			"Restore them with: git stash pop",
			fmt.Sprintf("If other stashes were pushed since, use: git stash apply %s", h.Commit),
		},
	}
}
