package reposync

import (
	"context"
	"errors"

	"github.com/zhubert/plural-sync/git"
)

// MergeExecutor merges a fetched commit and classifies the outcome.
type MergeExecutor struct {
	client   git.Client
	repoPath string
}

// NewMergeExecutor returns a MergeExecutor for the repository at repoPath.
func NewMergeExecutor(client git.Client, repoPath string) *MergeExecutor {
	return &MergeExecutor{client: client, repoPath: repoPath}
}

// Merge merges ref into the current branch with message. Conflicts are
// returned as a MergeConflict outcome; only other failures are errors.
func (m *MergeExecutor) Merge(ctx context.Context, ref *git.FetchedRef, message string) (MergeOutcome, error) {
	if ref == nil || ref.Commit == "" {
		return MergeOutcome{}, errors.New("nothing was fetched to merge")
	}

	result, err := m.client.Merge(ctx, m.repoPath, ref.Commit, message)
	if err != nil {
		return MergeOutcome{}, err
	}
	if result.HasConflicts() {
		return MergeOutcome{Kind: MergeConflict, Ref: ref, Conflicts: result.ConflictedFiles}, nil
	}
	return MergeOutcome{Kind: MergeSuccess, Ref: ref}, nil
}
