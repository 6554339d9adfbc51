package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/zhubert/plural-sync/logger"
)

// MergeResult is the structured result of a merge that git carried out,
// whether or not it left conflicts behind.
type MergeResult struct {
	ConflictedFiles []string // Files with unresolved conflicts, sorted; empty on success
}

// HasConflicts reports whether the merge stopped on conflicts.
func (r *MergeResult) HasConflicts() bool {
	return len(r.ConflictedFiles) > 0
}

// Merge merges commit into the checked out branch using message for the merge
// commit. A merge that stops on conflicts is a result, not an error; any
// other failure is returned as an error. Once started, the merge runs to
// completion even if ctx is cancelled.
func (s *GitService) Merge(ctx context.Context, repoPath, commit, message string) (*MergeResult, error) {
	ctx = context.WithoutCancel(ctx)
	log := logger.WithComponent("git")
	log.Info("merging", "repo", repoPath, "commit", commit)

	output, err := s.executor.CombinedOutput(ctx, repoPath, "git", "merge", "--no-edit", "-m", message, commit)
	log.Debug("merge output", "repo", repoPath, "output", strings.TrimSpace(string(output)))
	if err != nil {
		// Check if this is a merge conflict
		conflictedFiles, conflictErr := s.GetConflictedFiles(ctx, repoPath)
		if conflictErr == nil && len(conflictedFiles) > 0 {
			log.Warn("merge conflict", "repo", repoPath, "files", conflictedFiles)
			return &MergeResult{ConflictedFiles: conflictedFiles}, nil
		}

		// Not a conflict, some other error
		return nil, fmt.Errorf("merge failed: %s: %w", strings.TrimSpace(string(output)), err)
	}

	return &MergeResult{}, nil
}
