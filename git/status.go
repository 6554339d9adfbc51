package git

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/zhubert/plural-sync/logger"
)

// Status describes uncommitted changes to tracked files relative to HEAD.
// Untracked files are not reported.
type Status struct {
	Staged   []string // Paths with index changes
	Unstaged []string // Paths with working tree changes
}

// HasChanges reports whether anything is staged or modified.
func (s *Status) HasChanges() bool {
	return len(s.Staged) > 0 || len(s.Unstaged) > 0
}

// InspectStatus returns the uncommitted changes in repoPath. It fails when
// repoPath is not inside a git work tree.
func (s *GitService) InspectStatus(ctx context.Context, repoPath string) (*Status, error) {
	output, err := s.executor.Output(ctx, repoPath, "git", "status", "--porcelain", "-z", "--untracked-files=no")
	if err != nil {
		return nil, fmt.Errorf("git status failed: %w", err)
	}
	status := parsePorcelain(string(output))

	logger.WithComponent("git").Debug("inspected status",
		"repo", repoPath, "staged", len(status.Staged), "unstaged", len(status.Unstaged))
	return status, nil
}

// parsePorcelain parses `git status --porcelain -z` output. Paths are
// verbatim; a rename or copy entry is followed by an extra field holding the
// source path.
func parsePorcelain(output string) *Status {
	status := &Status{}

	fields := strings.Split(output, "\x00")
	for i := 0; i < len(fields); i++ {
		entry := fields[i]
		if len(entry) < 4 {
			continue
		}
		x, y, path := entry[0], entry[1], entry[3:]
		if x == 'R' || x == 'C' || y == 'R' || y == 'C' {
			i++
		}
		if x == '?' || x == '!' {
			continue
		}
		if x != ' ' {
			status.Staged = append(status.Staged, path)
		}
		if y != ' ' {
			status.Unstaged = append(status.Unstaged, path)
		}
	}
	return status
}

// GetConflictedFiles returns the paths with unresolved merge conflicts in a
// repo, sorted lexicographically.
func (s *GitService) GetConflictedFiles(ctx context.Context, repoPath string) ([]string, error) {
	output, err := s.executor.Output(ctx, repoPath, "git", "diff", "--name-only", "-z", "--diff-filter=U")
	if err != nil {
		return nil, fmt.Errorf("failed to get conflicted files: %w", err)
	}
	return uniqueSorted(strings.Split(string(output), "\x00")), nil
}

// IsMergeInProgress checks if a merge is currently in progress in the repo.
// It returns true if MERGE_HEAD exists (meaning there's an ongoing merge).
func (s *GitService) IsMergeInProgress(ctx context.Context, repoPath string) (bool, error) {
	_, _, err := s.executor.Run(ctx, repoPath, "git", "rev-parse", "-q", "--verify", "MERGE_HEAD")
	if err != nil {
		// MERGE_HEAD doesn't exist - no merge in progress
		return false, nil
	}
	return true, nil
}

func uniqueSorted(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
